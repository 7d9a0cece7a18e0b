package memory

import (
	"sync"

	"github.com/patrickmn/go-cache"
)

// DefaultCapacity is the session count at which the whole store is cleared.
const DefaultCapacity = 100

// SummaryRepository holds the rolling conversation summary per session id:
// one string per session, fully overwritten each turn, shared by all
// concurrent requests.
//
// The capacity bound is a full reset, not an LRU: once ItemCount reaches
// capacity the next EvictIfFull flushes every session's memory, including
// sessions unrelated to the current request. Crude, but it keeps the store
// bounded without per-entry bookkeeping.
type SummaryRepository struct {
	cache    *cache.Cache
	capacity int

	mu    sync.Mutex
	locks map[string]*sessionLock
}

// sessionLock is one live per-session mutex. refs counts current holders and
// waiters; the entry is removed from the map when refs drops to zero, so the
// lock map only ever holds in-flight sessions.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewSummaryRepository(capacity int) *SummaryRepository {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	// Summaries never expire on their own; the capacity flush is the only
	// eviction, so no janitor is needed.
	c := cache.New(cache.NoExpiration, 0)
	return &SummaryRepository{
		cache:    c,
		capacity: capacity,
		locks:    make(map[string]*sessionLock),
	}
}

// Get returns the stored summary for a session. ok is false when the session
// has no prior context.
func (r *SummaryRepository) Get(sessionId string) (string, bool) {
	if x, found := r.cache.Get(sessionId); found {
		return x.(string), true
	}
	return "", false
}

// Set overwrites the session's summary unconditionally.
func (r *SummaryRepository) Set(sessionId, summary string) {
	r.cache.Set(sessionId, summary, cache.NoExpiration)
}

// Len returns the number of stored sessions.
func (r *SummaryRepository) Len() int {
	return r.cache.ItemCount()
}

// EvictIfFull clears the entire store once it has reached capacity. Called
// before each prompt compile. Returns whether a flush happened. The flush is
// atomic from the perspective of concurrent Get/Set callers.
func (r *SummaryRepository) EvictIfFull() bool {
	if r.cache.ItemCount() < r.capacity {
		return false
	}
	r.cache.Flush()
	return true
}

// Lock serializes the read-compile-write span for one session so two turns
// on the same session id cannot interleave their summary updates. The
// returned func releases the lock and drops the map entry once no other
// turn holds or waits on it, keeping the map bounded by in-flight turns
// rather than by distinct session ids seen.
func (r *SummaryRepository) Lock(sessionId string) func() {
	r.mu.Lock()
	l, ok := r.locks[sessionId]
	if !ok {
		l = &sessionLock{}
		r.locks[sessionId] = l
	}
	l.refs++
	r.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		r.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(r.locks, sessionId)
		}
		r.mu.Unlock()
	}
}

// lockCount reports live lock entries. Test hook.
func (r *SummaryRepository) lockCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.locks)
}
