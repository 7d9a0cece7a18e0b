package embedding

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// CachedTextEmbedder memoizes text embeddings. Embeddings are deterministic
// per model version, so repeated queries skip the model round-trip.
type CachedTextEmbedder struct {
	inner TextEmbedder
	cache *cache.Cache
}

var _ TextEmbedder = &CachedTextEmbedder{}

func NewCachedTextEmbedder(inner TextEmbedder) *CachedTextEmbedder {
	return &CachedTextEmbedder{
		inner: inner,
		cache: cache.New(1*time.Hour, 10*time.Minute),
	}
}

func (c *CachedTextEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if x, found := c.cache.Get(text); found {
		return x.([]float32), nil
	}

	vec, err := c.inner.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Set(text, vec, cache.DefaultExpiration)
	return vec, nil
}
