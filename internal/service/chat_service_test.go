package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"ai-shopchat-be/internal/dto"
	"ai-shopchat-be/internal/entity"
	"ai-shopchat-be/internal/pkg/logger"
	"ai-shopchat-be/internal/repository/memory"
	"ai-shopchat-be/pkg/events"
	"ai-shopchat-be/pkg/llm"
	"ai-shopchat-be/pkg/rag/prompt"

	"github.com/stretchr/testify/assert"
)

type fakeLLM struct {
	out        string
	err        error
	lastPrompt string
	calls      int
}

func (f *fakeLLM) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	f.calls++
	if len(history) > 0 {
		f.lastPrompt = history[len(history)-1].Content
	}
	return f.out, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, p string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: p}}, opts...)
}

type fakeRetrieval struct {
	products  []entity.Product
	err       error
	lastQuery Query
}

func (f *fakeRetrieval) Search(_ context.Context, q Query, _ int) ([]entity.Product, error) {
	f.lastQuery = q
	return f.products, f.err
}

type capturingPublisher struct {
	published []events.Event
}

func (p *capturingPublisher) Publish(_ context.Context, e events.Event) error {
	p.published = append(p.published, e)
	return nil
}

var redRunner = entity.Product{Id: 0, Name: "RedRunner", Description: "running shoe", Category: "footwear", Price: 59.99}

func newTestChatService(retrieval IRetrievalService, provider llm.LLMProvider, repo *memory.SummaryRepository, pub TurnPublisher) IChatService {
	return NewChatService(retrieval, provider, repo, pub, logger.NewNopLogger(), logger.NewNopLogger(), 5, 10*time.Second)
}

func TestChatEndToEndScenario(t *testing.T) {
	retrieval := &fakeRetrieval{products: []entity.Product{redRunner}}
	provider := &fakeLLM{out: "[Response]: Try the RedRunner! [Updated Summary]: user wants red shoes"}
	repo := memory.NewSummaryRepository(100)
	pub := &capturingPublisher{}
	svc := newTestChatService(retrieval, provider, repo, pub)

	res, err := svc.Chat(context.Background(), &dto.ChatRequest{SessionId: "s1", UserQuery: "red shoes"})
	assert.NoError(t, err)

	assert.Equal(t, " Try the RedRunner! ", res.Response)
	assert.Len(t, res.Products, 1)
	assert.Equal(t, dto.ProductDTO{Name: "RedRunner", Description: "running shoe", Category: "footwear", Price: 59.99}, res.Products[0])

	stored, ok := repo.Get("s1")
	assert.True(t, ok)
	assert.Equal(t, " user wants red shoes", stored)

	assert.IsType(t, TextQuery{}, retrieval.lastQuery)
	assert.Len(t, pub.published, 1)
	assert.Equal(t, "CHAT_TURN_COMPLETED", pub.published[0].EventType())
}

func TestChatFirstTurnPromptHasSentinel(t *testing.T) {
	retrieval := &fakeRetrieval{products: []entity.Product{redRunner}}
	provider := &fakeLLM{out: "ok"}
	svc := newTestChatService(retrieval, provider, memory.NewSummaryRepository(100), nil)

	_, err := svc.Chat(context.Background(), &dto.ChatRequest{SessionId: "fresh", UserQuery: "hi"})
	assert.NoError(t, err)
	assert.Contains(t, provider.lastPrompt, prompt.NoPriorSummary)
}

func TestChatSecondTurnPromptCarriesSummary(t *testing.T) {
	retrieval := &fakeRetrieval{products: []entity.Product{redRunner}}
	provider := &fakeLLM{out: "hello [Updated Summary]: likes running shoes"}
	repo := memory.NewSummaryRepository(100)
	svc := newTestChatService(retrieval, provider, repo, nil)

	_, err := svc.Chat(context.Background(), &dto.ChatRequest{SessionId: "s1", UserQuery: "first"})
	assert.NoError(t, err)

	provider.out = "second reply"
	_, err = svc.Chat(context.Background(), &dto.ChatRequest{SessionId: "s1", UserQuery: "second"})
	assert.NoError(t, err)

	assert.Contains(t, provider.lastPrompt, "likes running shoes")
	assert.NotContains(t, provider.lastPrompt, prompt.NoPriorSummary)
}

func TestChatMissingSummaryMarkerLeavesSummaryUnchanged(t *testing.T) {
	retrieval := &fakeRetrieval{}
	provider := &fakeLLM{out: "a reply without any markers"}
	repo := memory.NewSummaryRepository(100)
	repo.Set("s1", "existing summary")
	svc := newTestChatService(retrieval, provider, repo, nil)

	res, err := svc.Chat(context.Background(), &dto.ChatRequest{SessionId: "s1", UserQuery: "q"})
	assert.NoError(t, err)
	assert.Equal(t, "a reply without any markers", res.Response)

	stored, _ := repo.Get("s1")
	assert.Equal(t, "existing summary", stored)
}

func TestChatCitationFilter(t *testing.T) {
	widgetA := entity.Product{Id: 0, Name: "Widget A", Description: "a", Category: "widgets", Price: 1}
	widgetB := entity.Product{Id: 1, Name: "Widget B", Description: "b", Category: "widgets", Price: 2}
	retrieval := &fakeRetrieval{products: []entity.Product{widgetA, widgetB}}
	provider := &fakeLLM{out: "I suggest Widget A for this."}
	svc := newTestChatService(retrieval, provider, memory.NewSummaryRepository(100), nil)

	res, err := svc.Chat(context.Background(), &dto.ChatRequest{SessionId: "s1", UserQuery: "widgets?"})
	assert.NoError(t, err)
	assert.Len(t, res.Products, 1)
	assert.Equal(t, "Widget A", res.Products[0].Name)
}

func TestChatImageWinsModalityAndDiscardsText(t *testing.T) {
	retrieval := &fakeRetrieval{}
	provider := &fakeLLM{out: "ok"}
	svc := newTestChatService(retrieval, provider, memory.NewSummaryRepository(100), nil)

	_, err := svc.Chat(context.Background(), &dto.ChatRequest{
		SessionId: "s1",
		UserQuery: "this text must be discarded",
		ImageURL:  "http://example.com/shoe.png",
	})
	assert.NoError(t, err)
	assert.IsType(t, ImageURLQuery{}, retrieval.lastQuery)
	assert.Contains(t, provider.lastPrompt, "{Image was submitted to find similar products")
	assert.NotContains(t, provider.lastPrompt, "this text must be discarded")
}

func TestChatImageBytesBeatURL(t *testing.T) {
	retrieval := &fakeRetrieval{}
	provider := &fakeLLM{out: "ok"}
	svc := newTestChatService(retrieval, provider, memory.NewSummaryRepository(100), nil)

	_, err := svc.Chat(context.Background(), &dto.ChatRequest{
		SessionId: "s1",
		UserQuery: "q",
		ImageURL:  "http://example.com/shoe.png",
		Image:     []byte{1, 2, 3},
	})
	assert.NoError(t, err)
	assert.IsType(t, ImageBytesQuery{}, retrieval.lastQuery)
}

func TestChatUngroundedTurnStillCompletes(t *testing.T) {
	// The fail-soft image path yields zero products; the turn must still
	// produce a reply and an empty products list.
	retrieval := &fakeRetrieval{products: []entity.Product{}}
	provider := &fakeLLM{out: "[Response]: Sorry, nothing similar found. [Updated Summary]: image search"}
	svc := newTestChatService(retrieval, provider, memory.NewSummaryRepository(100), nil)

	res, err := svc.Chat(context.Background(), &dto.ChatRequest{
		SessionId: "s1",
		UserQuery: "q",
		Image:     []byte("garbage"),
	})
	assert.NoError(t, err)
	assert.Empty(t, res.Products)
	assert.Contains(t, res.Response, "nothing similar found")
}

func TestChatUpstreamFailurePropagates(t *testing.T) {
	retrieval := &fakeRetrieval{}
	provider := &fakeLLM{err: errors.New("status 500")}
	repo := memory.NewSummaryRepository(100)
	svc := newTestChatService(retrieval, provider, repo, nil)

	_, err := svc.Chat(context.Background(), &dto.ChatRequest{SessionId: "s1", UserQuery: "q"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "completion failed")

	_, ok := repo.Get("s1")
	assert.False(t, ok, "failed turns never commit a summary")
}

func TestChatRetrievalFailurePropagates(t *testing.T) {
	retrieval := &fakeRetrieval{err: errors.New("embed failed")}
	provider := &fakeLLM{out: "never used"}
	svc := newTestChatService(retrieval, provider, memory.NewSummaryRepository(100), nil)

	_, err := svc.Chat(context.Background(), &dto.ChatRequest{SessionId: "s1", UserQuery: "q"})
	assert.Error(t, err)
	assert.Equal(t, 0, provider.calls)
}

func TestChatCapacityFlushClearsUnrelatedSessions(t *testing.T) {
	retrieval := &fakeRetrieval{}
	provider := &fakeLLM{out: "reply [Updated Summary]: new"}
	repo := memory.NewSummaryRepository(memory.DefaultCapacity)
	for i := 0; i < memory.DefaultCapacity; i++ {
		repo.Set(fmt.Sprintf("old-%d", i), "summary")
	}
	svc := newTestChatService(retrieval, provider, repo, nil)

	_, err := svc.Chat(context.Background(), &dto.ChatRequest{SessionId: "brand-new", UserQuery: "q"})
	assert.NoError(t, err)

	// Everything flushed; only the new session's freshly committed summary.
	assert.Equal(t, 1, repo.Len())
	_, ok := repo.Get("old-0")
	assert.False(t, ok)
	stored, ok := repo.Get("brand-new")
	assert.True(t, ok)
	assert.Equal(t, " new", stored)
}
