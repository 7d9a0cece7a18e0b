package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ai-shopchat-be/internal/dto"
	"ai-shopchat-be/internal/entity"
	"ai-shopchat-be/internal/pkg/logger"
	"ai-shopchat-be/internal/repository/memory"
	"ai-shopchat-be/pkg/events"
	"ai-shopchat-be/pkg/llm"
	"ai-shopchat-be/pkg/rag/prompt"
	"ai-shopchat-be/pkg/rag/response"

	"github.com/google/uuid"
)

// imagePlaceholderQuery replaces any user-supplied text when an image is
// present; image presence always wins modality selection.
const imagePlaceholderQuery = "{Image was submitted to find similar products, respond with recommendation for the relevant products}"

// TurnPublisher receives one event per completed chat turn. *nats.Publisher
// satisfies it; nil disables eventing.
type TurnPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// IChatService runs one full chat turn: modality selection, retrieval,
// prompt compilation, completion, summary commit and response shaping.
type IChatService interface {
	Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)
}

type chatService struct {
	retrieval       IRetrievalService
	llmProvider     llm.LLMProvider
	summaryRepo     *memory.SummaryRepository
	publisher       TurnPublisher
	logger          logger.ILogger
	llmLogger       logger.ILogger
	topK            int
	completeTimeout time.Duration
}

func NewChatService(
	retrieval IRetrievalService,
	llmProvider llm.LLMProvider,
	summaryRepo *memory.SummaryRepository,
	publisher TurnPublisher,
	log logger.ILogger,
	llmLog logger.ILogger,
	topK int,
	completeTimeout time.Duration,
) IChatService {
	if topK <= 0 {
		topK = 5
	}
	if completeTimeout <= 0 {
		completeTimeout = 120 * time.Second
	}
	return &chatService{
		retrieval:       retrieval,
		llmProvider:     llmProvider,
		summaryRepo:     summaryRepo,
		publisher:       publisher,
		logger:          log,
		llmLogger:       llmLog,
		topK:            topK,
		completeTimeout: completeTimeout,
	}
}

func (s *chatService) Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	turnId := uuid.NewString()
	query, userQuery := selectModality(req)

	products, err := s.retrieval.Search(ctx, query, s.topK)
	if err != nil {
		// Text path only: image failures were absorbed by the engine.
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	// Serialize read-compile-write per session so concurrent turns on the
	// same session id cannot clobber each other's summary.
	unlock := s.summaryRepo.Lock(req.SessionId)
	defer unlock()

	if s.summaryRepo.EvictIfFull() {
		s.logger.Warn("chat", "Session store hit capacity, flushed all summaries", map[string]interface{}{
			"turn_id": turnId,
		})
	}
	summary, _ := s.summaryRepo.Get(req.SessionId)

	compiled := prompt.NewBuilder(summary, userQuery, products).Build()

	cctx, cancel := context.WithTimeout(ctx, s.completeTimeout)
	defer cancel()

	raw, err := s.llmProvider.Generate(cctx, compiled)
	if err != nil {
		return nil, fmt.Errorf("completion failed: %w", err)
	}
	s.llmLogger.Info("llm", "completion", map[string]interface{}{
		"turn_id": turnId, "session_id": req.SessionId, "prompt": compiled, "raw": raw,
	})

	parsed := response.Parse(raw)
	if parsed.HasSummary {
		s.summaryRepo.Set(req.SessionId, parsed.Summary)
	}

	cited := citedProducts(parsed.Reply, products)
	s.publishTurn(ctx, turnId, req.SessionId, query.Modality(), len(products), len(cited))

	s.logger.Info("chat", "Turn completed", map[string]interface{}{
		"turn_id":    turnId,
		"session_id": req.SessionId,
		"modality":   query.Modality(),
		"retrieved":  len(products),
		"cited":      len(cited),
	})

	return &dto.ChatResponse{
		Response: parsed.Reply,
		Products: cited,
	}, nil
}

// selectModality picks the retrieval path. Raw payload beats URL, any image
// beats text, and the image path discards user text for the placeholder.
func selectModality(req *dto.ChatRequest) (Query, string) {
	if len(req.Image) > 0 {
		return ImageBytesQuery{Data: req.Image}, imagePlaceholderQuery
	}
	if req.ImageURL != "" {
		return ImageURLQuery{URL: req.ImageURL}, imagePlaceholderQuery
	}
	return TextQuery{Text: req.UserQuery}, req.UserQuery
}

// citedProducts keeps only retrieved products whose exact name appears in
// the reply, in retrieval order. Grounding filter: a product the model never
// named is dropped even though it was prompt context.
func citedProducts(reply string, products []entity.Product) []dto.ProductDTO {
	cited := make([]dto.ProductDTO, 0, len(products))
	for _, p := range products {
		if strings.Contains(reply, p.Name) {
			cited = append(cited, dto.ProductDTO{
				Name:        p.Name,
				Description: p.Description,
				Category:    p.Category,
				Price:       p.Price,
			})
		}
	}
	return cited
}

func (s *chatService) publishTurn(ctx context.Context, turnId, sessionId, modality string, retrieved, cited int) {
	if s.publisher == nil {
		return
	}
	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	event := events.NewChatTurnCompleted(turnId, sessionId, modality, retrieved, cited)
	if err := s.publisher.Publish(pctx, event); err != nil {
		s.logger.Warn("chat", "Failed to publish turn event", map[string]interface{}{
			"turn_id": turnId, "error": err.Error(),
		})
	}
}
