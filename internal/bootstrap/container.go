package bootstrap

import (
	"fmt"
	"log"
	"time"

	"ai-shopchat-be/internal/config"
	"ai-shopchat-be/internal/controller"
	"ai-shopchat-be/internal/dto"
	"ai-shopchat-be/internal/pkg/logger"
	"ai-shopchat-be/internal/repository/memory"
	"ai-shopchat-be/internal/service"
	"ai-shopchat-be/pkg/catalog"
	"ai-shopchat-be/pkg/database"
	"ai-shopchat-be/pkg/embedding"
	"ai-shopchat-be/pkg/llm/factory"
	pktNats "ai-shopchat-be/pkg/nats"
	"ai-shopchat-be/pkg/vectorindex"
)

type Container struct {
	ChatController controller.IChatController

	// Held for shutdown in main.go
	Logger    logger.ILogger
	Publisher *pktNats.Publisher
}

func NewContainer(cfg *config.Config) (*Container, error) {
	// 1. Core facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	llmLogger := logger.NewIsolatedLogger(cfg.App.LLMLogFilePath)

	// 2. Read-only stores: catalog plus one index per embedding space,
	// loaded once and never written again.
	products, err := catalog.LoadProducts(cfg.Catalog.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	textIndex, imageIndex, err := buildIndexes(cfg)
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] Vector backend: %s (text %d rows, image %d rows, catalog %d products)",
		cfg.Catalog.VectorBackend, textIndex.Size(), imageIndex.Size(), len(products))

	// 3. Embedding providers
	var textEmbedder embedding.TextEmbedder = embedding.NewOllamaProvider(
		cfg.Ai.TextEmbedBaseURL,
		cfg.Ai.TextEmbedModel,
	)
	textEmbedder = embedding.NewCachedTextEmbedder(textEmbedder)
	imageEmbedder := embedding.NewClipProvider(cfg.Ai.ClipBaseURL)

	// 4. LLM provider
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		llmBaseURL(cfg),
		cfg.Keys.Groq,
	)
	if err != nil {
		return nil, fmt.Errorf("initialize LLM provider: %w", err)
	}
	log.Printf("[INFO] Using LLM provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 5. Session memory
	summaryRepo := memory.NewSummaryRepository(cfg.Ai.SessionCapacity)

	// 6. Optional eventing
	var publisher *pktNats.Publisher
	if cfg.App.NatsEnabled {
		publisher, err = pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS publisher: %v", err)
			publisher = nil
		}
	}

	// 7. Services
	retrievalService := service.NewRetrievalService(
		textEmbedder,
		imageEmbedder,
		textIndex,
		imageIndex,
		products,
		sysLogger,
		time.Duration(cfg.Ai.FetchTimeoutSec)*time.Second,
	)

	var turnPublisher service.TurnPublisher
	if publisher != nil {
		turnPublisher = publisher
	}
	chatService := service.NewChatService(
		retrievalService,
		llmProvider,
		summaryRepo,
		turnPublisher,
		sysLogger,
		llmLogger,
		cfg.Catalog.TopK,
		time.Duration(cfg.Ai.CompleteTimeoutSec)*time.Second,
	)

	health := dto.HealthResponse{
		CatalogSize:    len(products),
		TextIndexSize:  textIndex.Size(),
		ImageIndexSize: imageIndex.Size(),
		VectorBackend:  cfg.Catalog.VectorBackend,
	}

	return &Container{
		ChatController: controller.NewChatController(chatService, health),
		Logger:         sysLogger,
		Publisher:      publisher,
	}, nil
}

// buildIndexes wires the two per-space indexes against the configured
// backend: in-memory flat index files or pgvector tables.
func buildIndexes(cfg *config.Config) (vectorindex.Index, vectorindex.Index, error) {
	switch cfg.Catalog.VectorBackend {
	case "postgres":
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			return nil, nil, fmt.Errorf("connect index database: %w", err)
		}
		textIndex := vectorindex.NewPgIndex(db, cfg.Catalog.TextTable, cfg.Catalog.TextDim)
		imageIndex := vectorindex.NewPgIndex(db, cfg.Catalog.ImageTable, cfg.Catalog.ImageDim)
		return textIndex, imageIndex, nil

	case "memory", "":
		textIndex, err := catalog.LoadFlatIndex(cfg.Catalog.TextIndexPath)
		if err != nil {
			return nil, nil, fmt.Errorf("load text index: %w", err)
		}
		imageIndex, err := catalog.LoadFlatIndex(cfg.Catalog.ImageIndexPath)
		if err != nil {
			return nil, nil, fmt.Errorf("load image index: %w", err)
		}
		return textIndex, imageIndex, nil

	default:
		return nil, nil, fmt.Errorf("unsupported vector backend: %s", cfg.Catalog.VectorBackend)
	}
}

func llmBaseURL(cfg *config.Config) string {
	if cfg.Ai.LLMProvider == "ollama" {
		return cfg.Ai.OllamaBaseURL
	}
	return cfg.Ai.GroqBaseURL
}
