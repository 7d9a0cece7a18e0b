package service

import (
	"context"
	"fmt"
	"time"

	"ai-shopchat-be/internal/entity"
	"ai-shopchat-be/internal/pkg/logger"
	"ai-shopchat-be/pkg/embedding"
	"ai-shopchat-be/pkg/vectorindex"
)

// Query is the tagged retrieval input. Exactly one variant per turn; the
// variant decides the embedding space and the failure policy.
type Query interface {
	Modality() string
}

type TextQuery struct {
	Text string
}

type ImageURLQuery struct {
	URL string
}

type ImageBytesQuery struct {
	Data []byte
}

func (TextQuery) Modality() string       { return "text" }
func (ImageURLQuery) Modality() string   { return "image" }
func (ImageBytesQuery) Modality() string { return "image" }

// IRetrievalService maps a query to the nearest catalog products.
type IRetrievalService interface {
	Search(ctx context.Context, query Query, topK int) ([]entity.Product, error)
}

type retrievalService struct {
	textEmbedder  embedding.TextEmbedder
	imageEmbedder embedding.ImageEmbedder
	textIndex     vectorindex.Index
	imageIndex    vectorindex.Index
	products      []entity.Product
	logger        logger.ILogger
	fetchTimeout  time.Duration

	// Image retrieval touches network fetch and decoding, both expected to
	// fail occasionally; with failSoft the turn continues ungrounded instead
	// of erroring. Text failures always propagate.
	imageFailSoft bool
}

func NewRetrievalService(
	textEmbedder embedding.TextEmbedder,
	imageEmbedder embedding.ImageEmbedder,
	textIndex vectorindex.Index,
	imageIndex vectorindex.Index,
	products []entity.Product,
	log logger.ILogger,
	fetchTimeout time.Duration,
) IRetrievalService {
	return &retrievalService{
		textEmbedder:  textEmbedder,
		imageEmbedder: imageEmbedder,
		textIndex:     textIndex,
		imageIndex:    imageIndex,
		products:      products,
		logger:        log,
		fetchTimeout:  fetchTimeout,
		imageFailSoft: true,
	}
}

func (s *retrievalService) Search(ctx context.Context, query Query, topK int) ([]entity.Product, error) {
	switch q := query.(type) {
	case TextQuery:
		return s.searchText(ctx, q.Text, topK)
	case ImageURLQuery, ImageBytesQuery:
		products, err := s.searchImage(ctx, query, topK)
		if err != nil {
			if s.imageFailSoft {
				s.logger.Warn("retrieval", "Image search failed, continuing ungrounded", map[string]interface{}{
					"error": err.Error(),
				})
				return []entity.Product{}, nil
			}
			return nil, err
		}
		return products, nil
	default:
		return nil, fmt.Errorf("unsupported query type %T", query)
	}
}

func (s *retrievalService) searchText(ctx context.Context, text string, topK int) ([]entity.Product, error) {
	vec, err := s.textEmbedder.EmbedText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("text embedding: %w", err)
	}

	results, err := s.textIndex.Search(vec, topK)
	if err != nil {
		return nil, fmt.Errorf("text index search: %w", err)
	}
	return s.resolve(results), nil
}

func (s *retrievalService) searchImage(ctx context.Context, query Query, topK int) ([]entity.Product, error) {
	var raw []byte
	var err error

	switch q := query.(type) {
	case ImageURLQuery:
		raw, err = embedding.FetchImage(ctx, q.URL, s.fetchTimeout)
		if err != nil {
			return nil, err
		}
	case ImageBytesQuery:
		raw = q.Data
	}

	png, err := embedding.DecodeImage(raw)
	if err != nil {
		return nil, err
	}

	vec, err := s.imageEmbedder.EmbedImage(ctx, png)
	if err != nil {
		return nil, fmt.Errorf("image embedding: %w", err)
	}

	results, err := s.imageIndex.Search(vec, topK)
	if err != nil {
		return nil, fmt.Errorf("image index search: %w", err)
	}
	return s.resolve(results), nil
}

// resolve maps index hits back to catalog products, preserving hit order.
// Ids outside the catalog are skipped; the stores are loaded together so
// that only happens on a mismatched index/catalog pair.
func (s *retrievalService) resolve(results []vectorindex.Result) []entity.Product {
	products := make([]entity.Product, 0, len(results))
	for _, r := range results {
		if r.Id < 0 || r.Id >= len(s.products) {
			s.logger.Warn("retrieval", "Index hit outside catalog range", map[string]interface{}{
				"id": r.Id, "catalog_size": len(s.products),
			})
			continue
		}
		products = append(products, s.products[r.Id])
	}
	return products
}
