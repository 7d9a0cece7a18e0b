package embedding

import (
	"context"
	"errors"
)

// ErrFetch marks a failure to acquire image bytes from a URL (network error
// or non-2xx status).
var ErrFetch = errors.New("embedding: image fetch failed")

// ErrDecode marks image bytes that could not be decoded.
var ErrDecode = errors.New("embedding: image decode failed")

// TextEmbedder converts a text query into a vector in the text embedding
// space. Deterministic for a fixed model version.
type TextEmbedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// ImageEmbedder converts a normalized PNG payload into a vector in the image
// embedding space.
type ImageEmbedder interface {
	EmbedImage(ctx context.Context, png []byte) ([]float32, error)
}
