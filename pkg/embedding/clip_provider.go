package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ClipProvider implements ImageEmbedder against a CLIP model server that
// accepts a PNG body on /embed/image and returns the image feature vector.
type ClipProvider struct {
	BaseURL string
	Client  *http.Client
}

var _ ImageEmbedder = &ClipProvider{}

func NewClipProvider(baseURL string) *ClipProvider {
	if baseURL == "" {
		baseURL = "http://localhost:8090"
	}
	return &ClipProvider{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type clipEmbeddingResponse struct {
	Embedding []float32 `json:"embedding"`
}

func (p *ClipProvider) EmbedImage(ctx context.Context, png []byte) ([]float32, error) {
	endpoint := fmt.Sprintf("%s/embed/image", p.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(png))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "image/png")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("clip embedding request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("clip embedding error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var clipResp clipEmbeddingResponse
	if err := json.Unmarshal(bodyBytes, &clipResp); err != nil {
		return nil, err
	}
	if len(clipResp.Embedding) == 0 {
		return nil, fmt.Errorf("clip embedding error: empty embedding")
	}

	return normalizeVector(clipResp.Embedding), nil
}
