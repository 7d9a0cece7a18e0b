package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOllamaProviderEmbedText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)

		var req ollamaEmbeddingRequest
		json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, "all-minilm", req.Model)
		assert.Equal(t, "red shoes", req.Prompt)

		json.NewEncoder(w).Encode(ollamaEmbeddingResponse{Embedding: []float64{3, 4}})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "")
	vec, err := p.EmbedText(context.Background(), "red shoes")
	assert.NoError(t, err)
	assert.Len(t, vec, 2)

	// Normalized: (3,4)/5
	assert.InDelta(t, 0.6, float64(vec[0]), 1e-6)
	assert.InDelta(t, 0.8, float64(vec[1]), 1e-6)
}

func TestOllamaProviderUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "")
	_, err := p.EmbedText(context.Background(), "x")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
}

func TestNormalizeVector(t *testing.T) {
	vec := normalizeVector([]float32{1, 1})
	var mag float64
	for _, v := range vec {
		mag += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(mag), 1e-6)

	// Zero vector passes through untouched.
	assert.Equal(t, []float32{0, 0}, normalizeVector([]float32{0, 0}))
}

func TestCachedTextEmbedderMemoizes(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(ollamaEmbeddingResponse{Embedding: []float64{1, 0}})
	}))
	defer srv.Close()

	c := NewCachedTextEmbedder(NewOllamaProvider(srv.URL, ""))
	for i := 0; i < 3; i++ {
		vec, err := c.EmbedText(context.Background(), "same query")
		assert.NoError(t, err)
		assert.Len(t, vec, 2)
	}
	assert.Equal(t, 1, calls)
}
