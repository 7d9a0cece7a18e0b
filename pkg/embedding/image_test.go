package embedding

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecodeImageNormalizesToPNG(t *testing.T) {
	out, err := DecodeImage(jpegBytes(t))
	assert.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(out))
	assert.NoError(t, err)
	assert.Equal(t, 4, decoded.Bounds().Dx())
}

func TestDecodeImageGarbage(t *testing.T) {
	_, err := DecodeImage([]byte("definitely not an image"))
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestFetchImage(t *testing.T) {
	payload := jpegBytes(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	data, err := FetchImage(context.Background(), srv.URL, 5*time.Second)
	assert.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestFetchImageNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := FetchImage(context.Background(), srv.URL, 5*time.Second)
	assert.True(t, errors.Is(err, ErrFetch))
}

func TestFetchImageUnreachable(t *testing.T) {
	_, err := FetchImage(context.Background(), "http://127.0.0.1:1/none", 500*time.Millisecond)
	assert.True(t, errors.Is(err, ErrFetch))
}
