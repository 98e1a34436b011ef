package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/resumatch/internal/config"
)

func TestOllamaEmbedder_EmbedBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		var req ollamaEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "all-minilm", req.Model)
		out := ollamaEmbedResponse{}
		for i := range req.Input {
			out.Embeddings = append(out.Embeddings, []float32{float32(i), 1, 0})
		}
		_ = json.NewEncoder(w).Encode(out)
	}))
	defer srv.Close()

	e := NewOllamaEmbedder(srv.URL+"/", "all-minilm", 5*time.Second)
	vs, err := e.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, vs, 2)
	assert.Equal(t, []float32{1, 1, 0}, vs[1])
	assert.Equal(t, 3, e.Dimensions())
	assert.Equal(t, "all-minilm", e.ModelID())

	v, err := e.Embed(context.Background(), "solo")
	require.NoError(t, err)
	assert.Len(t, v, 3)
}

func TestOllamaEmbedder_defaultHasNoClientTimeout(t *testing.T) {
	cfg := config.Default().Embedding
	e := NewOllamaEmbedder(cfg.BaseURL, cfg.ModelName, cfg.Timeout())
	assert.Zero(t, e.client.Timeout)
}

func TestOllamaEmbedder_errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"status", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not found", http.StatusNotFound)
		}},
		{"count mismatch", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(ollamaEmbedResponse{Embeddings: [][]float32{{1}}})
		}},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("{"))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			e := NewOllamaEmbedder(srv.URL, "m", time.Second)
			_, err := e.EmbedBatch(context.Background(), []string{"a", "b"})
			assert.Error(t, err)
		})
	}
}

func TestOllamaEmbedder_emptyBatch(t *testing.T) {
	e := NewOllamaEmbedder("http://127.0.0.1:1", "m", time.Second)
	vs, err := e.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vs)
}
