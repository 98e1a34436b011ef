package embedding

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/resumatch/internal/config"
)

type failingEmbedder struct {
	MockEmbedder
	err error
}

func (f *failingEmbedder) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, f.err
}

func TestLazy_loadsOnce(t *testing.T) {
	calls := 0
	l := NewLazy("mock", 8, func(context.Context) (Embedder, error) {
		calls++
		return NewMockEmbedder(8), nil
	})
	assert.False(t, l.Loaded())
	ctx := context.Background()
	_, err := l.Embed(ctx, "a")
	require.NoError(t, err)
	_, err = l.EmbedBatch(ctx, []string{"b", "c"})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, l.Loaded())
	assert.Equal(t, 8, l.Dimensions())
}

func TestLazy_loadFailureIsRetried(t *testing.T) {
	calls := 0
	boom := errors.New("model file missing")
	l := NewLazy("broken", 8, func(context.Context) (Embedder, error) {
		calls++
		if calls == 1 {
			return nil, boom
		}
		return NewMockEmbedder(8), nil
	})
	ctx := context.Background()

	_, err := l.Embed(ctx, "a")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrModelUnavailable)
	assert.ErrorIs(t, err, boom)
	assert.False(t, l.Loaded())

	_, err = l.Embed(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestLazy_inferenceFailureIsUnavailable(t *testing.T) {
	boom := errors.New("inference crashed")
	l := NewLazy("m", 8, func(context.Context) (Embedder, error) {
		return &failingEmbedder{MockEmbedder: *NewMockEmbedder(8), err: boom}, nil
	})
	_, err := l.EmbedBatch(context.Background(), []string{"x"})
	assert.ErrorIs(t, err, ErrModelUnavailable)
	assert.ErrorIs(t, err, boom)
}

func TestLazy_closeReloads(t *testing.T) {
	calls := 0
	l := NewLazy("mock", 4, func(context.Context) (Embedder, error) {
		calls++
		return NewMockEmbedder(4), nil
	})
	require.NoError(t, l.Load(context.Background()))
	require.NoError(t, l.Close())
	assert.False(t, l.Loaded())
	require.NoError(t, l.Load(context.Background()))
	assert.Equal(t, 2, calls)
}

func TestUnavailable(t *testing.T) {
	assert.NoError(t, Unavailable(nil))
	wrapped := Unavailable(errors.New("x"))
	assert.ErrorIs(t, wrapped, ErrModelUnavailable)
	assert.Equal(t, wrapped, Unavailable(wrapped))
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.EmbeddingConfig
		wantID  string
		wantErr bool
	}{
		{"hashing", config.EmbeddingConfig{Provider: config.ProviderHashing, Dimensions: 128}, "hashing-128", false},
		{"ollama", config.EmbeddingConfig{Provider: config.ProviderOllama, ModelName: "all-minilm", BaseURL: "http://localhost:11434"}, "all-minilm", false},
		{"onnx", config.EmbeddingConfig{Provider: config.ProviderONNX, ModelName: "all-MiniLM-L6-v2"}, "all-MiniLM-L6-v2", false},
		{"unknown", config.EmbeddingConfig{Provider: "word2vec"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := New(tt.cfg, nil)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, e.ModelID())
			assert.False(t, e.Loaded(), "construction must not load the model")
		})
	}
}

func TestNew_onnxMissingModelIsUnavailable(t *testing.T) {
	e, err := New(config.EmbeddingConfig{Provider: config.ProviderONNX, ModelName: "m"}, nil)
	require.NoError(t, err)
	_, err = e.Embed(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

func TestNew_defaultConfigUsesONNX(t *testing.T) {
	cfg := config.Default().Embedding
	cfg.ModelPath = filepath.Join(t.TempDir(), "all-MiniLM-L6-v2", "model.onnx")
	cfg.TokenizerPath = filepath.Join(t.TempDir(), "all-MiniLM-L6-v2", "tokenizer.json")

	e, err := New(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "all-MiniLM-L6-v2", e.ModelID())
	assert.Equal(t, 384, e.Dimensions())

	_, err = e.Embed(context.Background(), "python developer")
	assert.ErrorIs(t, err, ErrModelUnavailable)
	assert.False(t, e.Loaded())
}
