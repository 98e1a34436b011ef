// Package embedding turns text into fixed-length vectors for similarity ranking.
package embedding

import (
	"context"
	"errors"
	"fmt"
)

// ErrModelUnavailable is returned when the embedding model cannot be loaded or fails during inference.
var ErrModelUnavailable = errors.New("embedding model unavailable")

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	ModelID() string
	Close() error
}

// Unavailable wraps err so that errors.Is(err, ErrModelUnavailable) holds.
// Errors that already match are returned unchanged; nil stays nil.
func Unavailable(err error) error {
	if err == nil || errors.Is(err, ErrModelUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrModelUnavailable, err)
}

// embedEach calls embed for each text in order, stopping at the first error.
func embedEach(ctx context.Context, texts []string, embed func(context.Context, string) ([]float32, error)) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		emb, err := embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}
