package embedding

import (
	"context"
	"fmt"

	"github.com/hyperjump/resumatch/pkg/utils"
)

// HashingEmbedder is a feature-hashing bag-of-words embedder. Each word is hashed into one of
// Dimensions buckets and counted; the count vector is L2 normalized. Cosine similarity between
// two hashed vectors then measures lexical overlap. It needs no model files.
type HashingEmbedder struct {
	dimensions int
}

// NewHashingEmbedder returns a hashing embedder with the given number of buckets.
func NewHashingEmbedder(dimensions int) *HashingEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &HashingEmbedder{dimensions: dimensions}
}

// Embed returns the normalized term-count vector of text. Text without words yields the zero vector.
func (e *HashingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	emb := make([]float32, e.dimensions)
	for _, w := range Words(text) {
		emb[HashString(w)%e.dimensions]++
	}
	utils.NormalizeL2(emb)
	return emb, nil
}

// EmbedBatch calls Embed for each text.
func (e *HashingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedEach(ctx, texts, e.Embed)
}

// Dimensions returns the number of hash buckets.
func (e *HashingEmbedder) Dimensions() int {
	return e.dimensions
}

// ModelID identifies the embedder and its bucket count.
func (e *HashingEmbedder) ModelID() string {
	return fmt.Sprintf("hashing-%d", e.dimensions)
}

// Close is a no-op.
func (e *HashingEmbedder) Close() error {
	return nil
}
