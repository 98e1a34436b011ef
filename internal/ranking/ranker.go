// Package ranking orders candidates by semantic similarity to a job description.
package ranking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/resumatch/internal/embedding"
	"github.com/hyperjump/resumatch/internal/models"
	"github.com/hyperjump/resumatch/internal/vector"
)

// ErrEmptyQuery is returned when the job description is blank.
var ErrEmptyQuery = errors.New("query cannot be empty")

// Ranker scores candidates by cosine similarity between the query embedding and each candidate embedding.
type Ranker struct {
	embedder embedding.Embedder
	logger   *zap.Logger
}

// Option configures a Ranker.
type Option func(*Ranker)

// WithLogger sets the logger for the ranker.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Ranker) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRanker returns a ranker that embeds with embedder.
func NewRanker(embedder embedding.Embedder, opts ...Option) *Ranker {
	r := &Ranker{embedder: embedder, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rank embeds query and every candidate text with the same embedder and returns one result per
// candidate, ordered by descending score. Candidates with equal scores keep their input order.
// Any embedding failure fails the whole call with an error matching embedding.ErrModelUnavailable;
// no partial ranking is returned.
func (r *Ranker) Rank(ctx context.Context, query string, candidates []models.Candidate) ([]models.RankedResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if len(candidates) == 0 {
		return []models.RankedResult{}, nil
	}

	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, r.fail(ctx, "failed to embed query", err)
	}

	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.Text
	}
	vecs, err := r.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, r.fail(ctx, "failed to embed candidates", err)
	}
	if len(vecs) != len(candidates) {
		return nil, embedding.Unavailable(fmt.Errorf("embedder returned %d vectors for %d candidates", len(vecs), len(candidates)))
	}

	queryZero := vector.IsZero(queryVec)
	if queryZero {
		r.logger.Debug("query embedding has zero norm; all scores are 0")
	}

	results := make([]models.RankedResult, len(candidates))
	for i, c := range candidates {
		if len(vecs[i]) != len(queryVec) {
			return nil, embedding.Unavailable(fmt.Errorf("candidate %s has dimension %d, query has %d", c.ID, len(vecs[i]), len(queryVec)))
		}
		if !queryZero && vector.IsZero(vecs[i]) {
			r.logger.Debug("candidate embedding has zero norm", zap.String("candidate", c.ID))
		}
		results[i] = models.RankedResult{
			ID:    c.ID,
			Text:  c.Text,
			Score: vector.CosineSimilarity(queryVec, vecs[i]),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	for i := range results {
		results[i].Rank = i + 1
	}

	r.logger.Debug("ranked candidates",
		zap.Int("candidates", len(results)),
		zap.String("model", r.embedder.ModelID()))
	return results, nil
}

func (r *Ranker) fail(ctx context.Context, msg string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	r.logger.Error(msg, zap.Error(err))
	return embedding.Unavailable(fmt.Errorf("%s: %w", msg, err))
}
