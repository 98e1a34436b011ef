package embedding

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Loader constructs an embedder. It is called by Lazy on first use.
type Loader func(ctx context.Context) (Embedder, error)

// Lazy loads an embedder on first use and reuses it for the life of the process.
// A failed load is reported as ErrModelUnavailable and attempted again on the next call.
type Lazy struct {
	load       Loader
	modelID    string
	dimensions int
	logger     *zap.Logger

	mu  sync.Mutex
	emb Embedder
}

// LazyOption configures a Lazy embedder.
type LazyOption func(*Lazy)

// WithLazyLogger sets the logger used for load events.
func WithLazyLogger(logger *zap.Logger) LazyOption {
	return func(l *Lazy) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLazy returns an embedder that calls load on first use. modelID and dimensions are
// reported before the model is loaded.
func NewLazy(modelID string, dimensions int, load Loader, opts ...LazyOption) *Lazy {
	l := &Lazy{load: load, modelID: modelID, dimensions: dimensions, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Lazy) get(ctx context.Context) (Embedder, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.emb != nil {
		return l.emb, nil
	}
	start := timeNow()
	emb, err := l.load(ctx)
	if err != nil {
		l.logger.Error("failed to load embedding model", zap.String("model", l.modelID), zap.Error(err))
		return nil, Unavailable(err)
	}
	l.logger.Info("embedding model loaded",
		zap.String("model", emb.ModelID()),
		zap.Duration("took", timeNow().Sub(start)))
	l.emb = emb
	return emb, nil
}

// Load forces the model to load now.
func (l *Lazy) Load(ctx context.Context) error {
	_, err := l.get(ctx)
	return err
}

// Loaded reports whether the model has been loaded.
func (l *Lazy) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.emb != nil
}

// Embed loads the model if needed and embeds text.
func (l *Lazy) Embed(ctx context.Context, text string) ([]float32, error) {
	emb, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	v, err := emb.Embed(ctx, text)
	return v, Unavailable(err)
}

// EmbedBatch loads the model if needed and embeds texts.
func (l *Lazy) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	emb, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	v, err := emb.EmbedBatch(ctx, texts)
	return v, Unavailable(err)
}

// Dimensions returns the loaded model's dimension, or the configured one before loading.
func (l *Lazy) Dimensions() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.emb != nil {
		if d := l.emb.Dimensions(); d > 0 {
			return d
		}
	}
	return l.dimensions
}

// ModelID returns the configured model identifier.
func (l *Lazy) ModelID() string {
	return l.modelID
}

// Close closes the loaded model, if any. A later call loads it again.
func (l *Lazy) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.emb == nil {
		return nil
	}
	err := l.emb.Close()
	l.emb = nil
	return err
}
