package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/resumatch/internal/config"
)

var timeNow = time.Now

// New returns a lazily loaded embedder for the configured provider.
// The model is not touched until the first Embed call.
func New(cfg config.EmbeddingConfig, logger *zap.Logger) (*Lazy, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var load Loader
	modelID := cfg.ModelName
	switch cfg.Provider {
	case config.ProviderHashing:
		dims := cfg.Dimensions
		load = func(context.Context) (Embedder, error) {
			return NewHashingEmbedder(dims), nil
		}
		modelID = NewHashingEmbedder(dims).ModelID()
	case config.ProviderONNX, "":
		opts := ONNXOptionsFromConfig(cfg)
		load = func(context.Context) (Embedder, error) {
			return NewONNXEmbedder(opts)
		}
	case config.ProviderOllama:
		baseURL, model, timeout := cfg.BaseURL, cfg.ModelName, cfg.Timeout()
		load = func(context.Context) (Embedder, error) {
			return NewOllamaEmbedder(baseURL, model, timeout), nil
		}
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
	logger.Debug("embedding provider configured",
		zap.String("provider", cfg.Provider),
		zap.String("model", modelID))
	return NewLazy(modelID, cfg.Dimensions, load, WithLazyLogger(logger)), nil
}
