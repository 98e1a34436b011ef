package explain

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/resumatch/internal/config"
)

// NewFromConfig returns an explainer for the configured provider.
func NewFromConfig(ctx context.Context, cfg config.ExplainConfig, logger *zap.Logger) (*Explainer, error) {
	var gen Generator
	switch cfg.Provider {
	case config.ExplainOllama, "":
		gen = NewOllamaGenerator(cfg.BaseURL, cfg.Model, cfg.TemperatureOrDefault(), cfg.ContextWindow)
	case config.ExplainGemini:
		g, err := NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.TemperatureOrDefault())
		if err != nil {
			return nil, err
		}
		gen = g
	default:
		return nil, fmt.Errorf("unknown explain provider %q", cfg.Provider)
	}
	return NewExplainer(gen,
		WithLogger(logger),
		WithTimeout(cfg.Timeout()),
		WithMaxResumeChars(cfg.MaxResumeChars),
	), nil
}
