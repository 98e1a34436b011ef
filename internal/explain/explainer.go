// Package explain asks a language model why a candidate matches a job description.
package explain

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrorMarker prefixes every explanation that reports a failure.
const ErrorMarker = "⚠️ Error"

// NoResponse is returned when the model answers with an empty response.
const NoResponse = "No response generated."

// DefaultTimeout bounds one explanation call when none is configured.
const DefaultTimeout = 30 * time.Second

// Generator completes a prompt with a language model.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Explainer builds the recruiter prompt and turns every outcome into display text.
type Explainer struct {
	gen      Generator
	timeout  time.Duration
	maxChars int
	logger   *zap.Logger
}

// Option configures an Explainer.
type Option func(*Explainer)

// WithLogger sets the logger for the explainer.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Explainer) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Explainer) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithMaxResumeChars sets how many characters of the resume are sent to the model.
func WithMaxResumeChars(n int) Option {
	return func(e *Explainer) {
		if n > 0 {
			e.maxChars = n
		}
	}
}

// NewExplainer returns an explainer backed by gen.
func NewExplainer(gen Generator, opts ...Option) *Explainer {
	e := &Explainer{
		gen:      gen,
		timeout:  DefaultTimeout,
		maxChars: DefaultMaxResumeChars,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Model returns the generator's model name.
func (e *Explainer) Model() string {
	return e.gen.Model()
}

// Explain returns the model's explanation of why candidateText matches query.
// It never fails: transport errors, timeouts and error statuses come back as text starting
// with ErrorMarker so callers can show them inline.
func (e *Explainer) Explain(ctx context.Context, candidateText, query string) string {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	out, err := e.gen.Generate(ctx, BuildPrompt(candidateText, query, e.maxChars))
	if err != nil {
		e.logger.Warn("explanation failed",
			zap.String("model", e.gen.Model()),
			zap.Duration("took", time.Since(start)),
			zap.Error(err))
		return e.describe(err)
	}
	e.logger.Debug("explanation generated",
		zap.String("model", e.gen.Model()),
		zap.Duration("took", time.Since(start)))
	if strings.TrimSpace(out) == "" {
		return NoResponse
	}
	return out
}

func (e *Explainer) describe(err error) string {
	var statusErr *StatusError
	var netErr net.Error
	switch {
	case errors.As(err, &statusErr):
		return fmt.Sprintf("%s %d: %s", ErrorMarker, statusErr.Code, statusErr.Body)
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Sprintf("%s: request timed out after %s", ErrorMarker, e.timeout)
	case errors.Is(err, ErrOllamaNotRunning):
		return ErrorMarker + ": Ollama is not running. Please launch the Ollama app."
	default:
		return fmt.Sprintf("%s: %v", ErrorMarker, err)
	}
}

// IsErrorText reports whether an explanation describes a failure.
func IsErrorText(s string) bool {
	return strings.HasPrefix(s, ErrorMarker)
}
