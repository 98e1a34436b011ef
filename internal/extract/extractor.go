// Package extract provides text extraction from resume documents.
package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/resumatch/internal/models"
)

// ErrUnsupported is returned for file extensions the extractor cannot read.
var ErrUnsupported = errors.New("unsupported file format")

// ErrNoText is reported when a document parses but contains no text.
var ErrNoText = errors.New("no extractable text")

// SupportedExtensions lists every extension Extract understands.
var SupportedExtensions = []string{".pdf", ".docx", ".odt", ".rtf", ".txt", ".md"}

// IsSupported reports whether ext (with leading dot, any case) can be extracted.
func IsSupported(ext string) bool {
	ext = strings.ToLower(ext)
	for _, s := range SupportedExtensions {
		if s == ext {
			return true
		}
	}
	return false
}

// Extractor extracts plain text from document files.
type Extractor struct {
	logger *zap.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger for skipped files.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExtractor returns a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract reads the file at path and returns its text content.
// Returns an error if the file cannot be read or parsed, or the format is unsupported.
func (e *Extractor) Extract(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	return e.ExtractBytes(content, ext)
}

// ExtractBytes extracts text from content based on the given extension.
// ext should include the leading dot (e.g. ".pdf").
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	switch strings.ToLower(ext) {
	case ".pdf":
		return extractPDF(content)
	case ".docx":
		return extractDOCX(content)
	case ".odt", ".rtf":
		return extractOffice(content, ext)
	case ".txt", ".md":
		return extractPlain(content)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}

// LoadCandidates extracts every path in order. Files that cannot be read or parsed, or that
// yield only whitespace, are skipped and logged; the returned candidates may therefore be
// fewer than paths. A single bad file never fails the batch.
func (e *Extractor) LoadCandidates(ctx context.Context, paths []string) ([]models.Candidate, []models.ExtractionSkip) {
	candidates := make([]models.Candidate, 0, len(paths))
	var skipped []models.ExtractionSkip
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			skipped = append(skipped, models.ExtractionSkip{Path: path, Reason: err.Error()})
			continue
		}
		text, err := e.Extract(path)
		if err == nil && strings.TrimSpace(text) == "" {
			err = ErrNoText
		}
		if err != nil {
			e.logger.Warn("skipping resume", zap.String("path", path), zap.Error(err))
			skipped = append(skipped, models.ExtractionSkip{Path: path, Reason: err.Error()})
			continue
		}
		candidates = append(candidates, models.Candidate{ID: path, Text: strings.TrimSpace(text)})
	}
	e.logger.Info("extracted resumes",
		zap.Int("loaded", len(candidates)),
		zap.Int("skipped", len(skipped)))
	return candidates, skipped
}
