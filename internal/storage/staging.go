package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

var (
	// ErrUnsupportedFormat is returned for uploads whose extension is not accepted.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrFileTooLarge is returned for uploads over the size limit.
	ErrFileTooLarge = errors.New("file too large")
)

// Staging is the directory where one batch of resumes is written before extraction.
// It is cleared at the start of every batch.
type Staging struct {
	dir      string
	formats  map[string]bool
	maxBytes int64
	logger   *zap.Logger
}

// Option configures Staging.
type Option func(*Staging)

// WithLogger sets the logger for staging operations.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Staging) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStaging returns a staging area in dir accepting the given extensions (with leading dot).
// maxBytes <= 0 disables the size check.
func NewStaging(dir string, formats []string, maxBytes int64, opts ...Option) *Staging {
	s := &Staging{
		dir:      dir,
		formats:  make(map[string]bool, len(formats)),
		maxBytes: maxBytes,
		logger:   zap.NewNop(),
	}
	for _, f := range formats {
		s.formats[strings.ToLower(f)] = true
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the staging directory.
func (s *Staging) Dir() string {
	return s.dir
}

// Accepts reports whether a file with this name may be staged.
func (s *Staging) Accepts(name string) bool {
	return s.formats[strings.ToLower(filepath.Ext(name))]
}

// Reset removes everything in the staging directory and recreates it empty.
func (s *Staging) Reset() error {
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("clear staging dir: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	s.logger.Debug("staging directory reset", zap.String("dir", s.dir))
	return nil
}

// MaxBytes returns the per-file size limit; 0 or less means unlimited.
func (s *Staging) MaxBytes() int64 {
	return s.maxBytes
}

// Check validates an upload's name and declared size without writing anything.
func (s *Staging) Check(name string, size int64) error {
	if !s.Accepts(name) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(name))
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		return fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrFileTooLarge, filepath.Base(name), size, s.maxBytes)
	}
	return nil
}

// Save writes r under the base name of name and returns the stored path.
// A name already present in this batch gets a numeric suffix.
func (s *Staging) Save(name string, r io.Reader) (string, error) {
	base := filepath.Base(name)
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	if err := s.Check(base, 0); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}

	path := s.uniquePath(base)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", base, err)
	}
	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && s.maxBytes > 0 && n > s.maxBytes {
		err = fmt.Errorf("%w: %s exceeds %d bytes", ErrFileTooLarge, base, s.maxBytes)
	}
	if err != nil {
		_ = os.Remove(path)
		return "", err
	}
	s.logger.Debug("staged file", zap.String("path", path), zap.Int64("bytes", n))
	return path, nil
}

func (s *Staging) uniquePath(base string) string {
	path := filepath.Join(s.dir, base)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for i := 2; ; i++ {
		path = filepath.Join(s.dir, fmt.Sprintf("%s-%d%s", stem, i, ext))
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path
		}
	}
}
