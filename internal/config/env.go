package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads variables from the given .env files into the process environment.
// Missing files are ignored; variables already set are not overridden.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// LookupFunc looks up an environment variable.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides cfg with values from the process environment.
func ApplyEnv(cfg *Config) error {
	return ApplyEnvFrom(cfg, os.LookupEnv)
}

// ApplyEnvFrom overrides cfg with values returned by lookup.
// Returns an error naming the variable when a numeric value does not parse.
func ApplyEnvFrom(cfg *Config, lookup LookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = n
		return nil
	}

	str("MODEL_NAME", &cfg.Embedding.ModelName)
	str("EMBEDDING_PROVIDER", &cfg.Embedding.Provider)
	str("EMBEDDING_MODEL_PATH", &cfg.Embedding.ModelPath)
	str("EMBEDDING_TOKENIZER_PATH", &cfg.Embedding.TokenizerPath)
	str("EXPLAIN_PROVIDER", &cfg.Explain.Provider)
	str("OLLAMA_BASE_URL", &cfg.Explain.BaseURL)
	str("OLLAMA_MODEL", &cfg.Explain.Model)
	str("GEMINI_API_KEY", &cfg.Explain.GeminiAPIKey)
	str("GEMINI_MODEL", &cfg.Explain.GeminiModel)
	str("UPLOAD_DIR", &cfg.App.UploadDir)
	str("S3_BUCKET", &cfg.S3.Bucket)
	str("S3_REGION", &cfg.S3.Region)
	str("S3_ENDPOINT", &cfg.S3.Endpoint)
	str("S3_ACCESS_KEY", &cfg.S3.AccessKey)
	str("S3_SECRET_KEY", &cfg.S3.SecretKey)

	ints := []struct {
		key string
		dst *int
	}{
		{"OLLAMA_TIMEOUT", &cfg.Explain.TimeoutSeconds},
		{"OLLAMA_CONTEXT", &cfg.Explain.ContextWindow},
		{"MAX_RESUME_CHARS", &cfg.Explain.MaxResumeChars},
		{"MAX_FILE_SIZE_MB", &cfg.App.MaxFileSizeMB},
	}
	for _, it := range ints {
		if err := num(it.key, it.dst); err != nil {
			return err
		}
	}

	// Zero is meaningful for the top-N counts, so they are stored as pointers.
	counts := []struct {
		key string
		dst **int
	}{
		{"DEFAULT_TOP_N", &cfg.App.DefaultTopN},
		{"AI_ANALYSIS_TOP_N", &cfg.App.AIAnalysisTopN},
	}
	for _, c := range counts {
		if v, ok := lookup(c.key); !ok || v == "" {
			continue
		}
		var n int
		if err := num(c.key, &n); err != nil {
			return err
		}
		*c.dst = &n
	}

	if v, ok := lookup("OLLAMA_TEMPERATURE"); ok && v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid OLLAMA_TEMPERATURE %q: %w", v, err)
		}
		cfg.Explain.Temperature = &t
	}
	ApplyDefaults(cfg)
	return nil
}
