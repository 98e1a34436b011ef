// Package config provides configuration loading and structs for the resumatch server and CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Log       LogConfig       `yaml:"log"`
	Server    ServerConfig    `yaml:"server"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Explain   ExplainConfig   `yaml:"explain"`
	App       AppConfig       `yaml:"app"`
	S3        S3Config        `yaml:"s3"`
}

// LogConfig holds log output settings.
type LogConfig struct {
	ToFile bool   `yaml:"to_file"`
	Dir    string `yaml:"dir"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// EmbeddingConfig holds embedding model settings.
type EmbeddingConfig struct {
	// Provider is one of "hashing", "onnx" or "ollama".
	Provider      string `yaml:"provider"`
	ModelName     string `yaml:"model_name"`
	ModelPath     string `yaml:"model_path"`
	TokenizerPath string `yaml:"tokenizer_path"`
	Dimensions    int    `yaml:"dimensions"`
	MaxTokens     int    `yaml:"max_tokens"`
	CacheSize     int    `yaml:"cache_size"`
	// Pooling is "mean" (average last_hidden_state over the attention mask) or "none".
	Pooling    string `yaml:"pooling"`
	OutputName string `yaml:"output_name"`
	BaseURL    string `yaml:"base_url"`
	// TimeoutSeconds bounds each HTTP embedding call; 0 means no limit.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// Timeout returns the embedding request timeout for HTTP providers. Zero disables it.
func (e *EmbeddingConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutSeconds) * time.Second
}

// ExplainConfig holds settings for the language model that explains matches.
type ExplainConfig struct {
	// Provider is "ollama" or "gemini".
	Provider       string   `yaml:"provider"`
	BaseURL        string   `yaml:"base_url"`
	Model          string   `yaml:"model"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
	Temperature    *float64 `yaml:"temperature"`
	ContextWindow  int      `yaml:"context_window"`
	MaxResumeChars int      `yaml:"max_resume_chars"`
	GeminiAPIKey   string   `yaml:"gemini_api_key"`
	GeminiModel    string   `yaml:"gemini_model"`
}

// Timeout returns the explanation call timeout.
func (e *ExplainConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutSeconds) * time.Second
}

// TemperatureOrDefault returns the sampling temperature; defaults to 0.7 when unset.
func (e *ExplainConfig) TemperatureOrDefault() float64 {
	if e.Temperature != nil {
		return *e.Temperature
	}
	return DefaultTemperature
}

// AppConfig holds upload and display settings.
type AppConfig struct {
	UploadDir        string   `yaml:"upload_dir"`
	MaxFileSizeMB    int      `yaml:"max_file_size_mb"`
	SupportedFormats []string `yaml:"supported_formats"`
	// DefaultTopN is the number of results shown; 0 shows all.
	DefaultTopN *int `yaml:"default_top_n"`
	// AIAnalysisTopN is the number of top results offered explanations; 0 disables them.
	AIAnalysisTopN      *int  `yaml:"ai_analysis_top_n"`
	ResultsLimitOptions []int `yaml:"results_limit_options"`
}

// ResultsTopN returns the default result limit; 10 when unset.
func (a *AppConfig) ResultsTopN() int {
	if a.DefaultTopN != nil {
		return *a.DefaultTopN
	}
	return DefaultResultsTopN
}

// ExplainTopN returns how many top results can be explained; 3 when unset.
func (a *AppConfig) ExplainTopN() int {
	if a.AIAnalysisTopN != nil {
		return *a.AIAnalysisTopN
	}
	return DefaultExplainTopN
}

// MaxFileSizeBytes returns the upload size limit in bytes.
func (a *AppConfig) MaxFileSizeBytes() int64 {
	return int64(a.MaxFileSizeMB) << 20
}

// S3Config holds settings for fetching resumes from S3-compatible object storage.
type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// Enabled reports whether a bucket is configured.
func (s *S3Config) Enabled() bool {
	return s.Bucket != ""
}

// Default returns a config with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.App.UploadDir = expandPath(cfg.App.UploadDir, configDir)
	cfg.Log.Dir = expandPath(cfg.Log.Dir, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	cfg.Embedding.TokenizerPath = expandPath(cfg.Embedding.TokenizerPath, configDir)

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks enumerated and numeric settings.
func (c *Config) Validate() error {
	switch c.Embedding.Provider {
	case ProviderHashing, ProviderONNX, ProviderOllama:
	default:
		return fmt.Errorf("unknown embedding provider %q (supported: hashing, onnx, ollama)", c.Embedding.Provider)
	}
	switch c.Embedding.Pooling {
	case PoolingMean, PoolingNone:
	default:
		return fmt.Errorf("unknown pooling %q (supported: mean, none)", c.Embedding.Pooling)
	}
	switch c.Explain.Provider {
	case ExplainOllama, ExplainGemini:
	default:
		return fmt.Errorf("unknown explain provider %q (supported: ollama, gemini)", c.Explain.Provider)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", c.Server.Port)
	}
	if c.App.ResultsTopN() < 0 {
		return fmt.Errorf("default_top_n must not be negative")
	}
	if c.App.ExplainTopN() < 0 {
		return fmt.Errorf("ai_analysis_top_n must not be negative")
	}
	if t := c.Explain.TemperatureOrDefault(); t < 0 {
		return fmt.Errorf("temperature must not be negative: %v", t)
	}
	return nil
}

// expandPath converts a path to absolute. "~/" is relative to the home directory;
// other relative paths are relative to configDir. Empty paths stay empty.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
		return path
	}
	return filepath.Join(configDir, path)
}
