package config

import "strings"

// Embedding providers.
const (
	ProviderHashing = "hashing"
	ProviderONNX    = "onnx"
	ProviderOllama  = "ollama"
)

// Pooling modes for ONNX models.
const (
	PoolingMean = "mean"
	PoolingNone = "none"
)

// Explanation providers.
const (
	ExplainOllama = "ollama"
	ExplainGemini = "gemini"
)

// DefaultTemperature is the sampling temperature used when none is configured.
const DefaultTemperature = 0.7

// Result and explanation counts used when none are configured.
const (
	DefaultResultsTopN = 10
	DefaultExplainTopN = 3
)

// Default on-disk location of the all-MiniLM-L6-v2 export.
const (
	DefaultModelPath     = "/usr/local/var/resumatch/models/all-MiniLM-L6-v2/model.onnx"
	DefaultTokenizerPath = "/usr/local/var/resumatch/models/all-MiniLM-L6-v2/tokenizer.json"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Log.Dir == "" {
		cfg.Log.Dir = "logs"
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	cfg.Embedding.Provider = strings.ToLower(strings.TrimSpace(cfg.Embedding.Provider))
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = ProviderONNX
	}
	if cfg.Embedding.ModelName == "" {
		cfg.Embedding.ModelName = "all-MiniLM-L6-v2"
	}
	if cfg.Embedding.Provider == ProviderONNX && cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = DefaultModelPath
		if cfg.Embedding.TokenizerPath == "" {
			cfg.Embedding.TokenizerPath = DefaultTokenizerPath
		}
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Embedding.Pooling == "" {
		cfg.Embedding.Pooling = PoolingMean
	}
	if cfg.Embedding.OutputName == "" {
		if cfg.Embedding.Pooling == PoolingMean {
			cfg.Embedding.OutputName = "last_hidden_state"
		} else {
			cfg.Embedding.OutputName = "output"
		}
	}
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = "http://localhost:11434"
	}
	cfg.Explain.Provider = strings.ToLower(strings.TrimSpace(cfg.Explain.Provider))
	if cfg.Explain.Provider == "" {
		cfg.Explain.Provider = ExplainOllama
	}
	if cfg.Explain.BaseURL == "" {
		cfg.Explain.BaseURL = "http://localhost:11434"
	}
	if cfg.Explain.Model == "" {
		cfg.Explain.Model = "llama3"
	}
	if cfg.Explain.TimeoutSeconds == 0 {
		cfg.Explain.TimeoutSeconds = 30
	}
	if cfg.Explain.ContextWindow == 0 {
		cfg.Explain.ContextWindow = 4096
	}
	if cfg.Explain.MaxResumeChars == 0 {
		cfg.Explain.MaxResumeChars = 4000
	}
	if cfg.Explain.GeminiModel == "" {
		cfg.Explain.GeminiModel = "gemini-2.5-flash"
	}
	if cfg.App.UploadDir == "" {
		cfg.App.UploadDir = "uploads"
	}
	if cfg.App.MaxFileSizeMB == 0 {
		cfg.App.MaxFileSizeMB = 10
	}
	if cfg.App.SupportedFormats == nil {
		cfg.App.SupportedFormats = []string{".pdf"}
	}
	for i, f := range cfg.App.SupportedFormats {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && !strings.HasPrefix(f, ".") {
			f = "." + f
		}
		cfg.App.SupportedFormats[i] = f
	}
	if cfg.App.ResultsLimitOptions == nil {
		cfg.App.ResultsLimitOptions = []int{5, 10, 25, 50}
	}
	if cfg.S3.Region == "" {
		cfg.S3.Region = "auto"
	}
}
