package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupMap(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestApplyEnvFrom(t *testing.T) {
	cfg := Default()
	err := ApplyEnvFrom(cfg, lookupMap(map[string]string{
		"MODEL_NAME":         "paraphrase-MiniLM",
		"EMBEDDING_PROVIDER": "ONNX",
		"OLLAMA_BASE_URL":    "http://ollama:11434",
		"OLLAMA_MODEL":       "mistral",
		"OLLAMA_TIMEOUT":     "45",
		"OLLAMA_TEMPERATURE": "0.2",
		"OLLAMA_CONTEXT":     "8192",
		"MAX_RESUME_CHARS":   "2000",
		"UPLOAD_DIR":         "/tmp/up",
		"MAX_FILE_SIZE_MB":   "5",
		"DEFAULT_TOP_N":      "25",
		"AI_ANALYSIS_TOP_N":  "5",
	}))
	require.NoError(t, err)

	assert.Equal(t, "paraphrase-MiniLM", cfg.Embedding.ModelName)
	assert.Equal(t, ProviderONNX, cfg.Embedding.Provider)
	assert.Equal(t, "http://ollama:11434", cfg.Explain.BaseURL)
	assert.Equal(t, "mistral", cfg.Explain.Model)
	assert.Equal(t, 45, cfg.Explain.TimeoutSeconds)
	assert.InDelta(t, 0.2, cfg.Explain.TemperatureOrDefault(), 1e-9)
	assert.Equal(t, 8192, cfg.Explain.ContextWindow)
	assert.Equal(t, 2000, cfg.Explain.MaxResumeChars)
	assert.Equal(t, "/tmp/up", cfg.App.UploadDir)
	assert.Equal(t, 5, cfg.App.MaxFileSizeMB)
	assert.Equal(t, 25, cfg.App.ResultsTopN())
	assert.Equal(t, 5, cfg.App.ExplainTopN())
}

func TestApplyEnvFrom_zeroTopN(t *testing.T) {
	cfg := Default()
	require.NoError(t, ApplyEnvFrom(cfg, lookupMap(map[string]string{
		"DEFAULT_TOP_N":     "0",
		"AI_ANALYSIS_TOP_N": "0",
	})))
	require.NotNil(t, cfg.App.DefaultTopN)
	require.NotNil(t, cfg.App.AIAnalysisTopN)
	assert.Equal(t, 0, cfg.App.ResultsTopN())
	assert.Equal(t, 0, cfg.App.ExplainTopN())
}

func TestApplyEnvFrom_negativeTopNFailsValidation(t *testing.T) {
	cfg := Default()
	require.NoError(t, ApplyEnvFrom(cfg, lookupMap(map[string]string{"AI_ANALYSIS_TOP_N": "-1"})))
	assert.Error(t, cfg.Validate())
}

func TestApplyEnvFrom_emptyValuesIgnored(t *testing.T) {
	cfg := Default()
	require.NoError(t, ApplyEnvFrom(cfg, lookupMap(map[string]string{"OLLAMA_MODEL": ""})))
	assert.Equal(t, "llama3", cfg.Explain.Model)
}

func TestApplyEnvFrom_invalidNumber(t *testing.T) {
	for _, key := range []string{"OLLAMA_TIMEOUT", "DEFAULT_TOP_N", "OLLAMA_TEMPERATURE"} {
		t.Run(key, func(t *testing.T) {
			err := ApplyEnvFrom(Default(), lookupMap(map[string]string{key: "abc"}))
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("RESUMATCH_TEST_DOTENV=loaded\n"), 0600))
	t.Setenv("RESUMATCH_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("RESUMATCH_TEST_DOTENV"))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("RESUMATCH_TEST_DOTENV"))
}

func TestLoadDotEnv_missingFileIgnored(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}
