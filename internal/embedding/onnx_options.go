package embedding

import "github.com/hyperjump/resumatch/internal/config"

// ONNXOptions configures an ONNX sentence embedder.
type ONNXOptions struct {
	ModelPath     string
	TokenizerPath string
	// OutputName is the graph output read after inference.
	OutputName string
	// Pooling is config.PoolingMean to average token vectors over the attention mask,
	// or config.PoolingNone when the output is already one vector per sentence.
	Pooling    string
	ModelID    string
	Dimensions int
	MaxTokens  int
	CacheSize  int
}

// ONNXOptionsFromConfig maps embedding config to ONNX options.
func ONNXOptionsFromConfig(cfg config.EmbeddingConfig) ONNXOptions {
	return ONNXOptions{
		ModelPath:     cfg.ModelPath,
		TokenizerPath: cfg.TokenizerPath,
		OutputName:    cfg.OutputName,
		Pooling:       cfg.Pooling,
		ModelID:       cfg.ModelName,
		Dimensions:    cfg.Dimensions,
		MaxTokens:     cfg.MaxTokens,
		CacheSize:     cfg.CacheSize,
	}
}

// MeanPool averages token vectors of a (tokens x dims) row-major matrix over positions
// where mask is non-zero. Returns the zero vector when the mask is empty.
func MeanPool(hidden []float32, mask []int64, dims int) []float32 {
	out := make([]float32, dims)
	var count float32
	for t, m := range mask {
		if m == 0 {
			continue
		}
		row := hidden[t*dims : (t+1)*dims]
		for i, v := range row {
			out[i] += v
		}
		count++
	}
	if count == 0 {
		return out
	}
	for i := range out {
		out[i] /= count
	}
	return out
}
