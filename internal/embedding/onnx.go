//go:build cgo
// +build cgo

package embedding

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/hyperjump/resumatch/internal/config"
	"github.com/hyperjump/resumatch/pkg/utils"
)

var (
	runtimeMu    sync.Mutex
	runtimeReady bool
)

// initializeRuntime initializes the ONNX Runtime environment once per process.
// A failed initialization is retried on the next call.
func initializeRuntime() error {
	runtimeMu.Lock()
	defer runtimeMu.Unlock()
	if runtimeReady {
		return nil
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("failed to initialize ONNX runtime: %w", err)
	}
	runtimeReady = true
	return nil
}

// ONNXEmbedder uses ONNX Runtime to produce embeddings. It requires CGO and the onnxruntime shared library.
type ONNXEmbedder struct {
	session    *ort.AdvancedSession
	opts       ONNXOptions
	cache      *EmbeddingCache
	tokenizer  Tokenizer
	outputSize int
	// Pre-allocated tensors for Run(); we update input data and read output.
	inputIDsTensor      *ort.Tensor[int64]
	attentionMaskTensor *ort.Tensor[int64]
	tokenTypeIDsTensor  *ort.Tensor[int64]
	outputTensor        *ort.Tensor[float32]
	mu                  sync.Mutex
}

// NewONNXEmbedder creates an ONNX embedder. InitializeEnvironment is called if not already done.
func NewONNXEmbedder(opts ONNXOptions) (*ONNXEmbedder, error) {
	if opts.ModelPath == "" {
		return nil, fmt.Errorf("onnx model path is not configured")
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 256
	}
	if opts.Dimensions <= 0 {
		opts.Dimensions = 384
	}

	var tokenizer Tokenizer = &HashTokenizer{}
	if opts.TokenizerPath != "" {
		hf, err := LoadHFTokenizer(opts.TokenizerPath)
		if err != nil {
			return nil, err
		}
		tokenizer = hf
	}

	if err := initializeRuntime(); err != nil {
		return nil, err
	}

	maxTokens := int64(opts.MaxTokens)
	outputShape := ort.NewShape(1, int64(opts.Dimensions))
	outputSize := opts.Dimensions
	if opts.Pooling == config.PoolingMean {
		outputShape = ort.NewShape(1, maxTokens, int64(opts.Dimensions))
		outputSize = opts.MaxTokens * opts.Dimensions
	}

	inputIDsTensor, err := ort.NewTensor(ort.NewShape(1, maxTokens), make([]int64, maxTokens))
	if err != nil {
		return nil, fmt.Errorf("failed to create input_ids tensor: %w", err)
	}
	attentionMaskTensor, err := ort.NewTensor(ort.NewShape(1, maxTokens), make([]int64, maxTokens))
	if err != nil {
		inputIDsTensor.Destroy()
		return nil, fmt.Errorf("failed to create attention_mask tensor: %w", err)
	}
	tokenTypeIDsTensor, err := ort.NewTensor(ort.NewShape(1, maxTokens), make([]int64, maxTokens))
	if err != nil {
		inputIDsTensor.Destroy()
		attentionMaskTensor.Destroy()
		return nil, fmt.Errorf("failed to create token_type_ids tensor: %w", err)
	}
	outputTensor, err := ort.NewTensor(outputShape, make([]float32, outputSize))
	if err != nil {
		inputIDsTensor.Destroy()
		attentionMaskTensor.Destroy()
		tokenTypeIDsTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	inputs := []ort.ArbitraryTensor{inputIDsTensor, attentionMaskTensor, tokenTypeIDsTensor}
	outputs := []ort.ArbitraryTensor{outputTensor}
	session, err := ort.NewAdvancedSession(
		opts.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{opts.OutputName},
		inputs,
		outputs,
		nil,
	)
	if err != nil {
		inputIDsTensor.Destroy()
		attentionMaskTensor.Destroy()
		tokenTypeIDsTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session for %s: %w", opts.ModelPath, err)
	}

	return &ONNXEmbedder{
		session:             session,
		opts:                opts,
		cache:               NewEmbeddingCache(opts.CacheSize),
		tokenizer:           tokenizer,
		outputSize:          outputSize,
		inputIDsTensor:      inputIDsTensor,
		attentionMaskTensor: attentionMaskTensor,
		tokenTypeIDsTensor:  tokenTypeIDsTensor,
		outputTensor:        outputTensor,
	}, nil
}

// Embed returns the embedding for text, using cache when available.
func (e *ONNXEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := e.cache.Get(text); ok {
		return cached, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	enc, err := e.tokenizer.Tokenize(text, e.opts.MaxTokens)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil, fmt.Errorf("onnx embedder is closed")
	}

	copy(e.inputIDsTensor.GetData(), enc.InputIDs)
	copy(e.attentionMaskTensor.GetData(), enc.AttentionMask)
	copy(e.tokenTypeIDsTensor.GetData(), enc.TokenTypeIDs)

	if err := e.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	outputData := e.outputTensor.GetData()
	var embedding []float32
	if e.opts.Pooling == config.PoolingMean {
		embedding = MeanPool(outputData[:e.outputSize], enc.AttentionMask, e.opts.Dimensions)
	} else {
		embedding = make([]float32, e.opts.Dimensions)
		copy(embedding, outputData[:e.opts.Dimensions])
	}

	utils.NormalizeL2(embedding)
	e.cache.Set(text, embedding)
	return embedding, nil
}

// EmbedBatch calls Embed for each text.
func (e *ONNXEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedEach(ctx, texts, e.Embed)
}

// Dimensions returns the embedding dimension.
func (e *ONNXEmbedder) Dimensions() int {
	return e.opts.Dimensions
}

// ModelID returns the configured model name.
func (e *ONNXEmbedder) ModelID() string {
	return e.opts.ModelID
}

// Close destroys the session and tensors.
func (e *ONNXEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	var err error
	if e.session != nil {
		err = e.session.Destroy()
		e.session = nil
	}
	if e.inputIDsTensor != nil {
		_ = e.inputIDsTensor.Destroy()
		e.inputIDsTensor = nil
	}
	if e.attentionMaskTensor != nil {
		_ = e.attentionMaskTensor.Destroy()
		e.attentionMaskTensor = nil
	}
	if e.tokenTypeIDsTensor != nil {
		_ = e.tokenTypeIDsTensor.Destroy()
		e.tokenTypeIDsTensor = nil
	}
	if e.outputTensor != nil {
		_ = e.outputTensor.Destroy()
		e.outputTensor = nil
	}
	return err
}
