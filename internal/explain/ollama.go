package explain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
)

// ErrOllamaNotRunning is returned when nothing accepts connections at the Ollama address.
var ErrOllamaNotRunning = errors.New("ollama is not running")

// StatusError is returned when the model server answers with a non-200 status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

// OllamaGenerator completes prompts with POST {base_url}/api/generate, non-streaming.
type OllamaGenerator struct {
	baseURL     string
	model       string
	temperature float64
	numCtx      int
	client      *http.Client
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumCtx      int     `json:"num_ctx"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// NewOllamaGenerator returns a generator for model at baseURL. The deadline comes from the
// caller's context.
func NewOllamaGenerator(baseURL, model string, temperature float64, numCtx int) *OllamaGenerator {
	return &OllamaGenerator{
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       model,
		temperature: temperature,
		numCtx:      numCtx,
		client:      &http.Client{},
	}
}

// Generate sends prompt and returns the "response" field of the reply.
func (g *OllamaGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:   g.model,
		Prompt:  prompt,
		Stream:  false,
		Options: generateOptions{Temperature: g.temperature, NumCtx: g.numCtx},
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		var opErr *net.OpError
		if ctx.Err() == nil && errors.As(err, &opErr) && opErr.Op == "dial" && !opErr.Timeout() {
			return "", fmt.Errorf("%w: %w", ErrOllamaNotRunning, err)
		}
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}
	return gr.Response, nil
}

// Model returns the Ollama model name.
func (g *OllamaGenerator) Model() string {
	return g.model
}
