package embedding

import (
	"fmt"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// HFTokenizer tokenizes with a HuggingFace tokenizer.json (WordPiece for MiniLM/BERT models).
type HFTokenizer struct {
	tk *tokenizer.Tokenizer
}

// LoadHFTokenizer reads a tokenizer.json file.
func LoadHFTokenizer(path string) (*HFTokenizer, error) {
	tk, err := pretrained.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer %s: %w", path, err)
	}
	return &HFTokenizer{tk: tk}, nil
}

// Tokenize encodes text with special tokens and pads or truncates to maxTokens.
// A truncated sequence keeps its final special token.
func (t *HFTokenizer) Tokenize(text string, maxTokens int) (Encoding, error) {
	if maxTokens <= 0 {
		maxTokens = 256
	}
	enc, err := t.tk.EncodeSingle(text, true)
	if err != nil {
		return Encoding{}, fmt.Errorf("tokenize: %w", err)
	}
	out := newEncoding(maxTokens)
	n := len(enc.Ids)
	if n > maxTokens {
		n = maxTokens
	}
	for i := 0; i < n; i++ {
		out.InputIDs[i] = int64(enc.Ids[i])
		if i < len(enc.AttentionMask) {
			out.AttentionMask[i] = int64(enc.AttentionMask[i])
		} else {
			out.AttentionMask[i] = 1
		}
		if i < len(enc.TypeIds) {
			out.TokenTypeIDs[i] = int64(enc.TypeIds[i])
		}
	}
	if len(enc.Ids) > maxTokens {
		out.InputIDs[maxTokens-1] = int64(enc.Ids[len(enc.Ids)-1])
	}
	return out, nil
}
