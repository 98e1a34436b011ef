package embedding

import (
	"strings"
	"unicode"
)

// Encoding holds the model inputs for one text. Every slice has the same length, padded with zeros.
type Encoding struct {
	InputIDs      []int64
	AttentionMask []int64
	TokenTypeIDs  []int64
}

func newEncoding(maxTokens int) Encoding {
	return Encoding{
		InputIDs:      make([]int64, maxTokens),
		AttentionMask: make([]int64, maxTokens),
		TokenTypeIDs:  make([]int64, maxTokens),
	}
}

// Tokenizer produces token IDs for BERT-style models (input_ids, attention_mask, token_type_ids).
type Tokenizer interface {
	Tokenize(text string, maxTokens int) (Encoding, error)
}

const (
	clsTokenID = 101
	sepTokenID = 102
	vocabSize  = 30000
)

// HashTokenizer maps words to hash-derived token IDs. It is used when no tokenizer.json is configured.
type HashTokenizer struct{}

// Tokenize splits text into words and produces padded token IDs up to maxTokens.
func (t *HashTokenizer) Tokenize(text string, maxTokens int) (Encoding, error) {
	if maxTokens <= 0 {
		maxTokens = 256
	}
	enc := newEncoding(maxTokens)
	inputIDs, attentionMask := enc.InputIDs, enc.AttentionMask

	inputIDs[0] = clsTokenID
	attentionMask[0] = 1

	pos := 1
	for _, word := range Words(text) {
		if pos >= maxTokens-1 {
			break
		}
		inputIDs[pos] = int64(HashString(word) % vocabSize)
		attentionMask[pos] = 1
		pos++
	}
	if pos < maxTokens {
		inputIDs[pos] = sepTokenID
		attentionMask[pos] = 1
	}
	return enc, nil
}

// Words splits text into lowercase words. Letters, digits and the characters + # . are word
// characters so that "c++", "c#" and "node.js" survive; trailing dots are dropped.
func Words(text string) []string {
	var words []string
	var word strings.Builder
	flush := func() {
		w := strings.TrimRight(word.String(), ".")
		word.Reset()
		if w != "" {
			words = append(words, w)
		}
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' {
			word.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return words
}

// HashString returns a deterministic non-negative hash of s.
func HashString(s string) int {
	var h uint32
	for _, c := range s {
		h = 31*h + uint32(c)
	}
	return int(h)
}
