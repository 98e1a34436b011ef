package embedding

import (
	"reflect"
	"testing"
)

func TestHashTokenizer_Tokenize(t *testing.T) {
	tok := &HashTokenizer{}
	enc, err := tok.Tokenize("hello world", 10)
	if err != nil {
		t.Fatal(err)
	}
	ids, attn, types := enc.InputIDs, enc.AttentionMask, enc.TokenTypeIDs
	if len(ids) != 10 || len(attn) != 10 || len(types) != 10 {
		t.Fatalf("lengths = %d/%d/%d, want 10", len(ids), len(attn), len(types))
	}
	if ids[0] != clsTokenID {
		t.Errorf("expected CLS %d, got %d", clsTokenID, ids[0])
	}
	if ids[3] != sepTokenID {
		t.Errorf("expected SEP at 3, got %d", ids[3])
	}
	var active int
	for _, a := range attn {
		active += int(a)
	}
	if active != 4 {
		t.Errorf("attention covers %d tokens, want 4", active)
	}
}

func TestHashTokenizer_truncates(t *testing.T) {
	tok := &HashTokenizer{}
	enc, err := tok.Tokenize("a b c d e f g h i j k l", 5)
	if err != nil {
		t.Fatal(err)
	}
	ids, attn := enc.InputIDs, enc.AttentionMask
	if len(ids) != 5 {
		t.Fatalf("len(ids)=%d", len(ids))
	}
	if ids[4] != sepTokenID || attn[4] != 1 {
		t.Errorf("last slot should hold SEP when words overflow, got id=%d attn=%d", ids[4], attn[4])
	}
}

func TestWords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"  a  b  c  ", []string{"a", "b", "c"}},
		{"Experienced Python developer with 5 years in Django and SQL.", []string{"experienced", "python", "developer", "with", "5", "years", "in", "django", "and", "sql"}},
		{"C++, C# and Node.js", []string{"c++", "c#", "and", "node.js"}},
		{"Agile/Scrum", []string{"agile", "scrum"}},
	}
	for _, tt := range tests {
		if got := Words(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Words(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHashString(t *testing.T) {
	h := HashString("abc")
	if h <= 0 {
		t.Error("hash should be positive")
	}
	if HashString("abc") != HashString("abc") {
		t.Error("hash should be deterministic")
	}
	if HashString("abc") == HashString("acb") {
		t.Error("hash should depend on order")
	}
}
