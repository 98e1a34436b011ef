package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/hyperjump/resumatch/internal/explain"
	"github.com/hyperjump/resumatch/internal/models"
)

func sampleResponse() *models.AnalysisResponse {
	return &models.AnalysisResponse{
		SessionID:      "s-1",
		JobDescription: "Python developer",
		Model:          "hashing-384",
		Total:          3,
		Shown:          2,
		QueryTime:      12,
		Skipped:        []models.ExtractionSkip{{Path: "empty.pdf", Reason: "no extractable text"}},
		Results: []models.ResultView{
			{Rank: 1, ID: "/tmp/alice.txt", Name: "alice.txt", Score: 0.71, Percent: 71, Band: "high",
				Preview: "Experienced Python developer", Explanation: "- Python\n- SQL"},
			{Rank: 2, ID: "/tmp/bob.txt", Name: "bob.txt", Score: 0.12, Percent: 12, Band: "low",
				Explanation: explain.ErrorMarker + ": request timed out after 30s"},
		},
	}
}

func TestWriteAnalysis_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAnalysis(&buf, sampleResponse(), OutputJSON); err != nil {
		t.Fatalf("WriteAnalysis(json): %v", err)
	}
	var decoded models.AnalysisResponse
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if decoded.SessionID != "s-1" || len(decoded.Results) != 2 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestWriteAnalysis_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAnalysis(&buf, sampleResponse(), OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"Ranked 3 resumes in 12ms (model: hashing-384)",
		"Showing top 2",
		"#1 alice.txt | 71% match [high]",
		"File: /tmp/alice.txt",
		"Why this candidate:\n  - Python\n  - SQL",
		"Explanation unavailable: " + explain.ErrorMarker,
		"Skipped 1 file(s):",
		"empty.pdf: no extractable text",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q\n%s", want, out)
		}
	}
}

func TestWriteAnalysis_Compact(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAnalysis(&buf, sampleResponse(), OutputCompact); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), buf.String())
	}
	if lines[0] != "  1.  71%  high    alice.txt" {
		t.Errorf("first line = %q", lines[0])
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{"COMPACT", OutputCompact, false},
		{" json ", OutputJSON, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOutputFormat(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteStatus(t *testing.T) {
	disk := int64(2048)
	status := &models.StatusResponse{
		Status: "ok", Model: "hashing-384", ModelLoaded: true, Dimensions: 384, Sessions: 2,
		DiskUsageBytes: &disk,
		Config:         &models.StatusConfig{DefaultTopN: 10, ExplainTopN: 3, ExplainModel: "llama3", SupportedFormats: []string{".pdf"}},
	}
	var buf bytes.Buffer
	if err := WriteStatus(&buf, status, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"model:              hashing-384", "sessions:           2", "disk_usage_bytes:   2048", "explain_model:      llama3"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q\n%s", want, out)
		}
	}

	buf.Reset()
	if err := WriteStatus(&buf, status, OutputJSON); err != nil {
		t.Fatal(err)
	}
	if !json.Valid(buf.Bytes()) {
		t.Errorf("invalid JSON: %s", buf.String())
	}
}

func TestExpandPaths(t *testing.T) {
	dir := t.TempDir()
	write := func(rel string) string {
		p := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
		return p
	}
	a := write("a.pdf")
	b := write("nested/b.pdf")
	write("notes.xlsx")
	write(".hidden/c.pdf")
	extra := write("extra.exe")

	accept := func(name string) bool { return filepath.Ext(name) == ".pdf" }
	got, err := ExpandPaths([]string{dir, extra, a}, accept)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{a, b, extra}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExpandPaths() = %v, want %v", got, want)
	}

	if _, err := ExpandPaths([]string{filepath.Join(dir, "missing")}, accept); err == nil {
		t.Error("expected error for missing path")
	}
}
