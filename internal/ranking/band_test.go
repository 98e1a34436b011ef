package ranking

import (
	"testing"

	"github.com/hyperjump/resumatch/internal/models"
)

func TestBandFor(t *testing.T) {
	tests := []struct {
		score float64
		want  Band
		color string
	}{
		{-0.3, BandLow, "#ff4b4b"},
		{0, BandLow, "#ff4b4b"},
		{0.249, BandLow, "#ff4b4b"},
		{0.25, BandMedium, "#ffa421"},
		{0.599, BandMedium, "#ffa421"},
		{0.60, BandHigh, "#21c354"},
		{1, BandHigh, "#21c354"},
	}
	for _, tt := range tests {
		got := BandFor(tt.score)
		if got != tt.want {
			t.Errorf("BandFor(%v) = %q, want %q", tt.score, got, tt.want)
		}
		if got.Color() != tt.color {
			t.Errorf("BandFor(%v).Color() = %q, want %q", tt.score, got.Color(), tt.color)
		}
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(0.876); got != 87 {
		t.Errorf("Percent(0.876) = %d, want 87", got)
	}
	if got := Percent(1); got != 100 {
		t.Errorf("Percent(1) = %d, want 100", got)
	}
}

func TestTop(t *testing.T) {
	results := make([]models.RankedResult, 7)
	tests := []struct {
		n    int
		want int
	}{
		{0, 7},
		{-1, 7},
		{5, 5},
		{10, 7},
	}
	for _, tt := range tests {
		if got := len(Top(results, tt.n)); got != tt.want {
			t.Errorf("len(Top(7, %d)) = %d, want %d", tt.n, got, tt.want)
		}
	}
}
