package ranking

import "github.com/hyperjump/resumatch/internal/models"

// Band is a display bucket for a match score.
type Band string

const (
	BandLow    Band = "low"
	BandMedium Band = "medium"
	BandHigh   Band = "high"
)

// Color returns the hex color used to render the band.
func (b Band) Color() string {
	switch b {
	case BandLow:
		return "#ff4b4b"
	case BandMedium:
		return "#ffa421"
	default:
		return "#21c354"
	}
}

// Percent converts a cosine score to a whole display percentage, truncating toward zero.
func Percent(score float64) int {
	return int(score * 100)
}

// BandFor returns the band of score: below 25% is low, below 60% is medium, otherwise high.
func BandFor(score float64) Band {
	switch p := Percent(score); {
	case p < 25:
		return BandLow
	case p < 60:
		return BandMedium
	default:
		return BandHigh
	}
}

// Top returns the first n results; n <= 0 returns all of them.
func Top(results []models.RankedResult, n int) []models.RankedResult {
	if n <= 0 || n >= len(results) {
		return results
	}
	return results[:n]
}
