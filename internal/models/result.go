package models

import "path/filepath"

// RankedResult is a candidate with its similarity score to the job description.
// Score is a cosine similarity in [-1, 1]; Rank is the 1-based position in the list.
type RankedResult struct {
	ID    string  `json:"id"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}

// Name returns the base filename of the result's source for display.
func (r RankedResult) Name() string {
	return filepath.Base(r.ID)
}
