// Package models defines core data structures for candidates, ranked results, and analyses.
package models

import "path/filepath"

// Candidate is a parsed resume: where it came from and the text extracted from it.
type Candidate struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Name returns the base filename of the candidate's source for display.
func (c Candidate) Name() string {
	return filepath.Base(c.ID)
}

// ExtractionSkip records a file the extractor dropped and why.
type ExtractionSkip struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}
