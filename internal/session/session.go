// Package session holds the state of one recruiter interaction: the job description, the ranked
// results, and the explanations opened for individual candidates.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hyperjump/resumatch/internal/models"
)

// Session is one analysis and the explanations requested for it.
type Session struct {
	ID             string
	JobDescription string
	Model          string
	CreatedAt      time.Time

	mu       sync.RWMutex
	results  []models.RankedResult
	skipped  []models.ExtractionSkip
	analyses map[string]string
}

// New returns a session for a finished ranking.
func New(jobDescription, model string, results []models.RankedResult, skipped []models.ExtractionSkip) *Session {
	return &Session{
		ID:             uuid.New().String(),
		JobDescription: jobDescription,
		Model:          model,
		CreatedAt:      time.Now(),
		results:        results,
		skipped:        skipped,
		analyses:       make(map[string]string),
	}
}

// AnalysisKey returns the slot key for the candidate at index.
func AnalysisKey(index int) string {
	return fmt.Sprintf("cand_%d", index)
}

// Results returns the ranked results.
func (s *Session) Results() []models.RankedResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.results
}

// Skipped returns the files dropped during extraction.
func (s *Session) Skipped() []models.ExtractionSkip {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.skipped
}

// Result returns the result at index.
func (s *Session) Result(index int) (models.RankedResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.results) {
		return models.RankedResult{}, false
	}
	return s.results[index], true
}

// Analysis returns the explanation stored for the candidate at index.
func (s *Session) Analysis(index int) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.analyses[AnalysisKey(index)]
	return text, ok
}

// SetAnalysis stores the explanation for the candidate at index.
func (s *Session) SetAnalysis(index int, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyses[AnalysisKey(index)] = text
}

// CloseAnalysis removes the explanation for the candidate at index.
func (s *Session) CloseAnalysis(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.analyses, AnalysisKey(index))
}

// Analyses returns a copy of every open explanation keyed by slot.
func (s *Session) Analyses() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.analyses))
	for k, v := range s.analyses {
		out[k] = v
	}
	return out
}

// Reset clears results and explanations to start a new search.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = nil
	s.skipped = nil
	s.analyses = make(map[string]string)
}
