package models

import (
	"fmt"
	"strings"
)

// AnalysisRequest is the input for ranking a batch of resumes.
type AnalysisRequest struct {
	JobDescription string `json:"job_description"`
	Limit          int    `json:"limit,omitempty"`
}

// Validate ensures the request has a job description and normalizes the limit.
// A non-positive limit means "all results".
func (r *AnalysisRequest) Validate() error {
	r.JobDescription = strings.TrimSpace(r.JobDescription)
	if r.JobDescription == "" {
		return fmt.Errorf("job description cannot be empty")
	}
	if r.Limit < 0 {
		r.Limit = 0
	}
	return nil
}

// ResultView is a ranked result shaped for display.
type ResultView struct {
	Rank        int     `json:"rank"`
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Score       float64 `json:"score"`
	Percent     int     `json:"percent"`
	Band        string  `json:"band"`
	Color       string  `json:"color"`
	Preview     string  `json:"preview"`
	Explainable bool    `json:"explainable"`
	Explanation string  `json:"explanation,omitempty"`
}

// AnalysisResponse is the response for an analysis request.
type AnalysisResponse struct {
	SessionID      string           `json:"session_id"`
	JobDescription string           `json:"job_description"`
	Model          string           `json:"model,omitempty"`
	Total          int              `json:"total"`
	Shown          int              `json:"shown"`
	Skipped        []ExtractionSkip `json:"skipped,omitempty"`
	Results        []ResultView     `json:"results"`
	QueryTime      int64            `json:"query_time_ms"`
}
