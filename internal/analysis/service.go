// Package analysis runs one recruiter interaction end to end: stage resumes, extract their text,
// rank them against a job description, and explain individual matches on request.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/resumatch/internal/models"
	"github.com/hyperjump/resumatch/internal/session"
	"github.com/hyperjump/resumatch/internal/storage"
)

var (
	// ErrMissingInput is returned when the job description is blank or no resumes were given.
	ErrMissingInput = errors.New("a job description and at least one resume are required")
	// ErrNotExplainable is returned for candidates outside the explainable top of the ranking.
	ErrNotExplainable = errors.New("candidate is not eligible for explanation")
)

// DefaultExplainTopN is how many top candidates may be explained when not configured.
const DefaultExplainTopN = 3

// Ranker orders candidates against a query.
type Ranker interface {
	Rank(ctx context.Context, query string, candidates []models.Candidate) ([]models.RankedResult, error)
}

// CandidateLoader extracts candidates from files on disk.
type CandidateLoader interface {
	LoadCandidates(ctx context.Context, paths []string) ([]models.Candidate, []models.ExtractionSkip)
}

// Explainer describes why a candidate matches. Failures are returned as text.
type Explainer interface {
	Explain(ctx context.Context, candidateText, query string) string
}

// Fetcher stages resumes from a remote source.
type Fetcher interface {
	Fetch(ctx context.Context, prefix string, staging *storage.Staging) ([]string, []models.ExtractionSkip, error)
}

// Upload is one resume received from a client.
type Upload struct {
	Name string
	Size int64
	Body io.Reader
}

// Service coordinates staging, extraction, ranking and explanation.
// Analyses run one at a time so the staging directory is never cleared under a running batch.
type Service struct {
	ranker      Ranker
	loader      CandidateLoader
	explainer   Explainer
	staging     *storage.Staging
	store       *session.Store
	explainTopN int
	modelID     string
	logger      *zap.Logger

	mu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger for the service.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithExplainTopN sets how many top-ranked candidates may be explained.
func WithExplainTopN(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.explainTopN = n
		}
	}
}

// WithModelID records the embedding model name on new sessions.
func WithModelID(id string) Option {
	return func(s *Service) {
		s.modelID = id
	}
}

// NewService returns a service. explainer may be nil, in which case nothing is explainable.
func NewService(ranker Ranker, loader CandidateLoader, explainer Explainer, staging *storage.Staging, store *session.Store, opts ...Option) *Service {
	s := &Service{
		ranker:      ranker,
		loader:      loader,
		explainer:   explainer,
		staging:     staging,
		store:       store,
		explainTopN: DefaultExplainTopN,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.explainer == nil {
		s.explainTopN = 0
	}
	return s
}

// ExplainTopN returns how many top candidates may be explained.
func (s *Service) ExplainTopN() int {
	return s.explainTopN
}

// Analyze stages uploads (after clearing the previous batch), ranks them against jobDescription,
// and stores the outcome as a new session. A ranking failure creates no session.
func (s *Service) Analyze(ctx context.Context, jobDescription string, uploads []Upload) (*session.Session, error) {
	job, err := validate(jobDescription, len(uploads))
	if err != nil {
		return nil, err
	}
	for _, u := range uploads {
		if err := s.staging.Check(u.Name, u.Size); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.staging.Reset(); err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(uploads))
	for _, u := range uploads {
		p, err := s.staging.Save(u.Name, u.Body)
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return s.analyze(ctx, job, paths, nil)
}

// AnalyzePaths ranks files already on disk against jobDescription.
func (s *Service) AnalyzePaths(ctx context.Context, jobDescription string, paths []string) (*session.Session, error) {
	job, err := validate(jobDescription, len(paths))
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analyze(ctx, job, paths, nil)
}

// AnalyzeRemote stages every resume under prefix from fetcher and ranks them against jobDescription.
func (s *Service) AnalyzeRemote(ctx context.Context, jobDescription string, fetcher Fetcher, prefix string) (*session.Session, error) {
	job, err := validate(jobDescription, 1)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.staging.Reset(); err != nil {
		return nil, err
	}
	paths, skipped, err := fetcher.Fetch(ctx, prefix, s.staging)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 && len(skipped) == 0 {
		return nil, fmt.Errorf("%w: no resumes found under %q", ErrMissingInput, prefix)
	}
	return s.analyze(ctx, job, paths, skipped)
}

func (s *Service) analyze(ctx context.Context, job string, paths []string, skipped []models.ExtractionSkip) (*session.Session, error) {
	start := time.Now()
	candidates, extractSkips := s.loader.LoadCandidates(ctx, paths)
	skipped = append(skipped, extractSkips...)

	results, err := s.ranker.Rank(ctx, job, candidates)
	if err != nil {
		s.logger.Error("ranking failed", zap.Int("candidates", len(candidates)), zap.Error(err))
		return nil, err
	}

	sess := session.New(job, s.modelID, results, skipped)
	s.store.Create(sess)
	s.logger.Info("analysis complete",
		zap.String("session", sess.ID),
		zap.Int("files", len(paths)),
		zap.Int("ranked", len(results)),
		zap.Int("skipped", len(skipped)),
		zap.Duration("took", time.Since(start)))
	return sess, nil
}

// Session returns the stored session with id.
func (s *Service) Session(id string) (*session.Session, error) {
	return s.store.Get(id)
}

// Explain returns the explanation for the candidate at index (0-based rank order), generating
// and caching it on first request. Only the top ExplainTopN candidates are explainable.
// Model failures are returned as explanation text, not as errors.
func (s *Service) Explain(ctx context.Context, sessionID string, index int) (string, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return "", err
	}
	if index < 0 || index >= s.explainTopN {
		return "", fmt.Errorf("%w: index %d (top %d only)", ErrNotExplainable, index, s.explainTopN)
	}
	result, ok := sess.Result(index)
	if !ok {
		return "", fmt.Errorf("%w: index %d out of range", ErrNotExplainable, index)
	}
	if text, ok := sess.Analysis(index); ok {
		return text, nil
	}
	text := s.explainer.Explain(ctx, result.Text, sess.JobDescription)
	sess.SetAnalysis(index, text)
	s.logger.Debug("explanation stored",
		zap.String("session", sessionID),
		zap.String("slot", session.AnalysisKey(index)))
	return text, nil
}

// CloseExplanation drops the stored explanation for the candidate at index.
func (s *Service) CloseExplanation(sessionID string, index int) error {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return err
	}
	sess.CloseAnalysis(index)
	return nil
}

// Reset clears a session's results and removes it, starting a new search.
func (s *Service) Reset(sessionID string) error {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return err
	}
	sess.Reset()
	return s.store.Delete(sessionID)
}

// StagingUsage reports what the current batch occupies on disk.
func (s *Service) StagingUsage() (storage.Usage, error) {
	return s.staging.Usage()
}

// Sessions returns the number of live sessions.
func (s *Service) Sessions() int {
	return s.store.Len()
}

func validate(jobDescription string, files int) (string, error) {
	req := models.AnalysisRequest{JobDescription: jobDescription}
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMissingInput, err)
	}
	if files == 0 {
		return "", fmt.Errorf("%w: no resumes provided", ErrMissingInput)
	}
	return req.JobDescription, nil
}
