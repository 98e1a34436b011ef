// Package server provides the HTTP API for resumatch.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/resumatch/internal/analysis"
	"github.com/hyperjump/resumatch/internal/config"
)

// requestTimeout bounds the routes that only read or drop session state.
const requestTimeout = 60 * time.Second

// ModelStatus reports on the embedding model.
type ModelStatus interface {
	ModelID() string
	Dimensions() int
	Loaded() bool
}

// Server is the HTTP server for the resumatch API.
type Server struct {
	svc          *analysis.Service
	model        ModelStatus
	explainModel string
	config       *config.Config
	logger       *zap.Logger
	server       *http.Server
	startedAt    time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithExplainModel names the language model used for explanations in status output.
func WithExplainModel(name string) Option {
	return func(s *Server) {
		s.explainModel = name
	}
}

// NewServer creates a server with the given dependencies.
func NewServer(svc *analysis.Service, model ModelStatus, cfg *config.Config, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		svc:       svc,
		model:     model,
		config:    cfg,
		logger:    logger,
		startedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router returns the API routes with middleware applied.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// Ranking and explanation run without a request deadline. Ranking a
	// large batch on CPU can take minutes and the explainer carries its
	// own timeout.
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/analyses", s.handleCreateAnalysis)
		r.Post("/analyses/{id}/explanations/{index}", s.handleExplain)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))
			r.Get("/analyses/{id}", s.handleGetAnalysis)
			r.Delete("/analyses/{id}", s.handleDeleteAnalysis)
			r.Delete("/analyses/{id}/explanations/{index}", s.handleCloseExplanation)
			r.Get("/status", s.handleStatus)
		})
	})
	r.With(middleware.Timeout(requestTimeout)).Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
