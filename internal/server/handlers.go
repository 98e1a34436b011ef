package server

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/resumatch/internal/analysis"
	"github.com/hyperjump/resumatch/internal/embedding"
	"github.com/hyperjump/resumatch/internal/explain"
	"github.com/hyperjump/resumatch/internal/models"
	"github.com/hyperjump/resumatch/internal/session"
	"github.com/hyperjump/resumatch/internal/storage"
)

// maxMemory is how much of a multipart upload is buffered in memory; the rest spills to temp files.
const maxMemory = 32 << 20

func (s *Server) handleCreateAnalysis(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		s.respondError(w, http.StatusBadRequest, "expected multipart form with job_description and resumes")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	limit, err := parseLimit(r.FormValue("limit"), s.config.App.ResultsTopN())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req := models.AnalysisRequest{JobDescription: r.FormValue("job_description"), Limit: limit}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	files := r.MultipartForm.File["resumes"]
	uploads := make([]analysis.Upload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "cannot read upload "+fh.Filename)
			return
		}
		defer func(f multipart.File) { _ = f.Close() }(f)
		uploads = append(uploads, analysis.Upload{Name: fh.Filename, Size: fh.Size, Body: f})
	}

	s.logger.Debug("analysis request", zap.Int("files", len(uploads)), zap.Int("job_chars", len(req.JobDescription)))
	sess, err := s.svc.Analyze(r.Context(), req.JobDescription, uploads)
	if err != nil {
		s.respondServiceError(w, "analysis failed", err)
		return
	}
	resp := s.svc.View(sess, req.Limit)
	resp.QueryTime = time.Since(start).Milliseconds()
	s.respondJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"), s.config.App.ResultsTopN())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	sess, err := s.svc.Session(chi.URLParam(r, "id"))
	if err != nil {
		s.respondServiceError(w, "get analysis failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, s.svc.View(sess, limit))
}

func (s *Server) handleDeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("reset analysis request", zap.String("id", id))
	if err := s.svc.Reset(id); err != nil {
		s.respondServiceError(w, "reset failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"id": id, "status": "reset"})
}

type explanationResponse struct {
	Index       int    `json:"index"`
	Slot        string `json:"slot"`
	Explanation string `json:"explanation"`
	Failed      bool   `json:"failed"`
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "index must be an integer")
		return
	}
	text, err := s.svc.Explain(r.Context(), id, index)
	if err != nil {
		s.respondServiceError(w, "explain failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, explanationResponse{
		Index:       index,
		Slot:        session.AnalysisKey(index),
		Explanation: text,
		Failed:      explain.IsErrorText(text),
	})
}

func (s *Server) handleCloseExplanation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "index must be an integer")
		return
	}
	if err := s.svc.CloseExplanation(id, index); err != nil {
		s.respondServiceError(w, "close explanation failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"slot": session.AnalysisKey(index), "status": "closed"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := models.StatusResponse{
		Status:        "ok",
		Sessions:      s.svc.Sessions(),
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
		Config: &models.StatusConfig{
			ExplainTopN:         s.svc.ExplainTopN(),
			ExplainModel:        s.explainModel,
			DefaultTopN:         s.config.App.ResultsTopN(),
			ResultsLimitOptions: s.config.App.ResultsLimitOptions,
			SupportedFormats:    s.config.App.SupportedFormats,
			MaxFileSizeMB:       s.config.App.MaxFileSizeMB,
			UploadDir:           s.config.App.UploadDir,
		},
	}
	if s.model != nil {
		resp.Model = s.model.ModelID()
		resp.ModelLoaded = s.model.Loaded()
		resp.Dimensions = s.model.Dimensions()
	}
	if usage, err := s.svc.StagingUsage(); err == nil {
		resp.StagedFiles = usage.Files
		resp.DiskUsageBytes = &usage.Bytes
	} else {
		s.logger.Warn("status: disk usage failed", zap.Error(err))
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// parseLimit reads a result limit: empty uses def, "all" means every result, otherwise a positive integer.
func parseLimit(raw string, def int) (int, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	switch raw {
	case "":
		return def, nil
	case "all":
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errors.New(`limit must be a positive integer or "all"`)
	}
	return n, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, analysis.ErrMissingInput),
		errors.Is(err, analysis.ErrNotExplainable),
		errors.Is(err, storage.ErrUnsupportedFormat),
		errors.Is(err, storage.ErrFileTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, embedding.ErrModelUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondServiceError(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(msg, zap.Error(err))
	} else {
		s.logger.Debug(msg, zap.Error(err))
	}
	s.respondError(w, status, err.Error())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
