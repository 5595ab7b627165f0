// Package server exposes the analysis service over HTTP. Every request
// is an independent, stateless computation over the shared immutable
// chunk cache; there is no cross-request mutable state.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"sbccheck/internal/domain"
	"sbccheck/internal/kb"
	"sbccheck/internal/retrieval"
	"sbccheck/internal/service"
)

// Server carries the handler dependencies.
type Server struct {
	svc    *service.AnalysisService
	paths  kb.Paths
	logger *slog.Logger
}

// New creates a Server around the analysis service.
func New(svc *service.AnalysisService, paths kb.Paths, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{svc: svc, paths: paths, logger: logger}
}

// Router builds the HTTP route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/evidence", s.handleEvidence)
	})
	return r
}

// AnalyzeRequest is the body for POST /api/v1/analyze.
type AnalyzeRequest struct {
	ProjectID string        `json:"project_id"`
	AssetID   string        `json:"asset_id"`
	Rooms     []domain.Room `json:"rooms"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	report := s.svc.Analyze(req.ProjectID, req.AssetID, req.Rooms)
	s.writeJSON(w, http.StatusOK, report)
}

// EvidenceRequest is the body for POST /api/v1/evidence.
type EvidenceRequest struct {
	Query    domain.EvidenceQuery `json:"query"`
	TopK     int                  `json:"top_k"`
	MinScore float64              `json:"min_score"`
}

// EvidenceResponse wraps the hit list of an ad-hoc retrieval.
type EvidenceResponse struct {
	Hits []domain.EvidenceHit `json:"hits"`
}

func (s *Server) handleEvidence(w http.ResponseWriter, r *http.Request) {
	if !s.paths.Ready() {
		http.Error(w, "knowledge base not built", http.StatusServiceUnavailable)
		return
	}

	var req EvidenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.TopK <= 0 {
		req.TopK = retrieval.DefaultTopK
	}
	if req.MinScore == 0 {
		req.MinScore = retrieval.DefaultMinScore
	}

	hits, err := s.svc.Evidence(req.Query, req.TopK, req.MinScore)
	if err != nil {
		s.logger.Error("evidence retrieval failed", "error", err)
		http.Error(w, "retrieval failed", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, EvidenceResponse{Hits: hits})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"kb_ready": s.paths.Ready(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response", "error", err)
	}
}
