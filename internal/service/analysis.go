// Package service wires the rule engine, the evidence binder and the
// knowledge base into one analysis operation.
package service

import (
	"log/slog"

	"sbccheck/internal/binder"
	"sbccheck/internal/domain"
	"sbccheck/internal/kb"
	"sbccheck/internal/rules"
)

// AnalysisService runs one full compliance analysis per call. Calls are
// independent, stateless computations over the shared immutable chunk
// cache and may run concurrently.
type AnalysisService struct {
	catalog   []domain.Rule
	binder    *binder.Binder
	retriever domain.EvidenceRetriever
	paths     kb.Paths
	logger    *slog.Logger
}

// Config assembles an AnalysisService.
type Config struct {
	Catalog   []domain.Rule
	Binder    *binder.Binder
	Retriever domain.EvidenceRetriever
	Paths     kb.Paths
	Logger    *slog.Logger
}

// New creates the analysis service.
func New(cfg Config) *AnalysisService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		catalog:   cfg.Catalog,
		binder:    cfg.Binder,
		retriever: cfg.Retriever,
		paths:     cfg.Paths,
		logger:    logger,
	}
}

// Analyze evaluates the rooms of one dwelling unit against the rule
// catalog and binds supporting evidence to every finding. When the
// knowledge base has not been built, evaluation still runs and the
// findings simply carry no evidence.
func (s *AnalysisService) Analyze(projectID, assetID string, rooms []domain.Room) domain.Report {
	result := rules.Evaluate(rooms, s.catalog)

	if s.paths.Ready() {
		s.binder.Bind(&result)
	} else {
		s.logger.Warn("knowledge base not built, skipping evidence retrieval",
			"kb_dir", s.paths.Dir)
	}

	return binder.FormatReport(projectID, assetID, result)
}

// Evidence runs an ad-hoc retrieval against the knowledge base. Used by
// the interactive browser and the evidence endpoint.
func (s *AnalysisService) Evidence(q domain.EvidenceQuery, topK int, minScore float64) ([]domain.EvidenceHit, error) {
	return s.retriever.Retrieve(q, topK, minScore)
}
