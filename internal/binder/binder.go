// Package binder attaches supporting evidence to rule findings: it
// refines each finding's evidence query, runs retrieval and extracts one
// citable supporting sentence.
package binder

import (
	"log/slog"
	"regexp"
	"strings"

	"sbccheck/internal/domain"
	"sbccheck/internal/retrieval"
	"sbccheck/internal/rules"
	"sbccheck/internal/textpick"
)

// Config assembles a Binder.
type Config struct {
	Retriever domain.EvidenceRetriever
	Logger    *slog.Logger

	// TopK and MinScore default to the retrieval package defaults.
	TopK     int
	MinScore float64
}

// Binder enriches findings with retrieved evidence. Retrieval failures
// are contained per finding: a finding that cannot be bound simply
// carries no evidence.
type Binder struct {
	retriever domain.EvidenceRetriever
	overrides map[string]Override
	logger    *slog.Logger
	topK      int
	minScore  float64
}

// New creates a Binder with the default rule-id override table.
func New(cfg Config) *Binder {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	topK := cfg.TopK
	if topK <= 0 {
		topK = retrieval.DefaultTopK
	}
	minScore := cfg.MinScore
	if minScore == 0 {
		minScore = retrieval.DefaultMinScore
	}
	return &Binder{
		retriever: cfg.Retriever,
		overrides: defaultOverrides(),
		logger:    logger,
		topK:      topK,
		minScore:  minScore,
	}
}

// Bind enriches every violation and warning in result with evidence,
// a supporting sentence and the single retained top hit.
func (b *Binder) Bind(result *domain.Result) {
	b.bindBucket(result.Violations)
	b.bindBucket(result.Warnings)
}

func (b *Binder) bindBucket(findings []domain.Finding) {
	for i := range findings {
		b.bindFinding(&findings[i])
	}
}

func (b *Binder) bindFinding(f *domain.Finding) {
	if f.EvidenceQuery == nil {
		return
	}

	q := *f.EvidenceQuery
	var prefer []string
	if ov, ok := b.overrides[f.RuleID]; ok {
		q, prefer = ov(q)
	}

	hits, err := b.retriever.Retrieve(q, b.topK, b.minScore)
	if err != nil {
		// Degrade this finding to no evidence; the rest proceed.
		b.logger.Warn("evidence retrieval failed", "rule_id", f.RuleID, "error", err)
		return
	}
	f.Evidence = hits

	// Table rules have a fully determined phrasing; no extraction.
	if strings.HasPrefix(f.RuleID, rules.TableRulePrefix) {
		if s, ok := tableRuleSentence(f); ok {
			f.RuleSentence = &s
		}
		if len(hits) > 0 {
			f.EvidenceUsed = hits[:1]
		}
		return
	}

	if len(hits) > 0 {
		best := hits[0]
		if s, ok := textpick.BestSentence(best.Quote, prefer); ok {
			f.RuleSentence = &s
		}
		f.EvidenceUsed = []domain.EvidenceHit{best}
	}
}

var thresholdRe = regexp.MustCompile(`>=\s*([0-9.]+)`)

// tableRuleSentence renders the deterministic Arabic sentence for a
// dimension-table finding from the numeric threshold in its expected
// string.
func tableRuleSentence(f *domain.Finding) (string, bool) {
	m := thresholdRe.FindStringSubmatch(f.Expected)
	if m == nil {
		return "", false
	}
	val := m[1]
	switch {
	case strings.Contains(f.RuleID, "MIN-AREA"):
		return "لا يقل الحد الأدنى لمساحة " + string(f.RoomType) + " عن " + val + " م².", true
	case strings.Contains(f.RuleID, "MIN-WIDTH"):
		return "لا يقل الحد الأدنى للعرض/البعد الأدنى لـ " + string(f.RoomType) + " عن " + val + " م.", true
	default:
		return "", false
	}
}
