// Package retrieval ranks knowledge-base chunks against a structured
// evidence query using BM25 over normalized Arabic tokens.
package retrieval

import (
	"log/slog"
	"sort"
	"strings"

	"sbccheck/internal/arabic"
	"sbccheck/internal/domain"
	"sbccheck/internal/kb"
)

// Defaults used by callers that do not configure their own.
const (
	DefaultTopK     = 3
	DefaultMinScore = 0.1
)

// Config assembles an Engine.
type Config struct {
	Store  *kb.Store
	Paths  kb.Paths
	Logger *slog.Logger
}

// Engine retrieves scored, quoted evidence hits for a query. It is
// stateless apart from the shared read-only chunk cache and safe for
// concurrent use.
type Engine struct {
	store  *kb.Store
	paths  kb.Paths
	logger *slog.Logger
}

// New creates a retrieval engine over the given chunk store.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: cfg.Store, paths: cfg.Paths, logger: logger}
}

// Retrieve returns up to topK evidence hits ordered by boosted score.
// A query with no resolvable keyword content returns an empty result.
// A missing chunk file fails this call only.
func (e *Engine) Retrieve(q domain.EvidenceQuery, topK int, minScore float64) ([]domain.EvidenceHit, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	queryTokens := arabic.Tokenize(buildQueryString(q))
	if len(queryTokens) == 0 {
		return nil, nil
	}

	var hits []domain.EvidenceHit
	for _, path := range e.paths.Resolve(q.Doc) {
		chunks, err := e.store.Load(path)
		if err != nil {
			return nil, err
		}

		filtered := applyFilters(chunks, q)
		if len(filtered) == 0 {
			// Recall over precision: rather than return nothing because a
			// hint was too strict, drop all hard filters for this query.
			e.logger.Debug("evidence filters eliminated all chunks, ranking unfiltered",
				"doc", q.Doc, "path", path)
			filtered = chunks
		}

		docsTokens := make([][]string, len(filtered))
		for i, ch := range filtered {
			docsTokens[i] = arabic.Tokenize(ch.Text)
		}
		scores := bm25Rank(queryTokens, docsTokens)

		for i, ch := range filtered {
			if scores[i] < minScore {
				continue
			}
			doc := ch.DocID
			if doc == "" {
				doc = q.Doc
			}
			hits = append(hits, domain.EvidenceHit{
				Score:   scores[i],
				Doc:     doc,
				Source:  ch.Source,
				ChunkID: ch.ChunkID,
				Page:    ch.Page,
				Section: ch.Section,
				Quote:   sliceQuote(ch.Text, queryTokens, maxQuoteChars),
			})
		}
	}

	boostNorm := make([]string, 0, len(q.BoostKeywords))
	for _, b := range q.BoostKeywords {
		if n := arabic.Normalize(b); n != "" {
			boostNorm = append(boostNorm, n)
		}
	}
	// Boosting runs after BM25 and before truncation, so a boosted term in
	// a quote can promote a lower-BM25 chunk past a higher one.
	sort.SliceStable(hits, func(i, j int) bool {
		return boostedScore(hits[i], boostNorm) > boostedScore(hits[j], boostNorm)
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// buildQueryString concatenates the ranking parts of the query in fixed
// order: section hint, keywords, room type, metric, doc.
func buildQueryString(q domain.EvidenceQuery) string {
	var parts []string
	if q.SectionHint != "" {
		parts = append(parts, q.SectionHint)
	}
	for _, k := range q.Keywords {
		if k != "" {
			parts = append(parts, k)
		}
	}
	if q.RoomType != "" {
		parts = append(parts, q.RoomType)
	}
	if q.Metric != "" {
		parts = append(parts, q.Metric)
	}
	if q.Doc != "" {
		parts = append(parts, q.Doc)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// applyFilters applies the pre-ranking hard filters. Each filter is
// independently defeatable by leaving its query field empty.
func applyFilters(chunks []domain.Chunk, q domain.EvidenceQuery) []domain.Chunk {
	var out []domain.Chunk
	for _, ch := range chunks {
		if !matchSection(ch, q.SectionHint) {
			continue
		}
		if excludedByHints(ch, q.ExcludeHints) {
			continue
		}
		if !containsAllTokens(ch.Text, q.MustIncludeKeywords) {
			continue
		}
		if !containsAnyToken(ch.Text, q.MustIncludeAnyKeywords) {
			continue
		}
		out = append(out, ch)
	}
	return out
}

// matchSection accepts a chunk when the hint substring, or the hint's
// first token, appears (normalized) in the section title or the text.
func matchSection(ch domain.Chunk, hint string) bool {
	if hint == "" {
		return true
	}
	if arabic.Contains(ch.Section, hint) || arabic.Contains(ch.Text, hint) {
		return true
	}
	toks := arabic.Tokenize(hint)
	if len(toks) == 0 {
		return false
	}
	return arabic.Contains(ch.Section, toks[0]) || arabic.Contains(ch.Text, toks[0])
}

func excludedByHints(ch domain.Chunk, hints []string) bool {
	for _, h := range hints {
		if arabic.Contains(ch.Section, h) || arabic.Contains(ch.Text, h) {
			return true
		}
	}
	return false
}

// containsAllTokens requires, for every keyword, that its first token is
// among the chunk's tokens (AND semantics).
func containsAllTokens(text string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	tokens := toTokenSet(text)
	for _, kw := range keywords {
		kwToks := arabic.Tokenize(kw)
		if len(kwToks) == 0 {
			continue
		}
		if _, ok := tokens[kwToks[0]]; !ok {
			return false
		}
	}
	return true
}

// containsAnyToken requires at least one keyword's first token among the
// chunk's tokens (OR semantics).
func containsAnyToken(text string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	tokens := toTokenSet(text)
	for _, kw := range keywords {
		kwToks := arabic.Tokenize(kw)
		if len(kwToks) == 0 {
			continue
		}
		if _, ok := tokens[kwToks[0]]; ok {
			return true
		}
	}
	return false
}

func toTokenSet(text string) map[string]struct{} {
	tokens := arabic.Tokenize(text)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func boostedScore(hit domain.EvidenceHit, boostNorm []string) float64 {
	s := hit.Score
	if len(boostNorm) == 0 {
		return s
	}
	quoteNorm := arabic.Normalize(hit.Quote)
	for _, b := range boostNorm {
		if strings.Contains(quoteNorm, b) {
			s += 2.0
		}
	}
	return s
}
