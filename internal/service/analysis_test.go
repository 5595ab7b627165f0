package service

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sbccheck/internal/binder"
	"sbccheck/internal/domain"
	"sbccheck/internal/kb"
	"sbccheck/internal/retrieval"
	"sbccheck/internal/rules"
)

func writeChunks(t *testing.T, path string, chunks []domain.Chunk) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	enc := json.NewEncoder(f)
	for i := range chunks {
		require.NoError(t, enc.Encode(&chunks[i]))
	}
	require.NoError(t, f.Close())
}

// builtKB lays out a minimal ready knowledge base on disk.
func builtKB(t *testing.T) kb.Paths {
	t.Helper()
	paths := kb.DefaultPaths(t.TempDir())

	page := 42
	resChunks := []domain.Chunk{{
		DocID: "RES_REQUIREMENTS", Source: "RES_REQUIREMENTS_MISTRAL_OCR",
		ChunkID: 0, Page: &page,
		Section: "مساحات الغرف والفراغات السكنية",
		Text:    "مساحات الغرف والفراغات السكنية: لا تقل مساحة غرفة المعيشة عن 11.2 متر مربع ولا يقل البعد الأدنى عن 2.8 متر.",
	}}
	sbcChunks := []domain.Chunk{{
		DocID: "SBC1101", Source: "SBC1101_MISTRAL_OCR",
		ChunkID: 0,
		Section: "دورات المياه",
		Text:    "يجب توفر نافذة أو وسيلة تهوية ميكانيكية مناسبة في كل دورة مياه داخل الوحدة السكنية.",
	}}
	writeChunks(t, paths.Docs[kb.DocResReq], resChunks)
	writeChunks(t, paths.Docs[kb.DocSBC1101], sbcChunks)
	writeChunks(t, paths.All, append(resChunks, sbcChunks...))
	require.NoError(t, os.WriteFile(filepath.Join(paths.Dir, kb.SentinelFile), []byte("ok"), 0o644))
	return paths
}

func newService(t *testing.T, paths kb.Paths) *AnalysisService {
	t.Helper()
	store := kb.NewStore()
	engine := retrieval.New(retrieval.Config{Store: store, Paths: paths})
	bnd := binder.New(binder.Config{Retriever: engine})
	return New(Config{
		Catalog:   rules.BuildCatalog(),
		Binder:    bnd,
		Retriever: engine,
		Paths:     paths,
	})
}

func testRooms() []domain.Room {
	return []domain.Room{
		{ID: "r1", Type: "Living", Metrics: map[string]any{"area_sqm": 9.0, "min_dimension_m": 3.0}},
		{ID: "r2", Type: "Kitchen", Metrics: map[string]any{"area_sqm": 6.0, "min_dimension_m": 2.0}},
		{ID: "r3", Type: "Bathroom", Metrics: map[string]any{"area_sqm": 3.5, "min_dimension_m": 1.6},
			Ventilation: map[string]any{"has_window": true}},
		{ID: "r4", Type: "ExitDoor"},
	}
}

func TestAnalyzeWithBuiltKB(t *testing.T) {
	svc := newService(t, builtKB(t))

	report := svc.Analyze("p1", "a1", testRooms())

	assert.Equal(t, "p1", report.ProjectID)
	assert.Equal(t, 4, report.Summary.RoomsTotal)
	require.Len(t, report.Violations, 1)

	v := report.Violations[0]
	assert.Equal(t, "SBC-TABLE-Living-MIN-AREA", v.RuleID)
	assert.Equal(t, "area_sqm >= 11.2", v.Expected)
	assert.Equal(t, "area_sqm = 9", v.Actual)
	require.NotNil(t, v.RuleSentence)
	assert.Contains(t, *v.RuleSentence, "11.2")

	// The citation points into the residential requirements document.
	assert.Equal(t, "RES_REQUIREMENTS", v.Ref.Doc)
	require.NotNil(t, v.Ref.Page)
	assert.Equal(t, 42, *v.Ref.Page)
}

func TestAnalyzeWithoutKB(t *testing.T) {
	svc := newService(t, kb.DefaultPaths(t.TempDir()))

	report := svc.Analyze("p1", "a1", testRooms())

	// Evaluation still runs; findings just carry no citation.
	require.Len(t, report.Violations, 1)
	v := report.Violations[0]
	assert.Equal(t, "SBC-TABLE-Living-MIN-AREA", v.RuleID)
	assert.Nil(t, v.RuleSentence)
	assert.Empty(t, v.Ref.Doc)
}

func TestEvidencePassthrough(t *testing.T) {
	svc := newService(t, builtKB(t))

	hits, err := svc.Evidence(domain.EvidenceQuery{
		Keywords: []string{"دورة مياه", "نافذة"},
	}, 5, 0.05)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "SBC1101", hits[0].Doc)
}
