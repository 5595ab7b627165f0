package kbbuild

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"sbccheck/internal/domain"
	"sbccheck/internal/kb"
)

// DocInput names one source Markdown file and the identity its chunks
// will carry.
type DocInput struct {
	MarkdownPath string
	DocID        string
	Source       string
	OutFile      string
}

// DocResult summarizes one built document in the manifest.
type DocResult struct {
	DocID  string `json:"doc_id"`
	File   string `json:"file"`
	Chunks int    `json:"chunks"`
}

// Manifest records one completed knowledge-base build.
type Manifest struct {
	BuildID     string      `json:"build_id"`
	CreatedAt   string      `json:"created_at"`
	Docs        []DocResult `json:"docs"`
	TotalChunks int         `json:"total_chunks"`
}

// Builder produces the chunk store: per-document JSONL files, the
// combined collection, a build manifest and the readiness sentinel.
// The sentinel is written last, only after everything else succeeded.
type Builder struct {
	splitter *Splitter
	logger   *slog.Logger
}

// NewBuilder creates a Builder with default chunking bounds.
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{splitter: NewSplitter(0, -1), logger: logger}
}

// Build runs the full batch: every input document is split and written,
// the combined file is concatenated from the per-document outputs, then
// the manifest and sentinel are written into paths.Dir.
func (b *Builder) Build(inputs []DocInput, paths kb.Paths) (*Manifest, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no input documents")
	}
	if err := os.MkdirAll(paths.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create kb dir: %w", err)
	}

	manifest := &Manifest{
		BuildID:   uuid.New().String(),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	var all []domain.Chunk
	for _, in := range inputs {
		md, err := os.ReadFile(in.MarkdownPath)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", in.MarkdownPath, err)
		}
		chunks := b.splitter.Split(string(md), in.DocID, in.Source)
		if err := writeJSONL(in.OutFile, chunks); err != nil {
			return nil, err
		}
		b.logger.Info("built chunk file", "doc_id", in.DocID, "file", in.OutFile, "chunks", len(chunks))

		manifest.Docs = append(manifest.Docs, DocResult{
			DocID:  in.DocID,
			File:   filepath.Base(in.OutFile),
			Chunks: len(chunks),
		})
		manifest.TotalChunks += len(chunks)
		all = append(all, chunks...)
	}

	if err := writeJSONL(paths.All, all); err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(paths.Dir, "manifest.json"), data, 0o644); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}

	if err := os.WriteFile(filepath.Join(paths.Dir, kb.SentinelFile), []byte("ok"), 0o644); err != nil {
		return nil, fmt.Errorf("write sentinel: %w", err)
	}
	return manifest, nil
}

func writeJSONL(path string, chunks []domain.Chunk) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	enc := json.NewEncoder(f)
	for i := range chunks {
		if err := enc.Encode(&chunks[i]); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return f.Close()
}
