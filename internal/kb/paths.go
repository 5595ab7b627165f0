package kb

import (
	"os"
	"path/filepath"
)

// SentinelFile marks a completed knowledge-base build. Retrieval must be
// skipped entirely while it is absent.
const SentinelFile = ".built"

// Standard document names recognized by the chunk-file mapping.
const (
	DocSBC1101 = "SBC1101"
	DocResReq  = "اشتراطات إنشاء المباني السكنية"
)

// Paths maps knowledge-base document names to their chunk files.
// Unrecognized (or empty) doc names resolve to the combined collection.
type Paths struct {
	Dir  string
	All  string
	Docs map[string]string
}

// DefaultPaths lays out the knowledge base under dir using the standard
// file names of the build step.
func DefaultPaths(dir string) Paths {
	return Paths{
		Dir: dir,
		All: filepath.Join(dir, "kb_all_chunks.jsonl"),
		Docs: map[string]string{
			DocSBC1101: filepath.Join(dir, "sbc1101_chunks.jsonl"),
			DocResReq:  filepath.Join(dir, "res_requirements_chunks.jsonl"),
		},
	}
}

// Resolve returns the chunk files to search for a doc name.
func (p Paths) Resolve(doc string) []string {
	if path, ok := p.Docs[doc]; ok {
		return []string{path}
	}
	return []string{p.All}
}

// Ready reports whether the knowledge base has been built: the build
// sentinel and the combined chunk file must both exist.
func (p Paths) Ready() bool {
	if _, err := os.Stat(filepath.Join(p.Dir, SentinelFile)); err != nil {
		return false
	}
	if _, err := os.Stat(p.All); err != nil {
		return false
	}
	return true
}
