// Package kb loads and caches the persisted knowledge-base chunk
// collections produced by the offline build step.
package kb

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"golang.org/x/sync/singleflight"

	"sbccheck/internal/domain"
)

// ErrChunkFileNotFound marks a retrieval against a chunk file that does
// not exist on disk. It fails the single retrieval call, not the
// surrounding analysis.
var ErrChunkFileNotFound = errors.New("chunk file not found")

// Store caches chunk collections per file path for the lifetime of the
// process. A path is read and parsed at most once; concurrent first
// access is collapsed through a single-flight group. The cache is never
// invalidated: external changes to a chunk file require a restart.
type Store struct {
	mu    sync.RWMutex
	cache map[string][]domain.Chunk
	group singleflight.Group
}

// NewStore creates an empty chunk store cache.
func NewStore() *Store {
	return &Store{cache: make(map[string][]domain.Chunk)}
}

// Load returns the chunk collection at path, reading it on first access.
// The returned slice is shared and must be treated as read-only.
func (s *Store) Load(path string) ([]domain.Chunk, error) {
	s.mu.RLock()
	chunks, ok := s.cache[path]
	s.mu.RUnlock()
	if ok {
		return chunks, nil
	}

	v, err, _ := s.group.Do(path, func() (any, error) {
		s.mu.RLock()
		cached, ok := s.cache[path]
		s.mu.RUnlock()
		if ok {
			return cached, nil
		}
		loaded, err := readChunkFile(path)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.cache[path] = loaded
		s.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Chunk), nil
}

// readChunkFile parses a JSONL chunk file: one record per line, blank
// lines ignored.
func readChunkFile(path string) ([]domain.Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrChunkFileNotFound, path)
		}
		return nil, fmt.Errorf("open chunk file %s: %w", path, err)
	}
	defer f.Close()

	var chunks []domain.Chunk
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var ch domain.Chunk
		if err := json.Unmarshal(line, &ch); err != nil {
			return nil, fmt.Errorf("parse %s line %d: %w", path, lineNo, err)
		}
		chunks = append(chunks, ch)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read chunk file %s: %w", path, err)
	}
	return chunks, nil
}
