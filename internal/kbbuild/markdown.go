// Package kbbuild converts normalized Markdown (OCR output) into the
// JSONL chunk collections consumed by the retrieval engine. It is an
// offline, one-time batch step; the runtime never writes chunks.
package kbbuild

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"sbccheck/internal/arabic"
	"sbccheck/internal/domain"
)

var (
	pageRe      = regexp.MustCompile(`(?i)(?:^|\n)\s*(?:Page|الصفحة)\s*[:\-]?\s*(\d+)\s*(?:\n|$)`)
	mdHeadingRe = regexp.MustCompile(`^(#{1,3})\s+(.*)$`)
	// SBC clause headings look like "407-2 dwelling sanitation".
	sbcHeadingRe = regexp.MustCompile(`^(\d{3}(?:[-–—]\d+)*)\s+(.+)$`)
	fencedRe     = regexp.MustCompile("(?s)```.*?```")
)

const (
	minBlockLen = 20
	minChunkLen = 20

	// DefaultMaxChars and DefaultOverlapChars bound chunk size and the
	// overlap carried between adjacent chunks of one long block.
	DefaultMaxChars     = 1200
	DefaultOverlapChars = 150

	maxDerivedSection = 160
)

// block is a heading-delimited stretch of the source document.
type block struct {
	title string
	text  string
	page  *int
}

// Splitter turns one Markdown document into chunk records.
type Splitter struct {
	maxChars     int
	overlapChars int
}

// NewSplitter creates a Splitter; non-positive arguments use defaults.
func NewSplitter(maxChars, overlapChars int) *Splitter {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if overlapChars < 0 {
		overlapChars = DefaultOverlapChars
	}
	return &Splitter{maxChars: maxChars, overlapChars: overlapChars}
}

// Split converts a Markdown document into chunks. Markdown and SBC-style
// numeric headings open sections; page markers set provenance; blocks
// longer than maxChars are split with overlap. Chunk ids are sequential
// within the document.
func (s *Splitter) Split(md, docID, source string) []domain.Chunk {
	blocks := collectBlocks(md)

	var chunks []domain.Chunk
	chunkID := 0
	emit := func(text string, section string, page *int) {
		chunks = append(chunks, domain.Chunk{
			DocID:    docID,
			Source:   source,
			ChunkID:  chunkID,
			Page:     page,
			Section:  section,
			Text:     text,
			TextNorm: arabic.Normalize(text),
		})
		chunkID++
	}

	for _, blk := range blocks {
		text := strings.TrimSpace(fencedRe.ReplaceAllString(blk.text, ""))
		if utf8.RuneCountInString(text) < minBlockLen {
			continue
		}

		section := blk.title
		if section == "" {
			first := strings.SplitN(text, "\n", 2)[0]
			section = truncateRunes(first, maxDerivedSection)
		}

		runes := []rune(text)
		if len(runes) <= s.maxChars {
			if len(runes) >= minChunkLen {
				emit(text, section, blk.page)
			}
			continue
		}

		start := 0
		for start < len(runes) {
			end := start + s.maxChars
			if end > len(runes) {
				end = len(runes)
			}
			piece := strings.TrimSpace(string(runes[start:end]))
			if utf8.RuneCountInString(piece) >= minChunkLen {
				emit(piece, section, blk.page)
			}
			if end == len(runes) {
				break
			}
			start = end - s.overlapChars
			if start < 0 {
				start = 0
			}
		}
	}
	return chunks
}

// collectBlocks walks the document line by line, tracking page markers
// and opening a new block at every heading.
func collectBlocks(md string) []block {
	var blocks []block
	var currentTitle string
	var currentLines []string
	var currentPage, blockPage *int

	flush := func() {
		if len(currentLines) == 0 {
			return
		}
		text := strings.TrimSpace(strings.Join(currentLines, "\n"))
		if utf8.RuneCountInString(text) >= minBlockLen {
			blocks = append(blocks, block{title: currentTitle, text: text, page: blockPage})
		}
		currentLines = nil
	}

	for _, rawLine := range strings.Split(md, "\n") {
		stripped := strings.TrimSpace(rawLine)

		if m := pageRe.FindStringSubmatch(rawLine); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				page := n
				currentPage = &page
			}
		}

		if stripped == "" {
			if len(currentLines) > 0 {
				currentLines = append(currentLines, rawLine)
			}
			continue
		}

		mMD := mdHeadingRe.FindStringSubmatch(stripped)
		mSBC := sbcHeadingRe.FindStringSubmatch(stripped)
		if mMD != nil || mSBC != nil {
			flush()
			if mMD != nil {
				currentTitle = strings.TrimSpace(mMD[2])
			} else {
				currentTitle = strings.TrimSpace(mSBC[2])
			}
			blockPage = currentPage
			currentLines = append(currentLines, rawLine)
		} else {
			if len(currentLines) == 0 {
				blockPage = currentPage
			}
			currentLines = append(currentLines, rawLine)
		}
	}
	flush()
	return blocks
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
