package retrieval

import (
	"strings"
	"unicode/utf8"

	"sbccheck/internal/arabic"
)

// maxQuoteChars bounds the excerpt attached to an evidence hit.
const maxQuoteChars = 700

// sliceQuote extracts a bounded excerpt centered on the first query
// token found in the chunk. One third of the window precedes the hit.
// Ellipsis markers are added on the sides where the window does not
// reach the chunk boundary. Without any token hit the leading maxChars
// are returned verbatim.
func sliceQuote(text string, queryTokens []string, maxChars int) string {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return ""
	}

	norm := arabic.Normalize(raw)
	hitPos := -1
	for _, t := range queryTokens {
		if t == "" {
			continue
		}
		if i := strings.Index(norm, t); i >= 0 {
			hitPos = utf8.RuneCountInString(norm[:i])
			break
		}
	}

	runes := []rune(raw)
	if hitPos < 0 {
		if len(runes) <= maxChars {
			return raw
		}
		return strings.TrimSpace(string(runes[:maxChars]))
	}

	start := hitPos - maxChars/3
	if start < 0 {
		start = 0
	}
	end := start + maxChars
	if end > len(runes) {
		end = len(runes)
	}

	snippet := strings.TrimSpace(string(runes[start:end]))
	if start > 0 {
		snippet = "… " + snippet
	}
	if end < len(runes) {
		snippet = snippet + " …"
	}
	return snippet
}
