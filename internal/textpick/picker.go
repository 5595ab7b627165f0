// Package textpick selects one short sentence likely to express a code
// requirement from an evidence quote.
package textpick

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// sentenceSplitRe splits on the Arabic/Latin sentence punctuation class.
var sentenceSplitRe = regexp.MustCompile(`[.\n؟!؛]+`)

// obligationMarkers signal normative language (must / shall / required).
var obligationMarkers = []string{"يجب", "لا يجوز", "يلزم", "يشترط"}

// minSentenceLen discards fragments too short to be a usable citation.
const minSentenceLen = 10

// BestSentence picks the highest-scoring sentence from text: +3 when it
// contains any obligation marker, +2 per preferred keyword found in it.
// Sentences scoring zero are ignored; if none score, ok is false. Ties
// keep the earliest sentence.
func BestSentence(text string, prefer []string) (string, bool) {
	if text == "" {
		return "", false
	}

	var sentences []string
	for _, s := range sentenceSplitRe.Split(text, -1) {
		s = strings.TrimSpace(s)
		if utf8.RuneCountInString(s) > minSentenceLen {
			sentences = append(sentences, s)
		}
	}

	type scored struct {
		score    int
		sentence string
	}
	var candidates []scored
	for _, s := range sentences {
		score := 0
		for _, marker := range obligationMarkers {
			if strings.Contains(s, marker) {
				score += 3
				break
			}
		}
		for _, kw := range prefer {
			if kw != "" && strings.Contains(s, kw) {
				score += 2
			}
		}
		if score > 0 {
			candidates = append(candidates, scored{score, s})
		}
	}
	if len(candidates) == 0 {
		return "", false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	return candidates[0].sentence, true
}
