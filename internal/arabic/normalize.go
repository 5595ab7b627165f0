// Package arabic canonicalizes Arabic text for search. The same
// normalization is applied to queries, to chunk text at ranking time and
// to the text used for highlight lookup, so scores and positions agree.
package arabic

import (
	"regexp"
	"strings"
)

var (
	spaceRe = regexp.MustCompile(`\s+`)
	tokenRe = regexp.MustCompile(`[a-z0-9\x{0600}-\x{06ff}]+`)
)

// letterMap unifies Arabic-Indic digits and common letter variants so
// spelling differences do not split the index vocabulary.
var letterMap = map[rune]rune{
	'٠': '0', '١': '1', '٢': '2', '٣': '3', '٤': '4',
	'٥': '5', '٦': '6', '٧': '7', '٨': '8', '٩': '9',
	'إ': 'ا', 'أ': 'ا', 'آ': 'ا', 'ٱ': 'ا',
	'ى': 'ي', 'ئ': 'ي',
	'ؤ': 'و',
	'ة': 'ه',
}

// diacritics are removed entirely, along with the tatweel elongation mark.
var diacritics = map[rune]struct{}{
	'ً': {}, // fathatan
	'ٌ': {}, // dammatan
	'ٍ': {}, // kasratan
	'َ': {}, // fatha
	'ُ': {}, // damma
	'ِ': {}, // kasra
	'ّ': {}, // shadda
	'ْ': {}, // sukun
	'ـ': {}, // tatweel
}

// Normalize canonicalizes text for indexing and matching: Arabic-Indic
// digits become ASCII, letter variants are unified, diacritics and
// tatweel are stripped, the result is lowercased and whitespace runs
// collapse to single spaces.
func Normalize(text string) string {
	mapped := strings.Map(func(r rune) rune {
		if _, drop := diacritics[r]; drop {
			return -1
		}
		if to, ok := letterMap[r]; ok {
			return to
		}
		return r
	}, text)
	mapped = strings.ToLower(mapped)
	return strings.TrimSpace(spaceRe.ReplaceAllString(mapped, " "))
}

// Tokenize normalizes text and extracts maximal runs of ASCII
// alphanumerics and Arabic-block characters. Everything else separates.
func Tokenize(text string) []string {
	return tokenRe.FindAllString(Normalize(text), -1)
}

// Contains reports whether needle occurs in hay after both are
// normalized. An empty needle never matches.
func Contains(hay, needle string) bool {
	n := Normalize(needle)
	if n == "" {
		return false
	}
	return strings.Contains(Normalize(hay), n)
}
