package binder

import "sbccheck/internal/domain"

// Override tightens a finding's evidence query for a known ambiguous
// rule and returns the preferred keywords for sentence extraction. It
// must be pure: the input query is a copy and the original template is
// never mutated.
type Override func(q domain.EvidenceQuery) (domain.EvidenceQuery, []string)

// defaultOverrides is the static rule-id-keyed dispatch table. New
// overrides are added here, keyed by exact rule id, and stay testable in
// isolation.
func defaultOverrides() map[string]Override {
	return map[string]Override{
		"SBC-UNIT-MIN-1-KITCHEN": func(q domain.EvidenceQuery) (domain.EvidenceQuery, []string) {
			// The sanitation chapter mentions kitchens in passing all over;
			// pin the query to explicit kitchen wording.
			q.MustIncludeAnyKeywords = []string{"مطبخ", "بمطبخ", "بالمطبخ", "مطابخ"}
			return q, []string{"مطبخ", "بمطبخ", "حوض", "غسيل"}
		},
		"SBC-UNIT-MIN-1-EXIT-DOOR": func(q domain.EvidenceQuery) (domain.EvidenceQuery, []string) {
			return q, []string{"باب", "خروج", "وحدة سكنية"}
		},
	}
}
