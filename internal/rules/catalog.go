// Package rules holds the static residential building-code rule catalog
// and the engine that evaluates rooms against it.
package rules

import (
	"fmt"

	"sbccheck/internal/domain"
	"sbccheck/internal/kb"
)

// tableLimit is one row of the code's dimension table: minimum area in
// square meters and minimum clear dimension in meters. A zero value
// means the table defines no limit for that metric.
type tableLimit struct {
	roomType domain.RoomType
	minArea  float64
	minWidth float64
}

// tableLimits reproduces the dimension table of the residential
// requirements document. Order fixes rule ordering in the catalog.
var tableLimits = []tableLimit{
	{domain.RoomLiving, 11.2, 2.8},
	{domain.RoomBedroom, 6.5, 2.1},
	{domain.RoomKitchen, 5.0, 1.8},
	{domain.RoomBathroom, 2.8, 1.4},
	{domain.RoomWC, 1.5, 1.0},
	{domain.RoomServiceRoom, 6.5, 2.1},
	{domain.RoomCorridor, 0, 0.9},
}

// TableRulePrefix identifies rules derived from the dimension table.
// The binder renders their supporting sentence deterministically.
const TableRulePrefix = "SBC-TABLE-"

// BuildCatalog constructs the full rule catalog. It is a pure function
// over static domain data; the result is built once at startup and
// never mutated during evaluation.
func BuildCatalog() []domain.Rule {
	var rules []domain.Rule

	for _, lim := range tableLimits {
		if lim.minArea > 0 {
			rules = append(rules, domain.Rule{
				ID:        fmt.Sprintf("%s%s-MIN-AREA", TableRulePrefix, lim.roomType),
				Title:     fmt.Sprintf("Minimum area for %s", lim.roomType),
				Severity:  domain.SeverityViolation,
				AppliesTo: []domain.RoomType{lim.roomType},
				Check:     domain.CheckMinArea,
				Threshold: lim.minArea,
				EvidenceQuery: &domain.EvidenceQuery{
					Doc:         kb.DocResReq,
					SectionHint: "مساحات الغرف والفراغات السكنية",
					RoomType:    string(lim.roomType),
					Metric:      "area",
				},
			})
		}
		if lim.minWidth > 0 {
			rules = append(rules, domain.Rule{
				ID:        fmt.Sprintf("%s%s-MIN-WIDTH", TableRulePrefix, lim.roomType),
				Title:     fmt.Sprintf("Minimum width for %s", lim.roomType),
				Severity:  domain.SeverityViolation,
				AppliesTo: []domain.RoomType{lim.roomType},
				Check:     domain.CheckMinWidth,
				Threshold: lim.minWidth,
				EvidenceQuery: &domain.EvidenceQuery{
					Doc:         kb.DocResReq,
					SectionHint: "مساحات الغرف والفراغات السكنية",
					RoomType:    string(lim.roomType),
					Metric:      "width",
				},
			})
		}
	}

	rules = append(rules, domain.Rule{
		ID:        "SBC1101-BATH-WC-HAS-WINDOW",
		Title:     "Bathrooms/WC must have a window",
		Severity:  domain.SeverityViolation,
		AppliesTo: []domain.RoomType{domain.RoomBathroom, domain.RoomWC},
		Check:     domain.CheckHasWindow,
		EvidenceQuery: &domain.EvidenceQuery{
			Doc:         kb.DocSBC1101,
			SectionHint: "دورات المياه",
			Keywords:    []string{"الحمامات", "دورات المياه", "نوافذ", "مساحة زجاجية"},
		},
	})

	rules = append(rules, domain.Rule{
		ID:         "SBC-UNIT-MIN-1-KITCHEN",
		Title:      "Each dwelling unit must include a kitchen",
		Severity:   domain.SeverityViolation,
		AppliesTo:  []domain.RoomType{domain.UnitPseudoType},
		Check:      domain.CheckUnitMinCount,
		Threshold:  1,
		CountTypes: []domain.RoomType{domain.RoomKitchen},
		EvidenceQuery: &domain.EvidenceQuery{
			Doc:                    kb.DocSBC1101,
			SectionHint:            "الصرف الصحي",
			Keywords:               []string{"وحدة سكنية", "مطبخ", "حوض", "غسيل"},
			MustIncludeAnyKeywords: []string{"مطبخ", "بمطبخ", "بالمطبخ", "مطابخ"},
			BoostKeywords:          []string{"حوض", "غسيل"},
			ExcludeHints:           []string{"التعاريف", "تعريف", "Definitions"},
		},
	})

	rules = append(rules, domain.Rule{
		ID:         "SBC-UNIT-MIN-1-BATHROOM",
		Title:      "Each dwelling unit must include at least one bathroom/WC",
		Severity:   domain.SeverityViolation,
		AppliesTo:  []domain.RoomType{domain.UnitPseudoType},
		Check:      domain.CheckUnitMinCount,
		Threshold:  1,
		CountTypes: []domain.RoomType{domain.RoomBathroom, domain.RoomWC},
		EvidenceQuery: &domain.EvidenceQuery{
			Doc:                    kb.DocSBC1101,
			SectionHint:            "الصرف الصحي",
			Keywords:               []string{"وحدة سكنية", "دورة مياه", "مرحاض"},
			MustIncludeAnyKeywords: []string{"دورة", "مياه", "مرحاض", "مراحيض"},
			ExcludeHints:           []string{"التعاريف", "تعريف", "Definitions"},
		},
	})

	rules = append(rules, domain.Rule{
		ID:         "SBC-UNIT-MIN-1-EXIT-DOOR",
		Title:      "Each dwelling unit must have at least one exit door",
		Severity:   domain.SeverityViolation,
		AppliesTo:  []domain.RoomType{domain.UnitPseudoType},
		Check:      domain.CheckUnitMinCount,
		Threshold:  1,
		CountTypes: []domain.RoomType{domain.RoomExitDoor},
		EvidenceQuery: &domain.EvidenceQuery{
			Doc:                    kb.DocSBC1101,
			SectionHint:            "وسائل الخروج",
			Keywords:               []string{"باب خروج", "وسائل الخروج", "وحدة سكنية", "واحد على الأقل"},
			MustIncludeAnyKeywords: []string{"باب", "خروج"},
		},
	})

	rules = append(rules, domain.Rule{
		ID:        "ROOM-TYPE-UNKNOWN",
		Title:     "Room type is Unknown (requires user confirmation)",
		Severity:  domain.SeverityWarning,
		AppliesTo: []domain.RoomType{domain.RoomUnknown},
		Check:     domain.CheckUnknownType,
	})

	return rules
}
