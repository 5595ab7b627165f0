package rules

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"sbccheck/internal/domain"
)

// Evaluate checks every room against the applicable per-room rules, then
// runs the unit-level aggregate rules over the whole input. One call
// covers one dwelling unit; room-type counts pool across all rooms given.
//
// Coercion failures never abort evaluation: a field that does not parse
// is treated as missing and the rule is skipped for that room.
func Evaluate(rooms []domain.Room, catalog []domain.Rule) domain.Result {
	violations := []domain.Finding{}
	warnings := []domain.Finding{}
	skipped := []domain.SkippedEntry{}

	for i := range rooms {
		room := &rooms[i]
		roomID := room.ID
		rtype := domain.NormalizeRoomType(room.Type)

		for _, rule := range catalog {
			if !rule.AppliesToType(rtype) {
				continue
			}

			switch rule.Check {
			case domain.CheckUnknownType:
				warnings = append(warnings, domain.Finding{
					RuleID:        rule.ID,
					Severity:      rule.Severity,
					RoomID:        &roomID,
					RoomType:      rtype,
					Message:       "نوع الغرفة غير معروف؛ يلزم تأكيد المستخدم قبل التحقق من الاشتراطات",
					EvidenceQuery: rule.EvidenceQuery,
				})

			case domain.CheckMinArea:
				area, ok := roomArea(room)
				if !ok {
					skipped = append(skipped, domain.SkippedEntry{
						RuleID: rule.ID, RoomID: &roomID, RoomType: rtype,
						Missing: "metrics.area_sqm",
					})
					continue
				}
				if area < rule.Threshold {
					violations = append(violations, domain.Finding{
						RuleID:        rule.ID,
						Severity:      rule.Severity,
						RoomID:        &roomID,
						RoomType:      rtype,
						Message:       "مساحة الغرفة أقل من الحد الأدنى المطلوب",
						Expected:      fmt.Sprintf("area_sqm >= %s", formatNum(rule.Threshold)),
						Actual:        fmt.Sprintf("area_sqm = %s", formatNum(area)),
						EvidenceQuery: rule.EvidenceQuery,
					})
				}

			case domain.CheckMinWidth:
				dim, ok := roomMinDimension(room)
				if !ok {
					skipped = append(skipped, domain.SkippedEntry{
						RuleID: rule.ID, RoomID: &roomID, RoomType: rtype,
						Missing: "metrics.min_dimension_m",
					})
					continue
				}
				if dim < rule.Threshold {
					violations = append(violations, domain.Finding{
						RuleID:        rule.ID,
						Severity:      rule.Severity,
						RoomID:        &roomID,
						RoomType:      rtype,
						Message:       "البعد/العرض الأدنى أقل من الحد المطلوب",
						Expected:      fmt.Sprintf("min_dimension_m >= %s", formatNum(rule.Threshold)),
						Actual:        fmt.Sprintf("min_dimension_m = %s", formatNum(dim)),
						EvidenceQuery: rule.EvidenceQuery,
					})
				}

			case domain.CheckHasWindow:
				hasWindow, ok := roomHasWindow(room)
				if !ok {
					skipped = append(skipped, domain.SkippedEntry{
						RuleID: rule.ID, RoomID: &roomID, RoomType: rtype,
						Missing: "ventilation.has_window",
					})
					continue
				}
				if !hasWindow {
					violations = append(violations, domain.Finding{
						RuleID:        rule.ID,
						Severity:      rule.Severity,
						RoomID:        &roomID,
						RoomType:      rtype,
						Message:       "يجب توفر نافذة لدورة المياه/المرحاض",
						Expected:      "has_window = True",
						Actual:        "has_window = False",
						EvidenceQuery: rule.EvidenceQuery,
					})
				}
			}
		}
	}

	typeCounts := make(map[domain.RoomType]int)
	for i := range rooms {
		typeCounts[domain.NormalizeRoomType(rooms[i].Type)]++
	}

	for _, rule := range catalog {
		if rule.Check != domain.CheckUnitMinCount || !rule.AppliesToType(domain.UnitPseudoType) {
			continue
		}

		if len(rule.CountTypes) == 0 {
			// Malformed rule, not a building defect.
			warnings = append(warnings, domain.Finding{
				RuleID:        rule.ID,
				Severity:      domain.SeverityWarning,
				RoomType:      domain.UnitPseudoType,
				Message:       "قاعدة مستوى الوحدة ينقصها إعداد count_types",
				EvidenceQuery: rule.EvidenceQuery,
			})
			continue
		}

		required := int(rule.Threshold)
		if required <= 0 {
			required = 1
		}
		actual := 0
		for _, t := range rule.CountTypes {
			actual += typeCounts[t]
		}

		if actual < required {
			violations = append(violations, domain.Finding{
				RuleID:        rule.ID,
				Severity:      rule.Severity,
				RoomType:      domain.UnitPseudoType,
				Message:       "الوحدة السكنية ينقصها عنصر مطلوب",
				Expected:      fmt.Sprintf("count(%s) >= %d", formatTypeList(rule.CountTypes), required),
				Actual:        fmt.Sprintf("count(%s) = %d", formatTypeList(rule.CountTypes), actual),
				EvidenceQuery: mergeCountTypes(rule.EvidenceQuery, rule.CountTypes),
			})
		}
	}

	return domain.Result{
		Summary: domain.Summary{
			RoomsTotal:         len(rooms),
			ViolationsTotal:    len(violations),
			WarningsTotal:      len(warnings),
			SkippedMissingData: len(skipped),
		},
		Violations: violations,
		Warnings:   warnings,
		Skipped:    skipped,
	}
}

// roomArea resolves the room area, preferring metrics.area_sqm and
// falling back to the legacy flat fields.
func roomArea(room *domain.Room) (float64, bool) {
	raw := metricValue(room.Metrics, "area_sqm")
	if raw == nil {
		if room.AreaM2 != nil {
			raw = room.AreaM2
		} else {
			raw = room.AreaSqm
		}
	}
	return coerceFloat(raw)
}

// roomMinDimension resolves the smallest clear dimension of the room.
func roomMinDimension(room *domain.Room) (float64, bool) {
	raw := metricValue(room.Metrics, "min_dimension_m")
	if raw == nil {
		raw = room.MinDimensionM
	}
	return coerceFloat(raw)
}

// roomHasWindow resolves the window flag, preferring the nested
// ventilation block. Only genuine booleans resolve; anything else is
// treated as missing.
func roomHasWindow(room *domain.Room) (bool, bool) {
	if room.Ventilation != nil {
		if v, present := room.Ventilation["has_window"]; present {
			b, ok := v.(bool)
			return b, ok
		}
	}
	if room.HasWindow != nil {
		b, ok := room.HasWindow.(bool)
		return b, ok
	}
	return false, false
}

func metricValue(metrics map[string]any, key string) any {
	if metrics == nil {
		return nil
	}
	return metrics[key]
}

// coerceFloat converts loosely typed numeric input. Unparsable values
// report false so the caller skips instead of failing.
func coerceFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func formatNum(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// formatTypeList renders count types as ['Kitchen', 'Bedroom'], matching
// the expected/actual string format of unit-level findings.
func formatTypeList(types []domain.RoomType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = "'" + string(t) + "'"
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// mergeCountTypes copies the rule's query template and records the
// resolved count types on it for the binder.
func mergeCountTypes(q *domain.EvidenceQuery, countTypes []domain.RoomType) *domain.EvidenceQuery {
	if q == nil {
		return &domain.EvidenceQuery{CountTypes: countTypes}
	}
	merged := *q
	merged.CountTypes = countTypes
	return &merged
}
