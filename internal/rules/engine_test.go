package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sbccheck/internal/domain"
)

func findingByRule(findings []domain.Finding, ruleID string) *domain.Finding {
	for i := range findings {
		if findings[i].RuleID == ruleID {
			return &findings[i]
		}
	}
	return nil
}

// completeUnit is a unit that passes every applicable check, so single
// deviations can be asserted in isolation.
func completeUnit() []domain.Room {
	return []domain.Room{
		{ID: "r1", Type: "Living", Metrics: map[string]any{"area_sqm": 15.0, "min_dimension_m": 3.0}},
		{ID: "r2", Type: "Kitchen", Metrics: map[string]any{"area_sqm": 6.0, "min_dimension_m": 2.0}},
		{ID: "r3", Type: "Bathroom", Metrics: map[string]any{"area_sqm": 3.5, "min_dimension_m": 1.6},
			Ventilation: map[string]any{"has_window": true}},
		{ID: "r4", Type: "ExitDoor"},
	}
}

func TestEvaluateCompliantUnit(t *testing.T) {
	res := Evaluate(completeUnit(), BuildCatalog())

	assert.Empty(t, res.Violations)
	assert.Empty(t, res.Warnings)
	assert.Empty(t, res.Skipped)
	assert.Equal(t, 4, res.Summary.RoomsTotal)
	assert.Equal(t, 0, res.Summary.ViolationsTotal)
}

func TestEvaluateMinArea(t *testing.T) {
	t.Run("below threshold is a violation", func(t *testing.T) {
		rooms := completeUnit()
		rooms[0].Metrics["area_sqm"] = 10.0
		res := Evaluate(rooms, BuildCatalog())

		f := findingByRule(res.Violations, "SBC-TABLE-Living-MIN-AREA")
		require.NotNil(t, f)
		assert.Equal(t, domain.SeverityViolation, f.Severity)
		require.NotNil(t, f.RoomID)
		assert.Equal(t, "r1", *f.RoomID)
		assert.Equal(t, "area_sqm >= 11.2", f.Expected)
		assert.Equal(t, "area_sqm = 10", f.Actual)
		require.NotNil(t, f.EvidenceQuery)
		assert.Equal(t, "area", f.EvidenceQuery.Metric)
	})

	t.Run("exactly at threshold passes", func(t *testing.T) {
		rooms := completeUnit()
		rooms[0].Metrics["area_sqm"] = 11.2
		res := Evaluate(rooms, BuildCatalog())
		assert.Nil(t, findingByRule(res.Violations, "SBC-TABLE-Living-MIN-AREA"))
	})

	t.Run("numeric string is coerced", func(t *testing.T) {
		rooms := completeUnit()
		rooms[0].Metrics["area_sqm"] = " 10.5 "
		res := Evaluate(rooms, BuildCatalog())

		f := findingByRule(res.Violations, "SBC-TABLE-Living-MIN-AREA")
		require.NotNil(t, f)
		assert.Equal(t, "area_sqm = 10.5", f.Actual)
	})

	t.Run("unparsable value is skipped, not failed", func(t *testing.T) {
		rooms := completeUnit()
		rooms[0].Metrics["area_sqm"] = "big"
		res := Evaluate(rooms, BuildCatalog())

		assert.Nil(t, findingByRule(res.Violations, "SBC-TABLE-Living-MIN-AREA"))
		require.Len(t, res.Skipped, 1)
		assert.Equal(t, "SBC-TABLE-Living-MIN-AREA", res.Skipped[0].RuleID)
		assert.Equal(t, "metrics.area_sqm", res.Skipped[0].Missing)
	})

	t.Run("legacy flat field used when metrics absent", func(t *testing.T) {
		rooms := completeUnit()
		rooms[0].Metrics = map[string]any{"min_dimension_m": 3.0}
		rooms[0].AreaM2 = 9.0
		res := Evaluate(rooms, BuildCatalog())

		f := findingByRule(res.Violations, "SBC-TABLE-Living-MIN-AREA")
		require.NotNil(t, f)
		assert.Equal(t, "area_sqm = 9", f.Actual)
	})
}

func TestEvaluateMinWidth(t *testing.T) {
	rooms := completeUnit()
	rooms[1].Metrics["min_dimension_m"] = 1.5
	res := Evaluate(rooms, BuildCatalog())

	f := findingByRule(res.Violations, "SBC-TABLE-Kitchen-MIN-WIDTH")
	require.NotNil(t, f)
	assert.Equal(t, "min_dimension_m >= 1.8", f.Expected)
	assert.Equal(t, "min_dimension_m = 1.5", f.Actual)
}

func TestEvaluateHasWindow(t *testing.T) {
	t.Run("false is a violation", func(t *testing.T) {
		rooms := completeUnit()
		rooms[2].Ventilation["has_window"] = false
		res := Evaluate(rooms, BuildCatalog())

		f := findingByRule(res.Violations, "SBC1101-BATH-WC-HAS-WINDOW")
		require.NotNil(t, f)
		assert.Equal(t, "has_window = True", f.Expected)
		assert.Equal(t, "has_window = False", f.Actual)
	})

	t.Run("missing flag is skipped", func(t *testing.T) {
		rooms := completeUnit()
		rooms[2].Ventilation = nil
		res := Evaluate(rooms, BuildCatalog())

		assert.Nil(t, findingByRule(res.Violations, "SBC1101-BATH-WC-HAS-WINDOW"))
		require.Len(t, res.Skipped, 1)
		assert.Equal(t, "ventilation.has_window", res.Skipped[0].Missing)
	})

	t.Run("non-bool flag is treated as missing", func(t *testing.T) {
		rooms := completeUnit()
		rooms[2].Ventilation["has_window"] = "yes"
		res := Evaluate(rooms, BuildCatalog())

		assert.Nil(t, findingByRule(res.Violations, "SBC1101-BATH-WC-HAS-WINDOW"))
		assert.Len(t, res.Skipped, 1)
	})

	t.Run("flat has_window fallback", func(t *testing.T) {
		rooms := completeUnit()
		rooms[2].Ventilation = nil
		rooms[2].HasWindow = false
		res := Evaluate(rooms, BuildCatalog())
		assert.NotNil(t, findingByRule(res.Violations, "SBC1101-BATH-WC-HAS-WINDOW"))
	})
}

func TestEvaluateUnitCounts(t *testing.T) {
	t.Run("missing kitchen", func(t *testing.T) {
		rooms := []domain.Room{
			{ID: "r1", Type: "Bedroom", Metrics: map[string]any{"area_sqm": 8.0, "min_dimension_m": 2.5}},
			{ID: "r2", Type: "Bedroom", Metrics: map[string]any{"area_sqm": 8.0, "min_dimension_m": 2.5}},
			{ID: "r3", Type: "Bathroom", Metrics: map[string]any{"area_sqm": 3.5, "min_dimension_m": 1.6},
				Ventilation: map[string]any{"has_window": true}},
			{ID: "r4", Type: "ExitDoor"},
		}
		res := Evaluate(rooms, BuildCatalog())

		f := findingByRule(res.Violations, "SBC-UNIT-MIN-1-KITCHEN")
		require.NotNil(t, f)
		assert.Nil(t, f.RoomID)
		assert.Equal(t, domain.UnitPseudoType, f.RoomType)
		assert.Equal(t, "count(['Kitchen']) >= 1", f.Expected)
		assert.Equal(t, "count(['Kitchen']) = 0", f.Actual)
		require.NotNil(t, f.EvidenceQuery)
		assert.Equal(t, []domain.RoomType{domain.RoomKitchen}, f.EvidenceQuery.CountTypes)
	})

	t.Run("kitchen present satisfies the count", func(t *testing.T) {
		rooms := append(completeUnit(), domain.Room{ID: "r5", Type: "Bedroom",
			Metrics: map[string]any{"area_sqm": 8.0, "min_dimension_m": 2.5}})
		res := Evaluate(rooms, BuildCatalog())
		assert.Nil(t, findingByRule(res.Violations, "SBC-UNIT-MIN-1-KITCHEN"))
	})

	t.Run("either bathroom or wc satisfies the bathroom count", func(t *testing.T) {
		rooms := []domain.Room{
			{ID: "r1", Type: "Kitchen", Metrics: map[string]any{"area_sqm": 6.0, "min_dimension_m": 2.0}},
			{ID: "r2", Type: "WC", Metrics: map[string]any{"area_sqm": 2.0, "min_dimension_m": 1.2},
				Ventilation: map[string]any{"has_window": true}},
			{ID: "r3", Type: "ExitDoor"},
		}
		res := Evaluate(rooms, BuildCatalog())
		assert.Nil(t, findingByRule(res.Violations, "SBC-UNIT-MIN-1-BATHROOM"))
	})

	t.Run("missing exit door", func(t *testing.T) {
		rooms := completeUnit()[:3]
		res := Evaluate(rooms, BuildCatalog())

		f := findingByRule(res.Violations, "SBC-UNIT-MIN-1-EXIT-DOOR")
		require.NotNil(t, f)
		assert.Equal(t, "count(['ExitDoor']) = 0", f.Actual)
	})

	t.Run("empty unit reports all three unit violations", func(t *testing.T) {
		res := Evaluate(nil, BuildCatalog())
		assert.Equal(t, 0, res.Summary.RoomsTotal)
		assert.NotNil(t, findingByRule(res.Violations, "SBC-UNIT-MIN-1-KITCHEN"))
		assert.NotNil(t, findingByRule(res.Violations, "SBC-UNIT-MIN-1-BATHROOM"))
		assert.NotNil(t, findingByRule(res.Violations, "SBC-UNIT-MIN-1-EXIT-DOOR"))
	})

	t.Run("rule without count types yields a config warning", func(t *testing.T) {
		catalog := []domain.Rule{{
			ID:        "UNIT-BROKEN",
			Severity:  domain.SeverityViolation,
			AppliesTo: []domain.RoomType{domain.UnitPseudoType},
			Check:     domain.CheckUnitMinCount,
			Threshold: 1,
		}}
		res := Evaluate(completeUnit(), catalog)

		require.Len(t, res.Warnings, 1)
		assert.Equal(t, "UNIT-BROKEN", res.Warnings[0].RuleID)
		assert.Equal(t, domain.SeverityWarning, res.Warnings[0].Severity)
		assert.Empty(t, res.Violations)
	})
}

func TestEvaluateUnknownType(t *testing.T) {
	rooms := append(completeUnit(), domain.Room{ID: "r9", Type: "Garage"})
	res := Evaluate(rooms, BuildCatalog())

	f := findingByRule(res.Warnings, "ROOM-TYPE-UNKNOWN")
	require.NotNil(t, f)
	require.NotNil(t, f.RoomID)
	assert.Equal(t, "r9", *f.RoomID)
	assert.Equal(t, domain.RoomUnknown, f.RoomType)
	// Unknown rooms get no dimension checks, so nothing is skipped for r9.
	assert.Empty(t, res.Skipped)
}

func TestCoerceFloat(t *testing.T) {
	cases := []struct {
		in   any
		want float64
		ok   bool
	}{
		{3.5, 3.5, true},
		{float32(2), 2, true},
		{7, 7, true},
		{int64(4), 4, true},
		{"2.8", 2.8, true},
		{" 11.2 ", 11.2, true},
		{"", 0, false},
		{"n/a", 0, false},
		{nil, 0, false},
		{true, 0, false},
		{[]any{1.0}, 0, false},
	}
	for _, c := range cases {
		got, ok := coerceFloat(c.in)
		assert.Equal(t, c.ok, ok, "input %#v", c.in)
		if c.ok {
			assert.InDelta(t, c.want, got, 1e-9, "input %#v", c.in)
		}
	}
}

func TestBuildCatalog(t *testing.T) {
	catalog := BuildCatalog()

	ids := make(map[string]struct{}, len(catalog))
	for _, r := range catalog {
		_, dup := ids[r.ID]
		assert.False(t, dup, "duplicate rule id %s", r.ID)
		ids[r.ID] = struct{}{}
	}

	// Corridor has a width limit but no area limit in the table.
	assert.Contains(t, ids, "SBC-TABLE-Corridor-MIN-WIDTH")
	assert.NotContains(t, ids, "SBC-TABLE-Corridor-MIN-AREA")
	assert.Contains(t, ids, "SBC-TABLE-WC-MIN-AREA")
	assert.Contains(t, ids, "ROOM-TYPE-UNKNOWN")
}
