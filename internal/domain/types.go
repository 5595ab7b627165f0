package domain

// RoomType is the closed set of room classifications the rule catalog knows.
type RoomType string

const (
	RoomLiving      RoomType = "Living"
	RoomBedroom     RoomType = "Bedroom"
	RoomKitchen     RoomType = "Kitchen"
	RoomBathroom    RoomType = "Bathroom"
	RoomWC          RoomType = "WC"
	RoomCorridor    RoomType = "Corridor"
	RoomServiceRoom RoomType = "ServiceRoom"
	RoomExitDoor    RoomType = "ExitDoor"
	RoomUnknown     RoomType = "Unknown"
)

// UnitPseudoType marks rules evaluated once per dwelling unit rather than per room.
const UnitPseudoType RoomType = "__UNIT__"

var roomTypes = map[RoomType]struct{}{
	RoomLiving:      {},
	RoomBedroom:     {},
	RoomKitchen:     {},
	RoomBathroom:    {},
	RoomWC:          {},
	RoomCorridor:    {},
	RoomServiceRoom: {},
	RoomExitDoor:    {},
	RoomUnknown:     {},
}

// NormalizeRoomType coerces a free-form declared type into the closed set.
// Anything unrecognized, including the empty string, becomes Unknown.
func NormalizeRoomType(t string) RoomType {
	if t == "" {
		return RoomUnknown
	}
	if _, ok := roomTypes[RoomType(t)]; ok {
		return RoomType(t)
	}
	return RoomUnknown
}

// Room is a single floorplan room as submitted for analysis.
// Numeric and boolean fields are declared as any on purpose: upstream plan
// extractors emit inconsistent types, and a value that does not coerce is
// treated as absent rather than failing the whole request.
type Room struct {
	ID      string         `json:"id"`
	Type    string         `json:"type"`
	Metrics map[string]any `json:"metrics,omitempty"`

	// Legacy flat fields, consulted when the nested metrics are absent.
	AreaM2        any `json:"area_m2,omitempty"`
	AreaSqm       any `json:"area_sqm,omitempty"`
	MinDimensionM any `json:"min_dimension_m,omitempty"`

	Ventilation map[string]any `json:"ventilation,omitempty"`
	HasWindow   any            `json:"has_window,omitempty"`
}

// Severity of a rule and of the findings it produces.
type Severity string

const (
	SeverityViolation Severity = "violation"
	SeverityWarning   Severity = "warning"
)

// CheckKind selects the evaluation behaviour of a rule.
type CheckKind string

const (
	CheckUnknownType  CheckKind = "unknown_type"
	CheckMinArea      CheckKind = "min_area"
	CheckMinWidth     CheckKind = "min_width"
	CheckHasWindow    CheckKind = "has_window"
	CheckUnitMinCount CheckKind = "unit_min_count"
)

// Rule is one immutable entry of the static rule catalog.
type Rule struct {
	ID            string
	Title         string
	Severity      Severity
	AppliesTo     []RoomType
	Check         CheckKind
	Threshold     float64
	CountTypes    []RoomType
	EvidenceQuery *EvidenceQuery
}

// AppliesToType reports whether the rule targets the given room type.
func (r Rule) AppliesToType(t RoomType) bool {
	for _, a := range r.AppliesTo {
		if a == t {
			return true
		}
	}
	return false
}

// EvidenceQuery is a structured specification of the supporting text a
// finding needs: ranking hints plus hard inclusion/exclusion filters.
type EvidenceQuery struct {
	Doc                    string   `json:"doc,omitempty"`
	SectionHint            string   `json:"section_hint,omitempty"`
	Keywords               []string `json:"keywords,omitempty"`
	RoomType               string   `json:"room_type,omitempty"`
	Metric                 string   `json:"metric,omitempty"`
	MustIncludeKeywords    []string `json:"must_include_keywords,omitempty"`
	MustIncludeAnyKeywords []string `json:"must_include_any_keywords,omitempty"`
	ExcludeHints           []string `json:"exclude_hints,omitempty"`
	BoostKeywords          []string `json:"boost_keywords,omitempty"`

	// CountTypes is merged in by the rule engine on unit-level findings so
	// the binder can see which room types the count covered.
	CountTypes []RoomType `json:"count_types,omitempty"`
}

// Chunk is an immutable, citable unit of knowledge-base text with
// document, section and page provenance. ChunkID is unique only within
// its producing document.
type Chunk struct {
	DocID    string `json:"doc_id"`
	Source   string `json:"source"`
	ChunkID  int    `json:"chunk_id"`
	Page     *int   `json:"page"`
	Section  string `json:"section"`
	Text     string `json:"text"`
	TextNorm string `json:"text_norm"`
}

// EvidenceHit is one ranked retrieval result with a bounded quote.
type EvidenceHit struct {
	Score   float64 `json:"score"`
	Doc     string  `json:"doc"`
	Source  string  `json:"source"`
	ChunkID int     `json:"chunk_id"`
	Page    *int    `json:"page"`
	Section string  `json:"section"`
	Quote   string  `json:"quote"`
}

// EvidenceRetriever ranks knowledge-base chunks against a structured query.
type EvidenceRetriever interface {
	Retrieve(q EvidenceQuery, topK int, minScore float64) ([]EvidenceHit, error)
}
