package domain

// Finding is a violation or warning produced by evaluating one rule
// against one room or the whole unit. RoomID is nil for unit-level
// findings. Evidence fields are populated later by the binder.
type Finding struct {
	RuleID        string         `json:"rule_id"`
	Severity      Severity       `json:"severity"`
	RoomID        *string        `json:"room_id"`
	RoomType      RoomType       `json:"room_type"`
	Message       string         `json:"message"`
	Expected      string         `json:"expected,omitempty"`
	Actual        string         `json:"actual,omitempty"`
	EvidenceQuery *EvidenceQuery `json:"evidence_query,omitempty"`

	Evidence     []EvidenceHit `json:"evidence,omitempty"`
	RuleSentence *string       `json:"rule_sentence,omitempty"`
	EvidenceUsed []EvidenceHit `json:"evidence_used,omitempty"`
}

// SkippedEntry records a rule that could not run because a required
// field was absent or unparsable.
type SkippedEntry struct {
	RuleID   string   `json:"rule_id"`
	RoomID   *string  `json:"room_id"`
	RoomType RoomType `json:"room_type"`
	Missing  string   `json:"missing"`
}

// Summary holds the counters of one evaluation.
type Summary struct {
	RoomsTotal         int `json:"rooms_total"`
	ViolationsTotal    int `json:"violations_total"`
	WarningsTotal      int `json:"warnings_total"`
	SkippedMissingData int `json:"skipped_missing_data"`
}

// Result is the raw output of the rule engine, before evidence binding.
type Result struct {
	Summary    Summary        `json:"summary"`
	Violations []Finding      `json:"violations"`
	Warnings   []Finding      `json:"warnings"`
	Skipped    []SkippedEntry `json:"skipped"`
}

// Citation points at the single chunk a reported finding relies on.
type Citation struct {
	Doc     string `json:"doc"`
	Section string `json:"section"`
	Page    *int   `json:"page"`
	ChunkID int    `json:"chunk_id"`
	Source  string `json:"source"`
}

// ReportFinding is the reader-facing projection of an enriched finding.
type ReportFinding struct {
	RuleID       string   `json:"rule_id"`
	RoomID       *string  `json:"room_id"`
	RoomType     RoomType `json:"room_type"`
	Expected     string   `json:"expected,omitempty"`
	Actual       string   `json:"actual,omitempty"`
	RuleSentence *string  `json:"rule_sentence"`
	Ref          Citation `json:"ref"`
}

// Report is the final formatted output of one analysis request.
type Report struct {
	ProjectID  string          `json:"project_id"`
	AssetID    string          `json:"asset_id"`
	Summary    Summary         `json:"summary"`
	Violations []ReportFinding `json:"violations"`
	Warnings   []ReportFinding `json:"warnings"`
}
