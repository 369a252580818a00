package models

// Candidate is one scored directory entry considered for a query. Score is
// the raw similarity, never the internally adjusted ranking value.
type Candidate struct {
	Name  string  `json:"name" bson:"name"`
	Score float64 `json:"score" bson:"score"`
}

// Match is the selected best candidate for a query. TieBreak is the position
// used to pick among equally ranked candidates (0 for decisive stages).
type Match struct {
	Name     string  `json:"name" bson:"name"`
	Score    float64 `json:"score" bson:"score"`
	TieBreak int     `json:"tie_break" bson:"tie_break"`
}

// Resolution is the outcome of resolving a single label: the best match (nil
// when nothing cleared the threshold) plus the full candidate list, retained
// so a reviewer can pick a different entry later without recomputation.
type Resolution struct {
	Query            string      `json:"query" bson:"query"`
	Match            *Match      `json:"match,omitempty" bson:"match,omitempty"`
	Candidates       []Candidate `json:"candidates" bson:"candidates"`
	Threshold        float64     `json:"threshold" bson:"threshold"`
	DirectoryVersion string      `json:"directory_version" bson:"directory_version"`
}

// Status classifies one reconciled record. Exactly one applies per record.
type Status string

const (
	StatusExact           Status = "exact"
	StatusApproximate     Status = "approximate"
	StatusNotFound        Status = "not_found"
	StatusDuplicateInput  Status = "duplicate_input"
	StatusDuplicateResult Status = "duplicate_result"
	StatusEmpty           Status = "empty"
)

// IsDuplicate reports whether the status is one of the duplicate tags.
func (s Status) IsDuplicate() bool {
	return s == StatusDuplicateInput || s == StatusDuplicateResult
}

// SourceRecord is one input row: the free-text label plus opaque pass-through
// columns copied verbatim onto the output record.
type SourceRecord struct {
	Label string            `json:"label" bson:"label"`
	Extra map[string]string `json:"extra,omitempty" bson:"extra,omitempty"`
}

// ResolvedRecord is one row of reconciliation output. Resolved fields are
// empty when no match was found. RowID is the original input position.
type ResolvedRecord struct {
	Original     string            `json:"original" bson:"original"`
	Matched      string            `json:"matched,omitempty" bson:"matched,omitempty"`
	MatchedID    string            `json:"matched_id,omitempty" bson:"matched_id,omitempty"`
	ParentRegion string            `json:"parent_region,omitempty" bson:"parent_region,omitempty"`
	Score        float64           `json:"score" bson:"score"`
	Changed      bool              `json:"changed" bson:"changed"`
	Status       Status            `json:"status" bson:"status"`
	RowID        int               `json:"row_id" bson:"row_id"`
	Source       string            `json:"source,omitempty" bson:"source,omitempty"`
	Extra        map[string]string `json:"extra,omitempty" bson:"extra,omitempty"`
}
