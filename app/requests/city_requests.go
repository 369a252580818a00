package requests

// ResolveCityRequest resolves a single raw city label.
type ResolveCityRequest struct {
	City      string   `json:"city" binding:"required"`
	Threshold *float64 `json:"threshold,omitempty"`
	UseCache  bool     `json:"use_cache,omitempty"`
}

// SourceRecordPayload is one input row of a batch request.
type SourceRecordPayload struct {
	Label string            `json:"label"`
	Extra map[string]string `json:"extra,omitempty"`
}

// ReconcileRequest reconciles a batch of rows against the directory.
type ReconcileRequest struct {
	Records    []SourceRecordPayload `json:"records" binding:"required,min=1,max=50000"`
	Threshold  *float64              `json:"threshold,omitempty"`
	Sheet      string                `json:"sheet,omitempty"`
	TrimHeader bool                  `json:"trim_header,omitempty"`
	Async      bool                  `json:"async,omitempty"`
}

// MergeRequest merges two row collections into one deduplicated set.
type MergeRequest struct {
	First     []SourceRecordPayload `json:"first" binding:"required"`
	Second    []SourceRecordPayload `json:"second" binding:"required"`
	Threshold *float64              `json:"threshold,omitempty"`
}

// OverrideItem is one manual choice: a directory name, or the no-match
// sentinel to reject every suggestion for the row.
type OverrideItem struct {
	RowID int    `json:"row_id" binding:"min=0"`
	Value string `json:"value" binding:"required"`
}

// OverrideRequest applies manual choices to a stored session.
type OverrideRequest struct {
	Overrides []OverrideItem `json:"overrides" binding:"required,min=1"`
}
