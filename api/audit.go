package api

import "time"

// ExtractionRecord describes a single extraction attempt made by a node.
type ExtractionRecord struct {
	ID           string        `json:"id"`
	Timestamp    time.Time     `json:"timestamp"`
	Node         string        `json:"node"`
	Kind         Kind          `json:"kind"`
	Mode         Mode          `json:"mode"`
	Direction    Direction     `json:"direction"`
	Requested    int           `json:"requested"`
	Extracted    int           `json:"extracted"`
	Fluid        string        `json:"fluid,omitempty"`
	CursorBefore int           `json:"cursor_before"`
	CursorAfter  int           `json:"cursor_after"`
	CursorValid  bool          `json:"cursor_valid"`
	Duration     time.Duration `json:"duration,omitempty"`
}

// Succeeded reports whether anything was moved.
func (r *ExtractionRecord) Succeeded() bool {
	return r.Extracted > 0
}

// QueryFilter defines criteria for querying extraction records.
type QueryFilter struct {
	Since  time.Time `json:"since,omitempty"`
	Until  time.Time `json:"until,omitempty"`
	Node   string    `json:"node,omitempty"`
	Kind   Kind      `json:"kind,omitempty"`
	Mode   *Mode     `json:"mode,omitempty"`
	Limit  int       `json:"limit,omitempty"`
	Offset int       `json:"offset,omitempty"`
}

// AuditStats summarises extraction attempts.
type AuditStats struct {
	Attempts  int            `json:"attempts"`
	Successes int            `json:"successes"`
	Moved     int            `json:"moved"`
	ByMode    map[string]int `json:"by_mode"`
	ByKind    map[string]int `json:"by_kind"`
}
