package api

// Record is the persisted form of one filter engine.
type Record struct {
	Criteria    []Criterion `json:"criteria" yaml:"criteria"`
	Mode        uint8       `json:"mode" yaml:"mode"`
	CursorIndex uint8       `json:"cursor_index" yaml:"cursor_index"`
	CursorValid bool        `json:"cursor_valid" yaml:"cursor_valid"`
}

// SyncState is what observers mirror. Slot contents travel separately.
type SyncState struct {
	Mode        Mode `json:"mode"`
	CursorIndex int  `json:"cursor_index"`
	CursorValid bool `json:"cursor_valid"`
}

// Snapshot is a read-only view of a node for the configuration surface.
type Snapshot struct {
	ID          string    `json:"id"`
	Direction   Direction `json:"direction"`
	Slots       []string  `json:"slots"`
	Mode        Mode      `json:"mode"`
	CursorIndex int       `json:"cursor_index"`
	CursorValid bool      `json:"cursor_valid"`
}
