package wire

import (
	"encoding/json"
	"fmt"

	"github.com/tkingovr/pipefilter/api"
)

// RecordVersion is the current persisted record format.
const RecordVersion = 1

type envelope struct {
	Version int         `json:"version"`
	Record  *api.Record `json:"record"`
}

// MarshalRecord encodes a persisted record.
func MarshalRecord(rec *api.Record) ([]byte, error) {
	if rec == nil {
		return nil, fmt.Errorf("nil record")
	}
	return json.Marshal(envelope{Version: RecordVersion, Record: rec})
}

// UnmarshalRecord decodes a persisted record.
func UnmarshalRecord(data []byte) (*api.Record, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("invalid record: %w", err)
	}
	if env.Version != RecordVersion {
		return nil, fmt.Errorf("unsupported record version: %d (expected %d)", env.Version, RecordVersion)
	}
	if env.Record == nil {
		return nil, fmt.Errorf("record body missing")
	}
	return env.Record, nil
}
