// Package wire frames the two things that leave a filter engine: the sync
// payload pushed to observers and the persisted record.
package wire

import (
	"fmt"

	"github.com/tkingovr/pipefilter/api"
)

// SyncFrameSize is the length of an encoded sync payload:
// mode ordinal, cursor index, cursor valid flag.
const SyncFrameSize = 3

// EncodeSync builds the sync payload for s.
func EncodeSync(s api.SyncState) []byte {
	valid := byte(0)
	if s.CursorValid {
		valid = 1
	}
	return []byte{byte(s.Mode), byte(s.CursorIndex), valid}
}

// DecodeSync parses a sync payload. Unknown mode ordinals decode as
// whitelist; the cursor index is returned as sent and must be reduced by
// the receiving engine. Bytes past the frame are ignored.
func DecodeSync(data []byte) (api.SyncState, error) {
	if len(data) < SyncFrameSize {
		return api.SyncState{}, fmt.Errorf("sync frame too short: %d bytes (expected %d)", len(data), SyncFrameSize)
	}
	return api.SyncState{
		Mode:        api.ModeFromOrdinal(int(data[0])),
		CursorIndex: int(data[1]),
		CursorValid: data[2] != 0,
	}, nil
}
