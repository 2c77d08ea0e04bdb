package filter

import "github.com/tkingovr/pipefilter/api"

// Save returns the persisted form of the engine.
func (b *Behaviour) Save() *api.Record {
	return &api.Record{
		Criteria:    b.slots.Slots(),
		Mode:        uint8(b.mode),
		CursorIndex: uint8(b.cursor.Index),
		CursorValid: b.cursor.Valid,
	}
}

// Load restores slots, mode and cursor from a record. Extra criteria are
// dropped and missing ones left empty. The cursor index is reduced modulo
// the current capacity and its validity is derived from the slots; the
// stored flag is ignored.
func (b *Behaviour) Load(rec *api.Record) {
	if rec == nil {
		return
	}
	b.slots.replace(rec.Criteria)
	b.mode = api.ModeFromOrdinal(int(rec.Mode))
	b.cursor.Index = clampIndex(int(rec.CursorIndex), b.slots.Len())
	b.cursor.Valid = b.slots.HasAny()
}

// SyncState returns the fields mirrored to observers.
func (b *Behaviour) SyncState() api.SyncState {
	return api.SyncState{
		Mode:        b.mode,
		CursorIndex: b.cursor.Index,
		CursorValid: b.cursor.Valid,
	}
}

// ApplySync copies a sync update into an observer engine.
// The authoritative engine returns ErrAuthoritative and is left untouched.
func (b *Behaviour) ApplySync(s api.SyncState) error {
	if b.side != api.SideObserver {
		return ErrAuthoritative
	}
	b.mode = api.ModeFromOrdinal(int(s.Mode))
	b.cursor.Index = clampIndex(s.CursorIndex, b.slots.Len())
	b.cursor.Valid = s.CursorValid
	return nil
}
