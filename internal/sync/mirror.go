package sync

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	stdsync "sync"

	"github.com/tkingovr/pipefilter/api"
	"github.com/tkingovr/pipefilter/internal/filter"
	"github.com/tkingovr/pipefilter/internal/wire"
)

// Mirror is the observer-side copy of a node's engine. Slot updates change
// its contents; only inbound sync payloads change its mode and cursor.
type Mirror struct {
	mu     stdsync.Mutex
	engine *filter.Behaviour
	logger *slog.Logger
}

// NewMirror creates an observer engine with the given capacity. A nil logger
// discards output.
func NewMirror(capacity int, logger *slog.Logger) *Mirror {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Mirror{
		engine: filter.New(filter.WithCapacity(capacity), filter.WithSide(api.SideObserver)),
		logger: logger,
	}
}

// SetSlot mirrors a slot change made on the authoritative side. The cursor
// is left alone until the next sync payload.
func (m *Mirror) SetSlot(i int, c api.Criterion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.engine.SetSlot(i, c)
}

// Apply decodes a sync payload and copies it into the observer engine.
func (m *Mirror) Apply(payload []byte) error {
	s, err := wire.DecodeSync(payload)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.engine.ApplySync(s); err != nil {
		return fmt.Errorf("applying sync payload: %w", err)
	}
	return nil
}

// Run applies payloads from ch until it is closed or ctx is done.
// Malformed payloads are logged and skipped.
func (m *Mirror) Run(ctx context.Context, ch <-chan []byte) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case payload, ok := <-ch:
			if !ok {
				return nil
			}
			if err := m.Apply(payload); err != nil {
				m.logger.Warn("dropping sync payload", "error", err, "bytes", len(payload))
			}
		}
	}
}

// State returns the mirrored mode and cursor.
func (m *Mirror) State() api.SyncState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.engine.SyncState()
}

// Criteria returns the mirrored slot contents.
func (m *Mirror) Criteria() []api.Criterion {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.engine.Criteria()
}
