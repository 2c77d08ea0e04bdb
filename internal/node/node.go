// Package node hosts one filter engine as a transport node: it serialises
// access to the engine, records every extraction attempt, persists the
// engine record and pushes sync payloads to observers.
package node

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tkingovr/pipefilter/api"
	"github.com/tkingovr/pipefilter/internal/audit"
	"github.com/tkingovr/pipefilter/internal/filter"
	"github.com/tkingovr/pipefilter/internal/store"
	pfsync "github.com/tkingovr/pipefilter/internal/sync"
	"github.com/tkingovr/pipefilter/internal/wire"
)

// ErrUnknownKind is returned by Extract for kinds other than item and fluid.
var ErrUnknownKind = errors.New("unknown resource kind")

// Options configures a Node. Only Capacity and Direction affect the engine;
// Hub, Audit and Records are optional.
type Options struct {
	ID        string
	Capacity  int
	Direction api.Direction

	// Mode and Criteria seed a node that has no persisted record.
	Mode     api.Mode
	Criteria []api.Criterion

	Hub     *pfsync.Hub
	Audit   audit.Store
	Records store.Store
	Logger  *slog.Logger
}

// Node is an authoritative filter engine bound to one face of a pipe.
type Node struct {
	mu        sync.Mutex
	id        string
	direction api.Direction
	engine    *filter.Behaviour

	hub     *pfsync.Hub
	audit   audit.Store
	records store.Store
	logger  *slog.Logger
}

// New creates a node seeded from opts.Mode and opts.Criteria. Criteria
// beyond the capacity are ignored.
func New(opts Options) *Node {
	n := newNode(opts)
	for i, c := range opts.Criteria {
		if i >= n.engine.Capacity() {
			break
		}
		if err := n.engine.SetSlot(i, c); err != nil {
			n.logger.Warn("dropping initial slot", "node", n.id, "slot", i, "error", err)
		}
	}
	n.engine.SetMode(opts.Mode)
	return n
}

// Open creates a node and restores its engine from the record store when a
// record exists for opts.ID. Otherwise it behaves like New.
func Open(ctx context.Context, opts Options) (*Node, error) {
	if opts.Records == nil || opts.ID == "" {
		return New(opts), nil
	}
	rec, err := opts.Records.Load(ctx, opts.ID)
	if errors.Is(err, store.ErrNotFound) {
		return New(opts), nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening node %s: %w", opts.ID, err)
	}

	n := newNode(opts)
	n.engine.Load(rec)
	n.logger.Info("node restored",
		"node", n.id,
		"mode", n.engine.Mode(),
		"cursor", n.engine.Cursor().Index,
		"valid", n.engine.Cursor().Valid,
	)
	return n, nil
}

func newNode(opts Options) *Node {
	n := &Node{
		id:        opts.ID,
		direction: opts.Direction,
		hub:       opts.Hub,
		audit:     opts.Audit,
		records:   opts.Records,
		logger:    opts.Logger,
	}
	if n.id == "" {
		n.id = uuid.Must(uuid.NewV7()).String()
	}
	if n.direction == "" {
		n.direction = api.DirectionDown
	}
	if n.logger == nil {
		n.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	capacity := opts.Capacity
	if capacity <= 0 {
		capacity = filter.DefaultCapacity
	}
	n.engine = filter.New(filter.WithCapacity(capacity), filter.WithNotifier(n))
	return n
}

// ID returns the node id.
func (n *Node) ID() string { return n.id }

// Direction returns the face the node extracts from.
func (n *Node) Direction() api.Direction { return n.direction }

// Extract runs one extraction attempt against flow and records it. Item
// attempts always request a single unit; fluid attempts request amount.
func (n *Node) Extract(ctx context.Context, flow filter.Flow, kind api.Kind, amount int) (*api.ExtractionRecord, error) {
	start := time.Now()

	n.mu.Lock()
	before := n.engine.Cursor()
	rec := &api.ExtractionRecord{
		Timestamp:    start,
		Node:         n.id,
		Kind:         kind,
		Mode:         n.engine.Mode(),
		Direction:    n.direction,
		CursorBefore: before.Index,
	}
	switch kind {
	case api.KindItem:
		rec.Requested = 1
		rec.Extracted = n.engine.ExtractItems(flow, n.direction)
	case api.KindFluid:
		rec.Requested = amount
		if fs := n.engine.ExtractFluid(flow, n.direction, amount); fs != nil {
			rec.Extracted = fs.Amount
			rec.Fluid = fs.Fluid
		}
	default:
		n.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	after := n.engine.Cursor()
	n.mu.Unlock()

	rec.CursorAfter = after.Index
	rec.CursorValid = after.Valid
	rec.Duration = time.Since(start)

	n.logger.Debug("extraction attempt",
		"node", n.id,
		"kind", kind,
		"mode", rec.Mode,
		"extracted", rec.Extracted,
		"cursor", rec.CursorAfter,
	)

	if n.audit != nil {
		if err := n.audit.Write(ctx, rec); err != nil {
			return rec, fmt.Errorf("recording extraction: %w", err)
		}
	}
	return rec, nil
}

// SetSlot places c into slot i and persists the node.
func (n *Node) SetSlot(ctx context.Context, i int, c api.Criterion) error {
	n.mu.Lock()
	err := n.engine.SetSlot(i, c)
	n.mu.Unlock()
	if err != nil {
		return err
	}
	n.logger.Info("slot changed", "node", n.id, "slot", i, "criterion", c.String())
	return n.Save(ctx)
}

// SetMode switches the filter mode, pushes the new state to observers and
// persists the node.
func (n *Node) SetMode(ctx context.Context, m api.Mode) error {
	n.mu.Lock()
	n.engine.SetMode(m)
	n.publish()
	n.mu.Unlock()

	n.logger.Info("mode changed", "node", n.id, "mode", m)
	return n.Save(ctx)
}

// Snapshot returns a read-only view of the node.
func (n *Node) Snapshot() api.Snapshot {
	n.mu.Lock()
	defer n.mu.Unlock()

	criteria := n.engine.Criteria()
	slots := make([]string, len(criteria))
	for i, c := range criteria {
		slots[i] = c.String()
	}
	cur := n.engine.Cursor()
	return api.Snapshot{
		ID:          n.id,
		Direction:   n.direction,
		Slots:       slots,
		Mode:        n.engine.Mode(),
		CursorIndex: cur.Index,
		CursorValid: cur.Valid,
	}
}

// Criteria returns a copy of the slot contents.
func (n *Node) Criteria() []api.Criterion {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engine.Criteria()
}

// Record returns the persisted form of the engine.
func (n *Node) Record() *api.Record {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engine.Save()
}

// Save writes the engine record to the record store, if one is configured.
func (n *Node) Save(ctx context.Context) error {
	if n.records == nil {
		return nil
	}
	if err := n.records.Save(ctx, n.id, n.Record()); err != nil {
		return fmt.Errorf("saving node %s: %w", n.id, err)
	}
	return nil
}

// SyncPayload returns the current sync frame.
func (n *Node) SyncPayload() []byte {
	n.mu.Lock()
	defer n.mu.Unlock()
	return wire.EncodeSync(n.engine.SyncState())
}

// NotifyCursorChanged is called by the engine when the cursor moves. The
// node lock is already held.
func (n *Node) NotifyCursorChanged() {
	n.publish()
}

func (n *Node) publish() {
	if n.hub == nil {
		return
	}
	n.hub.Publish(n.id, wire.EncodeSync(n.engine.SyncState()))
}
