package node

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkingovr/pipefilter/api"
	"github.com/tkingovr/pipefilter/internal/audit"
	"github.com/tkingovr/pipefilter/internal/inventory"
	"github.com/tkingovr/pipefilter/internal/store"
	pfsync "github.com/tkingovr/pipefilter/internal/sync"
	"github.com/tkingovr/pipefilter/internal/wire"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func iron() api.Criterion   { return api.Criterion{Variant: "iron_ingot"} }
func copper() api.Criterion { return api.Criterion{Variant: "copper_ingot"} }

func testChest() inventory.Neighbours {
	return inventory.Neighbours{
		api.DirectionNorth: {
			Items: []inventory.ItemStack{
				{Resource: iron(), Count: 5},
				{Resource: copper(), Count: 5},
			},
			Tanks: []api.FluidStack{{Fluid: "water", Amount: 300}},
		},
	}
}

func TestNew_Seeded(t *testing.T) {
	n := New(Options{
		ID:        "n1",
		Capacity:  3,
		Direction: api.DirectionNorth,
		Mode:      api.ModeRoundRobin,
		Criteria:  []api.Criterion{{}, iron(), copper(), iron()},
		Logger:    testLogger(),
	})

	snap := n.Snapshot()
	assert.Equal(t, "n1", snap.ID)
	assert.Equal(t, []string{"", "iron_ingot", "copper_ingot"}, snap.Slots)
	assert.Equal(t, api.ModeRoundRobin, snap.Mode)
	assert.Equal(t, 1, snap.CursorIndex)
	assert.True(t, snap.CursorValid)
}

func TestNew_CapacityClamped(t *testing.T) {
	criteria := make([]api.Criterion, 300)
	criteria[299] = iron()
	n := New(Options{ID: "big", Capacity: 300, Criteria: criteria, Logger: testLogger()})

	snap := n.Snapshot()
	assert.Len(t, snap.Slots, 256)
	assert.False(t, snap.CursorValid, "criteria past the capacity are ignored")
}

func TestNew_GeneratesID(t *testing.T) {
	n := New(Options{})
	assert.NotEmpty(t, n.ID())
	assert.Equal(t, api.DirectionDown, n.Direction())
	assert.Len(t, n.Snapshot().Slots, 9)
}

func TestExtract_RoundRobinRecords(t *testing.T) {
	dir := t.TempDir()
	log, err := audit.NewJSONLStore(dir)
	require.NoError(t, err)
	defer log.Close()

	n := New(Options{
		ID:        "n1",
		Capacity:  3,
		Direction: api.DirectionNorth,
		Mode:      api.ModeRoundRobin,
		Criteria:  []api.Criterion{iron(), {}, copper()},
		Audit:     log,
		Logger:    testLogger(),
	})
	chest := testChest()
	ctx := context.Background()

	rec, err := n.Extract(ctx, chest, api.KindItem, 64)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Requested)
	assert.Equal(t, 1, rec.Extracted)
	assert.Equal(t, 0, rec.CursorBefore)
	assert.Equal(t, 2, rec.CursorAfter)

	rec, err = n.Extract(ctx, chest, api.KindItem, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.CursorBefore)
	assert.Equal(t, 0, rec.CursorAfter)

	assert.Equal(t, 8, chest[api.DirectionNorth].TotalItems())

	stats, err := log.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Attempts)
	assert.Equal(t, 2, stats.Moved)
}

func TestExtract_Fluid(t *testing.T) {
	n := New(Options{
		Capacity:  3,
		Direction: api.DirectionNorth,
		Criteria:  []api.Criterion{{Variant: "water_bucket", Fluid: "water"}},
	})
	rec, err := n.Extract(context.Background(), testChest(), api.KindFluid, 250)
	require.NoError(t, err)
	assert.Equal(t, 250, rec.Requested)
	assert.Equal(t, 250, rec.Extracted)
	assert.Equal(t, "water", rec.Fluid)
}

func TestExtract_UnknownKind(t *testing.T) {
	n := New(Options{})
	_, err := n.Extract(context.Background(), testChest(), api.Kind("gas"), 1)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestCursorMovePublishes(t *testing.T) {
	hub := pfsync.NewHub()
	n := New(Options{
		ID:        "n1",
		Capacity:  3,
		Direction: api.DirectionNorth,
		Mode:      api.ModeRoundRobin,
		Criteria:  []api.Criterion{iron(), copper()},
		Hub:       hub,
	})
	ch, cancel := hub.Subscribe("n1")
	defer cancel()

	_, err := n.Extract(context.Background(), testChest(), api.KindItem, 1)
	require.NoError(t, err)

	select {
	case payload := <-ch:
		s, err := wire.DecodeSync(payload)
		require.NoError(t, err)
		assert.Equal(t, api.ModeRoundRobin, s.Mode)
		assert.Equal(t, 1, s.CursorIndex)
		assert.True(t, s.CursorValid)
	case <-time.After(time.Second):
		t.Fatal("expected a sync payload after the cursor moved")
	}
	assert.Equal(t, n.SyncPayload(), hub.Last("n1"))
}

func TestSetModePublishesAndPersists(t *testing.T) {
	records, err := store.OpenSQLite(t.TempDir())
	require.NoError(t, err)
	defer records.Close()

	hub := pfsync.NewHub()
	ctx := context.Background()
	n, err := Open(ctx, Options{ID: "n1", Capacity: 3, Hub: hub, Records: records})
	require.NoError(t, err)

	ch, cancel := hub.Subscribe("n1")
	defer cancel()

	require.NoError(t, n.SetMode(ctx, api.ModeBlacklist))
	select {
	case payload := <-ch:
		assert.Equal(t, []byte{1, 0, 0}, payload)
	case <-time.After(time.Second):
		t.Fatal("expected a sync payload after the mode changed")
	}

	rec, err := records.Load(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, uint8(api.ModeBlacklist), rec.Mode)
}

func TestOpen_Restores(t *testing.T) {
	records, err := store.OpenSQLite(t.TempDir())
	require.NoError(t, err)
	defer records.Close()
	ctx := context.Background()

	first := New(Options{
		ID:       "n1",
		Capacity: 3,
		Mode:     api.ModeRoundRobin,
		Criteria: []api.Criterion{iron(), {}, copper()},
		Records:  records,
	})
	_, err = first.Extract(ctx, testChest(), api.KindItem, 1)
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx))

	// Seed values are ignored once a record exists.
	second, err := Open(ctx, Options{ID: "n1", Capacity: 3, Mode: api.ModeWhitelist, Records: records})
	require.NoError(t, err)

	snap := second.Snapshot()
	assert.Equal(t, api.ModeRoundRobin, snap.Mode)
	assert.Equal(t, 2, snap.CursorIndex)
	assert.True(t, snap.CursorValid)
	assert.Equal(t, []string{"iron_ingot", "", "copper_ingot"}, snap.Slots)
}

func TestOpen_NoRecord(t *testing.T) {
	records, err := store.OpenSQLite(t.TempDir())
	require.NoError(t, err)
	defer records.Close()

	n, err := Open(context.Background(), Options{ID: "fresh", Mode: api.ModeBlacklist, Records: records})
	require.NoError(t, err)
	assert.Equal(t, api.ModeBlacklist, n.Snapshot().Mode)
}

func TestSetSlot_OutOfRange(t *testing.T) {
	n := New(Options{Capacity: 2})
	err := n.SetSlot(context.Background(), 5, iron())
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(New(Options{ID: "b"})))
	require.NoError(t, r.Add(New(Options{ID: "a"})))
	assert.Error(t, r.Add(New(Options{ID: "a"})))

	assert.Equal(t, []string{"a", "b"}, r.IDs())
	n, ok := r.Get("b")
	require.True(t, ok)
	assert.Equal(t, "b", n.ID())
	_, ok = r.Get("c")
	assert.False(t, ok)
}
