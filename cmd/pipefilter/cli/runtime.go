package cli

import (
	"context"
	"fmt"

	"github.com/tkingovr/pipefilter/internal/audit"
	"github.com/tkingovr/pipefilter/internal/config"
	"github.com/tkingovr/pipefilter/internal/groups"
	"github.com/tkingovr/pipefilter/internal/node"
	"github.com/tkingovr/pipefilter/internal/store"
	pfsync "github.com/tkingovr/pipefilter/internal/sync"
)

// runtime is everything a command needs to drive the configured node.
type runtime struct {
	cfg      *config.Config
	resolver groups.Resolver
	records  *store.SQLiteStore
	audit    *audit.JSONLStore
	hub      *pfsync.Hub
	node     *node.Node
}

func openRuntime(ctx context.Context, cfg *config.Config) (*runtime, error) {
	resolver, err := cfg.Resolver()
	if err != nil {
		return nil, fmt.Errorf("creating group resolver: %w", err)
	}
	criteria, err := groups.Criteria(ctx, resolver, cfg.Slots)
	if err != nil {
		return nil, fmt.Errorf("resolving slots: %w", err)
	}
	if err := cfg.Container.Resolve(ctx, resolver); err != nil {
		return nil, fmt.Errorf("resolving container: %w", err)
	}

	records, err := store.OpenSQLite(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening record store: %w", err)
	}
	auditStore, err := audit.NewJSONLStore(cfg.LogDir)
	if err != nil {
		records.Close()
		return nil, fmt.Errorf("creating audit store: %w", err)
	}

	hub := pfsync.NewHub()
	n, err := node.Open(ctx, node.Options{
		ID:        cfg.NodeID,
		Capacity:  cfg.Capacity,
		Direction: cfg.Direction,
		Mode:      cfg.Mode,
		Criteria:  criteria,
		Hub:       hub,
		Audit:     auditStore,
		Records:   records,
		Logger:    logger,
	})
	if err != nil {
		auditStore.Close()
		records.Close()
		return nil, err
	}

	return &runtime{
		cfg:      cfg,
		resolver: resolver,
		records:  records,
		audit:    auditStore,
		hub:      hub,
		node:     n,
	}, nil
}

// Close saves the node and releases the stores.
func (r *runtime) Close(ctx context.Context) error {
	err := r.node.Save(ctx)
	if cerr := r.audit.Close(); err == nil {
		err = cerr
	}
	if cerr := r.records.Close(); err == nil {
		err = cerr
	}
	return err
}
