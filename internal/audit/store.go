package audit

import (
	"context"

	"github.com/tkingovr/pipefilter/api"
)

// Store defines the interface for extraction audit persistence and retrieval.
type Store interface {
	// Write appends an extraction record.
	Write(ctx context.Context, record *api.ExtractionRecord) error

	// Query retrieves records matching the filter.
	Query(ctx context.Context, filter api.QueryFilter) ([]*api.ExtractionRecord, error)

	// Stats returns aggregate statistics.
	Stats(ctx context.Context) (*api.AuditStats, error)

	// Subscribe returns a channel that receives new records in real time.
	// The returned function cancels the subscription.
	Subscribe(ctx context.Context) (<-chan *api.ExtractionRecord, func())

	// Close shuts down the store and flushes any buffers.
	Close() error
}
