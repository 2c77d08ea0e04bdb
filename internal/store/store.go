// Package store persists filter engine records per node.
package store

import (
	"context"
	"errors"

	"github.com/tkingovr/pipefilter/api"
)

// ErrNotFound is returned when no record exists for a node id.
var ErrNotFound = errors.New("record not found")

// Store defines the interface for persisted record storage.
type Store interface {
	// Save writes or replaces the record of a node.
	Save(ctx context.Context, id string, rec *api.Record) error

	// Load returns the record of a node, or ErrNotFound.
	Load(ctx context.Context, id string) (*api.Record, error)

	// List returns every stored node id in ascending order.
	List(ctx context.Context) ([]string, error)

	// Delete removes the record of a node. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases the underlying database.
	Close() error
}
