package groups

import "context"

// Resolver is the interface for group membership backends.
type Resolver interface {
	// Resolve returns the groups a variant belongs to and the fluid it implies.
	Resolve(ctx context.Context, variant string) (*Resolution, error)

	// Reload reloads the group definitions from their source.
	Reload(ctx context.Context) error
}
