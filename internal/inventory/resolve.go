package inventory

import (
	"context"
	"fmt"

	"github.com/tkingovr/pipefilter/internal/groups"
)

// Resolve fills in group memberships and implied fluids for every stack
// that names a variant but carries neither.
func (n Neighbours) Resolve(ctx context.Context, r groups.Resolver) error {
	for dir, c := range n {
		for i := range c.Items {
			res := &c.Items[i].Resource
			if res.Variant == "" || len(res.Groups) > 0 || res.Fluid != "" {
				continue
			}
			resolved, err := groups.Criterion(ctx, r, res.Variant)
			if err != nil {
				return fmt.Errorf("container %s stack %d: %w", dir, i, err)
			}
			*res = resolved
		}
	}
	return nil
}
