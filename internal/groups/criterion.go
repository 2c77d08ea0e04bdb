package groups

import (
	"context"
	"fmt"
	"strings"

	"github.com/tkingovr/pipefilter/api"
)

// Criterion parses slot notation and resolves it into a criterion.
// "" is empty, "#name" references a group, anything else is an exact
// variant whose memberships and fluid come from the resolver.
func Criterion(ctx context.Context, r Resolver, notation string) (api.Criterion, error) {
	notation = strings.TrimSpace(notation)
	switch {
	case notation == "":
		return api.Empty(), nil
	case strings.HasPrefix(notation, "#"):
		name := strings.TrimPrefix(notation, "#")
		if name == "" {
			return api.Criterion{}, fmt.Errorf("group reference %q has no name", notation)
		}
		return api.Criterion{Group: name}, nil
	}

	res, err := r.Resolve(ctx, notation)
	if err != nil {
		return api.Criterion{}, fmt.Errorf("resolving %q: %w", notation, err)
	}
	return api.Criterion{
		Variant: notation,
		Groups:  res.Groups,
		Fluid:   res.Fluid,
	}, nil
}

// Criteria resolves a list of notations in order.
func Criteria(ctx context.Context, r Resolver, notations []string) ([]api.Criterion, error) {
	out := make([]api.Criterion, 0, len(notations))
	for i, n := range notations {
		c, err := Criterion(ctx, r, n)
		if err != nil {
			return nil, fmt.Errorf("slot %d: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}
