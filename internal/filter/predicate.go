package filter

import "github.com/tkingovr/pipefilter/api"

// Predicate decides whether an offered resource may be extracted.
type Predicate func(cmp api.Criterion) bool

// FluidPredicate decides whether an offered fluid may be extracted.
type FluidPredicate func(fluid string) bool

// ExactOrGroup reports whether two criteria denote the same variant or share
// an equivalence group. Empty criteria never match, not even each other.
func ExactOrGroup(a, b api.Criterion) bool {
	if a.IsEmpty() || b.IsEmpty() {
		return false
	}
	if a.Variant != "" && a.Variant == b.Variant {
		return true
	}
	for _, ga := range a.Memberships() {
		for _, gb := range b.Memberships() {
			if ga == gb {
				return true
			}
		}
	}
	return false
}

// Matching returns a predicate that accepts what ExactOrGroup pairs with f.
func Matching(f api.Criterion) Predicate {
	return func(cmp api.Criterion) bool {
		return ExactOrGroup(f, cmp)
	}
}

// AnyOf accepts a resource matching at least one nonempty slot.
// A slot list with no nonempty entry accepts everything.
// The slice is read at evaluation time, not copied.
func AnyOf(slots []api.Criterion) Predicate {
	return func(cmp api.Criterion) bool {
		hasFilter := false
		for _, s := range slots {
			if s.IsEmpty() {
				continue
			}
			hasFilter = true
			if ExactOrGroup(s, cmp) {
				return true
			}
		}
		return !hasFilter
	}
}

// Invert negates p.
func Invert(p Predicate) Predicate {
	return func(cmp api.Criterion) bool {
		return !p(cmp)
	}
}

// AnyFluid accepts a fluid implied by at least one nonempty slot.
func AnyFluid(slots []api.Criterion) FluidPredicate {
	return func(fluid string) bool {
		if fluid == "" {
			return false
		}
		for _, s := range slots {
			if !s.IsEmpty() && s.Fluid == fluid {
				return true
			}
		}
		return false
	}
}

// InvertFluid negates p.
func InvertFluid(p FluidPredicate) FluidPredicate {
	return func(fluid string) bool {
		return !p(fluid)
	}
}
