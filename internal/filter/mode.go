package filter

import "github.com/tkingovr/pipefilter/api"

// strategy holds the extraction rules of one filter mode.
type strategy interface {
	itemPredicate(b *Behaviour) Predicate
	afterItems(b *Behaviour)
}

// fluidStrategy is implemented by modes that can extract fluids.
type fluidStrategy interface {
	strategy
	extractFluid(b *Behaviour, flow Flow, dir api.Direction, volume int) *api.FluidStack
}

var strategies = map[api.Mode]strategy{
	api.ModeWhitelist:  whitelist{},
	api.ModeBlacklist:  blacklist{},
	api.ModeRoundRobin: roundRobin{},
}

func strategyFor(m api.Mode) strategy {
	if s, ok := strategies[m]; ok {
		return s
	}
	return whitelist{}
}

type whitelist struct{}

func (whitelist) itemPredicate(b *Behaviour) Predicate { return AnyOf(b.slots.slots) }

func (whitelist) afterItems(*Behaviour) {}

// extractFluid tries one aggregate request first, then each slot's implied
// fluid in index order.
func (whitelist) extractFluid(b *Behaviour, flow Flow, dir api.Direction, volume int) *api.FluidStack {
	if got := flow.TryExtractFluidAdv(volume, dir, AnyFluid(b.slots.slots)); moved(got) {
		return got
	}
	for i := 0; i < b.slots.Len(); i++ {
		fluid := b.slots.at(i).Fluid
		if fluid == "" {
			continue
		}
		if got := flow.TryExtractFluid(volume, dir, fluid); moved(got) {
			return got
		}
	}
	return nil
}

type blacklist struct{}

func (blacklist) itemPredicate(b *Behaviour) Predicate { return Invert(AnyOf(b.slots.slots)) }

func (blacklist) afterItems(*Behaviour) {}

// extractFluid only uses the aggregate request. A per-slot fallback has no
// meaning when the predicate is inverted.
func (blacklist) extractFluid(b *Behaviour, flow Flow, dir api.Direction, volume int) *api.FluidStack {
	if got := flow.TryExtractFluidAdv(volume, dir, InvertFluid(AnyFluid(b.slots.slots))); moved(got) {
		return got
	}
	return nil
}

// roundRobin has no fluid support: a partial volume is not a discrete step.
type roundRobin struct{}

func (roundRobin) itemPredicate(b *Behaviour) Predicate {
	return Matching(b.slots.at(b.cursor.Index))
}

func (roundRobin) afterItems(b *Behaviour) { b.advance() }

func moved(fs *api.FluidStack) bool {
	return fs != nil && fs.Amount > 0
}
