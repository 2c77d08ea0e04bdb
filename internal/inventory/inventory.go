// Package inventory is an in-memory stand-in for the containers around a
// transport node. It implements filter.Flow.
package inventory

import (
	"github.com/tkingovr/pipefilter/api"
	"github.com/tkingovr/pipefilter/internal/filter"
)

// ItemStack is a count of one resource.
type ItemStack struct {
	Resource api.Criterion `json:"resource" yaml:"resource"`
	Count    int           `json:"count" yaml:"count"`
}

// Container holds item stacks and fluid tanks.
type Container struct {
	Items []ItemStack      `json:"items,omitempty" yaml:"items,omitempty"`
	Tanks []api.FluidStack `json:"tanks,omitempty" yaml:"tanks,omitempty"`
}

// TotalItems returns the number of item units held.
func (c *Container) TotalItems() int {
	n := 0
	for _, s := range c.Items {
		n += s.Count
	}
	return n
}

// FluidAmount returns how much of fluid the container holds.
func (c *Container) FluidAmount(fluid string) int {
	n := 0
	for _, t := range c.Tanks {
		if t.Fluid == fluid {
			n += t.Amount
		}
	}
	return n
}

// Neighbours maps each face of a node to the container on it.
type Neighbours map[api.Direction]*Container

var _ filter.Flow = Neighbours(nil)

// TryExtractItems removes up to max units from the first stack the
// predicate accepts.
func (n Neighbours) TryExtractItems(max int, dir api.Direction, accept filter.Predicate) int {
	c := n[dir]
	if c == nil || max <= 0 {
		return 0
	}
	for i := range c.Items {
		s := &c.Items[i]
		if s.Count <= 0 || !accept(s.Resource) {
			continue
		}
		taken := min(max, s.Count)
		s.Count -= taken
		return taken
	}
	return 0
}

// TryExtractFluid removes up to volume of exactly fluid.
func (n Neighbours) TryExtractFluid(volume int, dir api.Direction, fluid string) *api.FluidStack {
	return n.drain(volume, dir, func(f string) bool { return f == fluid })
}

// TryExtractFluidAdv removes up to volume from the first tank the predicate
// accepts.
func (n Neighbours) TryExtractFluidAdv(volume int, dir api.Direction, accept filter.FluidPredicate) *api.FluidStack {
	return n.drain(volume, dir, accept)
}

func (n Neighbours) drain(volume int, dir api.Direction, accept filter.FluidPredicate) *api.FluidStack {
	c := n[dir]
	if c == nil || volume <= 0 {
		return nil
	}
	for i := range c.Tanks {
		t := &c.Tanks[i]
		if t.Amount <= 0 || !accept(t.Fluid) {
			continue
		}
		taken := min(volume, t.Amount)
		t.Amount -= taken
		return &api.FluidStack{Fluid: t.Fluid, Amount: taken}
	}
	return nil
}
