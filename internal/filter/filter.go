// Package filter implements the extraction filter engine of a transport node:
// a fixed set of filter slots, the matching combinators built over them, the
// round-robin cursor, and the per-mode extraction policy.
//
// The engine is single-threaded. Hosts that share an engine between
// goroutines must serialise every call.
package filter

import (
	"errors"

	"github.com/tkingovr/pipefilter/api"
)

// DefaultCapacity is the number of filter slots a node carries.
const DefaultCapacity = 9

// MaxCapacity is the largest slot count whose cursor index fits the one-byte
// field of the persisted record and the sync frame.
const MaxCapacity = 256

var (
	// ErrIndexOutOfRange is returned for slot indices outside [0, capacity).
	ErrIndexOutOfRange = errors.New("slot index out of range")

	// ErrAuthoritative is returned when an inbound sync update reaches the
	// authoritative engine. Only observers apply sync updates.
	ErrAuthoritative = errors.New("sync update rejected by authoritative side")
)

// Flow is the removal capability of the transport node the engine is
// installed on. The engine only supplies bounds and predicates.
type Flow interface {
	// TryExtractItems removes up to max units accepted by the predicate from
	// the container on dir and returns how many were removed.
	TryExtractItems(max int, dir api.Direction, accept Predicate) int

	// TryExtractFluid removes up to volume of exactly the named fluid.
	TryExtractFluid(volume int, dir api.Direction, fluid string) *api.FluidStack

	// TryExtractFluidAdv removes up to volume of the first fluid the
	// predicate accepts.
	TryExtractFluidAdv(volume int, dir api.Direction, accept FluidPredicate) *api.FluidStack
}

// CursorNotifier is told when the cursor moved to another slot so the host
// can push a sync update to observers.
type CursorNotifier interface {
	NotifyCursorChanged()
}

// NotifyFunc adapts a plain function to CursorNotifier.
type NotifyFunc func()

func (f NotifyFunc) NotifyCursorChanged() {
	if f != nil {
		f()
	}
}

// SlotObserver is called when a slot changes between empty and nonempty.
type SlotObserver interface {
	SlotChanged(index int, prev, next api.Criterion)
}

// SlotObserverFunc adapts a plain function to SlotObserver.
type SlotObserverFunc func(index int, prev, next api.Criterion)

func (f SlotObserverFunc) SlotChanged(index int, prev, next api.Criterion) {
	f(index, prev, next)
}
