package filter

import (
	"fmt"

	"github.com/tkingovr/pipefilter/api"
)

// SlotSet is an ordered, fixed-length sequence of filter criteria.
type SlotSet struct {
	slots    []api.Criterion
	observer SlotObserver
}

// NewSlotSet creates a slot set with the given capacity, all slots empty.
// The capacity is clamped to [1, MaxCapacity]. The observer may be nil.
func NewSlotSet(capacity int, observer SlotObserver) *SlotSet {
	capacity = max(1, min(capacity, MaxCapacity))
	return &SlotSet{
		slots:    make([]api.Criterion, capacity),
		observer: observer,
	}
}

// Len returns the capacity of the set.
func (s *SlotSet) Len() int { return len(s.slots) }

// Get returns the criterion in slot i.
func (s *SlotSet) Get(i int) (api.Criterion, error) {
	if err := s.check(i); err != nil {
		return api.Criterion{}, err
	}
	return s.slots[i], nil
}

// Set replaces the criterion in slot i. The observer is called when the
// slot flips between empty and nonempty.
func (s *SlotSet) Set(i int, c api.Criterion) error {
	if err := s.check(i); err != nil {
		return err
	}
	if c.IsEmpty() {
		c = api.Empty()
	}
	prev := s.slots[i]
	s.slots[i] = c
	if prev.IsEmpty() != c.IsEmpty() && s.observer != nil {
		s.observer.SlotChanged(i, prev, c)
	}
	return nil
}

// Slots returns a copy of the slot contents.
func (s *SlotSet) Slots() []api.Criterion {
	out := make([]api.Criterion, len(s.slots))
	copy(out, s.slots)
	return out
}

// HasAny reports whether at least one slot is nonempty.
func (s *SlotSet) HasAny() bool {
	for _, c := range s.slots {
		if !c.IsEmpty() {
			return true
		}
	}
	return false
}

func (s *SlotSet) at(i int) api.Criterion { return s.slots[i] }

// replace overwrites the contents without notifying the observer.
// Used when an engine is reconstructed from a persisted record.
func (s *SlotSet) replace(criteria []api.Criterion) {
	for i := range s.slots {
		if i < len(criteria) && !criteria[i].IsEmpty() {
			s.slots[i] = criteria[i]
		} else {
			s.slots[i] = api.Empty()
		}
	}
}

func (s *SlotSet) check(i int) error {
	if i < 0 || i >= len(s.slots) {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, i, len(s.slots))
	}
	return nil
}
