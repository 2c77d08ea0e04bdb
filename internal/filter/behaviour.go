package filter

import "github.com/tkingovr/pipefilter/api"

// Behaviour is the filter engine installed on one transport node.
type Behaviour struct {
	side     api.Side
	slots    *SlotSet
	mode     api.Mode
	cursor   Cursor
	notifier CursorNotifier
}

// Option configures a Behaviour.
type Option func(*Behaviour)

// WithCapacity sets the number of filter slots, at most MaxCapacity.
func WithCapacity(n int) Option {
	return func(b *Behaviour) {
		b.slots = NewSlotSet(n, SlotObserverFunc(b.onSlotChanged))
	}
}

// WithNotifier sets the capability used to request a sync push when the
// cursor moves.
func WithNotifier(n CursorNotifier) Option {
	return func(b *Behaviour) {
		b.notifier = n
	}
}

// WithSide marks the engine as authoritative (default) or as an observer.
func WithSide(s api.Side) Option {
	return func(b *Behaviour) {
		b.side = s
	}
}

// New creates a fresh engine: all slots empty, whitelist mode, cursor invalid.
func New(opts ...Option) *Behaviour {
	b := &Behaviour{mode: api.ModeWhitelist}
	b.slots = NewSlotSet(DefaultCapacity, SlotObserverFunc(b.onSlotChanged))
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewFromRecord reconstructs an engine from a persisted record.
func NewFromRecord(rec *api.Record, opts ...Option) *Behaviour {
	b := New(opts...)
	b.Load(rec)
	return b
}

// Capacity returns the number of filter slots.
func (b *Behaviour) Capacity() int { return b.slots.Len() }

// Side reports whether this engine is authoritative or an observer.
func (b *Behaviour) Side() api.Side { return b.side }

// Mode returns the active filter mode.
func (b *Behaviour) Mode() api.Mode { return b.mode }

// SetMode switches the filter mode. Unknown values become whitelist.
func (b *Behaviour) SetMode(m api.Mode) {
	b.mode = api.ModeFromOrdinal(int(m))
}

// Cursor returns the current cursor state.
func (b *Behaviour) Cursor() Cursor { return b.cursor }

// Slot returns the criterion in slot i.
func (b *Behaviour) Slot(i int) (api.Criterion, error) { return b.slots.Get(i) }

// SetSlot replaces the criterion in slot i. This is the only way slot
// contents change after construction.
func (b *Behaviour) SetSlot(i int, c api.Criterion) error { return b.slots.Set(i, c) }

// Criteria returns a copy of every slot.
func (b *Behaviour) Criteria() []api.Criterion { return b.slots.Slots() }

// ItemPredicate returns the item predicate of the active mode as it stands,
// without resynchronising the cursor.
func (b *Behaviour) ItemPredicate() Predicate {
	return strategyFor(b.mode).itemPredicate(b)
}

// ExtractItems asks the flow to remove one matching unit from the container
// on dir and returns the quantity removed.
func (b *Behaviour) ExtractItems(flow Flow, dir api.Direction) int {
	b.resync()
	s := strategyFor(b.mode)
	extracted := flow.TryExtractItems(1, dir, s.itemPredicate(b))
	if extracted > 0 {
		s.afterItems(b)
	}
	return extracted
}

// ExtractFluid asks the flow to remove up to volume of a matching fluid from
// the container on dir. It returns nil when nothing matched. Modes without
// fluid support return nil and leave the cursor alone.
func (b *Behaviour) ExtractFluid(flow Flow, dir api.Direction, volume int) *api.FluidStack {
	fs, ok := strategyFor(b.mode).(fluidStrategy)
	if !ok {
		return nil
	}
	b.resync()
	return fs.extractFluid(b, flow, dir, volume)
}

// resync forces an advance when the active slot was emptied between attempts.
func (b *Behaviour) resync() {
	if b.slots.at(b.cursor.Index).IsEmpty() {
		b.advance()
	}
}

func (b *Behaviour) advance() {
	if b.cursor.advance(b.slots) && b.notifier != nil {
		b.notifier.NotifyCursorChanged()
	}
}

// onSlotChanged keeps the cursor on a nonempty slot. Observers leave the
// cursor to ApplySync.
func (b *Behaviour) onSlotChanged(index int, _, next api.Criterion) {
	if b.side == api.SideObserver {
		return
	}
	if !next.IsEmpty() {
		if !b.cursor.Valid {
			b.cursor.jump(index)
		}
		return
	}
	if b.cursor.Valid && index == b.cursor.Index {
		b.advance()
	}
}
