package filter

// Cursor is the round-robin selection state. When Valid is false no slot
// holds a usable criterion and Index is stale until the next advance.
type Cursor struct {
	Index int
	Valid bool
}

// advance walks the slots circularly starting after the current index and
// settles on the first nonempty one. The starting index is examined last, so
// a single nonempty slot keeps the cursor in place. It visits at most
// slots.Len() slots and reports whether the index moved.
func (c *Cursor) advance(slots *SlotSet) bool {
	n := slots.Len()
	last := c.Index
	c.Valid = false
	for step := 1; step <= n; step++ {
		idx := (last + step) % n
		if !slots.at(idx).IsEmpty() {
			c.Index = idx
			c.Valid = true
			return idx != last
		}
	}
	return false
}

// jump makes index the active slot without scanning.
func (c *Cursor) jump(index int) {
	c.Index = index
	c.Valid = true
}

func clampIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	return ((i % n) + n) % n
}
