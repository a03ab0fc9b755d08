package history

// Cursor is the browsing position within a Store for one input cycle.
// Index len(store) means "not recalling": the live edit buffer is the
// current value. A new Cursor is created at the start of each cycle and
// thrown away on finalize.
type Cursor struct {
	store *Store
	index int
}

// NewCursor returns a cursor positioned past the newest entry.
func (s *Store) NewCursor() *Cursor {
	return &Cursor{store: s, index: s.Len()}
}

// Up moves toward older entries and returns the entry the edit buffer
// should show. When recall begins it first stages the live buffer as a
// store entry so in-progress edits survive browsing; because the staged
// entry sits at the top, the first Up lands on the entry before it.
// Returns false at the oldest entry.
func (c *Cursor) Up(live string) (string, bool) {
	if c.index == 0 {
		return "", false
	}
	if c.index == c.store.Len() {
		c.store.Append(live)
	}
	c.index--
	line, err := c.store.Get(c.index)
	if err != nil {
		return "", false
	}
	return line, true
}

// Down moves toward newer entries. Stepping past the newest entry keeps
// the buffer on the staged in-progress text (the entry at the top of
// the store), so it returns false there: the caller leaves the buffer
// untouched.
func (c *Cursor) Down() (string, bool) {
	if c.index >= c.store.Len() {
		return "", false
	}
	c.index++
	if c.index == c.store.Len() {
		return "", false
	}
	line, err := c.store.Get(c.index)
	if err != nil {
		return "", false
	}
	return line, true
}
