// Package history holds the in-memory log of submitted command lines
// and the cursor used to browse it during recall.
package history

import "errors"

// ErrOutOfRange is the error resulting from an index lookup past the
// end of the store.
var ErrOutOfRange = errors.New("history: index out of range")

// Store is an append-only, in-memory list of command lines in
// chronological order. It lives exactly as long as the shell process;
// nothing is pruned or persisted.
type Store struct {
	entries []string
}

func NewStore() *Store {
	return &Store{}
}

// Append adds line to the store unless it equals the most recent entry.
// It reports whether the line was actually stored, keeping the
// invariant that no two consecutive entries are equal.
func (s *Store) Append(line string) bool {
	if n := len(s.entries); n > 0 && s.entries[n-1] == line {
		return false
	}
	s.entries = append(s.entries, line)
	return true
}

// Get returns the entry at index, oldest first.
func (s *Store) Get(index int) (string, error) {
	if index < 0 || index >= len(s.entries) {
		return "", ErrOutOfRange
	}
	return s.entries[index], nil
}

func (s *Store) Len() int {
	return len(s.entries)
}

// Last returns the most recent entry, if any.
func (s *Store) Last() (string, bool) {
	if len(s.entries) == 0 {
		return "", false
	}
	return s.entries[len(s.entries)-1], true
}
