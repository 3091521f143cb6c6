// Package idset implements the "parent pointers via id" pattern called for
// in spec §9: rather than recovering a containing struct from an embedded
// listener by offset arithmetic (the pattern the original source used),
// every cross-referenced object (Window, Output, Seat, Binding) is looked
// up by id in an arena. A stale id simply misses; callers treat a miss as
// "the referenced object is gone" rather than a crash, which is how §3's
// "cross-references use ids validated on dereference" rule is enforced.
package idset

import "github.com/google/uuid"

// ID is an opaque protocol-object identity.
type ID uuid.UUID

// NewID allocates a fresh identity for a protocol object (window, output,
// seat or binding).
func NewID() ID {
	return ID(uuid.New())
}

func (id ID) String() string {
	return uuid.UUID(id).String()
}

// ParseID recovers an ID from its String form. Used at boundaries where
// an id has round-tripped through a string-keyed map or the wm protocol
// and must be turned back into a comparable ID.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ID{}, err
	}
	return ID(u), nil
}

// Set is a weak-reference-style arena: it stores objects by ID and lets
// callers validate a remembered ID against current membership before using
// it, instead of holding a pointer that might outlive its target.
type Set[T any] struct {
	m map[ID]T
}

// NewSet creates an empty arena.
func NewSet[T any]() *Set[T] {
	return &Set[T]{m: make(map[ID]T)}
}

// Put registers id -> v, replacing any previous entry.
func (s *Set[T]) Put(id ID, v T) {
	s.m[id] = v
}

// Delete removes id from the arena. Safe to call for an id not present.
func (s *Set[T]) Delete(id ID) {
	delete(s.m, id)
}

// Get validates id against current membership, returning (zero, false) if
// the object has since been destroyed — the "weak reference" dereference
// from spec §3 and §9.
func (s *Set[T]) Get(id ID) (T, bool) {
	v, ok := s.m[id]
	return v, ok
}

// Len reports how many live objects the arena holds.
func (s *Set[T]) Len() int {
	return len(s.m)
}

// Each iterates the arena in unspecified order. fn must not mutate the set.
func (s *Set[T]) Each(fn func(ID, T)) {
	for id, v := range s.m {
		fn(id, v)
	}
}
