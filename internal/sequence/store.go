package sequence

import (
	"fmt"

	"github.com/RohanMKells/structured-additive-IR/internal/ir"
)

// entry pairs an ordering key with the orderable operation it positions.
type entry struct {
	key int64
	op  ir.OpID
}

// orderingStore is a key-sorted multimap from ordering key to orderable
// operation. Keys may repeat; entries sharing a key keep the physical
// order they were placed in. Relative-order queries compare positions,
// never raw keys, so the duplicate keys produced by Insert squeezes
// cannot make two operations incomparable.
//
// The store holds exactly one entry per orderable operation tracked by
// the analysis. Mutations splice entries in and out without touching
// any other entry's key.
type orderingStore struct {
	entries []entry
	pos     map[ir.OpID]int
}

func newOrderingStore() orderingStore {
	return orderingStore{pos: make(map[ir.OpID]int)}
}

func (s *orderingStore) len() int { return len(s.entries) }

func (s *orderingStore) at(i int) entry { return s.entries[i] }

// position returns the store position of op.
func (s *orderingStore) position(op ir.OpID) (int, bool) {
	i, ok := s.pos[op]
	return i, ok
}

// mustPosition panics when op is untracked. Callers are required to
// keep the analysis in lockstep with their IR edits, so an untracked
// operation here is a bug in the calling pass, not in the input.
func (s *orderingStore) mustPosition(op ir.OpID) int {
	i, ok := s.pos[op]
	if !ok {
		panic(fmt.Sprintf("sequence: op %d is not tracked by the ordering store", op))
	}
	return i
}

// place appends an entry during construction. Keys must arrive in
// nondecreasing order.
func (s *orderingStore) place(key int64, op ir.OpID) {
	if n := len(s.entries); n > 0 && s.entries[n-1].key > key {
		panic(fmt.Sprintf("sequence: keys placed out of order (%d after %d)", key, s.entries[n-1].key))
	}
	s.pos[op] = len(s.entries)
	s.entries = append(s.entries, entry{key: key, op: op})
}

// insertAt splices e in so that it becomes the entry at position i.
// The caller is responsible for key ordering.
func (s *orderingStore) insertAt(i int, e entry) {
	s.entries = append(s.entries, entry{})
	copy(s.entries[i+1:], s.entries[i:])
	s.entries[i] = e
	for j := i; j < len(s.entries); j++ {
		s.pos[s.entries[j].op] = j
	}
}

// removeAt splices out the entry at position i.
func (s *orderingStore) removeAt(i int) {
	delete(s.pos, s.entries[i].op)
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	for j := i; j < len(s.entries); j++ {
		s.pos[s.entries[j].op] = j
	}
}
