package sequence

import (
	"fmt"

	"github.com/RohanMKells/structured-additive-IR/internal/ir"
)

// Insert starts tracking op, sequenced immediately before or after
// reference. No other operation's key changes: the new entry either
// takes a key from the gap next to the reference or duplicates a
// neighboring key and relies on physical placement to keep its spot, so
// keys are not guaranteed contiguous after many inserts.
//
// op must be an orderable operation of the region that is not yet
// tracked. reference may be any operation of the region: a
// dependency-only reference resolves to the orderable operation its
// implicit position follows, keeping the requested direction. A
// reference with no orderable producer puts op at the front of the
// store.
func (a *Analysis) Insert(op, reference ir.OpID, dir Direction) {
	if !a.program.Op(op).Orderable() {
		panic(fmt.Sprintf("sequence: Insert of non-orderable op %q", a.program.Op(op).Name))
	}
	if _, tracked := a.store.position(op); tracked {
		panic(fmt.Sprintf("sequence: Insert of already tracked op %q", a.program.Op(op).Name))
	}

	if !a.program.Op(reference).Orderable() {
		anchor, ok := a.anchorOf(reference)
		if !ok {
			key := int64(0)
			if a.store.len() > 0 {
				key = a.store.at(0).key - 1
			}
			a.store.insertAt(0, entry{key: key, op: op})
			return
		}
		a.Insert(op, a.store.at(anchor).op, dir)
		return
	}

	i := a.store.mustPosition(reference)
	refKey := a.store.at(i).key
	switch dir {
	case After:
		key := refKey + 1
		if i+1 < a.store.len() && a.store.at(i+1).key < key {
			key = a.store.at(i + 1).key
		}
		a.store.insertAt(i+1, entry{key: key, op: op})
	case Before:
		key := refKey - 1
		if i > 0 && a.store.at(i-1).key > key {
			key = a.store.at(i - 1).key
		}
		a.store.insertAt(i, entry{key: key, op: op})
	default:
		panic(fmt.Sprintf("sequence: invalid direction %d", int(dir)))
	}
}

// Erase stops tracking op. The surrounding entries keep their keys and
// relative order. Erasing an untracked operation panics: callers must
// mirror each IR edit into the analysis exactly once.
func (a *Analysis) Erase(op ir.OpID) {
	a.store.removeAt(a.store.mustPosition(op))
}

// AssignInferred writes the synthesized order back into the program as
// explicit sequence hints: the entry at position i receives hint i, so
// hints come out contiguous from 0. The store itself is untouched and
// queries are unaffected; the new hints matter only when the program is
// recompiled. Calling it again without intervening edits writes the
// same hints.
func (a *Analysis) AssignInferred() {
	for i := 0; i < a.store.len(); i++ {
		a.program.SetSequence(a.store.at(i).op, int64(i))
	}
}
