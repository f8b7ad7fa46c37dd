package sequence

import (
	"github.com/RohanMKells/structured-additive-IR/internal/ir"
)

// Entry is one (key, op) pair of the ordering store. Keys are sort keys
// only: contiguous after construction, possibly duplicated or gapped
// after Insert and Erase. Relative order follows Entry position, not
// key arithmetic.
type Entry struct {
	Key int64   `json:"key"`
	Op  ir.OpID `json:"op"`
}

// Ops returns every orderable operation with its ordering key, in
// nondecreasing key order. Dependency-only operations are not included;
// use AllOps for the fused traversal. The slice is a snapshot and stays
// valid across later mutations.
func (a *Analysis) Ops() []Entry {
	out := make([]Entry, a.store.len())
	for i := range out {
		e := a.store.at(i)
		out[i] = Entry{Key: e.key, Op: e.op}
	}
	return out
}

// OpsBefore returns the prefix of Ops strictly preceding op's own
// entry. op must be tracked.
func (a *Analysis) OpsBefore(op ir.OpID) []Entry {
	i := a.store.mustPosition(op)
	out := make([]Entry, i)
	for j := 0; j < i; j++ {
		e := a.store.at(j)
		out[j] = Entry{Key: e.key, Op: e.op}
	}
	return out
}

// IsBefore reports whether first executes strictly before second.
// first must be a tracked orderable operation; second may be any
// operation of the region. A dependency-only second is compared through
// its implicit position, immediately after its last transitive
// orderable producer.
//
// Every orderable operation has a position, so IsBefore reports an
// order even between operations with no real ordering requirement.
// Callers rely on this totality; do not make unrelated operations
// incomparable.
func (a *Analysis) IsBefore(first, second ir.OpID) bool {
	i := a.store.mustPosition(first)
	if a.program.Op(second).Orderable() {
		return i < a.store.mustPosition(second)
	}
	anchor, ok := a.anchorOf(second)
	if !ok {
		// No orderable producer: second precedes the whole store.
		return false
	}
	return i <= anchor
}

// IsAfter reports whether first executes at or after second: the exact
// negation of IsBefore.
func (a *Analysis) IsAfter(first, second ir.OpID) bool {
	return !a.IsBefore(first, second)
}

// PointIsBefore reports whether the program point precedes op. op must
// be tracked; so must the point's anchor unless it is a boundary.
func (a *Analysis) PointIsBefore(pt ProgramPoint, op ir.OpID) bool {
	opPos := a.store.mustPosition(op)
	if pt.IsBoundary() {
		return pt.direction == Before
	}
	ptPos := a.store.mustPosition(pt.op)
	if ptPos == opPos {
		return pt.direction == Before
	}
	return ptPos < opPos
}

// PointIsAfter reports whether the program point follows op: the exact
// negation of PointIsBefore.
func (a *Analysis) PointIsAfter(pt ProgramPoint, op ir.OpID) bool {
	return !a.PointIsBefore(pt, op)
}

// PrevOp returns the orderable operation immediately preceding op in
// store order, or InvalidOp when op is first. Passing InvalidOp returns
// InvalidOp, so boundary walks can chain without guards; passing an
// untracked operation panics.
func (a *Analysis) PrevOp(op ir.OpID) ir.OpID {
	if op == ir.InvalidOp {
		return ir.InvalidOp
	}
	i := a.store.mustPosition(op)
	if i == 0 {
		return ir.InvalidOp
	}
	return a.store.at(i - 1).op
}

// NextOp returns the orderable operation immediately following op in
// store order, or InvalidOp when op is last. Passing InvalidOp returns
// InvalidOp; passing an untracked operation panics.
func (a *Analysis) NextOp(op ir.OpID) ir.OpID {
	if op == ir.InvalidOp {
		return ir.InvalidOp
	}
	i := a.store.mustPosition(op)
	if i+1 == a.store.len() {
		return ir.InvalidOp
	}
	return a.store.at(i + 1).op
}

// Span returns the (first, last) pair of the given operations by store
// order: first is not after any of them and last is not before any of
// them. The input must be non-empty and fully tracked.
func (a *Analysis) Span(ops []ir.OpID) (first, last ir.OpID) {
	if len(ops) == 0 {
		panic("sequence: Span of an empty op list")
	}
	lo, hi := -1, -1
	for _, op := range ops {
		i := a.store.mustPosition(op)
		if lo == -1 || i < lo {
			lo = i
			first = op
		}
		if hi == -1 || i > hi {
			hi = i
			last = op
		}
	}
	return first, last
}
