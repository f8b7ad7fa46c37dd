package sequence

import (
	"github.com/RohanMKells/structured-additive-IR/internal/ir"
)

// OpIterator walks the fused traversal of a region: every orderable
// operation in store order, each followed by the dependency-only
// operations whose implicit position resolves immediately after it.
// Dependency-only operations with no orderable producer at all are
// yielded first, before the first store entry. Operations sharing an
// anchor come out in a dependency-respecting walk seeded by appearance
// order.
//
// The iterator is forward-only and single-use: re-walking requires a
// fresh AllOps call. It reads the store as it advances, so any Insert
// or Erase while it is alive invalidates it by contract; interleaving
// iteration with mutation is undefined.
type OpIterator struct {
	a        *Analysis
	storeIdx int
	buf      []ir.OpID
	bufIdx   int
}

// AllOps returns a fresh iterator over the fused traversal.
func (a *Analysis) AllOps() *OpIterator {
	return &OpIterator{a: a, buf: a.depsAnchoredAt(-1)}
}

// Next yields the next operation, or (InvalidOp, false) once the
// traversal is exhausted.
func (it *OpIterator) Next() (ir.OpID, bool) {
	if it.bufIdx < len(it.buf) {
		op := it.buf[it.bufIdx]
		it.bufIdx++
		return op, true
	}
	if it.storeIdx >= it.a.store.len() {
		return ir.InvalidOp, false
	}
	op := it.a.store.at(it.storeIdx).op
	// The side buffer is recomputed each time the store cursor advances
	// past an orderable operation.
	it.buf = it.a.depsAnchoredAt(it.storeIdx)
	it.bufIdx = 0
	it.storeIdx++
	return op, true
}

// Collect drains the iterator into a slice.
func (it *OpIterator) Collect() []ir.OpID {
	var out []ir.OpID
	for op, ok := it.Next(); ok; op, ok = it.Next() {
		out = append(out, op)
	}
	return out
}

// depsAnchoredAt collects the dependency-only operations whose anchor
// is the store entry at pos; pos -1 selects the anchorless group. The
// group is ordered by a dependency-respecting walk over the group's own
// non-feedback edges, seeded in appearance order.
func (a *Analysis) depsAnchoredAt(pos int) []ir.OpID {
	var group []ir.OpID
	member := make(map[ir.OpID]bool)
	for _, op := range a.program.Ops() {
		if op.Orderable() {
			continue
		}
		at := -1
		if i, ok := a.anchorOf(op.ID); ok {
			at = i
		}
		if at == pos {
			group = append(group, op.ID)
			member[op.ID] = true
		}
	}
	if len(group) == 0 {
		return nil
	}

	out := make([]ir.OpID, 0, len(group))
	done := make(map[ir.OpID]bool)
	var visit func(id ir.OpID)
	visit = func(id ir.OpID) {
		if done[id] {
			return
		}
		done[id] = true
		for _, operand := range a.program.Op(id).Operands {
			// Producers anchored earlier were already yielded with
			// their own anchor; only same-group producers order here.
			if operand.Feedback || !member[operand.Producer] {
				continue
			}
			visit(operand.Producer)
		}
		out = append(out, id)
	}
	for _, id := range group {
		visit(id)
	}
	return out
}
