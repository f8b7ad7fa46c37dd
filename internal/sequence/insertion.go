package sequence

import (
	"github.com/RohanMKells/structured-additive-IR/internal/ir"
)

// FindInsertionPoint walks from start toward the region boundary, in
// the given direction, and returns the first program point whose loop
// nest shares at least numLoops leading loops with targetNest. The
// returned point's nest is trimmed to exactly the shared prefix, so it
// names the nest an operation inserted there would declare.
//
// When no operation on the walk qualifies, the region boundary is
// returned; its nest is empty and it satisfies any numLoops of zero,
// but it is also the fallback for unsatisfiable requests. Walking
// further in the same direction from the returned point never finds a
// qualifying point closer to start.
//
// start may be any operation of the region. A dependency-only start
// walks from the orderable operation its implicit position follows.
func (a *Analysis) FindInsertionPoint(start ir.OpID, targetNest []string, numLoops int, dir Direction) ProgramPoint {
	for cur := a.walkStart(start, dir); cur != ir.InvalidOp; cur = a.step(cur, dir) {
		pt := a.PointAt(cur, dir)
		common := pt.NumCommonLoops(targetNest)
		pt.TrimLoopNest(common)
		if common >= numLoops {
			return pt
		}
	}
	if dir == Before {
		return BeforeProgram()
	}
	return AfterProgram()
}

// walkStart maps start to its first orderable candidate: itself when
// orderable, otherwise its anchor. An anchorless start precedes the
// whole store, so walking After begins at the first entry and walking
// Before reaches the boundary immediately.
func (a *Analysis) walkStart(start ir.OpID, dir Direction) ir.OpID {
	if a.program.Op(start).Orderable() {
		a.store.mustPosition(start)
		return start
	}
	if i, ok := a.anchorOf(start); ok {
		return a.store.at(i).op
	}
	if dir == After && a.store.len() > 0 {
		return a.store.at(0).op
	}
	return ir.InvalidOp
}

func (a *Analysis) step(cur ir.OpID, dir Direction) ir.OpID {
	if dir == Before {
		return a.PrevOp(cur)
	}
	return a.NextOp(cur)
}
