package sequence

import (
	"fmt"

	"github.com/RohanMKells/structured-additive-IR/internal/ir"
)

// Direction selects which side of a reference operation or region a
// point or insertion lands on.
type Direction int

const (
	Before Direction = iota
	After
)

func (d Direction) String() string {
	switch d {
	case Before:
		return "before"
	case After:
		return "after"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// ParseDirection converts "before" or "after" to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "before":
		return Before, nil
	case "after":
		return After, nil
	}
	return Before, fmt.Errorf("invalid direction %q: must be \"before\" or \"after\"", s)
}

// ProgramPoint is a position in the execution of a region: immediately
// before or after one orderable operation, or before or after the whole
// region (the boundary). A point carries the loop nest active at that
// position; rewrites targeting a shallower nest trim it.
type ProgramPoint struct {
	op        ir.OpID
	direction Direction
	loopNest  []string
}

// BeforeProgram returns the point immediately before the whole region.
func BeforeProgram() ProgramPoint { return ProgramPoint{direction: Before} }

// AfterProgram returns the point immediately after the whole region.
func AfterProgram() ProgramPoint { return ProgramPoint{direction: After} }

// PointAt returns the point immediately before or after op, annotated
// with op's declared loop nest. op must be tracked by the store.
func (a *Analysis) PointAt(op ir.OpID, d Direction) ProgramPoint {
	a.store.mustPosition(op)
	return ProgramPoint{op: op, direction: d, loopNest: a.program.Op(op).LoopNest}
}

// Op returns the anchoring operation, or InvalidOp for a boundary
// point.
func (pt ProgramPoint) Op() ir.OpID { return pt.op }

// Direction reports whether the point is before or after its anchor.
func (pt ProgramPoint) Direction() Direction { return pt.direction }

// IsBoundary reports whether the point is outside every operation,
// before or after the whole region.
func (pt ProgramPoint) IsBoundary() bool { return pt.op == ir.InvalidOp }

// LoopNest returns the loops the point is nested in, outermost first.
func (pt ProgramPoint) LoopNest() []string { return pt.loopNest }

// TrimLoopNest shortens the point's loop nest to its first n loops.
func (pt *ProgramPoint) TrimLoopNest(n int) {
	if n < len(pt.loopNest) {
		pt.loopNest = pt.loopNest[:n]
	}
}

// NumCommonLoops returns the length of the longest common prefix of the
// point's loop nest and target.
func (pt ProgramPoint) NumCommonLoops(target []string) int {
	n := 0
	for n < len(pt.loopNest) && n < len(target) && pt.loopNest[n] == target[n] {
		n++
	}
	return n
}

func (pt ProgramPoint) String() string {
	if pt.IsBoundary() {
		return fmt.Sprintf("%s program", pt.direction)
	}
	return fmt.Sprintf("%s op %d", pt.direction, pt.op)
}
