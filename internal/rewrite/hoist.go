package rewrite

import (
	"fmt"
	"log/slog"

	"github.com/RohanMKells/structured-additive-IR/internal/ir"
	"github.com/RohanMKells/structured-additive-IR/internal/sequence"
)

// HoistPass moves one compute operation out of its innermost loops: the
// op keeps only the first Depth loops of its nest and is resequenced
// before the run of deeper-nested operations it used to sit in.
//
// The pass walks backward from the op to the first operation nested in
// at most Depth of the op's loops, asks the analysis to certify an
// insertion point there that still shares Depth loops with the target
// nest, and refuses the move when any transitive producer would end up
// after the new position. The certified point can sit just inside a
// deeper sibling loop when the target loops begin there; callers that
// care must pick a different depth.
//
// The new order is persisted as sequence hints, so recompiling the
// rewritten program reproduces it.
type HoistPass struct {
	Op    string
	Depth int
}

func (HoistPass) Name() string { return "hoist" }

func (h HoistPass) Apply(p *ir.Program) error {
	id, ok := p.OpByName(h.Op)
	if !ok {
		return &PassError{
			Code:    ErrCodeUnknownOp,
			Pass:    h.Name(),
			Op:      h.Op,
			Message: fmt.Sprintf("program %q has no op named %q", p.Name, h.Op),
		}
	}
	op := p.Op(id)
	if !op.Orderable() {
		return &PassError{
			Code:    ErrCodeNotOrderable,
			Pass:    h.Name(),
			Op:      h.Op,
			Message: fmt.Sprintf("%s ops are positioned by their dependencies and cannot be hoisted", op.Kind),
		}
	}
	if h.Depth < 0 || h.Depth > len(op.LoopNest) {
		return &PassError{
			Code:    ErrCodeBadDepth,
			Pass:    h.Name(),
			Op:      h.Op,
			Message: fmt.Sprintf("depth %d is outside the op's %d-loop nest", h.Depth, len(op.LoopNest)),
		}
	}
	if h.Depth == len(op.LoopNest) {
		slog.Debug("hoist is a no-op", "op", h.Op, "depth", h.Depth)
		return nil
	}

	a, err := sequence.Compute(p)
	if err != nil {
		return err
	}

	nest := op.LoopNest
	target := nest[:h.Depth]

	// Walk out of the run of ops nested deeper than Depth within this
	// op's own loops.
	boundary := a.PrevOp(id)
	for boundary != ir.InvalidOp && a.PointAt(boundary, sequence.After).NumCommonLoops(nest) > h.Depth {
		boundary = a.PrevOp(boundary)
	}

	var pt sequence.ProgramPoint
	if boundary == ir.InvalidOp {
		pt = sequence.BeforeProgram()
	} else {
		pt = a.FindInsertionPoint(boundary, target, h.Depth, sequence.After)
	}

	if err := h.checkProducersVisible(p, a, id, pt); err != nil {
		return err
	}

	p.SetLoopNest(id, target...)
	switch {
	case pt.IsBoundary():
		if first := a.Ops()[0].Op; first != id {
			a.Erase(id)
			a.Insert(id, first, sequence.Before)
		}
	case pt.Op() != id:
		a.Erase(id)
		a.Insert(id, pt.Op(), pt.Direction())
	}
	a.AssignInferred()

	slog.Debug("op hoisted",
		"op", h.Op,
		"depth", h.Depth,
		"point", pt.String(),
	)
	return nil
}

// checkProducersVisible refuses a move that would place the op before
// any operation it transitively consumes. The span of the orderable
// producer frontier bounds them all: the new point must fall after the
// span's last member.
func (h HoistPass) checkProducersVisible(p *ir.Program, a *sequence.Analysis, id ir.OpID, pt sequence.ProgramPoint) error {
	frontier := producerFrontier(p, id)
	if len(frontier) == 0 {
		return nil
	}
	_, last := a.Span(frontier)
	if a.PointIsAfter(pt, last) {
		return nil
	}
	return &PassError{
		Code:    ErrCodeProducerHidden,
		Pass:    h.Name(),
		Op:      h.Op,
		Message: fmt.Sprintf("insertion point %s precedes producer %q", pt, p.Op(last).Name),
	}
}

// producerFrontier collects the orderable operations id transitively
// consumes through non-feedback operands, looking through
// dependency-only producers.
func producerFrontier(p *ir.Program, id ir.OpID) []ir.OpID {
	var frontier []ir.OpID
	seen := make(map[ir.OpID]bool)
	var walk func(ir.OpID)
	walk = func(cur ir.OpID) {
		for _, operand := range p.Op(cur).Operands {
			if operand.Feedback || seen[operand.Producer] {
				continue
			}
			seen[operand.Producer] = true
			if p.Op(operand.Producer).Orderable() {
				frontier = append(frontier, operand.Producer)
			} else {
				walk(operand.Producer)
			}
		}
	}
	walk(id)
	return frontier
}
