package sequence

import (
	"sort"

	"github.com/RohanMKells/structured-additive-IR/internal/ir"
)

// Analysis holds the synthesized execution order of one program region.
// It is built once per region by Compute and then mutated in lockstep
// with the caller's IR edits. Discard it when the edit pass over the
// region completes; there is no cross-region state.
type Analysis struct {
	program *ir.Program
	store   orderingStore
}

// DFS colors for the default-order traversal.
const (
	colorWhite = iota // not visited
	colorGray         // on the visitation stack
	colorBlack        // finished
)

// Compute builds the analysis for a program region, assigning every
// orderable operation a position consistent with both its explicit
// sequence hint (when present) and every non-feedback use-def edge.
//
// Hints bias the order but do not override dependencies: when a hint
// contradicts a use-def edge, the edge wins. Operations in unrelated
// connected components are ordered by appearance, so repeated runs over
// the same program produce the same order.
//
// Returns (nil, *CycleError) when the region contains a use-def cycle
// not broken by a feedback operand. This is the only failure mode.
func Compute(p *ir.Program) (*Analysis, error) {
	a := &Analysis{program: p, store: newOrderingStore()}

	color := make([]byte, p.NumOps()+1)
	stack := make([]ir.OpID, 0, p.NumOps())
	next := int64(0)

	var cycle *CycleError
	var visit func(id ir.OpID) bool
	visit = func(id ir.OpID) bool {
		switch color[id] {
		case colorBlack:
			return true
		case colorGray:
			cycle = newCycleError(p, stack, id)
			return false
		}
		color[id] = colorGray
		stack = append(stack, id)
		op := p.Op(id)
		for _, operand := range op.Operands {
			if operand.Feedback {
				continue
			}
			if !visit(operand.Producer) {
				return false
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = colorBlack
		if op.Orderable() {
			a.store.place(next, id)
			next++
		}
		return true
	}

	for _, id := range seedOrder(p) {
		if !visit(id) {
			return nil, cycle
		}
	}
	return a, nil
}

// seedOrder returns the root visitation order for the default-order
// traversal: operations carrying an explicit hint first, sorted by
// (hint, appearance), then every operation in appearance order. Seeding
// hinted operations first preserves their relative hint order whenever
// the dependencies allow it; the appearance-order tail gives unrelated
// connected components a fixed deterministic order.
func seedOrder(p *ir.Program) []ir.OpID {
	ops := p.Ops()

	var hinted []*ir.Operation
	for _, op := range ops {
		if op.HasSequence() {
			hinted = append(hinted, op)
		}
	}
	sort.SliceStable(hinted, func(i, j int) bool {
		return *hinted[i].Sequence < *hinted[j].Sequence
	})

	seeds := make([]ir.OpID, 0, len(hinted)+len(ops))
	for _, op := range hinted {
		seeds = append(seeds, op.ID)
	}
	for _, op := range ops {
		seeds = append(seeds, op.ID)
	}
	return seeds
}

// newCycleError extracts the cycle from the visitation stack: the
// segment from the gray operation back to the top is the offending
// path, and the top depends on the gray operation again.
func newCycleError(p *ir.Program, stack []ir.OpID, gray ir.OpID) *CycleError {
	start := 0
	for i, id := range stack {
		if id == gray {
			start = i
			break
		}
	}
	names := make([]string, 0, len(stack)-start)
	for _, id := range stack[start:] {
		names = append(names, p.Op(id).Name)
	}
	return &CycleError{
		Code:    ErrCodeCycleDetected,
		Program: p.Name,
		Ops:     names,
	}
}

// Program returns the region this analysis was built over.
func (a *Analysis) Program() *ir.Program { return a.program }

// anchorOf resolves the implicit position of a dependency-only
// operation: the store position of the highest-positioned orderable
// operation among its transitive non-feedback producers. The operation
// conceptually executes immediately after that entry. ok is false when
// the closure contains no orderable operation; such operations precede
// the whole store.
func (a *Analysis) anchorOf(op ir.OpID) (int, bool) {
	best := -1
	seen := make(map[ir.OpID]bool)
	var walk func(id ir.OpID)
	walk = func(id ir.OpID) {
		if seen[id] {
			return
		}
		seen[id] = true
		for _, operand := range a.program.Op(id).Operands {
			if operand.Feedback {
				continue
			}
			producer := operand.Producer
			if a.program.Op(producer).Orderable() {
				if i := a.store.mustPosition(producer); i > best {
					best = i
				}
			}
			walk(producer)
		}
	}
	walk(op)
	if best < 0 {
		return 0, false
	}
	return best, true
}
