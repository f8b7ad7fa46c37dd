package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/RohanMKells/structured-additive-IR/internal/ir"
)

// AnalyzeCycles statically detects non-feedback use-def cycles.
//
// The sequencing analysis rejects the same cycles when it runs, but it
// stops at the first one it walks into; this check finds every strongly
// connected component in one pass so `sair validate` can report them
// all together with the other validation errors.
//
// The algorithm:
//  1. Build the use-def graph, skipping feedback operands.
//  2. Find strongly connected components with Tarjan's algorithm.
//  3. Report each SCC of size > 1, and each self-loop, as an error.
//
// A program whose non-feedback edges form a DAG returns nil.
func AnalyzeCycles(p *ir.Program) []ValidationError {
	ops := p.Ops()
	if len(ops) == 0 {
		return nil
	}

	var errs []ValidationError
	for _, scc := range tarjanSCC(p, ops) {
		if len(scc) == 1 && !hasSelfLoop(p, scc[0]) {
			continue
		}
		// Appearance order keeps the diagnostic stable across runs.
		sort.Slice(scc, func(i, j int) bool { return scc[i] < scc[j] })
		names := make([]string, len(scc))
		for i, id := range scc {
			names[i] = p.Op(id).Name
		}
		errs = append(errs, ValidationError{
			Field:   "ops",
			Message: fmt.Sprintf("non-feedback use-def cycle through %s", strings.Join(names, ", ")),
			Code:    ErrDependencyCycle,
		})
	}
	return errs
}

func hasSelfLoop(p *ir.Program, id ir.OpID) bool {
	for _, operand := range p.Op(id).Operands {
		if !operand.Feedback && operand.Producer == id {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components over the non-feedback
// use-def edges. Nodes are visited in appearance order so the result
// is deterministic.
func tarjanSCC(p *ir.Program, ops []*ir.Operation) [][]ir.OpID {
	var (
		index   = 0
		stack   []ir.OpID
		indices = make(map[ir.OpID]int)
		lowlink = make(map[ir.OpID]int)
		onStack = make(map[ir.OpID]bool)
		sccs    [][]ir.OpID
	)

	var strongConnect func(ir.OpID)
	strongConnect = func(v ir.OpID) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, operand := range p.Op(v).Operands {
			if operand.Feedback {
				continue
			}
			w := operand.Producer
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []ir.OpID
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, op := range ops {
		if _, visited := indices[op.ID]; !visited {
			strongConnect(op.ID)
		}
	}

	return sccs
}
