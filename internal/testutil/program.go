package testutil

import (
	"fmt"

	"github.com/RohanMKells/structured-additive-IR/internal/ir"
)

// Chain builds a linear producer-consumer chain of n copy operations
// named c0..c(n-1), each consuming its predecessor. No hints, no loops.
func Chain(n int) *ir.Program {
	p := ir.NewProgram("chain")
	var prev ir.OpID
	for i := 0; i < n; i++ {
		id := p.AddOp(fmt.Sprintf("c%d", i), ir.KindCopy)
		if i > 0 {
			p.SetOperands(id, ir.Use(prev))
		}
		prev = id
	}
	return p
}

// Diamond builds a diamond dependency: top feeds left and right, both
// feed bottom. No hints, no loops.
func Diamond() *ir.Program {
	p := ir.NewProgram("diamond")
	top := p.AddOp("top", ir.KindCopy)
	left := p.AddOp("left", ir.KindCopy)
	right := p.AddOp("right", ir.KindCopy)
	bottom := p.AddOp("bottom", ir.KindMap)
	p.SetOperands(left, ir.Use(top))
	p.SetOperands(right, ir.Use(top))
	p.SetOperands(bottom, ir.Use(left), ir.Use(right))
	return p
}

// HintedProgram builds the mixed hinted/unhinted region used by the
// order-synthesis tests: p produces a value; q consumes it and carries
// hint 5; r consumes it without a hint; s is independent and unhinted.
func HintedProgram() *ir.Program {
	p := ir.NewProgram("hinted")
	prod := p.AddOp("p", ir.KindCopy)
	q := p.AddOp("q", ir.KindCopy)
	r := p.AddOp("r", ir.KindCopy)
	p.AddOp("s", ir.KindCopy)
	p.SetOperands(q, ir.Use(prod))
	p.SetOperands(r, ir.Use(prod))
	p.SetSequence(q, 5)
	return p
}

// CyclePair builds the two-op cycle a <-> b. When feedback is true,
// b's use of a is marked loop-carried, which exempts that edge from
// cycle detection.
func CyclePair(feedback bool) *ir.Program {
	p := ir.NewProgram("cycle")
	a := p.AddOp("a", ir.KindCopy)
	b := p.AddOp("b", ir.KindCopy)
	p.SetOperands(a, ir.Use(b))
	if feedback {
		p.SetOperands(b, ir.FeedbackUse(a))
	} else {
		p.SetOperands(b, ir.Use(a))
	}
	return p
}

// FbyLoop builds the canonical loop-carried region: a range, an initial
// value, an fby whose value side feeds back from the loop body, and the
// body itself consuming the fby.
//
//	r    = static_range
//	init = copy
//	acc  = fby(init, ^step)  loops=[d0]
//	step = map(acc)          loops=[d0]
func FbyLoop() *ir.Program {
	p := ir.NewProgram("fby_loop")
	p.AddOp("r", ir.KindStaticRange)
	init := p.AddOp("init", ir.KindCopy)
	acc := p.AddOp("acc", ir.KindFby)
	step := p.AddOp("step", ir.KindMap)
	p.SetOperands(acc, ir.Use(init), ir.FeedbackUse(step))
	p.SetOperands(step, ir.Use(acc))
	p.SetLoopNest(acc, "d0")
	p.SetLoopNest(step, "d0")
	return p
}

// LoopNestLadder builds a region whose compute ops step through
// progressively deeper loop nests, for insertion-point walks:
//
//	outer  = copy   loops=[]
//	mid    = copy   loops=[d0]
//	inner1 = copy   loops=[d0, d1]
//	inner2 = map    loops=[d0, d1]
//	other  = copy   loops=[d0, d2]
//
// Ops are chained so the synthesized order matches appearance order.
func LoopNestLadder() *ir.Program {
	p := ir.NewProgram("ladder")
	outer := p.AddOp("outer", ir.KindCopy)
	mid := p.AddOp("mid", ir.KindCopy)
	inner1 := p.AddOp("inner1", ir.KindCopy)
	inner2 := p.AddOp("inner2", ir.KindMap)
	other := p.AddOp("other", ir.KindCopy)
	p.SetOperands(mid, ir.Use(outer))
	p.SetOperands(inner1, ir.Use(mid))
	p.SetOperands(inner2, ir.Use(inner1))
	p.SetOperands(other, ir.Use(inner2))
	p.SetLoopNest(mid, "d0")
	p.SetLoopNest(inner1, "d0", "d1")
	p.SetLoopNest(inner2, "d0", "d1")
	p.SetLoopNest(other, "d0", "d2")
	return p
}

// MixedKinds builds a region interleaving dependency-only and compute
// ops, for fused-traversal tests:
//
//	r1 = static_range            (no producers, anchorless)
//	a  = copy(r1)
//	pr = proj_last(a)
//	b  = map(pr)
//	r2 = dyn_range(a)            (anchored at a)
//	c  = copy(r2)
func MixedKinds() *ir.Program {
	p := ir.NewProgram("mixed")
	r1 := p.AddOp("r1", ir.KindStaticRange)
	a := p.AddOp("a", ir.KindCopy)
	pr := p.AddOp("pr", ir.KindProjLast)
	b := p.AddOp("b", ir.KindMap)
	r2 := p.AddOp("r2", ir.KindDynRange)
	c := p.AddOp("c", ir.KindCopy)
	p.SetOperands(a, ir.Use(r1))
	p.SetOperands(pr, ir.Use(a))
	p.SetOperands(b, ir.Use(pr))
	p.SetOperands(r2, ir.Use(a))
	p.SetOperands(c, ir.Use(r2))
	return p
}

// MustOp resolves an op name, panicking when absent. Test programs are
// fixed, so a miss is a typo in the test itself.
func MustOp(p *ir.Program, name string) ir.OpID {
	id, ok := p.OpByName(name)
	if !ok {
		panic(fmt.Sprintf("testutil: op %q not in program %q", name, p.Name))
	}
	return id
}
