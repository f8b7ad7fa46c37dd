package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestProgram_Dump covers the full line grammar: bare ops, operand
// lists, feedback markers, loop nests and sequence hints.
func TestProgram_Dump(t *testing.T) {
	p := NewProgram("main")
	r := p.AddOp("r", KindStaticRange)
	init := p.AddOp("init", KindCopy)
	next := p.AddOp("next", KindMap)
	acc := p.AddOp("acc", KindFby)

	p.SetOperands(next, Use(acc))
	p.SetOperands(acc, Use(init), FeedbackUse(next))
	p.SetLoopNest(next, "d0")
	p.SetLoopNest(acc, "d0")
	p.SetSequence(init, 0)
	_ = r

	want := `program main
  r = static_range
  init = copy seq=0
  next = map(acc) loops=[d0]
  acc = fby(init, ^next) loops=[d0]
`
	assert.Equal(t, want, p.Dump())
}

func TestProgram_Dump_Deterministic(t *testing.T) {
	build := func() *Program {
		p := NewProgram("p")
		a := p.AddOp("a", KindCopy)
		b := p.AddOp("b", KindCopy)
		p.SetOperands(b, Use(a))
		p.SetLoopNest(b, "d0", "d1")
		return p
	}

	assert.Equal(t, build().Dump(), build().Dump())
}

func TestProgram_Dump_Empty(t *testing.T) {
	p := NewProgram("empty")
	assert.Equal(t, "program empty\n", p.Dump())
}
