package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RohanMKells/structured-additive-IR/internal/ir"
)

func TestChain_ShapesAsDocumented(t *testing.T) {
	p := Chain(3)

	require.Equal(t, 3, p.NumOps())
	c0 := MustOp(p, "c0")
	c1 := MustOp(p, "c1")
	c2 := MustOp(p, "c2")

	assert.Empty(t, p.Op(c0).Operands)
	require.Len(t, p.Op(c1).Operands, 1)
	assert.Equal(t, c0, p.Op(c1).Operands[0].Producer)
	require.Len(t, p.Op(c2).Operands, 1)
	assert.Equal(t, c1, p.Op(c2).Operands[0].Producer)
}

func TestDiamond_BottomConsumesBothArms(t *testing.T) {
	p := Diamond()

	bottom := MustOp(p, "bottom")
	require.Len(t, p.Op(bottom).Operands, 2)
	assert.Equal(t, MustOp(p, "left"), p.Op(bottom).Operands[0].Producer)
	assert.Equal(t, MustOp(p, "right"), p.Op(bottom).Operands[1].Producer)
}

func TestCyclePair_FeedbackFlag(t *testing.T) {
	strict := CyclePair(false)
	b := MustOp(strict, "b")
	assert.False(t, strict.Op(b).Operands[0].Feedback)

	broken := CyclePair(true)
	b = MustOp(broken, "b")
	assert.True(t, broken.Op(b).Operands[0].Feedback)
}

func TestFbyLoop_ValueSideIsLoopCarried(t *testing.T) {
	p := FbyLoop()

	acc := MustOp(p, "acc")
	operands := p.Op(acc).Operands
	require.Len(t, operands, 2)
	assert.False(t, operands[0].Feedback)
	assert.True(t, operands[1].Feedback)
	assert.Equal(t, MustOp(p, "step"), operands[1].Producer)
	assert.Equal(t, []string{"d0"}, p.Op(acc).LoopNest)
}

func TestLoopNestLadder_Nests(t *testing.T) {
	p := LoopNestLadder()

	assert.Empty(t, p.Op(MustOp(p, "outer")).LoopNest)
	assert.Equal(t, []string{"d0"}, p.Op(MustOp(p, "mid")).LoopNest)
	assert.Equal(t, []string{"d0", "d1"}, p.Op(MustOp(p, "inner2")).LoopNest)
	assert.Equal(t, []string{"d0", "d2"}, p.Op(MustOp(p, "other")).LoopNest)
}

func TestMixedKinds_SplitsKinds(t *testing.T) {
	p := MixedKinds()

	var orderable, depOnly int
	for _, op := range p.Ops() {
		if op.Kind.Orderable() {
			orderable++
		} else {
			depOnly++
		}
	}
	assert.Equal(t, 3, orderable)
	assert.Equal(t, 3, depOnly)
}

func TestMustOp_PanicsOnUnknownName(t *testing.T) {
	p := Chain(1)
	assert.Panics(t, func() { MustOp(p, "nope") })
	assert.Equal(t, MustOp(p, "c0"), ir.OpID(1))
}
