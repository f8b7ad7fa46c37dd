package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RohanMKells/structured-additive-IR/internal/ir"
)

func compileString(t *testing.T, src string) (*ir.Program, []error) {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	require.NoError(t, v.Err())
	return CompileProgram(v.LookupPath(cue.ParsePath("program")))
}

func TestCompileProgramBasic(t *testing.T) {
	p, errs := compileString(t, `
		program: {
			name: "loop"
			ops: [
				{ name: "r", kind: "static_range" },
				{ name: "init", kind: "copy", sequence: 0 },
				{ name: "acc", kind: "fby", operands: ["init", "step"], loops: ["d0"] },
				{ name: "step", kind: "map", operands: ["acc"], loops: ["d0"], sequence: 1 },
			]
		}
	`)
	require.Empty(t, errs)
	require.NotNil(t, p)

	assert.Equal(t, "loop", p.Name)
	assert.Equal(t, 4, p.NumOps())

	init, ok := p.OpByName("init")
	require.True(t, ok)
	assert.Equal(t, ir.KindCopy, p.Op(init).Kind)
	assert.Equal(t, int64(0), *p.Op(init).Sequence)

	step, ok := p.OpByName("step")
	require.True(t, ok)
	assert.Equal(t, []string{"d0"}, p.Op(step).LoopNest)

	acc, ok := p.OpByName("acc")
	require.True(t, ok)
	require.Len(t, p.Op(acc).Operands, 2)
	assert.Equal(t, ir.Use(init), p.Op(acc).Operands[0])
	assert.Equal(t, ir.FeedbackUse(step), p.Op(acc).Operands[1], "the fby value side is a feedback use")
}

func TestCompileProgramForwardReference(t *testing.T) {
	// step appears after acc but acc's operand list names it; names are
	// registered before operands resolve.
	p, errs := compileString(t, `
		program: {
			name: "fwd"
			ops: [
				{ name: "acc", kind: "proj_any", operands: ["step"] },
				{ name: "step", kind: "copy" },
			]
		}
	`)
	require.Empty(t, errs)

	acc, _ := p.OpByName("acc")
	step, _ := p.OpByName("step")
	assert.Equal(t, []ir.Operand{ir.Use(step)}, p.Op(acc).Operands)
}

func TestCompileProgramMissingName(t *testing.T) {
	p, errs := compileString(t, `
		program: {
			ops: [{ name: "a", kind: "copy" }]
		}
	`)
	assert.Nil(t, p)
	require.Len(t, errs, 1)
	assertCompileCode(t, errs[0], ErrNameRequired)
}

func TestCompileProgramMissingOps(t *testing.T) {
	p, errs := compileString(t, `
		program: { name: "empty" }
	`)
	assert.Nil(t, p)
	require.Len(t, errs, 1)
	assertCompileCode(t, errs[0], ErrOpsRequired)
}

func TestCompileProgramUnknownKind(t *testing.T) {
	p, errs := compileString(t, `
		program: {
			name: "bad"
			ops: [{ name: "a", kind: "reduce" }]
		}
	`)
	assert.Nil(t, p)
	require.Len(t, errs, 1)
	assertCompileCode(t, errs[0], ErrUnknownKind)
	assert.Contains(t, errs[0].Error(), "reduce")
}

func TestCompileProgramDuplicateOpName(t *testing.T) {
	p, errs := compileString(t, `
		program: {
			name: "bad"
			ops: [
				{ name: "a", kind: "copy" },
				{ name: "a", kind: "map" },
			]
		}
	`)
	assert.Nil(t, p)
	require.Len(t, errs, 1)
	assertCompileCode(t, errs[0], ErrDuplicateOp)
}

func TestCompileProgramUnknownOperand(t *testing.T) {
	p, errs := compileString(t, `
		program: {
			name: "bad"
			ops: [{ name: "a", kind: "copy", operands: ["ghost"] }]
		}
	`)
	assert.Nil(t, p)
	require.Len(t, errs, 1)
	assertCompileCode(t, errs[0], ErrUnknownOperand)
	assert.Contains(t, errs[0].Error(), "ghost")
}

func TestCompileProgramHintOnValueKind(t *testing.T) {
	p, errs := compileString(t, `
		program: {
			name: "bad"
			ops: [{ name: "r", kind: "static_range", sequence: 0 }]
		}
	`)
	assert.Nil(t, p)
	require.Len(t, errs, 1)
	assertCompileCode(t, errs[0], ErrHintOnValueOp)
}

func TestCompileProgramCollectsAllErrors(t *testing.T) {
	p, errs := compileString(t, `
		program: {
			ops: [
				{ name: "a", kind: "reduce" },
				{ name: "b", kind: "copy", operands: ["ghost"] },
			]
		}
	`)
	assert.Nil(t, p)
	require.Len(t, errs, 3, "missing name, unknown kind and unknown operand all reported")
	assertCompileCode(t, errs[0], ErrNameRequired)
	assertCompileCode(t, errs[1], ErrUnknownKind)
	assertCompileCode(t, errs[2], ErrUnknownOperand)
}

func assertCompileCode(t *testing.T, err error, code string) {
	t.Helper()
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, code, ce.Code)
}
