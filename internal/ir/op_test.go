package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind_Orderable(t *testing.T) {
	tests := []struct {
		kind      Kind
		orderable bool
	}{
		{KindStaticRange, false},
		{KindDynRange, false},
		{KindFby, false},
		{KindProjAny, false},
		{KindProjLast, false},
		{KindFromScalar, false},
		{KindCopy, true},
		{KindMap, true},
		{KindMapReduce, true},
		{KindAlloc, true},
		{KindFree, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.orderable, tt.kind.Orderable())
		})
	}
}

func TestKind_Valid(t *testing.T) {
	for _, k := range Kinds {
		assert.True(t, k.Valid(), "kind %s should be valid", k)
	}

	assert.False(t, Kind("").Valid())
	assert.False(t, Kind("reduce").Valid())
	assert.False(t, Kind("Copy").Valid(), "kinds are case-sensitive")
}

func TestOperand_Constructors(t *testing.T) {
	plain := Use(3)
	assert.Equal(t, OpID(3), plain.Producer)
	assert.False(t, plain.Feedback)

	carried := FeedbackUse(7)
	assert.Equal(t, OpID(7), carried.Producer)
	assert.True(t, carried.Feedback)
}

func TestOperation_SequenceOr(t *testing.T) {
	op := &Operation{Name: "a", Kind: KindCopy}
	assert.False(t, op.HasSequence())
	assert.Equal(t, int64(-1), op.SequenceOr(-1))

	five := int64(5)
	op.Sequence = &five
	assert.True(t, op.HasSequence())
	assert.Equal(t, int64(5), op.SequenceOr(-1))
}
