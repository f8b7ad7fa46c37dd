package ir

import "fmt"

// Program is one region of operations in appearance order. Appearance
// order is the deterministic tiebreak for everything downstream, so a
// Program never reorders or renumbers its operations; rewrites change
// attributes (loop nests, sequence hints), not positions.
type Program struct {
	Name string

	ops    []*Operation
	byName map[string]OpID
}

// NewProgram creates an empty region with the given name.
func NewProgram(name string) *Program {
	return &Program{
		Name:   name,
		byName: make(map[string]OpID),
	}
}

// AddOp appends an operation and returns its handle. Names must be
// unique within the program; reusing one is a bug in the caller, not a
// property of the input, so it panics. Operands are attached separately
// via SetOperands once all producers exist.
func (p *Program) AddOp(name string, kind Kind) OpID {
	if _, dup := p.byName[name]; dup {
		panic(fmt.Sprintf("ir: duplicate op name %q in program %q", name, p.Name))
	}
	id := OpID(len(p.ops) + 1)
	p.ops = append(p.ops, &Operation{ID: id, Name: name, Kind: kind})
	p.byName[name] = id
	return id
}

// SetOperands replaces the operand list of id. Every producer must be a
// valid handle in this program.
func (p *Program) SetOperands(id OpID, operands ...Operand) {
	op := p.Op(id)
	for _, o := range operands {
		p.Op(o.Producer) // bounds check
	}
	op.Operands = append([]Operand(nil), operands...)
}

// SetLoopNest replaces the loop nest of id, outermost loop first.
func (p *Program) SetLoopNest(id OpID, loops ...string) {
	p.Op(id).LoopNest = append([]string(nil), loops...)
}

// SetSequence sets the explicit sequence hint of id. Only orderable
// operations may carry one.
func (p *Program) SetSequence(id OpID, seq int64) {
	op := p.Op(id)
	if !op.Orderable() {
		panic(fmt.Sprintf("ir: sequence hint on non-orderable op %q (%s)", op.Name, op.Kind))
	}
	op.Sequence = &seq
}

// ClearSequence removes the explicit sequence hint of id, if any.
func (p *Program) ClearSequence(id OpID) {
	p.Op(id).Sequence = nil
}

// Op returns the operation for id. An out-of-range handle is a
// programming error and panics.
func (p *Program) Op(id OpID) *Operation {
	if id <= 0 || int(id) > len(p.ops) {
		panic(fmt.Sprintf("ir: invalid op handle %d in program %q", id, p.Name))
	}
	return p.ops[id-1]
}

// OpByName resolves a name to a handle.
func (p *Program) OpByName(name string) (OpID, bool) {
	id, ok := p.byName[name]
	return id, ok
}

// NumOps returns the number of operations in the region.
func (p *Program) NumOps() int { return len(p.ops) }

// Ops returns the operations in appearance order. The slice is fresh on
// every call; the pointed-to operations are shared.
func (p *Program) Ops() []*Operation {
	return append([]*Operation(nil), p.ops...)
}
