package rewrite

import (
	"github.com/RohanMKells/structured-additive-IR/internal/ir"
	"github.com/RohanMKells/structured-additive-IR/internal/sequence"
)

// CanonicalizePass replaces whatever sequence hints a program carries
// with the contiguous 0..n-1 hints of its synthesized order. After it
// runs, every orderable op is explicitly hinted, sparse and duplicate
// hints are gone, and recompiling the program reproduces the exact
// order. Applying it twice changes nothing.
type CanonicalizePass struct{}

func (CanonicalizePass) Name() string { return "canonicalize" }

func (CanonicalizePass) Apply(p *ir.Program) error {
	a, err := sequence.Compute(p)
	if err != nil {
		return err
	}
	a.AssignInferred()
	return nil
}
