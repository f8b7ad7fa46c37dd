package harness

import (
	"fmt"
	"strings"

	"github.com/RohanMKells/structured-additive-IR/internal/ir"
	"github.com/RohanMKells/structured-additive-IR/internal/sequence"
)

// Result is the outcome of one scenario run.
type Result struct {
	// Scenario is the scenario name.
	Scenario string `json:"scenario"`

	// Pass indicates every check succeeded.
	Pass bool `json:"pass"`

	// Checks counts the individual expectations evaluated.
	Checks int `json:"checks"`

	// Errors lists the failed checks. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result with no checks yet.
func NewResult(name string) *Result {
	return &Result{Scenario: name, Pass: true, Errors: []string{}}
}

// AddError records a failed check and marks the result as failed.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}

// BuildProgram constructs the region a scenario describes. Operand
// names carrying a "^" prefix become loop-carried uses.
//
// Scenario validation already vets names and kinds; BuildProgram
// re-checks them so programmatically built definitions fail with
// errors instead of panics.
func BuildProgram(def ProgramDef) (*ir.Program, error) {
	p := ir.NewProgram(def.Name)

	ids := make(map[string]ir.OpID, len(def.Ops))
	for i, op := range def.Ops {
		kind := ir.Kind(op.Kind)
		if !kind.Valid() {
			return nil, fmt.Errorf("ops[%d]: unknown kind %q", i, op.Kind)
		}
		if _, dup := ids[op.Name]; dup {
			return nil, fmt.Errorf("ops[%d]: duplicate op name %q", i, op.Name)
		}
		ids[op.Name] = p.AddOp(op.Name, kind)
	}

	for i, op := range def.Ops {
		id := ids[op.Name]
		if len(op.Operands) > 0 {
			operands := make([]ir.Operand, len(op.Operands))
			for j, ref := range op.Operands {
				name := strings.TrimPrefix(ref, "^")
				producer, ok := ids[name]
				if !ok {
					return nil, fmt.Errorf("ops[%d]: unknown operand %q", i, name)
				}
				if strings.HasPrefix(ref, "^") {
					operands[j] = ir.FeedbackUse(producer)
				} else {
					operands[j] = ir.Use(producer)
				}
			}
			p.SetOperands(id, operands...)
		}
		if len(op.Loops) > 0 {
			p.SetLoopNest(id, op.Loops...)
		}
		if op.Sequence != nil {
			if !ir.Kind(op.Kind).Orderable() {
				return nil, fmt.Errorf("ops[%d]: sequence hint on %s op %q", i, op.Kind, op.Name)
			}
			p.SetSequence(id, *op.Sequence)
		}
	}

	return p, nil
}

// Run executes a scenario and returns its result. The error return is
// reserved for malformed scenarios; failed expectations land in the
// result.
func Run(s *Scenario) (*Result, error) {
	result, _, err := run(s)
	return result, err
}

// run executes a scenario and also exposes the final analysis, for the
// golden helpers. The analysis is nil for cycle scenarios.
func run(s *Scenario) (*Result, *sequence.Analysis, error) {
	p, err := BuildProgram(s.Program)
	if err != nil {
		return nil, nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	result := NewResult(s.Name)

	a, err := sequence.Compute(p)
	if s.Expect != nil && s.Expect.Cycle {
		if sequence.IsCycleError(err) {
			result.Checks++
		} else {
			result.AddError("expected a dependency cycle, but analysis succeeded")
		}
		return result, nil, nil
	}
	if err != nil {
		result.AddError(fmt.Sprintf("analysis failed: %v", err))
		return result, nil, nil
	}

	r := resolver{p: p, erased: make(map[string]bool)}
	evaluate(a, r, s.Expect, result)

	for i, step := range s.Steps {
		if err := applyStep(a, r, step); err != nil {
			// Later steps build on this mutation; stop here.
			result.AddError(fmt.Sprintf("steps[%d]: %v", i, err))
			return result, a, nil
		}
		evaluate(a, r, step.Expect, result)
	}
	return result, a, nil
}

// applyStep applies one mutation, guarding the store's preconditions so
// a bad scenario reports an error instead of panicking mid-run.
func applyStep(a *sequence.Analysis, r resolver, step Step) error {
	switch step.Action {
	case StepErase:
		id, err := r.op(step.Op)
		if err != nil {
			return err
		}
		a.Erase(id)
		r.erased[step.Op] = true
		return nil
	case StepInsert:
		if !r.erased[step.Op] {
			return fmt.Errorf("op %q is still tracked; erase it before inserting", step.Op)
		}
		id, ok := r.p.OpByName(step.Op)
		if !ok {
			return fmt.Errorf("unknown op %q", step.Op)
		}
		anchor, err := r.op(step.Anchor)
		if err != nil {
			return err
		}
		dir, err := sequence.ParseDirection(step.Direction)
		if err != nil {
			return err
		}
		a.Insert(id, anchor, dir)
		delete(r.erased, step.Op)
		return nil
	}
	return fmt.Errorf("unknown action %q", step.Action)
}

// evaluate runs every expectation of the clause against the analysis,
// recording each as a check or an error.
func evaluate(a *sequence.Analysis, r resolver, e *ExpectClause, result *Result) {
	if e == nil {
		return
	}
	check := func(err error) {
		if err != nil {
			result.AddError(err.Error())
		} else {
			result.Checks++
		}
	}

	if len(e.Order) > 0 {
		check(assertOrder(a, e.Order))
	}
	if len(e.Traversal) > 0 {
		check(assertTraversal(a, e.Traversal))
	}
	for _, pair := range e.Before {
		check(assertBefore(a, r, pair))
	}
	if e.Span != nil {
		check(assertSpan(a, r, *e.Span))
	}
	for _, probe := range e.InsertionPoints {
		check(assertInsertionPoint(a, r, probe))
	}
}
