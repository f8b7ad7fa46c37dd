package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/RohanMKells/structured-additive-IR/internal/ir"
	"github.com/RohanMKells/structured-additive-IR/internal/sequence"
)

// AssertionError is returned when a scenario expectation fails.
// It includes the current store order to help debug the failure.
type AssertionError struct {
	Type     string   // Expectation type for categorization
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Order    []string // Store order at the time of the failure
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	// Header with expectation type
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)

	// Expected vs Actual (most important info)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	// Store order for context
	fmt.Fprintf(&buf, "\nCurrent order:\n")
	for i, name := range e.Order {
		fmt.Fprintf(&buf, "  [%d] %s\n", i, name)
	}

	return buf.String()
}

// resolver maps scenario op names to IDs. Names whose op an earlier
// step erased are refused until a later step re-inserts them.
type resolver struct {
	p      *ir.Program
	erased map[string]bool
}

func (r resolver) op(name string) (ir.OpID, error) {
	if r.erased[name] {
		return ir.InvalidOp, fmt.Errorf("op %q is erased", name)
	}
	id, ok := r.p.OpByName(name)
	if !ok {
		return ir.InvalidOp, fmt.Errorf("unknown op %q", name)
	}
	return id, nil
}

// storeNames returns the store's orderable ops as names, first to last.
func storeNames(a *sequence.Analysis) []string {
	entries := a.Ops()
	names := make([]string, len(entries))
	for i, entry := range entries {
		names[i] = a.Program().Op(entry.Op).Name
	}
	return names
}

// traversalNames returns the fused traversal as names, dependency-only
// ops included.
func traversalNames(a *sequence.Analysis) []string {
	ids := a.AllOps().Collect()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = a.Program().Op(id).Name
	}
	return names
}

// assertOrder checks the store order matches exactly.
func assertOrder(a *sequence.Analysis, want []string) error {
	got := storeNames(a)
	if !slices.Equal(got, want) {
		return &AssertionError{
			Type:     "order",
			Expected: strings.Join(want, ", "),
			Actual:   strings.Join(got, ", "),
			Order:    got,
		}
	}
	return nil
}

// assertTraversal checks the fused traversal matches exactly.
func assertTraversal(a *sequence.Analysis, want []string) error {
	got := traversalNames(a)
	if !slices.Equal(got, want) {
		return &AssertionError{
			Type:     "traversal",
			Expected: strings.Join(want, ", "),
			Actual:   strings.Join(got, ", "),
			Order:    storeNames(a),
		}
	}
	return nil
}

// assertBefore checks one ordering relation between two ops.
func assertBefore(a *sequence.Analysis, r resolver, pair OrderPair) error {
	first, err := r.op(pair.First)
	if err != nil {
		return err
	}
	second, err := r.op(pair.Second)
	if err != nil {
		return err
	}
	if !a.IsBefore(first, second) {
		return &AssertionError{
			Type:     "before",
			Expected: fmt.Sprintf("%s before %s", pair.First, pair.Second),
			Actual:   fmt.Sprintf("%s is not before %s", pair.First, pair.Second),
			Order:    storeNames(a),
		}
	}
	return nil
}

// assertSpan checks the first and last ops of a group's span.
func assertSpan(a *sequence.Analysis, r resolver, check SpanCheck) error {
	ids := make([]ir.OpID, len(check.Ops))
	for i, name := range check.Ops {
		id, err := r.op(name)
		if err != nil {
			return err
		}
		ids[i] = id
	}
	first, last := a.Span(ids)
	gotFirst := a.Program().Op(first).Name
	gotLast := a.Program().Op(last).Name
	if gotFirst != check.First || gotLast != check.Last {
		return &AssertionError{
			Type:     "span",
			Expected: fmt.Sprintf("first=%s last=%s", check.First, check.Last),
			Actual:   fmt.Sprintf("first=%s last=%s", gotFirst, gotLast),
			Order:    storeNames(a),
		}
	}
	return nil
}

// assertInsertionPoint probes FindInsertionPoint and checks the point
// it lands on, including the trimmed loop nest.
func assertInsertionPoint(a *sequence.Analysis, r resolver, probe InsertionProbe) error {
	start, err := r.op(probe.Start)
	if err != nil {
		return err
	}
	dir, err := sequence.ParseDirection(probe.Direction)
	if err != nil {
		return err
	}
	wantDir, err := sequence.ParseDirection(probe.At.Direction)
	if err != nil {
		return err
	}

	pt := a.FindInsertionPoint(start, probe.Loops, probe.Depth, dir)

	ok := pt.Direction() == wantDir && slices.Equal(pt.LoopNest(), probe.At.Loops)
	if probe.At.Op == "" {
		ok = ok && pt.IsBoundary()
	} else {
		want, err := r.op(probe.At.Op)
		if err != nil {
			return err
		}
		ok = ok && pt.Op() == want
	}
	if !ok {
		return &AssertionError{
			Type:     "insertion_point",
			Expected: describePointDef(probe.At),
			Actual:   describePoint(a, pt),
			Order:    storeNames(a),
		}
	}
	return nil
}

func describePointDef(def PointDef) string {
	anchor := "program"
	if def.Op != "" {
		anchor = def.Op
	}
	return fmt.Sprintf("%s %s loops=[%s]", def.Direction, anchor, strings.Join(def.Loops, ", "))
}

func describePoint(a *sequence.Analysis, pt sequence.ProgramPoint) string {
	anchor := "program"
	if !pt.IsBoundary() {
		anchor = a.Program().Op(pt.Op()).Name
	}
	return fmt.Sprintf("%s %s loops=[%s]", pt.Direction(), anchor, strings.Join(pt.LoopNest(), ", "))
}
