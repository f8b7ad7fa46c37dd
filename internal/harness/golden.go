package harness

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/RohanMKells/structured-additive-IR/internal/sequence"
)

// Render formats an analysis for golden comparison: the program dump,
// the ordering store with its keys, and the fused traversal. The output
// depends only on program content and store state, so it is stable
// across runs.
func Render(a *sequence.Analysis) []byte {
	var buf bytes.Buffer
	buf.WriteString(a.Program().Dump())

	buf.WriteString("\nstore:\n")
	for i, entry := range a.Ops() {
		op := a.Program().Op(entry.Op)
		fmt.Fprintf(&buf, "  [%d] key=%d %s", i, entry.Key, op.Name)
		if len(op.LoopNest) > 0 {
			fmt.Fprintf(&buf, " loops=[%s]", strings.Join(op.LoopNest, ", "))
		}
		buf.WriteByte('\n')
	}

	buf.WriteString("\ntraversal:\n")
	for _, id := range a.AllOps().Collect() {
		fmt.Fprintf(&buf, "  %s\n", a.Program().Op(id).Name)
	}
	return buf.Bytes()
}

// RunWithGolden executes a scenario, fails the test on any failed
// expectation, and compares the final analysis state against a golden
// file in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Cycle scenarios have no final analysis and cannot be golden-tested.
func RunWithGolden(t *testing.T, scenario *Scenario) *Result {
	t.Helper()

	result, a, err := run(scenario)
	if err != nil {
		t.Fatalf("run scenario %s: %v", scenario.Name, err)
	}
	if !result.Pass {
		t.Fatalf("scenario %s failed:\n%s", scenario.Name, strings.Join(result.Errors, "\n"))
	}
	if a == nil {
		t.Fatalf("scenario %s has no final analysis to compare", scenario.Name)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, Render(a))

	return result
}
