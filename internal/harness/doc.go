// Package harness provides conformance testing for the sequencing
// analysis.
//
// The harness loads scenario files describing a program region, builds
// the region through the ir package, computes its order with
// sequence.Compute, and checks the declared expectations. Mutation
// steps exercise the incremental Insert and Erase paths on the live
// analysis, each followed by its own round of checks.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	program:
//	  name: main
//	  ops:
//	    - name: r
//	      kind: static_range
//	    - name: a
//	      kind: copy
//	      operands: [r]
//	      loops: [d0]
//	      sequence: 0
//	expect:
//	  order: [a]
//	  traversal: [r, a]
//	  before:
//	    - { first: a, second: b }
//	  span: { ops: [a, b], first: a, last: b }
//	  insertion_points:
//	    - start: a
//	      loops: [d0]
//	      depth: 0
//	      direction: before
//	      at: { direction: before, loops: [] }
//	steps:
//	  - action: erase
//	    op: a
//	    expect:
//	      order: [b]
//
// Operand names prefixed with "^" mark loop-carried uses, matching the
// program dump notation. A scenario with "expect: {cycle: true}" claims
// the region cannot be ordered at all and carries no other checks.
//
// # Expectation Types
//
// The following expectations are supported:
//
//   - order: exact store order, orderable ops only
//   - traversal: exact fused traversal, dependency-only ops included
//   - before: one op is ordered before another
//   - span: first and last store entries covering a group of ops
//   - insertion_points: where FindInsertionPoint lands for a probe
//   - cycle: analysis must fail with a dependency cycle
//
// # Deterministic Testing
//
// Scenario runs are deterministic by construction: the analysis breaks
// ties by operation appearance order and the harness never consults
// wall-clock time or random state. Identical scenarios produce
// identical results and identical golden renderings across runs.
//
// # Usage
//
// Load and run a scenario:
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/diamond.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
