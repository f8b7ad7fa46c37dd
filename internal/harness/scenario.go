package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/RohanMKells/structured-additive-IR/internal/ir"
	"github.com/RohanMKells/structured-additive-IR/internal/sequence"
)

// Scenario defines a sequencing conformance scenario: a program region
// described inline, expectations over the synthesized order, and
// optional mutation steps with their own re-checks.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden
	// file when the scenario is run under RunWithGolden.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Program is the region under test.
	Program ProgramDef `yaml:"program"`

	// Expect validates the analysis right after construction.
	Expect *ExpectClause `yaml:"expect,omitempty"`

	// Steps are mutations applied in order after the initial
	// expectations, each optionally followed by its own checks.
	Steps []Step `yaml:"steps,omitempty"`
}

// ProgramDef describes a region as an ordered op list.
type ProgramDef struct {
	// Name is the program name.
	Name string `yaml:"name"`

	// Ops lists the operations in appearance order.
	Ops []OpDef `yaml:"ops"`
}

// OpDef describes one operation.
type OpDef struct {
	// Name uniquely identifies the op within the program.
	Name string `yaml:"name"`

	// Kind is the operation kind (copy, map, static_range, ...).
	Kind string `yaml:"kind"`

	// Operands lists producer names. A "^" prefix marks a loop-carried
	// use, as in the program dump format: ["init", "^step"].
	Operands []string `yaml:"operands,omitempty"`

	// Loops is the loop nest, outermost first.
	Loops []string `yaml:"loops,omitempty"`

	// Sequence is the optional explicit sequence hint.
	Sequence *int64 `yaml:"sequence,omitempty"`
}

// ExpectClause validates one snapshot of the analysis.
type ExpectClause struct {
	// Cycle expects analysis construction to fail with a dependency
	// cycle. It excludes every other expectation and any steps.
	Cycle bool `yaml:"cycle,omitempty"`

	// Order is the expected store order: every orderable op by name.
	Order []string `yaml:"order,omitempty"`

	// Traversal is the expected fused traversal: every op of the
	// region, dependency-only ops interleaved after their anchors.
	Traversal []string `yaml:"traversal,omitempty"`

	// Before lists pairs that must execute in the given order.
	Before []OrderPair `yaml:"before,omitempty"`

	// Span checks the first and last member of an op set.
	Span *SpanCheck `yaml:"span,omitempty"`

	// InsertionPoints probes insertion point computation.
	InsertionPoints []InsertionProbe `yaml:"insertion_points,omitempty"`
}

// OrderPair asserts that First executes strictly before Second.
type OrderPair struct {
	First  string `yaml:"first"`
	Second string `yaml:"second"`
}

// SpanCheck asserts the extremes of a set of orderable ops.
type SpanCheck struct {
	// Ops is the set to span. Must be non-empty.
	Ops []string `yaml:"ops"`

	// First is the expected earliest member.
	First string `yaml:"first"`

	// Last is the expected latest member.
	Last string `yaml:"last"`
}

// InsertionProbe runs FindInsertionPoint and checks the returned point.
type InsertionProbe struct {
	// Start is the op the walk starts from.
	Start string `yaml:"start"`

	// Loops is the loop nest the inserted op should live in.
	Loops []string `yaml:"loops,omitempty"`

	// Depth is the number of leading loops the point must share.
	Depth int `yaml:"depth"`

	// Direction is the walk direction: "before" or "after".
	Direction string `yaml:"direction"`

	// At is the expected point.
	At PointDef `yaml:"at"`
}

// PointDef names a program point: an anchoring op plus a side, or a
// region boundary when Op is empty.
type PointDef struct {
	Op        string   `yaml:"op,omitempty"`
	Direction string   `yaml:"direction"`
	Loops     []string `yaml:"loops,omitempty"`
}

// Step mutates the analysis mid-scenario.
type Step struct {
	// Action is "erase" or "insert".
	Action string `yaml:"action"`

	// Op names the orderable op to erase or insert. An op must be
	// erased before it can be inserted; erase-then-insert is the move
	// idiom.
	Op string `yaml:"op"`

	// Anchor names the reference op for insert. It may be any op of
	// the region; dependency-only references resolve through their
	// implicit position.
	Anchor string `yaml:"anchor,omitempty"`

	// Direction is the insert side relative to Anchor.
	Direction string `yaml:"direction,omitempty"`

	// Expect validates the analysis after this step.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// Step action constants.
const (
	StepErase  = "erase"
	StepInsert = "insert"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or fails structural validation.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "expected:" for "expect:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarioDir loads every *.yaml file in dir, sorted by file name
// for deterministic run order.
func LoadScenarioDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no *.yaml scenarios in %s", dir)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks required fields and that every referenced op
// name resolves, so typos fail at load time instead of mid-run.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Program.Name == "" {
		return fmt.Errorf("program.name is required")
	}
	if len(s.Program.Ops) == 0 {
		return fmt.Errorf("program.ops is required and must be non-empty")
	}

	kinds := make(map[string]ir.Kind, len(s.Program.Ops))
	for i, op := range s.Program.Ops {
		if op.Name == "" {
			return fmt.Errorf("program.ops[%d]: name is required", i)
		}
		if _, dup := kinds[op.Name]; dup {
			return fmt.Errorf("program.ops[%d]: duplicate op name %q", i, op.Name)
		}
		kind := ir.Kind(op.Kind)
		if !kind.Valid() {
			return fmt.Errorf("program.ops[%d]: unknown kind %q", i, op.Kind)
		}
		if op.Sequence != nil && !kind.Orderable() {
			return fmt.Errorf("program.ops[%d]: sequence hint on %s op %q", i, op.Kind, op.Name)
		}
		kinds[op.Name] = kind
	}
	// Operands may reference ops defined later, so resolve after the
	// full name set is known.
	for i, op := range s.Program.Ops {
		for _, operand := range op.Operands {
			name := strings.TrimPrefix(operand, "^")
			if _, ok := kinds[name]; !ok {
				return fmt.Errorf("program.ops[%d]: unknown operand %q", i, name)
			}
		}
	}

	v := scenarioValidator{kinds: kinds}

	if s.Expect != nil && s.Expect.Cycle {
		if err := v.validateCycleExpect(s); err != nil {
			return err
		}
		return s.requireChecks()
	}

	if err := v.validateExpect("expect", s.Expect); err != nil {
		return err
	}
	for i, step := range s.Steps {
		if err := v.validateStep(i, step); err != nil {
			return err
		}
	}
	return s.requireChecks()
}

// requireChecks rejects scenarios that assert nothing.
func (s *Scenario) requireChecks() error {
	if s.Expect != nil {
		return nil
	}
	for _, step := range s.Steps {
		if step.Expect != nil {
			return nil
		}
	}
	return fmt.Errorf("scenario checks nothing: add an expect clause")
}

// scenarioValidator resolves names against the program definition.
type scenarioValidator struct {
	kinds map[string]ir.Kind
}

func (v scenarioValidator) defined(path, name string) error {
	if name == "" {
		return fmt.Errorf("%s: op name is required", path)
	}
	if _, ok := v.kinds[name]; !ok {
		return fmt.Errorf("%s: unknown op %q", path, name)
	}
	return nil
}

func (v scenarioValidator) orderable(path, name string) error {
	if err := v.defined(path, name); err != nil {
		return err
	}
	if !v.kinds[name].Orderable() {
		return fmt.Errorf("%s: op %q is %s, which is positioned by its dependencies", path, name, v.kinds[name])
	}
	return nil
}

func (v scenarioValidator) validateCycleExpect(s *Scenario) error {
	e := s.Expect
	if len(e.Order) > 0 || len(e.Traversal) > 0 || len(e.Before) > 0 ||
		e.Span != nil || len(e.InsertionPoints) > 0 {
		return fmt.Errorf("expect: cycle excludes every other expectation")
	}
	if len(s.Steps) > 0 {
		return fmt.Errorf("steps: a cycle scenario has no analysis to mutate")
	}
	return nil
}

func (v scenarioValidator) validateExpect(path string, e *ExpectClause) error {
	if e == nil {
		return nil
	}
	if e.Cycle {
		return fmt.Errorf("%s: cycle is only valid on the top-level expect", path)
	}
	for i, name := range e.Order {
		if err := v.orderable(fmt.Sprintf("%s.order[%d]", path, i), name); err != nil {
			return err
		}
	}
	for i, name := range e.Traversal {
		if err := v.defined(fmt.Sprintf("%s.traversal[%d]", path, i), name); err != nil {
			return err
		}
	}
	for i, pair := range e.Before {
		if err := v.orderable(fmt.Sprintf("%s.before[%d].first", path, i), pair.First); err != nil {
			return err
		}
		if err := v.defined(fmt.Sprintf("%s.before[%d].second", path, i), pair.Second); err != nil {
			return err
		}
	}
	if e.Span != nil {
		if len(e.Span.Ops) == 0 {
			return fmt.Errorf("%s.span: ops is required and must be non-empty", path)
		}
		for i, name := range e.Span.Ops {
			if err := v.orderable(fmt.Sprintf("%s.span.ops[%d]", path, i), name); err != nil {
				return err
			}
		}
		if err := v.orderable(path+".span.first", e.Span.First); err != nil {
			return err
		}
		if err := v.orderable(path+".span.last", e.Span.Last); err != nil {
			return err
		}
	}
	for i, probe := range e.InsertionPoints {
		ppath := fmt.Sprintf("%s.insertion_points[%d]", path, i)
		if err := v.defined(ppath+".start", probe.Start); err != nil {
			return err
		}
		if probe.Depth < 0 {
			return fmt.Errorf("%s: depth must be non-negative", ppath)
		}
		if _, err := sequence.ParseDirection(probe.Direction); err != nil {
			return fmt.Errorf("%s: %w", ppath, err)
		}
		if _, err := sequence.ParseDirection(probe.At.Direction); err != nil {
			return fmt.Errorf("%s.at: %w", ppath, err)
		}
		if probe.At.Op != "" {
			if err := v.orderable(ppath+".at.op", probe.At.Op); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v scenarioValidator) validateStep(index int, step Step) error {
	path := fmt.Sprintf("steps[%d]", index)
	switch step.Action {
	case StepErase:
		if step.Anchor != "" || step.Direction != "" {
			return fmt.Errorf("%s: erase takes no anchor or direction", path)
		}
	case StepInsert:
		if err := v.defined(path+".anchor", step.Anchor); err != nil {
			return err
		}
		if _, err := sequence.ParseDirection(step.Direction); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	default:
		return fmt.Errorf("%s: unknown action %q", path, step.Action)
	}
	if err := v.orderable(path+".op", step.Op); err != nil {
		return err
	}
	return v.validateExpect(path+".expect", step.Expect)
}
