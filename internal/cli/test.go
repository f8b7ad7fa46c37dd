package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RohanMKells/structured-additive-IR/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Filter string // optional - glob on scenario file basenames
}

// ScenarioResult holds the outcome of one scenario file.
type ScenarioResult struct {
	File   string   `json:"file"`
	Name   string   `json:"name,omitempty"`
	Passed bool     `json:"passed"`
	Checks int      `json:"checks"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the aggregate outcome of a scenario run.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run YAML scenario files against the sequencer",
		Long: `Run every scenario file in a directory and report the results.

A scenario declares a program, expectations on its synthesized order
(order, traversal, before, span, insertion_points, cycle), and
optionally a list of erase and insert steps with expectations after
each one.

Examples:
  sair test ./scenarios
  sair test ./scenarios --filter 'hoist_*'
  sair test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "run only scenario files whose name (sans extension) matches this glob")

	return cmd
}

func runTest(opts *TestOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	files, err := collectScenarioFiles(dir, opts.Filter)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to collect scenarios", err)
	}
	if len(files) == 0 {
		msg := fmt.Sprintf("no scenario files in %s", dir)
		if opts.Filter != "" {
			msg = fmt.Sprintf("no scenario files in %s match %q", dir, opts.Filter)
		}
		_ = formatter.Error(ErrCodeNotFound, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	result := TestResult{Scenarios: make([]ScenarioResult, 0, len(files))}
	for _, file := range files {
		sr := runScenarioFile(file)
		formatter.VerboseLog("scenario %s: passed=%t checks=%d", filepath.Base(file), sr.Passed, sr.Checks)
		if sr.Passed {
			result.Passed++
		} else {
			result.Failed++
		}
		result.Scenarios = append(result.Scenarios, sr)
	}
	result.Total = len(result.Scenarios)

	if formatter.Format == "json" {
		if result.Failed > 0 {
			if err := formatter.Success(result); err != nil {
				return err
			}
			return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenarios failed", result.Failed, result.Total))
		}
		return formatter.Success(result)
	}

	return outputTestText(formatter, result)
}

// runScenarioFile loads and runs one scenario. Load failures count as
// failed scenarios rather than aborting the whole run.
func runScenarioFile(file string) ScenarioResult {
	s, err := harness.LoadScenario(file)
	if err != nil {
		return ScenarioResult{
			File:   filepath.Base(file),
			Passed: false,
			Errors: []string{err.Error()},
		}
	}

	r, err := harness.Run(s)
	if err != nil {
		return ScenarioResult{
			File:   filepath.Base(file),
			Name:   s.Name,
			Passed: false,
			Errors: []string{err.Error()},
		}
	}

	return ScenarioResult{
		File:   filepath.Base(file),
		Name:   r.Scenario,
		Passed: r.Pass,
		Checks: r.Checks,
		Errors: r.Errors,
	}
}

// collectScenarioFiles gathers the .yaml and .yml files directly in
// dir, sorted by name, optionally narrowed by a basename glob.
func collectScenarioFiles(dir, filter string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		if filter != "" {
			ok, err := filepath.Match(filter, strings.TrimSuffix(name, ext))
			if err != nil {
				return nil, fmt.Errorf("bad filter %q: %w", filter, err)
			}
			if !ok {
				continue
			}
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

func outputTestText(formatter *OutputFormatter, result TestResult) error {
	w := formatter.Writer
	for _, sr := range result.Scenarios {
		name := sr.Name
		if name == "" {
			name = sr.File
		}
		if sr.Passed {
			fmt.Fprintf(w, "✓ %s (%d checks)\n", name, sr.Checks)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", name)
		for _, e := range sr.Errors {
			for _, line := range strings.Split(strings.TrimRight(e, "\n"), "\n") {
				fmt.Fprintf(w, "    %s\n", line)
			}
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenarios failed", result.Failed, result.Total))
	}
	return nil
}
