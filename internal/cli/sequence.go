package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RohanMKells/structured-additive-IR/internal/ir"
	"github.com/RohanMKells/structured-additive-IR/internal/sequence"
)

// SequenceOptions holds flags for the sequence command.
type SequenceOptions struct {
	*RootOptions
	OpsBefore string // optional - list only the ops before this one
}

// SequenceOp is one operation of the fused traversal. Position and Key
// are set only for compute ops; dependency-only ops ride along at their
// implicit position.
type SequenceOp struct {
	Name     string   `json:"name"`
	Kind     string   `json:"kind"`
	Position *int     `json:"position,omitempty"`
	Key      *int64   `json:"key,omitempty"`
	Loops    []string `json:"loops,omitempty"`
}

// SequenceReport holds the sequence command output.
type SequenceReport struct {
	Program string       `json:"program"`
	Tracked int          `json:"tracked"`
	Before  string       `json:"before,omitempty"`
	Ops     []SequenceOp `json:"ops"`
}

// NewSequenceCommand creates the sequence command.
func NewSequenceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SequenceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sequence <file.cue>",
		Short: "Synthesize and print the execution order of a program",
		Long: `Compile a program and synthesize a total execution order for its
compute ops, honoring use-def dependencies and sequence hints.

The listing interleaves dependency-only ops (ranges, projections, fby)
at their implicit positions: each one appears right after the last
compute op it transitively depends on.

A use-def cycle that no feedback operand breaks is reported as an
error; break it by marking the loop-carried operand with "^".

Examples:
  sair sequence program.cue
  sair sequence program.cue --ops-before store
  sair sequence program.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSequence(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.OpsBefore, "ops-before", "", "list only the compute ops strictly before this op")

	return cmd
}

func runSequence(opts *SequenceOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	p, err := loadForRun(formatter, path)
	if err != nil {
		return err
	}

	a, err := sequence.Compute(p)
	if err != nil {
		return outputAnalysisError(formatter, err)
	}

	formatter.VerboseLog("Sequenced program %q: %d tracked ops", p.Name, len(a.Ops()))

	if opts.OpsBefore != "" {
		return outputOpsBefore(formatter, p, a, opts.OpsBefore)
	}

	report := buildSequenceReport(p, a)
	if formatter.Format == "json" {
		return formatter.Success(report)
	}
	return outputSequenceText(formatter, report)
}

// buildSequenceReport walks the fused traversal and annotates each
// compute op with its store position and key.
func buildSequenceReport(p *ir.Program, a *sequence.Analysis) SequenceReport {
	entries := a.Ops()
	positions := make(map[ir.OpID]int, len(entries))
	keys := make(map[ir.OpID]int64, len(entries))
	for i, e := range entries {
		positions[e.Op] = i
		keys[e.Op] = e.Key
	}

	report := SequenceReport{Program: p.Name, Tracked: len(entries)}
	for _, id := range a.AllOps().Collect() {
		op := p.Op(id)
		seqOp := SequenceOp{Name: op.Name, Kind: string(op.Kind), Loops: op.LoopNest}
		if pos, ok := positions[id]; ok {
			key := keys[id]
			seqOp.Position = &pos
			seqOp.Key = &key
		}
		report.Ops = append(report.Ops, seqOp)
	}
	return report
}

func outputOpsBefore(formatter *OutputFormatter, p *ir.Program, a *sequence.Analysis, name string) error {
	id, ok := p.OpByName(name)
	if !ok {
		msg := fmt.Sprintf("unknown op %q", name)
		_ = formatter.Error(ErrCodeUnknownOpArg, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}
	if !p.Op(id).Orderable() {
		msg := fmt.Sprintf("op %q is %s, which has no position of its own", name, p.Op(id).Kind)
		_ = formatter.Error(ErrCodeUnknownOpArg, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	report := SequenceReport{Program: p.Name, Before: name}
	for i, e := range a.OpsBefore(id) {
		pos, key := i, e.Key
		op := p.Op(e.Op)
		report.Ops = append(report.Ops, SequenceOp{
			Name:     op.Name,
			Kind:     string(op.Kind),
			Position: &pos,
			Key:      &key,
			Loops:    op.LoopNest,
		})
	}
	report.Tracked = len(report.Ops)

	if formatter.Format == "json" {
		return formatter.Success(report)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "ops before %s in program %s: %d\n", name, report.Program, len(report.Ops))
	for _, op := range report.Ops {
		fmt.Fprintf(w, "  [%d] key=%d %s%s\n", *op.Position, *op.Key, op.Name, loopSuffix(op.Loops))
	}
	return nil
}

func outputSequenceText(formatter *OutputFormatter, report SequenceReport) error {
	w := formatter.Writer
	fmt.Fprintf(w, "program %s: %d ops, %d tracked\n", report.Program, len(report.Ops), report.Tracked)
	fmt.Fprintln(w)
	for _, op := range report.Ops {
		if op.Position != nil {
			fmt.Fprintf(w, "  [%d] key=%d %s%s\n", *op.Position, *op.Key, op.Name, loopSuffix(op.Loops))
		} else {
			fmt.Fprintf(w, "      + %s%s\n", op.Name, loopSuffix(op.Loops))
		}
	}
	return nil
}

func loopSuffix(loops []string) string {
	if len(loops) == 0 {
		return ""
	}
	return fmt.Sprintf(" loops=[%s]", strings.Join(loops, ", "))
}

// outputAnalysisError reports a failed order synthesis. Cycle errors
// carry the participating op names as details.
func outputAnalysisError(formatter *OutputFormatter, err error) error {
	var ce *sequence.CycleError
	if errors.As(err, &ce) {
		_ = formatter.Error(string(ce.Code), err.Error(), ce.Ops)
		return WrapExitError(ExitFailure, "sequencing failed", err)
	}
	_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
	return WrapExitError(ExitFailure, "sequencing failed", err)
}
