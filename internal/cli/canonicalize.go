package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/RohanMKells/structured-additive-IR/internal/ir"
	"github.com/RohanMKells/structured-additive-IR/internal/journal"
	"github.com/RohanMKells/structured-additive-IR/internal/rewrite"
	"github.com/RohanMKells/structured-additive-IR/internal/sequence"
)

// RewriteOptions holds the flags shared by the rewrite commands.
type RewriteOptions struct {
	*RootOptions
	Output  string // optional - write the rewritten program here
	Journal string // optional - record the run in this journal
}

// RewriteResult holds a rewrite command's output: the rewritten program
// dump plus one report per executed pass.
type RewriteResult struct {
	Program string               `json:"program"`
	Dump    string               `json:"dump"`
	Runs    []rewrite.PassReport `json:"runs"`
}

// NewCanonicalizeCommand creates the canonicalize command.
func NewCanonicalizeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RewriteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "canonicalize <file.cue>",
		Short: "Rewrite a program with contiguous sequence hints",
		Long: `Synthesize the execution order of a program and pin it down: every
compute op gets an explicit sequence hint 0..n-1 in execution order.

The first run of canonicalize fixes the order; running it again is a
no-op. With --journal, each run is recorded with a unique token and the
program fingerprints before and after.

Examples:
  sair canonicalize program.cue
  sair canonicalize program.cue -o canonical.txt
  sair canonicalize program.cue --journal runs.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCanonicalize(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the rewritten program to this file instead of stdout")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "record the run in the journal at this path")

	return cmd
}

func runCanonicalize(opts *RewriteOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	p, err := loadForRun(formatter, path)
	if err != nil {
		return err
	}

	reports, err := runPasses(cmd.Context(), formatter, opts.Journal, p, rewrite.CanonicalizePass{})
	if err != nil {
		return err
	}

	return writeProgramOutput(formatter, opts.Output, p, reports)
}

// runPasses drives the given rewrite passes over p. When journalPath is
// set, the run is recorded there and the step clock continues from the
// journal's highest recorded step, so appended runs stay ordered.
func runPasses(ctx context.Context, formatter *OutputFormatter, journalPath string, p *ir.Program, passes ...rewrite.Pass) ([]rewrite.PassReport, error) {
	// Configure logging based on verbose flag. The driver reports each
	// pass through slog; diagnostics go to stderr, results to stdout.
	logLevel := slog.LevelInfo
	if formatter.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	var driverOpts []rewrite.DriverOption
	if journalPath != "" {
		j, err := journal.Open(journalPath)
		if err != nil {
			_ = formatter.Error(ErrCodeJournal, fmt.Sprintf("opening journal %s: %v", journalPath, err), nil)
			return nil, WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer j.Close()
		maxStep, err := j.MaxStep(ctx)
		if err != nil {
			_ = formatter.Error(ErrCodeJournal, fmt.Sprintf("reading journal %s: %v", journalPath, err), nil)
			return nil, WrapExitError(ExitCommandError, "failed to read journal", err)
		}
		driverOpts = append(driverOpts, rewrite.WithJournal(j), rewrite.WithClock(rewrite.NewClockAt(maxStep)))
	}

	reports, err := rewrite.NewDriver(driverOpts...).Run(ctx, p, passes...)
	if err != nil {
		return nil, outputPassError(formatter, err)
	}
	return reports, nil
}

// outputPassError reports a failed rewrite run. Pass and cycle errors
// are analysis failures; anything else (journal writes) is a command
// error.
func outputPassError(formatter *OutputFormatter, err error) error {
	var pe *rewrite.PassError
	if errors.As(err, &pe) {
		_ = formatter.Error(string(pe.Code), err.Error(), nil)
		return WrapExitError(ExitFailure, "rewrite failed", err)
	}
	var ce *sequence.CycleError
	if errors.As(err, &ce) {
		_ = formatter.Error(string(ce.Code), err.Error(), ce.Ops)
		return WrapExitError(ExitFailure, "rewrite failed", err)
	}
	_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
	return WrapExitError(ExitCommandError, "rewrite failed", err)
}

// writeProgramOutput prints or writes the rewritten program. With -o the
// dump goes to the file and stdout stays quiet in text mode; JSON mode
// always prints the full result.
func writeProgramOutput(formatter *OutputFormatter, outPath string, p *ir.Program, reports []rewrite.PassReport) error {
	dump := p.Dump()

	if outPath != "" {
		if err := os.WriteFile(outPath, []byte(dump), 0o644); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, fmt.Sprintf("writing %s: %v", outPath, err), nil)
			return WrapExitError(ExitCommandError, "failed to write output", err)
		}
		formatter.VerboseLog("wrote %s", outPath)
	}

	if formatter.Format == "json" {
		return formatter.Success(RewriteResult{Program: p.Name, Dump: dump, Runs: reports})
	}
	if outPath == "" {
		fmt.Fprint(formatter.Writer, dump)
	}
	return nil
}
