package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/RohanMKells/structured-additive-IR/internal/journal"
)

// JournalListOptions holds flags for the journal list command.
type JournalListOptions struct {
	*RootOptions
	Journal     string
	Program     string
	Pass        string
	ChangedOnly bool
}

// JournalRunSummary is one row of the journal list output. The dumps
// are omitted; `journal show` prints a single run in full.
type JournalRunSummary struct {
	Step    int64  `json:"step"`
	Token   string `json:"token"`
	Program string `json:"program"`
	Pass    string `json:"pass"`
	Changed bool   `json:"changed"`
}

// JournalListResult holds the journal list output.
type JournalListResult struct {
	Journal string              `json:"journal"`
	Runs    []JournalRunSummary `json:"runs"`
}

// NewJournalCommand creates the journal command group.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect a rewrite journal",
		Long: `Inspect the journal written by the rewrite commands.

Every canonicalize or hoist run with --journal records one entry: a
unique token, a monotonic step, and the program dump and fingerprint
before and after the pass.`,
	}

	cmd.AddCommand(newJournalListCommand(rootOpts))
	cmd.AddCommand(newJournalShowCommand(rootOpts))

	return cmd
}

func newJournalListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JournalListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded rewrite runs",
		Long: `List the runs recorded in a journal, oldest first.

Examples:
  sair journal list --journal runs.db
  sair journal list --journal runs.db --pass hoist --changed-only
  sair journal list --journal runs.db --program main --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJournalList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to the journal (required)")
	_ = cmd.MarkFlagRequired("journal")
	cmd.Flags().StringVar(&opts.Program, "program", "", "keep only runs for this program")
	cmd.Flags().StringVar(&opts.Pass, "pass", "", "keep only runs for this pass")
	cmd.Flags().BoolVar(&opts.ChangedOnly, "changed-only", false, "keep only runs that altered the program")

	return cmd
}

func runJournalList(opts *JournalListOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	j, err := openJournalForRead(formatter, opts.Journal)
	if err != nil {
		return err
	}
	defer j.Close()

	filter := journal.Filter{Program: opts.Program, Pass: opts.Pass, ChangedOnly: opts.ChangedOnly}
	entries, err := j.ListRuns(context.Background(), filter)
	if err != nil {
		_ = formatter.Error(ErrCodeJournal, fmt.Sprintf("listing runs: %v", err), nil)
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	result := JournalListResult{Journal: opts.Journal, Runs: make([]JournalRunSummary, 0, len(entries))}
	for _, e := range entries {
		result.Runs = append(result.Runs, JournalRunSummary{
			Step:    e.Step,
			Token:   e.Token,
			Program: e.Program,
			Pass:    e.Pass,
			Changed: e.Changed(),
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Runs in %s: %d\n", opts.Journal, len(result.Runs))
	if len(result.Runs) == 0 {
		fmt.Fprintln(w, "  (no runs)")
		return nil
	}
	for _, r := range result.Runs {
		fmt.Fprintf(w, "  [%d] %s %s/%s changed=%t\n", r.Step, r.Token, r.Program, r.Pass, r.Changed)
	}
	return nil
}

// JournalShowOptions holds flags for the journal show command.
type JournalShowOptions struct {
	*RootOptions
	Journal string
}

func newJournalShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JournalShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <token>",
		Short: "Show one recorded run in full",
		Long: `Show a single recorded run, including the program dumps captured
before and after the pass.

Examples:
  sair journal show 0190c5a2-... --journal runs.db
  sair journal show 0190c5a2-... --journal runs.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJournalShow(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to the journal (required)")
	_ = cmd.MarkFlagRequired("journal")

	return cmd
}

func runJournalShow(opts *JournalShowOptions, token string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	j, err := openJournalForRead(formatter, opts.Journal)
	if err != nil {
		return err
	}
	defer j.Close()

	entry, err := j.ReadRun(context.Background(), token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			msg := fmt.Sprintf("no run with token %q in %s", token, opts.Journal)
			_ = formatter.Error(ErrCodeJournal, msg, nil)
			return NewExitError(ExitCommandError, msg)
		}
		_ = formatter.Error(ErrCodeJournal, fmt.Sprintf("reading run: %v", err), nil)
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(entry)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Run %s\n", entry.Token)
	fmt.Fprintf(w, "  Program: %s\n", entry.Program)
	fmt.Fprintf(w, "  Pass:    %s\n", entry.Pass)
	fmt.Fprintf(w, "  Step:    %d\n", entry.Step)
	fmt.Fprintf(w, "  Changed: %t\n", entry.Changed())
	fmt.Fprintf(w, "  Before:  %s\n", entry.FingerprintBefore)
	fmt.Fprintf(w, "  After:   %s\n", entry.FingerprintAfter)
	fmt.Fprintf(w, "  Tool:    %s (IR v%s)\n", entry.ToolVersion, entry.IRVersion)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Dump Before ===")
	fmt.Fprint(w, entry.DumpBefore)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Dump After ===")
	fmt.Fprint(w, entry.DumpAfter)
	return nil
}

// openJournalForRead opens an existing journal. Unlike the rewrite
// commands, the inspection commands refuse to create one: a missing
// path here is a typo, not a fresh journal.
func openJournalForRead(formatter *OutputFormatter, path string) (*journal.Journal, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		msg := fmt.Sprintf("journal not found: %s", path)
		_ = formatter.Error(ErrCodeJournal, msg, nil)
		return nil, NewExitError(ExitCommandError, msg)
	}
	j, err := journal.Open(path)
	if err != nil {
		_ = formatter.Error(ErrCodeJournal, fmt.Sprintf("opening journal %s: %v", path, err), nil)
		return nil, WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	return j, nil
}
