package cli

import (
	"github.com/spf13/cobra"

	"github.com/RohanMKells/structured-additive-IR/internal/rewrite"
)

// HoistOptions holds flags for the hoist command.
type HoistOptions struct {
	*RewriteOptions
	Op    string
	Depth int
}

// NewHoistCommand creates the hoist command.
func NewHoistCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HoistOptions{RewriteOptions: &RewriteOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "hoist <file.cue>",
		Short: "Move a compute op out of its innermost loops",
		Long: `Trim a compute op's loop nest to the given depth and move it to the
earliest point where its producers are still visible. Sequence hints
are reassigned so the move survives a round trip through the file.

The op must keep at least the loops its producers are nested in; the
pass refuses a hoist that would make an operand invisible.

Examples:
  sair hoist program.cue --op accum --depth 1
  sair hoist program.cue --op accum --depth 0 -o hoisted.txt
  sair hoist program.cue --op accum --depth 1 --journal runs.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHoist(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Op, "op", "", "name of the compute op to hoist (required)")
	_ = cmd.MarkFlagRequired("op")
	cmd.Flags().IntVar(&opts.Depth, "depth", 0, "number of enclosing loops the op keeps")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the rewritten program to this file instead of stdout")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "record the run in the journal at this path")

	return cmd
}

func runHoist(opts *HoistOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	p, err := loadForRun(formatter, path)
	if err != nil {
		return err
	}

	pass := rewrite.HoistPass{Op: opts.Op, Depth: opts.Depth}
	reports, err := runPasses(cmd.Context(), formatter, opts.Journal, p, pass)
	if err != nil {
		return err
	}

	return writeProgramOutput(formatter, opts.Output, p, reports)
}
