package commands

import (
	"fmt"

	"github.com/leapstack-labs/glyph/internal/cli/output"
	"github.com/leapstack-labs/glyph/internal/state"
	"github.com/spf13/cobra"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Limit int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history [RUN_ID]",
		Short: "Show recorded test runs",
		Long: `List recorded test runs, newest first.

With RUN_ID, show that run and the result of each of its cases.`,
		Example: `  # Last 10 runs
  glyph history --limit 10

  # Cases of one run as JSON
  glyph history 4f1c... -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, args, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum number of runs to list")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string, opts *HistoryOptions) error {
	if opts.Limit <= 0 {
		return fmt.Errorf("--limit must be positive, got %d", opts.Limit)
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd, ContextOptions{WithStore: true, WithoutRunner: true})
	if err != nil {
		return err
	}
	defer cleanup()

	store, r := cmdCtx.Store, cmdCtx.Renderer
	root := cmdCtx.Cfg.ProjectRoot

	if len(args) == 0 {
		runs, err := store.ListRuns(opts.Limit)
		if err != nil {
			return err
		}
		out := make([]output.RunOutput, len(runs))
		for i, run := range runs {
			out[i] = runOutput(run)
		}
		return r.Runs(out)
	}

	run, err := store.GetRun(args[0])
	if err != nil {
		return err
	}
	cases, err := store.ListCases(run.ID)
	if err != nil {
		return err
	}
	detail := &output.RunDetailOutput{
		Run:   runOutput(run),
		Cases: make([]output.CaseOutput, len(cases)),
	}
	for i, c := range cases {
		detail.Cases[i] = output.CaseOutput{
			File:       displayPath(c.File, root),
			Name:       c.Name,
			Passed:     c.Passed,
			Message:    c.Message,
			DurationMs: c.Duration.Milliseconds(),
		}
	}
	return r.RunDetail(detail)
}

func runOutput(run *state.Run) output.RunOutput {
	return output.RunOutput{
		ID:          run.ID,
		Status:      string(run.Status),
		StartedAt:   run.StartedAt,
		CompletedAt: run.CompletedAt,
		Error:       run.Error,
	}
}
