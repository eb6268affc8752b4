package commands

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/glyph/internal/cli/output"
	"github.com/leapstack-labs/glyph/internal/runner"
	"github.com/spf13/cobra"
)

// ErrTestsFailed is returned by the test command when any case fails.
var ErrTestsFailed = errors.New("tests failed")

// TestOptions holds options for the test command.
type TestOptions struct {
	Inputs    map[string]string
	NoHistory bool
}

// NewTestCommand creates the test command.
func NewTestCommand() *cobra.Command {
	opts := &TestOptions{}

	cmd := &cobra.Command{
		Use:   "test [PATHS...]",
		Short: "Run test files",
		Long: `Run the test functions in *_test.star files.

Each file is executed, then every zero-argument function whose name starts
with test_ is called in name order. Files run in parallel, bounded by
max_workers. Without PATHS, the project's tests directory is searched.

Runs are recorded in the state database; see 'glyph history'.`,
		Example: `  # Run all project tests
  glyph test

  # Run one file without recording it
  glyph test tests/sort_test.star --no-history`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(cmd, args, opts)
		},
	}

	cmd.Flags().StringToStringVarP(&opts.Inputs, "input", "i", nil, "Bind a YAML file as a global (name=file.yaml)")
	cmd.Flags().BoolVar(&opts.NoHistory, "no-history", false, "Do not record the run in the state database")

	return cmd
}

func runTest(cmd *cobra.Command, args []string, opts *TestOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd, ContextOptions{
		Inputs:    opts.Inputs,
		WithStore: !opts.NoHistory,
	})
	if err != nil {
		return err
	}
	defer cleanup()

	paths := args
	if len(paths) == 0 {
		paths = []string{cmdCtx.Cfg.TestsDir}
	}

	report, runErr := cmdCtx.Runner.Test(cmd.Context(), paths)
	if report == nil {
		return runErr
	}
	if err := cmdCtx.Renderer.Report(reportOutput(report, cmdCtx.Cfg.ProjectRoot)); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}
	if !report.OK() {
		return fmt.Errorf("%w: %d of %d cases failed", ErrTestsFailed, report.Failed, len(report.Cases))
	}
	return nil
}

func reportOutput(report *runner.TestReport, root string) *output.ReportOutput {
	out := &output.ReportOutput{
		RunID:      report.RunID,
		Cases:      make([]output.CaseOutput, len(report.Cases)),
		Passed:     report.Passed,
		Failed:     report.Failed,
		DurationMs: report.Duration.Milliseconds(),
	}
	for i, c := range report.Cases {
		out.Cases[i] = output.CaseOutput{
			File:       displayPath(c.File, root),
			Name:       c.Name,
			Passed:     c.Passed,
			Message:    c.Message,
			DurationMs: c.Duration.Milliseconds(),
		}
	}
	return out
}

// displayPath shortens path to be relative to root when it lies inside it.
func displayPath(path, root string) string {
	if !filepath.IsAbs(path) || root == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
