package commands

import (
	"github.com/spf13/cobra"
)

// RunOptions holds options for the run command.
type RunOptions struct {
	Inputs map[string]string
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run [FILE]",
		Short: "Run a script",
		Long: `Execute a script and render the values it emits.

Without FILE, runs the project's main script (main.star by default).
Output from print() is written as the script runs.`,
		Example: `  # Run the project's main script
  glyph run

  # Run a specific script with an extra input
  glyph run scripts/report.star --input data=data.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args, opts)
		},
	}

	cmd.Flags().StringToStringVarP(&opts.Inputs, "input", "i", nil, "Bind a YAML file as a global (name=file.yaml)")

	return cmd
}

func runRun(cmd *cobra.Command, args []string, opts *RunOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd, ContextOptions{Inputs: opts.Inputs})
	if err != nil {
		return err
	}
	defer cleanup()

	path := scriptPath(cmdCtx, args)
	cmdCtx.Logger.Info("running script", "path", path)

	res, err := cmdCtx.Runner.RunFile(cmd.Context(), path)
	if err != nil {
		return err
	}
	return cmdCtx.Renderer.Values(res.Outputs)
}

// scriptPath returns the script argument, or the configured main script.
func scriptPath(cmdCtx *CommandContext, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cmdCtx.Cfg.MainFile
}
