package commands

import (
	"github.com/leapstack-labs/glyph/internal/runner"
	"github.com/leapstack-labs/glyph/pkg/value"
	"github.com/spf13/cobra"
)

// EvalOptions holds options for the eval command.
type EvalOptions struct {
	Inputs map[string]string
}

// NewEvalCommand creates the eval command.
func NewEvalCommand() *cobra.Command {
	opts := &EvalOptions{}

	cmd := &cobra.Command{
		Use:   "eval EXPR [EXPR...]",
		Short: "Evaluate expressions",
		Long: `Evaluate one or more expressions and render their values.

Several expressions are evaluated in parallel against the same globals.
Values emitted with emit() are rendered before the expression's own value.`,
		Example: `  # Sort a vector
  glyph eval 'arr.sort([3, 1, 2])'

  # Bind a YAML file as a global
  glyph eval 'arr.shape(m)' --input m=matrix.yaml

  # Several expressions as JSON
  glyph eval 'arr.range(3)' 'arr.range([2, 2])' -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, args, opts)
		},
	}

	cmd.Flags().StringToStringVarP(&opts.Inputs, "input", "i", nil, "Bind a YAML file as a global (name=file.yaml)")

	return cmd
}

func runEval(cmd *cobra.Command, exprs []string, opts *EvalOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd, ContextOptions{Inputs: opts.Inputs})
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	cmdCtx.Logger.Debug("evaluating expressions", "count", len(exprs))

	var results []*runner.Result
	if len(exprs) == 1 {
		res, err := cmdCtx.Runner.Eval(ctx, exprs[0])
		if err != nil {
			return err
		}
		results = []*runner.Result{res}
	} else {
		results, err = cmdCtx.Runner.EvalAll(ctx, exprs)
		if err != nil {
			return err
		}
	}

	return renderResults(cmdCtx, results)
}

// renderResults renders the values of every result as one stack.
// Non-value results, such as functions, are printed in Starlark form.
func renderResults(cmdCtx *CommandContext, results []*runner.Result) error {
	var vals []value.Value
	for _, res := range results {
		vals = append(vals, res.Outputs...)
	}
	if err := cmdCtx.Renderer.Values(vals); err != nil {
		return err
	}
	for _, res := range results {
		if res.Repr != "" {
			cmdCtx.Renderer.Println(res.Repr)
		}
	}
	return nil
}
