package commands

import (
	"fmt"
	"io"
	"log/slog"
	"maps"

	"github.com/leapstack-labs/glyph/internal/cli/config"
	"github.com/leapstack-labs/glyph/internal/cli/output"
	"github.com/leapstack-labs/glyph/internal/runner"
	"github.com/leapstack-labs/glyph/internal/state"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Runner   *runner.Runner
	Store    state.Store
	Renderer *output.Renderer
}

// ContextOptions selects what NewCommandContext builds.
type ContextOptions struct {
	// Inputs are extra global name -> YAML file bindings, overriding
	// the configured ones.
	Inputs map[string]string
	// WithStore opens the state database.
	WithStore bool
	// WithoutRunner skips runner creation.
	WithoutRunner bool
}

// NewCommandContext creates a CommandContext with a runner and renderer.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command, opts ContextOptions) (*CommandContext, func(), error) {
	cmdCtx := NewCommandContextWithoutRunner(cmd)
	cfg := cmdCtx.Cfg
	cleanup := func() {}

	if opts.WithStore {
		store, err := state.OpenStore(cfg.StatePath, cmdCtx.Logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open state database: %w", err)
		}
		cmdCtx.Store = store
		cleanup = func() {
			_ = store.Close()
		}
	}

	if opts.WithoutRunner {
		return cmdCtx, cleanup, nil
	}

	r, err := createRunner(cmd, cmdCtx, opts.Inputs)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	cmdCtx.Runner = r

	return cmdCtx, cleanup, nil
}

// NewCommandContextWithoutRunner creates a CommandContext with only
// configuration, logger and renderer.
func NewCommandContextWithoutRunner(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the current configuration, or defaults when none
// has been loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}

func createRunner(cmd *cobra.Command, cmdCtx *CommandContext, extra map[string]string) (*runner.Runner, error) {
	files := make(map[string]string, len(cmdCtx.Cfg.Inputs)+len(extra))
	maps.Copy(files, cmdCtx.Cfg.Inputs)
	maps.Copy(files, extra)

	inputs, err := runner.LoadInputs(files)
	if err != nil {
		return nil, err
	}

	return runner.New(runner.Config{
		Logger:     cmdCtx.Logger,
		MaxWorkers: cmdCtx.Cfg.MaxWorkers,
		Inputs:     inputs,
		Store:      cmdCtx.Store,
		Stdout:     printWriter(cmd, cmdCtx.Renderer),
	})
}

// printWriter is where script print output goes. JSON output keeps
// stdout machine-readable, so prints go to stderr instead.
func printWriter(cmd *cobra.Command, r *output.Renderer) io.Writer {
	if r.EffectiveMode() == output.ModeJSON {
		return cmd.ErrOrStderr()
	}
	return cmd.OutOrStdout()
}
