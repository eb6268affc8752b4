// Package runner executes glyph scripts, expressions and test files.
package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/leapstack-labs/glyph/internal/config"
	starctx "github.com/leapstack-labs/glyph/internal/starlark"
	"github.com/leapstack-labs/glyph/internal/state"
	"github.com/leapstack-labs/glyph/pkg/value"
	"go.starlark.net/starlark"
)

// Runner evaluates scripts against a shared set of globals.
type Runner struct {
	logger     *slog.Logger
	maxWorkers int
	store      state.Store
	stdout     io.Writer
	exec       *starctx.ExecutionContext
	pool       *starctx.ThreadPool
}

// Config holds runner configuration.
type Config struct {
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
	// MaxWorkers bounds how many test files or expressions run at once
	MaxWorkers int
	// Inputs are bound as globals in every script
	Inputs map[string]value.Value
	// Store records test runs (optional)
	Store state.Store
	// Stdout receives print output as it happens (optional)
	Stdout io.Writer
}

// Result is what one script or expression produced.
type Result struct {
	Name string
	// Outputs are the emitted values in order. For an expression, its
	// value is appended last unless it is None.
	Outputs []value.Value
	Printed []string
	// Repr is the Starlark form of an expression value that is not an
	// array value, such as a function.
	Repr string
}

// New creates a runner.
func New(cfg Config) (*Runner, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	workers := config.WorkersOrDefault(cfg.MaxWorkers)

	exec, err := starctx.NewExecutionContext(cfg.Inputs)
	if err != nil {
		return nil, err
	}

	logger.Debug("initializing runner", "inputs", len(cfg.Inputs), "max_workers", workers)

	return &Runner{
		logger:     logger,
		maxWorkers: workers,
		store:      cfg.Store,
		stdout:     cfg.Stdout,
		exec:       exec,
		pool:       starctx.NewThreadPool(workers),
	}, nil
}

// LoadInputs decodes each named YAML file into a value.
func LoadInputs(files map[string]string) (map[string]value.Value, error) {
	inputs := make(map[string]value.Value, len(files))
	for name, path := range files {
		f, err := os.Open(path) //nolint:gosec // G304: path comes from project config
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", name, err)
		}
		v, err := value.DecodeYAML(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("input %s (%s): %w", name, path, err)
		}
		inputs[name] = v
	}
	return inputs, nil
}

func (r *Runner) newOutput() *starctx.Output {
	return &starctx.Output{Echo: r.stdout}
}

// Eval evaluates a single expression.
func (r *Runner) Eval(ctx context.Context, expr string) (*Result, error) {
	const name = "<expr>"
	out := r.newOutput()
	thread := r.pool.Get(name, out)
	defer r.pool.Put(thread)

	got, err := r.exec.EvalExpr(ctx, thread, name, expr)
	if err != nil {
		return nil, err
	}
	return finish(name, out, got)
}

// EvalAll evaluates several expressions in parallel. Results are in
// input order; the first failing expression's error is returned.
func (r *Runner) EvalAll(ctx context.Context, exprs []string) ([]*Result, error) {
	tasks := make([]starctx.EvalTask, len(exprs))
	for i, expr := range exprs {
		tasks[i] = starctx.EvalTask{Name: fmt.Sprintf("<expr %d>", i+1), Expr: expr}
	}

	executor := starctx.NewParallelExecutor(r.maxWorkers, r.exec)
	results := make([]*Result, len(tasks))
	for i, res := range executor.Execute(ctx, tasks) {
		if res.Error != nil {
			return nil, res.Error
		}
		out := &Result{Name: res.Name, Outputs: res.Output.Values, Printed: res.Output.Printed}
		if res.HasValue {
			out.Outputs = append(out.Outputs, res.Value)
		}
		results[i] = out
	}
	return results, nil
}

// RunFile executes the script at path.
func (r *Runner) RunFile(ctx context.Context, path string) (*Result, error) {
	src, err := os.ReadFile(path) //nolint:gosec // G304: path is user-provided script
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return r.RunSource(ctx, path, src)
}

// RunSource executes src as a script named name.
func (r *Runner) RunSource(ctx context.Context, name string, src any) (*Result, error) {
	r.logger.Debug("running script", slog.String("name", name))

	out := r.newOutput()
	thread := r.pool.Get(name, out)
	defer r.pool.Put(thread)

	if _, err := r.exec.Exec(ctx, thread, name, src); err != nil {
		return nil, err
	}
	return finish(name, out, starlark.None)
}

// Interactive runs one REPL chunk. Expressions are evaluated and their
// value returned; statements are executed and their definitions kept
// for later chunks.
func (r *Runner) Interactive(ctx context.Context, src string) (*Result, error) {
	const name = "<repl>"
	if r.exec.IsExpr(src) {
		return r.Eval(ctx, src)
	}

	out := r.newOutput()
	thread := r.pool.Get(name, out)
	defer r.pool.Put(thread)

	defs, err := r.exec.Exec(ctx, thread, name, src)
	if err != nil {
		return nil, err
	}
	if err := r.exec.Remember(defs); err != nil {
		return nil, err
	}
	return finish(name, out, starlark.None)
}

func finish(name string, out *starctx.Output, got starlark.Value) (*Result, error) {
	res := &Result{Name: name, Outputs: out.Values, Printed: out.Printed}
	if got != nil && got != starlark.None {
		v, err := starctx.ToValue(got)
		if err != nil {
			res.Repr = got.String()
			return res, nil
		}
		res.Outputs = append(res.Outputs, v)
	}
	return res, nil
}
