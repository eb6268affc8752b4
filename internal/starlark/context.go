package starlark

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/leapstack-labs/glyph/pkg/value"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// outputKey is the thread-local key of the Output a thread writes to.
const outputKey = "glyph.output"

// Output collects the values a script emits and the lines it prints.
type Output struct {
	mu      sync.Mutex
	Values  []value.Value
	Printed []string

	// Echo, if set, also receives every printed line as it happens.
	Echo io.Writer
}

func (o *Output) emit(v value.Value) {
	o.mu.Lock()
	o.Values = append(o.Values, v)
	o.mu.Unlock()
}

func (o *Output) print(msg string) {
	o.mu.Lock()
	o.Printed = append(o.Printed, msg)
	if o.Echo != nil {
		_, _ = fmt.Fprintln(o.Echo, msg)
	}
	o.mu.Unlock()
}

func outputOf(thread *starlark.Thread) *Output {
	out, _ := thread.Local(outputKey).(*Output)
	return out
}

// Attach directs emit and print calls made on thread to out.
func Attach(thread *starlark.Thread, out *Output) {
	thread.SetLocal(outputKey, out)
}

// printToOutput is the Print hook of every thread created here.
func printToOutput(thread *starlark.Thread, msg string) {
	if out := outputOf(thread); out != nil {
		out.print(msg)
	}
}

// FileOptions enables the language features scripts may use.
func FileOptions() *syntax.FileOptions {
	return &syntax.FileOptions{
		Set:             true,
		While:           true,
		TopLevelControl: true,
		GlobalReassign:  true,
		Recursion:       true,
	}
}

// ExecutionContext provides the globals for script execution.
type ExecutionContext struct {
	// Inputs are values bound as globals, keyed by name.
	Inputs starlark.StringDict

	// Session holds definitions carried between REPL chunks.
	Session starlark.StringDict

	// globals is the combined set of all globals for execution
	globals starlark.StringDict

	// mu protects globals
	mu sync.RWMutex

	opts *syntax.FileOptions
}

// NewExecutionContext creates an execution context with the given inputs
// bound as globals.
func NewExecutionContext(inputs map[string]value.Value) (*ExecutionContext, error) {
	for name := range inputs {
		if builtinNames[name] {
			return nil, fmt.Errorf("input %q conflicts with builtin", name)
		}
	}
	ctx := &ExecutionContext{
		Inputs:  Globals(inputs),
		Session: make(starlark.StringDict),
		opts:    FileOptions(),
	}
	ctx.buildGlobals()
	return ctx, nil
}

// buildGlobals constructs the combined globals dict.
func (ctx *ExecutionContext) buildGlobals() {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	ctx.globals = Predeclared(ctx.Inputs)
	for name, v := range ctx.Session {
		ctx.globals[name] = v
	}
}

// Globals returns the combined globals dictionary for Starlark execution.
func (ctx *ExecutionContext) Globals() starlark.StringDict {
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	return ctx.globals
}

// Remember adds definitions to the session so later evaluations see them.
// Builtin names cannot be shadowed.
func (ctx *ExecutionContext) Remember(defs starlark.StringDict) error {
	for name := range defs {
		if builtinNames[name] {
			return fmt.Errorf("%q conflicts with builtin", name)
		}
	}

	ctx.mu.Lock()
	for name, v := range defs {
		ctx.Session[name] = v
	}
	ctx.mu.Unlock()

	ctx.buildGlobals()
	return nil
}

// NewThread creates a thread whose output goes to out.
func NewThread(name string, out *Output) *starlark.Thread {
	thread := &starlark.Thread{Name: name, Print: printToOutput}
	Attach(thread, out)
	return thread
}

// Exec runs a script and returns its top-level definitions.
func (ctx *ExecutionContext) Exec(c context.Context, thread *starlark.Thread, filename string, src any) (starlark.StringDict, error) {
	defs, err := cancellable(c, thread, func() (starlark.StringDict, error) {
		return starlark.ExecFileOptions(ctx.opts, thread, filename, src, ctx.Globals())
	})
	if err != nil {
		return nil, &EvalError{File: filename, Err: err}
	}
	return defs, nil
}

// EvalExpr evaluates a single expression.
func (ctx *ExecutionContext) EvalExpr(c context.Context, thread *starlark.Thread, filename, expr string) (starlark.Value, error) {
	result, err := cancellable(c, thread, func() (starlark.Value, error) {
		return starlark.EvalOptions(ctx.opts, thread, filename, expr, ctx.Globals())
	})
	if err != nil {
		return nil, &EvalError{File: filename, Expr: expr, Err: err}
	}
	return result, nil
}

// IsExpr reports whether src parses as a single expression.
func (ctx *ExecutionContext) IsExpr(src string) bool {
	_, err := ctx.opts.ParseExpr("<repl>", src, 0)
	return err == nil
}

// Call invokes a Starlark function with no arguments.
func (ctx *ExecutionContext) Call(c context.Context, thread *starlark.Thread, fn starlark.Callable) (starlark.Value, error) {
	return cancellable(c, thread, func() (starlark.Value, error) {
		return starlark.Call(thread, fn, nil, nil)
	})
}

// cancellable runs fn, cancelling thread when c is done.
func cancellable[T any](c context.Context, thread *starlark.Thread, fn func() (T, error)) (T, error) {
	if err := c.Err(); err != nil {
		var zero T
		return zero, fmt.Errorf("%s: %w", thread.Name, err)
	}
	stop := context.AfterFunc(c, func() {
		thread.Cancel(context.Cause(c).Error())
	})
	defer stop()

	result, err := fn()
	if err != nil && c.Err() != nil {
		return result, fmt.Errorf("%s: %w", thread.Name, c.Err())
	}
	return result, err
}
