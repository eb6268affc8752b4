package starlark

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/glyph/pkg/value"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// PositionError attaches the script position of the failing call to an
// engine error.
type PositionError struct {
	Pos syntax.Position
	Err error
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Pos, e.Err)
}

func (e *PositionError) Unwrap() error { return e.Err }

// AssertionError is returned by assert_eq when its operands differ.
type AssertionError struct {
	Got  value.Value
	Want value.Value
	Msg  string
}

func (e *AssertionError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s: got %s, want %s", e.Msg, e.Got, e.Want)
	}
	return fmt.Sprintf("assertion failed: got %s, want %s", e.Got, e.Want)
}

// EvalError represents an error during script or expression evaluation.
type EvalError struct {
	File string
	Expr string
	Err  error
}

func (e *EvalError) Error() string {
	if e.Expr != "" {
		return fmt.Sprintf("%s: error evaluating %q: %v", e.File, e.Expr, e.Err)
	}
	// Positioned errors already name the file.
	var posErr *PositionError
	var synErr syntax.Error
	if errors.As(e.Err, &posErr) || errors.As(e.Err, &synErr) {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *EvalError) Unwrap() error { return e.Err }

// Backtrace returns the Starlark call stack of the failure, if known.
func (e *EvalError) Backtrace() string {
	if ee, ok := e.Err.(*starlark.EvalError); ok {
		return ee.Backtrace()
	}
	return ""
}

// callerEnv returns an Env that tags engine errors with the position of
// the Starlark call that invoked the running builtin.
func callerEnv(thread *starlark.Thread) value.Env {
	return value.EnvFunc(func(err error) error {
		if thread == nil || thread.CallStackDepth() < 2 {
			return err
		}
		return &PositionError{Pos: thread.CallFrame(1).Pos, Err: err}
	})
}
