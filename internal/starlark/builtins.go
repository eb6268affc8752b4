package starlark

import (
	"fmt"

	"github.com/leapstack-labs/glyph/pkg/value"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// Module is the "arr" namespace available to every script.
var Module = &starlarkstruct.Module{
	Name: "arr",
	Members: starlark.StringDict{
		"array":        starlark.NewBuiltin("array", builtinArray),
		"char":         starlark.NewBuiltin("char", builtinChar),
		"range":        starlark.NewBuiltin("range", builtinRange),
		"reverse":      starlark.NewBuiltin("reverse", builtinReverse),
		"join":         starlark.NewBuiltin("join", builtinJoin),
		"sort":         starlark.NewBuiltin("sort", builtinSort),
		"sort_down":    starlark.NewBuiltin("sort_down", builtinSortDown),
		"force_length": starlark.NewBuiltin("force_length", builtinForceLength),
		"shape":        starlark.NewBuiltin("shape", builtinShape),
		"rank":         starlark.NewBuiltin("rank", builtinRank),
		"len":          starlark.NewBuiltin("len", builtinLen),
		"cell":         starlark.NewBuiltin("cell", builtinCell),
		"show":         starlark.NewBuiltin("show", builtinShow),
		"is_numbers":   starlark.NewBuiltin("is_numbers", builtinIsNumbers),
	},
}

// builtinNames are the globals scripts cannot redefine through inputs.
var builtinNames = map[string]bool{
	"arr":       true,
	"emit":      true,
	"assert_eq": true,
}

// Predeclared returns the globals for script execution: the arr module,
// emit, assert_eq and the given inputs.
func Predeclared(inputs starlark.StringDict) starlark.StringDict {
	globals := make(starlark.StringDict, len(inputs)+len(builtinNames))
	for name, v := range inputs {
		globals[name] = v
	}
	globals["arr"] = Module
	globals["emit"] = starlark.NewBuiltin("emit", builtinEmit)
	globals["assert_eq"] = starlark.NewBuiltin("assert_eq", builtinAssertEq)
	return globals
}

// unpackValue reads the single positional argument of b as a glyph value.
func unpackValue(b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value.Value, error) {
	var x starlark.Value
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &x); err != nil {
		return value.Value{}, err
	}
	v, err := ToValue(x)
	if err != nil {
		return value.Value{}, fmt.Errorf("%s: %w", b.Name(), err)
	}
	return v, nil
}

func builtinArray(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	v, err := unpackValue(b, args, kwargs)
	if err != nil {
		return nil, err
	}
	if !v.IsArray() {
		v = value.FromArray(value.FromValues(v))
	}
	return FromValue(v), nil
}

func builtinChar(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var s string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &s); err != nil {
		return nil, err
	}
	runes := []rune(s)
	if len(runes) != 1 {
		return nil, fmt.Errorf("%s: want a single character, got %d", b.Name(), len(runes))
	}
	return Char(runes[0]), nil
}

func builtinRange(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	v, err := unpackValue(b, args, kwargs)
	if err != nil {
		return nil, err
	}
	out, err := v.Range(callerEnv(thread))
	if err != nil {
		return nil, err
	}
	return NewArray(out), nil
}

func builtinReverse(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	v, err := unpackValue(b, args, kwargs)
	if err != nil {
		return nil, err
	}
	v.Reverse()
	return FromValue(v), nil
}

func builtinJoin(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var x, y starlark.Value
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 2, &x, &y); err != nil {
		return nil, err
	}
	left, err := ToValue(x)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	right, err := ToValue(y)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	if err := left.Join(right, callerEnv(thread)); err != nil {
		return nil, err
	}
	return FromValue(left), nil
}

func builtinSort(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	v, err := unpackValue(b, args, kwargs)
	if err != nil {
		return nil, err
	}
	v.Sort()
	return FromValue(v), nil
}

func builtinSortDown(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	v, err := unpackValue(b, args, kwargs)
	if err != nil {
		return nil, err
	}
	v.SortDescending()
	return FromValue(v), nil
}

func builtinForceLength(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var x starlark.Value
	var n int
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 2, &x, &n); err != nil {
		return nil, err
	}
	v, err := ToValue(x)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	if err := v.ForceLength(n); err != nil {
		return nil, callerEnv(thread).Annotate(err)
	}
	return FromValue(v), nil
}

func builtinShape(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	v, err := unpackValue(b, args, kwargs)
	if err != nil {
		return nil, err
	}
	return shapeTuple(v), nil
}

func builtinRank(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	v, err := unpackValue(b, args, kwargs)
	if err != nil {
		return nil, err
	}
	return starlark.MakeInt(v.Rank()), nil
}

func builtinLen(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	v, err := unpackValue(b, args, kwargs)
	if err != nil {
		return nil, err
	}
	return starlark.MakeInt(v.Len()), nil
}

func builtinCell(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var x starlark.Value
	var i int
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 2, &x, &i); err != nil {
		return nil, err
	}
	v, err := ToValue(x)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	c, err := v.Cell(i)
	if err != nil {
		return nil, callerEnv(thread).Annotate(err)
	}
	return FromValue(c), nil
}

func builtinShow(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	v, err := unpackValue(b, args, kwargs)
	if err != nil {
		return nil, err
	}
	return starlark.String(v.String()), nil
}

func builtinIsNumbers(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	v, err := unpackValue(b, args, kwargs)
	if err != nil {
		return nil, err
	}
	if !v.IsArray() {
		return starlark.Bool(v.IsNumber()), nil
	}
	return starlark.Bool(v.Array().IsNumbers()), nil
}

// builtinEmit pushes its arguments, in order, onto the thread's output.
func builtinEmit(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if len(kwargs) > 0 {
		return nil, fmt.Errorf("%s: unexpected keyword arguments", b.Name())
	}
	out := outputOf(thread)
	if out == nil {
		return nil, fmt.Errorf("%s: no output attached to thread %q", b.Name(), thread.Name)
	}
	for i, x := range args {
		v, err := ToValue(x)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", b.Name(), i+1, err)
		}
		out.emit(v)
	}
	return starlark.None, nil
}

func builtinAssertEq(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var x, y starlark.Value
	var msg string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "got", &x, "want", &y, "msg?", &msg); err != nil {
		return nil, err
	}
	got, err := ToValue(x)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	want, err := ToValue(y)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	if !got.Equal(want) {
		return nil, callerEnv(thread).Annotate(&AssertionError{Got: got, Want: want, Msg: msg})
	}
	return starlark.None, nil
}
