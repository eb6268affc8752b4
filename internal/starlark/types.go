// Package starlark exposes glyph values to Starlark scripts.
//
// Arrays cross into Starlark as the "array" type and characters as the
// "char" type. Numbers become floats. Values handed to scripts are never
// shared with the caller: builtins clone before mutating.
package starlark

import (
	"fmt"

	"github.com/leapstack-labs/glyph/pkg/value"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Array is a Starlark value wrapping a glyph array.
type Array struct {
	v value.Value
}

var (
	_ starlark.Value      = (*Array)(nil)
	_ starlark.Indexable  = (*Array)(nil)
	_ starlark.Iterable   = (*Array)(nil)
	_ starlark.Comparable = (*Array)(nil)
	_ starlark.HasAttrs   = (*Array)(nil)
)

// NewArray wraps arr. The Array takes ownership of it.
func NewArray(arr *value.Array) *Array {
	return &Array{v: value.FromArray(arr)}
}

// Value returns a copy of the wrapped array.
func (a *Array) Value() value.Value { return a.v.Clone() }

func (a *Array) String() string        { return a.v.String() }
func (a *Array) Type() string          { return "array" }
func (a *Array) Freeze()               {}
func (a *Array) Truth() starlark.Bool  { return a.v.Array().ElementCount() > 0 }
func (a *Array) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: array") }
func (a *Array) Len() int              { return a.v.Len() }

// Index returns major cell i.
func (a *Array) Index(i int) starlark.Value {
	c, err := a.v.Cell(i)
	if err != nil {
		// Starlark bounds-checks before calling Index.
		panic(err)
	}
	return FromValue(c)
}

func (a *Array) Iterate() starlark.Iterator { return &cellIterator{a: a} }

// CompareSameType orders arrays with value.Compare.
func (a *Array) CompareSameType(op syntax.Token, y starlark.Value, _ int) (bool, error) {
	return threeway(op, value.Compare(a.v, y.(*Array).v))
}

func (a *Array) Attr(name string) (starlark.Value, error) {
	switch name {
	case "shape":
		return shapeTuple(a.v), nil
	case "rank":
		return starlark.MakeInt(a.v.Rank()), nil
	}
	return nil, nil
}

func (a *Array) AttrNames() []string { return []string{"rank", "shape"} }

type cellIterator struct {
	a *Array
	i int
}

func (it *cellIterator) Next(p *starlark.Value) bool {
	if it.i >= it.a.Len() {
		return false
	}
	*p = it.a.Index(it.i)
	it.i++
	return true
}

func (it *cellIterator) Done() {}

// Char is a single glyph character.
type Char rune

var (
	_ starlark.Value      = Char(0)
	_ starlark.Comparable = Char(0)
)

func (c Char) String() string        { return value.Char(rune(c)).String() }
func (c Char) Type() string          { return "char" }
func (c Char) Freeze()               {}
func (c Char) Truth() starlark.Bool  { return c != 0 }
func (c Char) Hash() (uint32, error) { return uint32(c), nil }

func (c Char) CompareSameType(op syntax.Token, y starlark.Value, _ int) (bool, error) {
	d := 0
	switch other := y.(Char); {
	case c < other:
		d = -1
	case c > other:
		d = 1
	}
	return threeway(op, d)
}

func threeway(op syntax.Token, cmp int) (bool, error) {
	switch op {
	case syntax.EQL:
		return cmp == 0, nil
	case syntax.NEQ:
		return cmp != 0, nil
	case syntax.LT:
		return cmp < 0, nil
	case syntax.LE:
		return cmp <= 0, nil
	case syntax.GT:
		return cmp > 0, nil
	case syntax.GE:
		return cmp >= 0, nil
	}
	return false, fmt.Errorf("unsupported comparison %s", op)
}

func shapeTuple(v value.Value) starlark.Tuple {
	s := v.Shape()
	out := make(starlark.Tuple, len(s))
	for i, n := range s {
		out[i] = starlark.MakeInt(n)
	}
	return out
}

// FromValue converts a glyph value to Starlark. Numbers become floats,
// characters become chars and arrays are wrapped without copying.
func FromValue(v value.Value) starlark.Value {
	switch v.Kind() {
	case value.KindNumber:
		return starlark.Float(v.Float())
	case value.KindChar:
		return Char(v.Rune())
	}
	return &Array{v: v}
}

// ToValue converts a Starlark value to a glyph value. Ints, floats and
// bools become numbers, strings become character vectors and lists or
// tuples become arrays built from their items as cells. Arrays are copied.
func ToValue(x starlark.Value) (value.Value, error) {
	switch t := x.(type) {
	case *Array:
		return t.Value(), nil
	case Char:
		return value.Char(rune(t)), nil
	case starlark.Int:
		return value.Number(float64(t.Float())), nil
	case starlark.Float:
		return value.Number(float64(t)), nil
	case starlark.Bool:
		if t {
			return value.Number(1), nil
		}
		return value.Number(0), nil
	case starlark.String:
		return value.Text(string(t)), nil
	case *starlark.List:
		return cellsOf(t)
	case starlark.Tuple:
		return cellsOf(t)
	}
	return value.Value{}, fmt.Errorf("cannot convert %s to an array value", x.Type())
}

func cellsOf(seq starlark.Indexable) (value.Value, error) {
	cells := make([]value.Value, seq.Len())
	for i := range cells {
		c, err := ToValue(seq.Index(i))
		if err != nil {
			return value.Value{}, fmt.Errorf("item %d: %w", i, err)
		}
		cells[i] = c
	}
	return value.FromArray(value.FromCells(cells)), nil
}

// Globals converts named input values to Starlark globals.
func Globals(inputs map[string]value.Value) starlark.StringDict {
	out := make(starlark.StringDict, len(inputs))
	for name, v := range inputs {
		out[name] = FromValue(v.Clone())
	}
	return out
}
