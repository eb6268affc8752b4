// Package value implements the runtime values of the array language.
//
// A Value is either a bare scalar (a number or a character) or a handle to
// an Array. Scalars behave as rank-0 arrays everywhere shape matters, so
// primitives only need to branch on "is this an array" where the two
// representations genuinely differ.
//
// Values own their arrays. Copying a Value copies the handle, not the
// buffer; use Clone before mutating a Value that is reachable elsewhere.
package value

import (
	"fmt"

	"github.com/leapstack-labs/glyph/pkg/shape"
)

// Kind tags the variant held by a Value.
type Kind uint8

// Value kinds.
const (
	KindNumber Kind = iota
	KindChar
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindChar:
		return "character"
	case KindArray:
		return "array"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is a scalar or an array. The zero Value is the number 0.
type Value struct {
	kind Kind
	num  float64
	char rune
	arr  *Array
}

// Number returns a number value.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Char returns a character value.
func Char(r rune) Value {
	return Value{kind: KindChar, char: r}
}

// FromArray wraps an array. The Value takes ownership of a.
func FromArray(a *Array) Value {
	if a == nil {
		a = FromNumbers()
	}
	return Value{kind: KindArray, arr: a}
}

// Text returns a rank-1 character array.
func Text(s string) Value {
	return FromArray(FromString(s))
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsArray reports whether v holds an array.
func (v Value) IsArray() bool { return v.kind == KindArray }

// IsNumber reports whether v is a bare number.
func (v Value) IsNumber() bool { return v.kind == KindNumber }

// IsChar reports whether v is a bare character.
func (v Value) IsChar() bool { return v.kind == KindChar }

// Float returns the number held by v. It is 0 for other kinds.
func (v Value) Float() float64 { return v.num }

// Rune returns the character held by v. It is 0 for other kinds.
func (v Value) Rune() rune { return v.char }

// Array returns the array held by v, or nil for scalars.
func (v Value) Array() *Array { return v.arr }

// Len returns the number of major cells; scalars have length 1.
func (v Value) Len() int {
	if v.kind == KindArray {
		return v.arr.Len()
	}
	return 1
}

// Rank returns the number of axes; scalars have rank 0.
func (v Value) Rank() int {
	if v.kind == KindArray {
		return v.arr.Rank()
	}
	return 0
}

// Shape returns a copy of the shape; scalars have the empty shape.
func (v Value) Shape() shape.Shape {
	if v.kind == KindArray {
		return v.arr.Shape().Clone()
	}
	return shape.Shape{}
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	if v.kind == KindArray {
		return FromArray(v.arr.Clone())
	}
	return v
}

// Equal reports whether v and other have the same kind, shape and elements.
func (v Value) Equal(other Value) bool {
	return Compare(v, other) == 0
}

// Range interprets v as a shape descriptor and returns the array that
// enumerates every index into that shape.
func (v Value) Range(env Env) (*Array, error) {
	switch {
	case v.kind == KindArray && v.arr.IsNumbers():
		s := make(shape.Shape, 0, v.arr.ElementCount())
		for _, f := range v.arr.numbers {
			n, ok := naturalNumber(f)
			if !ok {
				return nil, annotate(env, &RangeShapeError{Source: RangeFromArray, Value: f})
			}
			s = append(s, n)
		}
		return rangeIn(s, env)
	case v.kind == KindNumber:
		n, ok := naturalNumber(v.num)
		if !ok {
			return nil, annotate(env, &RangeShapeError{Source: RangeFromNumber, Value: v.num})
		}
		return rangeIn(shape.Of(n), env)
	}
	return nil, annotate(env, &RangeShapeError{Source: RangeFromOther})
}

func rangeIn(s shape.Shape, env Env) (*Array, error) {
	arr, err := Range(s)
	if err != nil {
		return nil, annotate(env, err)
	}
	return arr, nil
}

// Reverse reverses the major cells of v in place. Scalars are unchanged.
func (v *Value) Reverse() {
	if v.kind == KindArray {
		v.arr.Reverse()
	}
}

// Join appends other to v along the leading axis. A scalar joined with an
// array is broadcast into one cell of that array's cell shape; two scalars
// become a two-element vector. On error v is left unchanged. Join takes
// ownership of other.
func (v *Value) Join(other Value, env Env) error {
	left, right := v.arr, other.arr
	switch {
	case v.kind != KindArray && other.kind != KindArray:
		left, right = promote(*v, shape.Scalar), promote(other, shape.Scalar)
	case v.kind != KindArray:
		left = promote(*v, right.shape.CellShape())
	case other.kind != KindArray:
		right = promote(other, left.shape.CellShape())
	}
	if err := left.Join(right, env); err != nil {
		return err
	}
	*v = FromArray(left)
	return nil
}

// ForceLength coerces v to n major cells by cyclic repetition or
// truncation. Scalars are promoted to arrays.
func (v *Value) ForceLength(n int) error {
	arr := v.arr
	if v.kind != KindArray {
		arr = promote(*v, shape.Scalar)
	}
	if err := arr.ForceLength(n); err != nil {
		return err
	}
	*v = FromArray(arr)
	return nil
}

// Sort sorts the major cells of v ascending. Scalars are unchanged.
func (v *Value) Sort() {
	if v.kind == KindArray {
		v.arr.Sort()
	}
}

// SortDescending sorts the major cells of v descending.
func (v *Value) SortDescending() {
	if v.kind == KindArray {
		v.arr.SortDescending()
	}
}

// Cell returns major cell i of v. A scalar is its own only cell.
func (v Value) Cell(i int) (Value, error) {
	if v.kind == KindArray {
		return v.arr.Cell(i)
	}
	if i != 0 {
		return Value{}, &IndexError{Index: i, Len: 1}
	}
	return v, nil
}

// promote builds a one-cell array of the given cell shape with every
// element set to the scalar v.
func promote(v Value, cell shape.Shape) *Array {
	s := cell.Prepend(1)
	n := s.ElementCount()
	if v.kind == KindNumber {
		nums := make([]float64, n)
		for i := range nums {
			nums[i] = v.num
		}
		return &Array{shape: s, numeric: true, numbers: nums}
	}
	vals := make([]Value, n)
	for i := range vals {
		vals[i] = v
	}
	return &Array{shape: s, values: vals}
}
