package value

import (
	"cmp"
	"fmt"

	"github.com/leapstack-labs/glyph/pkg/algorithm"
	"github.com/leapstack-labs/glyph/pkg/shape"
)

// Array is a shape-tagged, row-major element buffer.
//
// Arrays whose elements are all numbers keep them unboxed; IsNumbers
// reports this. Any other array stores Values, which may themselves be
// arrays. The buffer length always equals the shape's element count.
type Array struct {
	shape   shape.Shape
	numeric bool
	numbers []float64
	values  []Value
}

// NewNumbers builds a numeric array. The array takes ownership of data.
func NewNumbers(s shape.Shape, data []float64) (*Array, error) {
	if err := s.Validate(len(data)); err != nil {
		return nil, &ShapeError{Shape: s.Clone(), Err: err}
	}
	if data == nil {
		data = []float64{}
	}
	return &Array{shape: s.Clone(), numeric: true, numbers: data}, nil
}

// NewValues builds an array of arbitrary values. The array takes ownership
// of data. Buffers holding only bare numbers are stored unboxed.
func NewValues(s shape.Shape, data []Value) (*Array, error) {
	if err := s.Validate(len(data)); err != nil {
		return nil, &ShapeError{Shape: s.Clone(), Err: err}
	}
	return newValues(s.Clone(), data), nil
}

func newValues(s shape.Shape, data []Value) *Array {
	if allNumbers(data) {
		nums := make([]float64, len(data))
		for i, v := range data {
			nums[i] = v.num
		}
		return &Array{shape: s, numeric: true, numbers: nums}
	}
	return &Array{shape: s, values: data}
}

// FromNumbers builds a rank-1 numeric array.
func FromNumbers(data ...float64) *Array {
	nums := make([]float64, len(data))
	copy(nums, data)
	return &Array{shape: shape.Of(len(nums)), numeric: true, numbers: nums}
}

// FromValues builds a rank-1 array of values.
func FromValues(data ...Value) *Array {
	vals := make([]Value, len(data))
	copy(vals, data)
	return newValues(shape.Of(len(vals)), vals)
}

// FromRunes builds a rank-1 character array.
func FromRunes(runes ...rune) *Array {
	vals := make([]Value, len(runes))
	for i, r := range runes {
		vals[i] = Char(r)
	}
	return &Array{shape: shape.Of(len(vals)), values: vals}
}

// FromString builds a rank-1 character array from the runes of s.
func FromString(s string) *Array {
	return FromRunes([]rune(s)...)
}

// FromCells builds an array whose major cells are cells, taking ownership
// of them. When every cell is an array of the same shape the result gains
// an axis; otherwise the result is a rank-1 array holding the cells as
// elements.
func FromCells(cells []Value) *Array {
	if len(cells) == 0 {
		return FromNumbers()
	}
	first := cells[0]
	if !first.IsArray() {
		return FromValues(cells...)
	}
	cellShape := first.arr.shape
	numeric := true
	for _, c := range cells {
		if !c.IsArray() || !c.arr.shape.Equal(cellShape) {
			return FromValues(cells...)
		}
		numeric = numeric && c.arr.numeric
	}
	s := cellShape.Prepend(len(cells))
	if numeric {
		nums := make([]float64, 0, s.ElementCount())
		for _, c := range cells {
			nums = append(nums, c.arr.numbers...)
		}
		return &Array{shape: s, numeric: true, numbers: nums}
	}
	vals := make([]Value, 0, s.ElementCount())
	for _, c := range cells {
		vals = append(vals, c.arr.Values()...)
	}
	return newValues(s, vals)
}

// Shape returns the array's shape. Callers must not modify it.
func (a *Array) Shape() shape.Shape { return a.shape }

// Rank returns the number of axes.
func (a *Array) Rank() int { return a.shape.Rank() }

// Len returns the number of major cells.
func (a *Array) Len() int { return a.shape.Len() }

// CellSize returns the number of elements per major cell.
func (a *Array) CellSize() int { return a.shape.CellSize() }

// ElementCount returns the number of elements in the buffer.
func (a *Array) ElementCount() int {
	if a.numeric {
		return len(a.numbers)
	}
	return len(a.values)
}

// IsNumbers reports whether every element is a bare number.
func (a *Array) IsNumbers() bool { return a.numeric }

// IsChars reports whether the array is non-empty and every element is a
// bare character.
func (a *Array) IsChars() bool {
	if a.numeric || len(a.values) == 0 {
		return false
	}
	for _, v := range a.values {
		if v.kind != KindChar {
			return false
		}
	}
	return true
}

// Numbers returns the unboxed buffer, or nil if the array is not numeric.
// Callers must not retain it across mutations of a.
func (a *Array) Numbers() []float64 {
	if !a.numeric {
		return nil
	}
	return a.numbers
}

// Values returns the elements as Values. Numeric arrays are boxed into a
// new slice.
func (a *Array) Values() []Value {
	if !a.numeric {
		return a.values
	}
	out := make([]Value, len(a.numbers))
	for i, f := range a.numbers {
		out[i] = Number(f)
	}
	return out
}

// Element returns the flat element at index i.
func (a *Array) Element(i int) Value {
	if a.numeric {
		return Number(a.numbers[i])
	}
	return a.values[i]
}

// Cell returns major cell i. Cells of rank-1 arrays are their elements;
// higher-rank cells are copied into new arrays.
func (a *Array) Cell(i int) (Value, error) {
	if i < 0 || i >= a.Len() {
		return Value{}, &IndexError{Index: i, Len: a.Len()}
	}
	if a.Rank() <= 1 {
		return a.Element(i), nil
	}
	size := a.CellSize()
	cellShape := a.shape.CellShape().Clone()
	if a.numeric {
		nums := make([]float64, size)
		copy(nums, a.numbers[i*size:(i+1)*size])
		return FromArray(&Array{shape: cellShape, numeric: true, numbers: nums}), nil
	}
	vals := make([]Value, size)
	for k, v := range a.values[i*size : (i+1)*size] {
		vals[k] = v.Clone()
	}
	return FromArray(&Array{shape: cellShape, values: vals}), nil
}

// Clone returns a deep copy of a.
func (a *Array) Clone() *Array {
	out := &Array{shape: a.shape.Clone(), numeric: a.numeric}
	if a.numeric {
		out.numbers = make([]float64, len(a.numbers))
		copy(out.numbers, a.numbers)
		return out
	}
	out.values = make([]Value, len(a.values))
	for i, v := range a.values {
		out.values[i] = v.Clone()
	}
	return out
}

// Reverse reverses the major cells in place.
func (a *Array) Reverse() {
	if a.numeric {
		algorithm.Reverse(a.shape, a.numbers)
		return
	}
	algorithm.Reverse(a.shape, a.values)
}

// Sort stably sorts the major cells ascending.
func (a *Array) Sort() {
	if a.numeric {
		algorithm.SortArray(a.shape, a.numbers, cmp.Compare[float64])
		return
	}
	algorithm.SortArray(a.shape, a.values, Compare)
}

// SortDescending stably sorts the major cells descending.
func (a *Array) SortDescending() {
	if a.numeric {
		algorithm.SortArray(a.shape, a.numbers, func(x, y float64) int { return cmp.Compare(y, x) })
		return
	}
	algorithm.SortArray(a.shape, a.values, func(x, y Value) int { return Compare(y, x) })
}

// Join appends the cells of other to a. The cell shapes must agree unless
// one side is empty, in which case the result is the other side. Rank-0
// operands count as one-element vectors. On error a is unchanged. Join
// takes ownership of other.
func (a *Array) Join(other *Array, env Env) error {
	left := a.shape
	if left.Rank() == 0 {
		left = shape.Of(1)
	}
	right := other.shape
	if right.Rank() == 0 {
		right = shape.Of(1)
	}

	switch {
	case left.Len() == 0:
		a.shape = right.Clone()
		a.numeric = other.numeric
		a.numbers = append([]float64(nil), other.numbers...)
		a.values = append([]Value(nil), other.values...)
		return nil
	case right.Len() == 0:
		a.shape = left.Clone()
		return nil
	case !left.CellShape().Equal(right.CellShape()):
		return annotate(env, &ShapeMismatchError{Left: left.Clone(), Right: right.Clone()})
	}

	joined := left.WithLen(left[0] + right[0])
	if a.numeric && other.numeric {
		a.numbers = append(a.numbers, other.numbers...)
	} else {
		vals := make([]Value, 0, joined.ElementCount())
		vals = append(vals, a.Values()...)
		vals = append(vals, other.Values()...)
		a.numeric = false
		a.numbers = nil
		a.values = vals
	}
	a.shape = joined
	return nil
}

// ForceLength coerces the array to n major cells, repeating cells from the
// front in round-robin order or dropping trailing cells.
func (a *Array) ForceLength(n int) error {
	if n < 0 {
		return fmt.Errorf("cannot force length %d: length must not be negative", n)
	}
	s := a.shape
	if s.Rank() == 0 {
		s = shape.Of(1)
	}
	size := s.CellSize()
	if s.Len() == 0 && n > 0 && size > 0 {
		return fmt.Errorf("cannot force an empty array to length %d", n)
	}
	forced := s.WithLen(n)
	if _, err := forced.Size(); err != nil {
		return &ShapeError{Shape: forced, Err: err}
	}
	if a.numeric {
		a.numbers = algorithm.ForceLength(a.numbers, n*size)
	} else {
		orig := len(a.values)
		a.values = algorithm.ForceLength(a.values, n*size)
		// Repeated elements must not share nested arrays with their source.
		for i := orig; i < len(a.values); i++ {
			a.values[i] = a.values[i].Clone()
		}
	}
	a.shape = forced
	return nil
}

func allNumbers(data []Value) bool {
	for _, v := range data {
		if v.kind != KindNumber {
			return false
		}
	}
	return true
}
