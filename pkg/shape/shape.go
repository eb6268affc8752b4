// Package shape describes the geometry shared by every array in the engine.
//
// A Shape lists the size of each axis. Axis 0 indexes the major cells of an
// array; everything after it is the cell shape. Shapes carry no data and are
// never derived from data: the buffer of an array must always agree with
// its shape's element count.
package shape

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxElements bounds the product of the non-zero axes of any shape that
// backs an array. Every cell size of a valid shape therefore fits in an int.
const MaxElements = 1 << 28

// Errors returned by Size and Validate.
var (
	ErrNegativeAxis = errors.New("negative axis")
	ErrTooLarge     = errors.New("shape too large")
	ErrLength       = errors.New("buffer length does not match shape")
)

// Shape is an ordered list of non-negative axis sizes.
type Shape []int

// Scalar is the shape of a rank-0 value.
var Scalar = Shape{}

// Of builds a shape from axis sizes.
func Of(axes ...int) Shape {
	return Shape(axes)
}

// Rank returns the number of axes.
func (s Shape) Rank() int {
	return len(s)
}

// Len returns the number of major cells: shape[0], or 1 for rank 0.
func (s Shape) Len() int {
	if len(s) == 0 {
		return 1
	}
	return s[0]
}

// ElementCount returns the product of all axes. The empty product is 1.
// The product is unchecked; shapes that have not passed Size or Validate
// may overflow.
func (s Shape) ElementCount() int {
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

// CellShape returns the shape of one major cell (axes 1 onward).
func (s Shape) CellShape() Shape {
	if len(s) == 0 {
		return Shape{}
	}
	return s[1:]
}

// CellSize returns the number of elements in one major cell.
func (s Shape) CellSize() int {
	return s.CellShape().ElementCount()
}

// Equal reports whether two shapes have the same axes.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy that does not share memory with s.
func (s Shape) Clone() Shape {
	out := make(Shape, len(s))
	copy(out, s)
	return out
}

// WithLen returns a copy of s whose leading axis is n.
// A rank-0 shape becomes the rank-1 shape [n].
func (s Shape) WithLen(n int) Shape {
	if len(s) == 0 {
		return Shape{n}
	}
	out := s.Clone()
	out[0] = n
	return out
}

// Prepend returns a new shape with axis n in front of s.
func (s Shape) Prepend(n int) Shape {
	out := make(Shape, 0, len(s)+1)
	out = append(out, n)
	return append(out, s...)
}

// Size returns the element count of s. It fails if an axis is negative
// or if the non-zero axes multiply past MaxElements.
func (s Shape) Size() (int, error) {
	n, nonzero := 1, 1
	for i, d := range s {
		switch {
		case d < 0:
			return 0, fmt.Errorf("%w: axis %d of shape %s is %d", ErrNegativeAxis, i, s, d)
		case d == 0:
			n = 0
			continue
		case nonzero > MaxElements/d:
			return 0, fmt.Errorf("%w: axes of shape %s multiply past %d", ErrTooLarge, s, MaxElements)
		}
		nonzero *= d
		n *= d
	}
	return n, nil
}

// Validate checks that the shape is well formed and that a buffer of
// length n agrees with it.
func (s Shape) Validate(n int) error {
	want, err := s.Size()
	if err != nil {
		return err
	}
	if want != n {
		return fmt.Errorf("%w: shape %s needs %d elements, buffer has %d", ErrLength, s, want, n)
	}
	return nil
}

// String renders the shape as "[2 3]".
func (s Shape) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, d := range s {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.Itoa(d))
	}
	b.WriteByte(']')
	return b.String()
}
