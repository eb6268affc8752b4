package value

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/glyph/pkg/shape"
)

// Env is the caller-provided context that engine errors pass through
// before they are returned. Callers use it to attach source positions.
type Env interface {
	Annotate(err error) error
}

// NopEnv returns engine errors unchanged.
type NopEnv struct{}

// Annotate implements Env.
func (NopEnv) Annotate(err error) error { return err }

// EnvFunc adapts a function to the Env interface.
type EnvFunc func(err error) error

// Annotate implements Env.
func (f EnvFunc) Annotate(err error) error { return f(err) }

func annotate(env Env, err error) error {
	if env == nil {
		return err
	}
	return env.Annotate(err)
}

// Sentinel errors for errors.Is checks.
var (
	ErrRangeShape    = errors.New("invalid range shape")
	ErrShapeMismatch = errors.New("shape mismatch")
	ErrIndex         = errors.New("index out of bounds")
	ErrShape         = errors.New("invalid shape")
)

// ShapeError is returned when a shape cannot back an array: an axis is
// negative, the axes multiply past shape.MaxElements, or the buffer length
// disagrees with the shape. Err is the underlying shape error.
type ShapeError struct {
	Shape shape.Shape
	Err   error
}

func (e *ShapeError) Error() string {
	return "invalid shape: " + e.Err.Error()
}

// Is reports whether target is ErrShape.
func (e *ShapeError) Is(target error) bool { return target == ErrShape }

func (e *ShapeError) Unwrap() error { return e.Err }

// RangeSource identifies which kind of descriptor a range was built from.
type RangeSource int

// Range descriptor kinds.
const (
	RangeFromArray RangeSource = iota
	RangeFromNumber
	RangeFromOther
)

// RangeShapeError is returned when a range descriptor is not made of
// natural numbers.
type RangeShapeError struct {
	Source RangeSource
	Value  float64 // offending number; unset for RangeFromOther
}

func (e *RangeShapeError) Error() string {
	switch e.Source {
	case RangeFromArray:
		return "tried to make a range of an array with decimal or negative numbers, " +
			"but only natural numbers are allowed"
	case RangeFromNumber:
		return "tried to make a range of a decimal or negative number, " +
			"but only natural numbers are allowed"
	default:
		return "ranges can only be created from natural numbers"
	}
}

// Is reports whether target is ErrRangeShape.
func (e *RangeShapeError) Is(target error) bool { return target == ErrRangeShape }

// ShapeMismatchError is returned by join when the cell shapes of the two
// operands differ.
type ShapeMismatchError struct {
	Left  shape.Shape
	Right shape.Shape
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("cannot join arrays of shapes %s and %s", e.Left, e.Right)
}

// Is reports whether target is ErrShapeMismatch.
func (e *ShapeMismatchError) Is(target error) bool { return target == ErrShapeMismatch }

// IndexError is returned when a cell index falls outside an array.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %d is out of bounds for length %d", e.Index, e.Len)
}

// Is reports whether target is ErrIndex.
func (e *IndexError) Is(target error) bool { return target == ErrIndex }
