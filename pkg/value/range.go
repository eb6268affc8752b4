package value

import (
	"math"

	"github.com/leapstack-labs/glyph/pkg/algorithm"
	"github.com/leapstack-labs/glyph/pkg/shape"
)

// epsilon is the gap between 1 and the next representable float64.
const epsilon = 0x1p-52

// naturalNumber converts f to a non-negative integer if it is within
// epsilon of one.
func naturalNumber(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	rounded := math.Round(f)
	if math.Abs(f-rounded) > epsilon || rounded < 0 || rounded > math.MaxInt32 {
		return 0, false
	}
	return int(rounded), true
}

// Range returns an array of shape s enumerating every index into s in
// row-major order. For rank 0 and 1 the elements are the numbers
// 0..n-1; for higher ranks each element is a rank-1 array of coordinates.
// Shapes rejected by shape.Size return a *ShapeError.
func Range(s shape.Shape) (*Array, error) {
	n, err := s.Size()
	if err != nil {
		return nil, &ShapeError{Shape: s.Clone(), Err: err}
	}
	if s.Rank() <= 1 {
		nums := make([]float64, n)
		for i := range nums {
			nums[i] = float64(i)
		}
		return &Array{shape: s.Clone(), numeric: true, numbers: nums}, nil
	}

	products, moduli := algorithm.Strides(s)
	coords := make([]int, s.Rank())
	vals := make([]Value, n)
	for i := range vals {
		algorithm.Coordinates(i, products, moduli, coords)
		cell := make([]float64, len(coords))
		for j, c := range coords {
			cell[j] = float64(c)
		}
		vals[i] = FromArray(&Array{shape: shape.Of(len(cell)), numeric: true, numbers: cell})
	}
	return &Array{shape: s.Clone(), values: vals}, nil
}
