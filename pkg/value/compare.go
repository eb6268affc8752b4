package value

import (
	"cmp"

	"github.com/leapstack-labs/glyph/pkg/algorithm"
)

// Compare is the total order used by sorting: numbers before characters
// before arrays. Numbers compare numerically (NaN first), characters by
// code point. Arrays compare by rank, then shape, then elements in
// row-major order.
func Compare(a, b Value) int {
	if a.kind != b.kind {
		return cmp.Compare(a.kind, b.kind)
	}
	switch a.kind {
	case KindNumber:
		return cmp.Compare(a.num, b.num)
	case KindChar:
		return cmp.Compare(a.char, b.char)
	}
	return compareArrays(a.arr, b.arr)
}

func compareArrays(a, b *Array) int {
	if c := cmp.Compare(a.Rank(), b.Rank()); c != 0 {
		return c
	}
	if c := algorithm.CompareCells(a.shape, b.shape, cmp.Compare[int]); c != 0 {
		return c
	}
	if a.numeric && b.numeric {
		return algorithm.CompareCells(a.numbers, b.numbers, cmp.Compare[float64])
	}
	return algorithm.CompareCells(a.Values(), b.Values(), Compare)
}
