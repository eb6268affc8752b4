// Package algorithm holds the shape-aware building blocks that array
// primitives reduce to.
//
// Every function works on a shape plus the flat, row-major data buffer it
// describes. Functions that reorder data do so in place; the caller owns
// the buffer for the duration of the call. Nothing here allocates global
// state or retains references after returning.
package algorithm

import "github.com/leapstack-labs/glyph/pkg/shape"

// Compare is a total order over elements: negative when a sorts before b,
// zero when they tie, positive otherwise.
type Compare[T any] func(a, b T) int

// Strides returns the row-major decomposition tables for shape s.
// products[j] is the product of s[j:], moduli[j] the product of s[j+1:].
// Coordinate j of flat index i is (i % products[j]) / moduli[j].
func Strides(s shape.Shape) (products, moduli []int) {
	products = make([]int, len(s))
	moduli = make([]int, len(s))
	acc := 1
	for j := len(s) - 1; j >= 0; j-- {
		moduli[j] = acc
		acc *= s[j]
		products[j] = acc
	}
	return products, moduli
}

// Coordinates writes the multi-index of flat index i into dst.
// dst must have len(products) entries.
func Coordinates(i int, products, moduli []int, dst []int) {
	for j := range products {
		dst[j] = i % products[j] / moduli[j]
	}
}

// Reverse reverses the order of the major cells of data in place.
// Rank-0 shapes and arrays with at most one cell are left alone.
func Reverse[T any](s shape.Shape, data []T) {
	if s.Rank() == 0 {
		return
	}
	cells := s[0]
	size := s.CellSize()
	for i := 0; i < cells/2; i++ {
		j := cells - i - 1
		// i < j, so the two blocks never overlap.
		swapBlocks(data[i*size:(i+1)*size], data[j*size:(j+1)*size])
	}
}

func swapBlocks[T any](a, b []T) {
	b = b[:len(a)]
	for k := range a {
		a[k], b[k] = b[k], a[k]
	}
}

// ForceLength grows data to n elements by appending data[0], data[1], ...
// in round-robin order, or truncates it to n. The returned slice may share
// its backing array with data. Empty input cannot be grown and is returned
// as is. A negative n counts as 0.
func ForceLength[T any](data []T, n int) []T {
	n = max(n, 0)
	switch {
	case len(data) > n:
		return data[:n]
	case len(data) == n, len(data) == 0:
		return data
	}
	orig := len(data)
	out := make([]T, n)
	copy(out, data)
	for i := orig; i < n; i++ {
		out[i] = out[i%orig]
	}
	return out
}

// CompareCells orders two equal-length cells lexicographically: the first
// differing element decides.
func CompareCells[T any](a, b []T, cmp Compare[T]) int {
	n := min(len(a), len(b))
	for k := 0; k < n; k++ {
		if c := cmp(a[k], b[k]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

// SortArray sorts the major cells of data in place using cmp applied
// lexicographically across each cell. The sort is stable: cells that
// compare equal keep their original relative order.
func SortArray[T any](s shape.Shape, data []T, cmp Compare[T]) {
	if s.Rank() == 0 || len(data) == 0 {
		return
	}
	size := s.CellSize()
	if size == 0 {
		return
	}
	scratch := make([]T, len(data))
	mergeSortChunks(size, data, scratch, cmp)
}

// mergeSortChunks sorts data as a sequence of size-element chunks. scratch
// has the same length as data and is used as the merge target.
func mergeSortChunks[T any](size int, data, scratch []T, cmp Compare[T]) {
	cells := len(data) / size
	if cells <= 1 {
		return
	}
	split := cells / 2 * size
	left, right := data[:split], data[split:]
	mergeSortChunks(size, left, scratch[:split], cmp)
	mergeSortChunks(size, right, scratch[split:], cmp)

	out := scratch[:0]
	for len(left) > 0 && len(right) > 0 {
		l, r := left[:size], right[:size]
		if CompareCells(l, r, cmp) <= 0 {
			out = append(out, l...)
			left = left[size:]
		} else {
			out = append(out, r...)
			right = right[size:]
		}
	}
	out = append(out, left...)
	out = append(out, right...)
	copy(data, out)
}
