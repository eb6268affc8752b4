package value

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/leapstack-labs/glyph/pkg/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNumbers(t *testing.T, s shape.Shape, data ...float64) *Array {
	t.Helper()
	a, err := NewNumbers(s, data)
	require.NoError(t, err)
	return a
}

func mustRange(t *testing.T, s shape.Shape) *Array {
	t.Helper()
	a, err := Range(s)
	require.NoError(t, err)
	return a
}

func TestValue_ShapeQueries(t *testing.T) {
	tests := []struct {
		name  string
		v     Value
		len   int
		rank  int
		shape shape.Shape
	}{
		{name: "number", v: Number(3), len: 1, rank: 0, shape: shape.Shape{}},
		{name: "char", v: Char('x'), len: 1, rank: 0, shape: shape.Shape{}},
		{name: "vector", v: FromArray(FromNumbers(1, 2, 3)), len: 3, rank: 1, shape: shape.Of(3)},
		{name: "matrix", v: FromArray(mustNumbers(t, shape.Of(2, 3), 1, 2, 3, 4, 5, 6)), len: 2, rank: 2, shape: shape.Of(2, 3)},
		{name: "text", v: Text("hello"), len: 5, rank: 1, shape: shape.Of(5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.len, tt.v.Len())
			assert.Equal(t, tt.rank, tt.v.Rank())
			assert.True(t, tt.shape.Equal(tt.v.Shape()), "shape %s", tt.v.Shape())
		})
	}
}

func TestValue_ZeroIsNumberZero(t *testing.T) {
	var v Value
	assert.Equal(t, KindNumber, v.Kind())
	assert.Equal(t, 0.0, v.Float())
}

func TestRange_Number(t *testing.T) {
	got, err := Number(5).Range(NopEnv{})
	require.NoError(t, err)
	assert.True(t, got.IsNumbers())
	assert.Equal(t, []float64{0, 1, 2, 3, 4}, got.Numbers())
	assert.Equal(t, shape.Of(5), got.Shape())
}

func TestRange_AcceptsNearIntegers(t *testing.T) {
	got, err := Number(1 - 1e-16).Range(NopEnv{})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())
}

func TestRange_Zero(t *testing.T) {
	got, err := Number(0).Range(NopEnv{})
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
	assert.Equal(t, 0, got.ElementCount())

	got, err = FromArray(FromNumbers(2, 0)).Range(NopEnv{})
	require.NoError(t, err)
	assert.Equal(t, shape.Of(2, 0), got.Shape())
	assert.Equal(t, 0, got.ElementCount())
}

func TestRange_Matrix(t *testing.T) {
	got, err := FromArray(FromNumbers(2, 3)).Range(NopEnv{})
	require.NoError(t, err)
	require.Equal(t, shape.Of(2, 3), got.Shape())
	require.Equal(t, 6, got.ElementCount())
	assert.False(t, got.IsNumbers())

	want := [][]float64{{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 1}, {1, 2}}
	for i, coords := range want {
		e := got.Element(i)
		require.True(t, e.IsArray(), "element %d", i)
		assert.Equal(t, 1, e.Rank())
		assert.Equal(t, coords, e.Array().Numbers(), "element %d", i)
	}
}

func TestRange_RankThreeEnumeratesEveryIndexOnce(t *testing.T) {
	s := shape.Of(2, 3, 4)
	got := mustRange(t, s)
	require.Equal(t, s.ElementCount(), got.ElementCount())

	seen := map[string]bool{}
	for i := 0; i < got.ElementCount(); i++ {
		c := got.Element(i).Array().Numbers()
		key := fmt.Sprint(c)
		assert.False(t, seen[key], "duplicate coordinate %v", c)
		seen[key] = true
		flat := int(c[0])*12 + int(c[1])*4 + int(c[2])
		assert.Equal(t, i, flat, "row-major order")
	}
}

func TestRange_Errors(t *testing.T) {
	tests := []struct {
		name   string
		v      Value
		source RangeSource
		substr string
	}{
		{name: "decimal", v: Number(4.5), source: RangeFromNumber, substr: "natural numbers"},
		{name: "negative", v: Number(-1), source: RangeFromNumber, substr: "natural numbers"},
		{name: "nan", v: Number(math.NaN()), source: RangeFromNumber, substr: "natural numbers"},
		{name: "array with decimal", v: FromArray(FromNumbers(2, 1.5)), source: RangeFromArray, substr: "array"},
		{name: "array with negative", v: FromArray(FromNumbers(-2, 3)), source: RangeFromArray, substr: "array"},
		{name: "character", v: Char('a'), source: RangeFromOther, substr: "ranges can only be created from natural numbers"},
		{name: "text", v: Text("ab"), source: RangeFromOther, substr: "natural numbers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.v.Range(NopEnv{})
			require.Error(t, err)
			assert.Nil(t, got)
			assert.True(t, errors.Is(err, ErrRangeShape))

			var rangeErr *RangeShapeError
			require.True(t, errors.As(err, &rangeErr))
			assert.Equal(t, tt.source, rangeErr.Source)
			assert.Contains(t, err.Error(), tt.substr)
		})
	}
}

func TestRange_RejectsOversizedShapes(t *testing.T) {
	const big = 1 << 30

	tests := []struct {
		name string
		v    Value
	}{
		{name: "product wraps int", v: FromArray(FromNumbers(big, big, big, big))},
		{name: "past element limit", v: FromArray(FromNumbers(shape.MaxElements, 2))},
		{name: "zero axis with huge cells", v: FromArray(FromNumbers(0, big, big))},
		{name: "single axis past limit", v: Number(shape.MaxElements + 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.v.Range(NopEnv{})
			require.Error(t, err)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, ErrShape)
			assert.ErrorIs(t, err, shape.ErrTooLarge)

			var shapeErr *ShapeError
			require.True(t, errors.As(err, &shapeErr))
			assert.Equal(t, tt.v.Len(), shapeErr.Shape.Rank())
		})
	}
}

func TestRange_ShapeErrorIsAnnotated(t *testing.T) {
	env := EnvFunc(func(err error) error { return fmt.Errorf("main.star:1:10: %w", err) })

	_, err := FromArray(FromNumbers(1<<30, 1<<30, 1<<30, 1<<30)).Range(env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "main.star:1:10")
	assert.ErrorIs(t, err, ErrShape)
}

func TestRange_ShapeAgreesWithBuffer(t *testing.T) {
	for _, s := range []shape.Shape{shape.Of(3), shape.Of(2, 3), shape.Of(2, 0, 4), shape.Of(1, 1, 1, 1)} {
		got := mustRange(t, s)
		n, err := got.Shape().Size()
		require.NoError(t, err)
		assert.Equal(t, n, got.ElementCount(), "shape %s", s)
	}
}

func TestRange_EnvAnnotatesErrors(t *testing.T) {
	env := EnvFunc(func(err error) error { return fmt.Errorf("main.star:3:7: %w", err) })

	_, err := Number(-3).Range(env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "main.star:3:7")
	assert.ErrorIs(t, err, ErrRangeShape)
}

func TestValue_ReverseScalarIsNoop(t *testing.T) {
	v := Number(7)
	v.Reverse()
	assert.Equal(t, Number(7), v)
}

func TestValue_ReverseInvolution(t *testing.T) {
	orig := FromArray(mustNumbers(t, shape.Of(3, 2), 1, 2, 3, 4, 5, 6))
	v := orig.Clone()

	v.Reverse()
	assert.Equal(t, []float64{5, 6, 3, 4, 1, 2}, v.Array().Numbers())

	v.Reverse()
	assert.True(t, orig.Equal(v))
}

func TestValue_JoinTagPairs(t *testing.T) {
	tests := []struct {
		name  string
		left  Value
		right Value
		want  string
	}{
		{name: "array array", left: FromArray(FromNumbers(1, 2)), right: FromArray(FromNumbers(3)), want: "[1 2 3]"},
		{name: "array scalar", left: FromArray(FromNumbers(1, 2)), right: Number(3), want: "[1 2 3]"},
		{name: "scalar array", left: Number(1), right: FromArray(FromNumbers(2, 3)), want: "[1 2 3]"},
		{name: "scalar scalar", left: Number(1), right: Number(2), want: "[1 2]"},
		{name: "chars", left: Char('a'), right: Text("bc"), want: `"abc"`},
		{name: "mixed", left: Number(1), right: Char('x'), want: "[1 'x']"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantLen := tt.left.Len() + tt.right.Len()
			v := tt.left
			require.NoError(t, v.Join(tt.right, NopEnv{}))
			assert.True(t, v.IsArray())
			assert.Equal(t, wantLen, v.Len())
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func TestValue_JoinKeepsCellOrder(t *testing.T) {
	a := FromArray(mustNumbers(t, shape.Of(2, 2), 1, 2, 3, 4))
	b := FromArray(mustNumbers(t, shape.Of(1, 2), 5, 6))

	require.NoError(t, a.Join(b, NopEnv{}))
	assert.Equal(t, shape.Of(3, 2), a.Shape())
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, a.Array().Numbers())
}

func TestValue_JoinMismatchLeavesReceiver(t *testing.T) {
	a := FromArray(mustNumbers(t, shape.Of(2, 3), 1, 2, 3, 4, 5, 6))
	b := FromArray(mustNumbers(t, shape.Of(2, 4), 1, 2, 3, 4, 5, 6, 7, 8))
	before := a.Clone()

	err := a.Join(b, NopEnv{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrShapeMismatch)
	assert.Contains(t, err.Error(), "[2 3]")
	assert.Contains(t, err.Error(), "[2 4]")
	assert.True(t, before.Equal(a))
}

func TestValue_JoinScalarBroadcastsToCellShape(t *testing.T) {
	tests := []struct {
		name      string
		left      Value
		right     Value
		wantShape shape.Shape
		want      string
	}{
		{
			name:      "scalar onto matrix",
			left:      Number(9),
			right:     FromArray(mustNumbers(t, shape.Of(2, 3), 1, 2, 3, 4, 5, 6)),
			wantShape: shape.Of(3, 3),
			want:      "[[9 9 9] [1 2 3] [4 5 6]]",
		},
		{
			name:      "matrix then scalar",
			left:      FromArray(mustNumbers(t, shape.Of(2, 2), 1, 2, 3, 4)),
			right:     Number(0),
			wantShape: shape.Of(3, 2),
			want:      "[[1 2] [3 4] [0 0]]",
		},
		{
			name:      "char onto rank 3",
			left:      Char('x'),
			right:     FromArray(mustNumbers(t, shape.Of(1, 1, 2), 1, 2)),
			wantShape: shape.Of(2, 1, 2),
			want:      "[[['x' 'x']] [[1 2]]]",
		},
		{
			name:      "scalar onto empty matrix",
			left:      Number(5),
			right:     FromArray(mustNumbers(t, shape.Of(0, 2))),
			wantShape: shape.Of(1, 2),
			want:      "[[5 5]]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantLen := tt.left.Len() + tt.right.Len()
			v := tt.left
			require.NoError(t, v.Join(tt.right, NopEnv{}))
			assert.Equal(t, wantLen, v.Len())
			assert.Equal(t, tt.wantShape, v.Shape())
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func TestValue_ForceLength(t *testing.T) {
	v := Number(4)
	require.NoError(t, v.ForceLength(3))
	assert.Equal(t, "[4 4 4]", v.String())

	m := FromArray(mustNumbers(t, shape.Of(2, 2), 1, 2, 3, 4))
	require.NoError(t, m.ForceLength(5))
	assert.Equal(t, shape.Of(5, 2), m.Shape())
	assert.Equal(t, []float64{1, 2, 3, 4, 1, 2, 3, 4, 1, 2}, m.Array().Numbers())

	require.NoError(t, m.ForceLength(1))
	assert.Equal(t, "[[1 2]]", m.String())
}

func TestValue_Cell(t *testing.T) {
	m := FromArray(mustNumbers(t, shape.Of(2, 2), 1, 2, 3, 4))
	c, err := m.Cell(1)
	require.NoError(t, err)
	assert.Equal(t, "[3 4]", c.String())

	_, err = m.Cell(2)
	assert.ErrorIs(t, err, ErrIndex)

	s, err := Number(9).Cell(0)
	require.NoError(t, err)
	assert.Equal(t, Number(9), s)

	_, err = Number(9).Cell(1)
	assert.ErrorIs(t, err, ErrIndex)
}

func TestValue_CellIsIndependentCopy(t *testing.T) {
	m := FromArray(mustNumbers(t, shape.Of(2, 2), 1, 2, 3, 4))
	c, err := m.Cell(0)
	require.NoError(t, err)

	c.Reverse()
	assert.Equal(t, []float64{1, 2, 3, 4}, m.Array().Numbers())
}

func TestCompare_KindOrder(t *testing.T) {
	assert.Negative(t, Compare(Number(100), Char('a')))
	assert.Negative(t, Compare(Char('z'), FromArray(FromNumbers())))
	assert.Negative(t, Compare(FromArray(FromNumbers(9)), FromArray(mustNumbers(t, shape.Of(1, 1), 0))))
	assert.Zero(t, Compare(Text("abc"), Text("abc")))
	assert.Positive(t, Compare(Text("abd"), Text("abc")))
}
