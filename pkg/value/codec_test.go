package value

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/leapstack-labs/glyph/pkg/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestFromGo(t *testing.T) {
	tests := []struct {
		name  string
		in    any
		want  string
		shape shape.Shape
	}{
		{name: "float", in: 2.5, want: "2.5", shape: shape.Shape{}},
		{name: "int", in: 3, want: "3", shape: shape.Shape{}},
		{name: "bool", in: true, want: "1", shape: shape.Shape{}},
		{name: "string", in: "ab", want: `"ab"`, shape: shape.Of(2)},
		{name: "list", in: []any{1, 2, 3}, want: "[1 2 3]", shape: shape.Of(3)},
		{name: "matrix", in: []any{[]any{1, 2}, []any{3, 4}}, want: "[[1 2] [3 4]]", shape: shape.Of(2, 2)},
		{name: "ragged", in: []any{[]any{1}, []any{2, 3}}, want: "[[1] [2 3]]", shape: shape.Of(2)},
		{name: "strings", in: []string{"ab", "cd"}, want: `["ab" "cd"]`, shape: shape.Of(2, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromGo(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
			assert.True(t, tt.shape.Equal(got.Shape()), "shape %s", got.Shape())
		})
	}
}

func TestFromGo_Errors(t *testing.T) {
	_, err := FromGo(nil)
	require.Error(t, err)

	_, err = FromGo(map[string]any{"a": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported type")

	_, err = FromGo([]any{1, nil})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index 1")
}

func TestValue_JSON(t *testing.T) {
	m := FromArray(mustNumbers(t, shape.Of(2, 2), 1, 2, 3, 4))
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `[[1,2],[3,4]]`, string(data))

	data, err = json.Marshal(Text("hey"))
	require.NoError(t, err)
	assert.JSONEq(t, `"hey"`, string(data))

	data, err = json.Marshal(FromArray(FromNumbers(1, math.Inf(-1))))
	require.NoError(t, err)
	assert.JSONEq(t, `[1,"¯∞"]`, string(data))

	var back Value
	require.NoError(t, json.Unmarshal([]byte(`[[1,2],[3,4]]`), &back))
	assert.True(t, m.Equal(back))
}

func TestValue_JSONNonFiniteNumbers(t *testing.T) {
	orig := FromArray(FromNumbers(math.Inf(1), -2, math.Inf(-1), math.NaN()))
	data, err := json.Marshal(orig)
	require.NoError(t, err)
	assert.JSONEq(t, `["∞",-2,"¯∞","NaN"]`, string(data))

	var back Value
	require.NoError(t, json.Unmarshal(data, &back))
	require.True(t, back.Array().IsNumbers(), "non-finite numbers must decode as numbers")
	nums := back.Array().Numbers()
	assert.True(t, math.IsInf(nums[0], 1))
	assert.Equal(t, -2.0, nums[1])
	assert.True(t, math.IsInf(nums[2], -1))
	assert.True(t, math.IsNaN(nums[3]))

	require.NoError(t, json.Unmarshal([]byte(`"NaN"`), &back))
	assert.True(t, back.IsNumber())

	require.NoError(t, json.Unmarshal([]byte(`["ab","NaNa"]`), &back))
	assert.Equal(t, `["ab" "NaNa"]`, back.String())
}

func TestDecodeYAML(t *testing.T) {
	src := `
- [1, 2, 3]
- [4, 5, 6]
`
	v, err := DecodeYAML(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, shape.Of(2, 3), v.Shape())
	assert.True(t, v.Array().IsNumbers())

	_, err = DecodeYAML(strings.NewReader("a: 1\n"))
	require.Error(t, err)
}

func TestValue_YAMLField(t *testing.T) {
	var doc struct {
		Grid Value `yaml:"grid"`
		Name Value `yaml:"name"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("grid: [[1, 2], [3, 4]]\nname: glyph\n"), &doc))
	assert.Equal(t, "[[1 2] [3 4]]", doc.Grid.String())
	assert.Equal(t, `"glyph"`, doc.Name.String())

	out, err := yaml.Marshal(doc.Grid)
	require.NoError(t, err)
	assert.Contains(t, string(out), "- - 1")
}
