package runner

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leapstack-labs/glyph/internal/state"
	"github.com/leapstack-labs/glyph/internal/testutil"
	"github.com/leapstack-labs/glyph/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunner(t *testing.T, cfg Config) *Runner {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = testutil.NewTestLogger(t)
	}
	r, err := New(cfg)
	require.NoError(t, err)
	return r
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func strs(values []value.Value) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}

func TestRunner_Eval(t *testing.T) {
	r := newTestRunner(t, Config{Inputs: map[string]value.Value{
		"grid": value.FromArray(value.FromNumbers(3, 1, 2)),
	}})

	tests := []struct {
		expr string
		want []string
	}{
		{"arr.sort(grid)", []string{"[1 2 3]"}},
		{"arr.range(arr.shape(grid))", []string{"[0 1 2]"}},
		{"emit(1)", []string{"1"}},
		{"[emit(1), emit(2)][0]", []string{"1", "2"}},
		{`"ab"`, []string{`"ab"`}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			res, err := r.Eval(context.Background(), tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, strs(res.Outputs))
		})
	}
}

func TestRunner_Eval_Repr(t *testing.T) {
	r := newTestRunner(t, Config{})
	res, err := r.Eval(context.Background(), "arr.sort")
	require.NoError(t, err)
	assert.Empty(t, res.Outputs)
	assert.Equal(t, "<built-in function sort>", res.Repr)
}

func TestRunner_Eval_Error(t *testing.T) {
	r := newTestRunner(t, Config{})
	_, err := r.Eval(context.Background(), "arr.range(-1)")
	require.Error(t, err)
	assert.ErrorIs(t, err, value.ErrRangeShape)
}

func TestRunner_EvalAll(t *testing.T) {
	r := newTestRunner(t, Config{MaxWorkers: 2})

	results, err := r.EvalAll(context.Background(), []string{"arr.range(2)", "arr.reverse([1, 2])", "emit(7)"})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, []string{"[0 1]"}, strs(results[0].Outputs))
	assert.Equal(t, []string{"[2 1]"}, strs(results[1].Outputs))
	assert.Equal(t, []string{"7"}, strs(results[2].Outputs))

	_, err = r.EvalAll(context.Background(), []string{"1", "nope"})
	assert.Error(t, err)
}

func TestRunner_RunFile(t *testing.T) {
	var stdout bytes.Buffer
	r := newTestRunner(t, Config{Stdout: &stdout})
	path := writeFile(t, t.TempDir(), "main.star", `
xs = arr.range(4)
emit(arr.reverse(xs))
print("sorted", arr.show(arr.sort_down(xs)))
emit(arr.force_length(xs, 2))
`)

	res, err := r.RunFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, res.Name)
	assert.Equal(t, []string{"[3 2 1 0]", "[0 1]"}, strs(res.Outputs))
	assert.Equal(t, []string{"sorted [3 2 1 0]"}, res.Printed)
	assert.Equal(t, "sorted [3 2 1 0]\n", stdout.String())
}

func TestRunner_RunFile_Missing(t *testing.T) {
	r := newTestRunner(t, Config{})
	_, err := r.RunFile(context.Background(), filepath.Join(t.TempDir(), "nope.star"))
	assert.ErrorContains(t, err, "failed to read script")
}

func TestRunner_RunSource_Cancelled(t *testing.T) {
	r := newTestRunner(t, Config{})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := r.RunSource(ctx, "spin.star", "while True:\n    pass\n")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// The pooled thread is usable again.
	res, err := r.Eval(context.Background(), "1 + 1")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, strs(res.Outputs))
}

func TestRunner_Interactive(t *testing.T) {
	r := newTestRunner(t, Config{})
	ctx := context.Background()

	res, err := r.Interactive(ctx, "xs = arr.range(3)")
	require.NoError(t, err)
	assert.Empty(t, res.Outputs)

	_, err = r.Interactive(ctx, "def double(a):\n    return arr.join(a, a)\n")
	require.NoError(t, err)

	res, err = r.Interactive(ctx, "double(xs)")
	require.NoError(t, err)
	assert.Equal(t, []string{"[0 1 2 0 1 2]"}, strs(res.Outputs))

	// Reassignment replaces the earlier definition.
	_, err = r.Interactive(ctx, "xs = arr.range(1)")
	require.NoError(t, err)
	res, err = r.Interactive(ctx, "xs")
	require.NoError(t, err)
	assert.Equal(t, []string{"[0]"}, strs(res.Outputs))
}

func TestLoadInputs(t *testing.T) {
	dir := t.TempDir()
	grid := writeFile(t, dir, "grid.yaml", "- [1, 2]\n- [3, 4]\n")
	name := writeFile(t, dir, "name.yaml", "glyph\n")

	inputs, err := LoadInputs(map[string]string{"grid": grid, "name": name})
	require.NoError(t, err)
	assert.Equal(t, "[[1 2] [3 4]]", inputs["grid"].String())
	assert.Equal(t, `"glyph"`, inputs["name"].String())

	_, err = LoadInputs(map[string]string{"missing": filepath.Join(dir, "none.yaml")})
	assert.ErrorContains(t, err, "input missing")
}

func TestNew_InputConflict(t *testing.T) {
	_, err := New(Config{Inputs: map[string]value.Value{"emit": value.Number(1)}})
	assert.Error(t, err)
}

func TestDiscoverTests(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b_test.star", "")
	writeFile(t, dir, "nested/a_test.star", "")
	writeFile(t, dir, "helper.star", "")
	writeFile(t, dir, "notes_test.txt", "")

	files, err := DiscoverTests(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "b_test.star"),
		filepath.Join(dir, "nested", "a_test.star"),
	}, files)

	_, err = DiscoverTests(filepath.Join(dir, "absent"))
	assert.Error(t, err)
}

func TestRunner_Test(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sort_test.star", `
def test_sort():
    assert_eq(arr.sort([3, 1, 2]), [1, 2, 3])

def test_sort_down():
    assert_eq(arr.sort_down([3, 1, 2]), [1, 2, 3], msg="descending")

def test_with_arg(x):
    fail("never called")

def helper():
    fail("never called")
`)
	writeFile(t, dir, "join_test.star", `
def test_join():
    print("joining")
    assert_eq(arr.join([1], [2]), [1, 2])

def test_join_mismatch():
    arr.join([[1, 2]], [1, 2, 3])
`)
	writeFile(t, dir, "broken_test.star", "def test_x(:\n")

	store := state.NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(":memory:"))
	require.NoError(t, store.Migrate())
	t.Cleanup(func() { _ = store.Close() })

	r := newTestRunner(t, Config{MaxWorkers: 2, Store: store})
	report, err := r.Test(context.Background(), []string{dir})
	require.NoError(t, err)

	var names []string
	for _, c := range report.Cases {
		names = append(names, filepath.Base(c.File)+":"+c.Name)
	}
	assert.Equal(t, []string{
		"broken_test.star:" + LoadCase,
		"join_test.star:test_join",
		"join_test.star:test_join_mismatch",
		"sort_test.star:test_sort",
		"sort_test.star:test_sort_down",
	}, names)

	assert.Equal(t, 2, report.Passed)
	assert.Equal(t, 3, report.Failed)
	assert.False(t, report.OK())

	byName := map[string]CaseResult{}
	for _, c := range report.Cases {
		byName[c.Name] = c
	}
	assert.Equal(t, []string{"joining"}, byName["test_join"].Printed)
	assert.Contains(t, byName["test_join_mismatch"].Message, "cannot join arrays of shapes [1 2] and [3]")
	assert.Contains(t, byName["test_sort_down"].Message, "descending: got [3 2 1], want [1 2 3]")
	assert.Contains(t, byName[LoadCase].Message, "broken_test.star")

	require.NotEmpty(t, report.RunID)
	run, err := store.GetRun(report.RunID)
	require.NoError(t, err)
	assert.Equal(t, state.RunStatusFailed, run.Status)
	assert.Equal(t, "3 of 5 cases failed", run.Error)

	cases, err := store.ListCases(report.RunID)
	require.NoError(t, err)
	assert.Len(t, cases, 5)
}

func TestRunner_Test_AllPass(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "ok_test.star", "def test_ok():\n    assert_eq(arr.range(2), [0, 1])\n")

	r := newTestRunner(t, Config{})
	report, err := r.Test(context.Background(), []string{file})
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, 1, report.Passed)
	assert.Empty(t, report.RunID, "no store configured")
}

func TestRunner_Test_BadPath(t *testing.T) {
	r := newTestRunner(t, Config{})
	_, err := r.Test(context.Background(), []string{filepath.Join(t.TempDir(), "nope")})
	assert.ErrorContains(t, err, "test path")
}

func TestRunner_Test_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "spin_test.star", "def test_spin():\n    while True:\n        pass\n")

	r := newTestRunner(t, Config{})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := r.Test(ctx, []string{dir})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
