package starlark

import (
	"context"
	"sync"
	"testing"

	"github.com/leapstack-labs/glyph/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.starlark.net/starlark"
)

func TestThreadPool_GetPut(t *testing.T) {
	pool := NewThreadPool(5)

	out := &Output{}
	thread := pool.Get("test1", out)
	require.NotNil(t, thread, "Get returned nil")
	assert.Equal(t, "test1", thread.Name, "thread.Name")
	assert.Same(t, out, outputOf(thread))

	pool.Put(thread)
	assert.Equal(t, 1, pool.Size(), "pool size after put")
	assert.Nil(t, outputOf(thread), "output detached on put")

	// Get it again - should be reused
	other := &Output{}
	thread2 := pool.Get("test2", other)
	assert.Equal(t, 0, pool.Size(), "pool size after get")
	assert.Equal(t, "test2", thread2.Name, "thread.Name after reuse")
	assert.Same(t, other, outputOf(thread2))
}

func TestThreadPool_MaxSize(t *testing.T) {
	pool := NewThreadPool(2)

	threads := make([]*starlark.Thread, 3)
	for i := 0; i < 3; i++ {
		threads[i] = pool.Get("test", nil)
	}

	for _, thread := range threads {
		pool.Put(thread)
	}

	// Pool should only have 2 threads (max size)
	assert.Equal(t, 2, pool.Size(), "pool size should be max (2)")
}

func TestThreadPool_DefaultSize(t *testing.T) {
	pool := NewThreadPool(0)

	for i := 0; i < 5; i++ {
		pool.Put(pool.Get("test", nil))
	}

	assert.NotEqual(t, 0, pool.Size(), "pool size should not be 0 after puts")
}

func TestThreadPool_Concurrent(t *testing.T) {
	pool := NewThreadPool(10)
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pool.Put(pool.Get("concurrent", nil))
		}()
	}

	wg.Wait()

	assert.LessOrEqual(t, pool.Size(), 10, "pool size should not exceed max of 10")
}

func TestThreadPool_ReusedThreadIsUncancelled(t *testing.T) {
	pool := NewThreadPool(1)
	thread := pool.Get("cancelled", nil)
	thread.Cancel("stop")
	pool.Put(thread)

	exec := newTestContext(t, nil)
	reused := pool.Get("again", &Output{})
	got, err := exec.EvalExpr(context.Background(), reused, "again", "1 + 1")
	require.NoError(t, err)
	assert.Equal(t, "2", got.String())
}

func TestParallelExecutor_Execute(t *testing.T) {
	exec := newTestContext(t, map[string]value.Value{
		"x": value.Number(10),
		"y": value.Number(20),
	})
	executor := NewParallelExecutor(5, exec)

	tasks := []EvalTask{
		{Name: "task1", Expr: "x + 1"},
		{Name: "task2", Expr: "y + 2"},
		{Name: "task3", Expr: "arr.reverse([x, y])"},
		{Name: "task4", Expr: "emit(x)"},
	}

	results := executor.Execute(context.Background(), tasks)

	require.Len(t, results, 4, "expected 4 results")
	for i, result := range results {
		require.NoError(t, result.Error, "task %d error", i)
	}

	// Order is preserved
	assert.True(t, results[0].Value.Equal(value.Number(11)))
	assert.True(t, results[1].Value.Equal(value.Number(22)))
	assert.Equal(t, "[20 10]", results[2].Value.String())
	assert.False(t, results[3].HasValue, "emit returns None")
	require.Len(t, results[3].Output.Values, 1)
	assert.True(t, results[3].Output.Values[0].Equal(value.Number(10)))
}

func TestParallelExecutor_ExecuteWithErrors(t *testing.T) {
	executor := NewParallelExecutor(2, newTestContext(t, nil))

	tasks := []EvalTask{
		{Name: "valid", Expr: "1 + 1"},
		{Name: "invalid", Expr: "undefined_var"},
	}

	results := executor.Execute(context.Background(), tasks)

	require.Len(t, results, 2, "expected 2 results")
	assert.NoError(t, results[0].Error, "task 0 should succeed")
	assert.Error(t, results[1].Error, "task 1 should fail with undefined variable")
}

func TestParallelExecutor_CancelledContext(t *testing.T) {
	executor := NewParallelExecutor(2, newTestContext(t, nil))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := executor.Execute(ctx, []EvalTask{{Name: "late", Expr: "1"}})

	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Error, context.Canceled)
}

func newTestContext(t *testing.T, inputs map[string]value.Value) *ExecutionContext {
	t.Helper()
	exec, err := NewExecutionContext(inputs)
	require.NoError(t, err)
	return exec
}
