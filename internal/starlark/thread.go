package starlark

import (
	"context"
	"sync"

	"github.com/leapstack-labs/glyph/pkg/value"
	"go.starlark.net/starlark"
)

// ThreadPool manages a pool of Starlark threads for parallel execution.
type ThreadPool struct {
	mu      sync.Mutex
	threads []*starlark.Thread
	maxSize int
}

// NewThreadPool creates a new thread pool with the specified maximum size.
func NewThreadPool(maxSize int) *ThreadPool {
	if maxSize <= 0 {
		maxSize = 10 // default pool size
	}
	return &ThreadPool{
		threads: make([]*starlark.Thread, 0, maxSize),
		maxSize: maxSize,
	}
}

// Get retrieves a thread from the pool or creates a new one, attached
// to out. The thread name is used for error reporting.
func (p *ThreadPool) Get(name string, out *Output) *starlark.Thread {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.threads) > 0 {
		thread := p.threads[len(p.threads)-1]
		p.threads = p.threads[:len(p.threads)-1]
		thread.Name = name
		Attach(thread, out)
		return thread
	}

	return NewThread(name, out)
}

// Put returns a thread to the pool for reuse.
// If the pool is full, the thread is discarded.
func (p *ThreadPool) Put(thread *starlark.Thread) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.threads) < p.maxSize {
		// Clear any state that might leak between uses
		thread.Name = ""
		thread.Uncancel()
		thread.SetLocal(outputKey, nil)
		p.threads = append(p.threads, thread)
	}
}

// Size returns the current number of threads in the pool.
func (p *ThreadPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.threads)
}

// ParallelExecutor evaluates batches of expressions in parallel.
type ParallelExecutor struct {
	pool  *ThreadPool
	exec  *ExecutionContext
	limit int
}

// NewParallelExecutor creates a new parallel executor over shared globals.
// At most maxConcurrency expressions run at once.
func NewParallelExecutor(maxConcurrency int, exec *ExecutionContext) *ParallelExecutor {
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	return &ParallelExecutor{
		pool:  NewThreadPool(maxConcurrency),
		exec:  exec,
		limit: maxConcurrency,
	}
}

// Execute runs multiple evaluations in parallel and collects results in
// task order.
func (e *ParallelExecutor) Execute(ctx context.Context, tasks []EvalTask) []EvalResult {
	results := make([]EvalResult, len(tasks))
	sem := make(chan struct{}, e.limit)
	var wg sync.WaitGroup

	for i, task := range tasks {
		wg.Add(1)
		go func(idx int, t EvalTask) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			out := &Output{}
			thread := e.pool.Get(t.Name, out)
			defer e.pool.Put(thread)

			result, err := e.exec.EvalExpr(ctx, thread, t.Name, t.Expr)
			res := EvalResult{Name: t.Name, Output: out, Error: err}
			if err == nil && result != starlark.None {
				res.Value, res.Error = ToValue(result)
				res.HasValue = res.Error == nil
			}
			results[idx] = res
		}(i, task)
	}

	wg.Wait()
	return results
}

// EvalTask represents a single evaluation task.
type EvalTask struct {
	Name string // Identifier for this task (used for error reporting)
	Expr string // Starlark expression to evaluate
}

// EvalResult represents the result of an evaluation task.
type EvalResult struct {
	Name     string
	Output   *Output
	Value    value.Value
	HasValue bool // false when the expression evaluated to None
	Error    error
}
