package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/leapstack-labs/glyph/internal/config"
	starctx "github.com/leapstack-labs/glyph/internal/starlark"
	"github.com/leapstack-labs/glyph/internal/state"
	"go.starlark.net/starlark"
	"golang.org/x/sync/errgroup"
)

// LoadCase names the pseudo-case reported when a test file fails to load.
const LoadCase = "(load)"

// CaseResult is the outcome of one test function.
type CaseResult struct {
	File     string
	Name     string
	Passed   bool
	Message  string
	Duration time.Duration
	Printed  []string
}

// TestReport summarizes a test run.
type TestReport struct {
	RunID    string // empty when no store is configured
	Cases    []CaseResult
	Passed   int
	Failed   int
	Duration time.Duration
}

// OK reports whether every case passed.
func (r *TestReport) OK() bool { return r.Failed == 0 }

// DiscoverTests returns the test files under dir, sorted.
func DiscoverTests(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), config.TestFileSuffix) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover tests in %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// expandPaths replaces directories in paths with the test files they hold.
func expandPaths(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("test path: %w", err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		found, err := DiscoverTests(p)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

// Test runs the test functions in paths. Directories are searched for
// test files. Files run concurrently; within a file, every zero-argument
// function whose name starts with test_ runs in name order.
func (r *Runner) Test(ctx context.Context, paths []string) (*TestReport, error) {
	start := time.Now()
	files, err := expandPaths(paths)
	if err != nil {
		return nil, err
	}

	report := &TestReport{}
	var run *state.Run
	if r.store != nil {
		run, err = r.store.CreateRun()
		if err != nil {
			return nil, fmt.Errorf("failed to record run: %w", err)
		}
		report.RunID = run.ID
	}

	r.logger.Info("running tests", slog.Int("files", len(files)), slog.String("run_id", report.RunID))

	perFile := make([][]CaseResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.maxWorkers)
	for i, file := range files {
		g.Go(func() error {
			cases, err := r.testFile(gctx, file)
			perFile[i] = cases
			return err
		})
	}
	runErr := g.Wait()

	for _, cases := range perFile {
		for _, c := range cases {
			if c.Passed {
				report.Passed++
			} else {
				report.Failed++
			}
			report.Cases = append(report.Cases, c)
			if run != nil {
				if err := r.store.RecordCase(&state.CaseResult{
					RunID:    run.ID,
					File:     c.File,
					Name:     c.Name,
					Passed:   c.Passed,
					Message:  c.Message,
					Duration: c.Duration,
				}); err != nil {
					r.logger.Warn("failed to record case", slog.String("name", c.Name), slog.Any("error", err))
				}
			}
		}
	}
	report.Duration = time.Since(start)

	if run != nil {
		status, msg := state.RunStatusPassed, ""
		switch {
		case runErr != nil:
			status, msg = state.RunStatusCancelled, runErr.Error()
		case !report.OK():
			status, msg = state.RunStatusFailed, fmt.Sprintf("%d of %d cases failed", report.Failed, len(report.Cases))
		}
		if err := r.store.CompleteRun(run.ID, status, msg); err != nil {
			r.logger.Warn("failed to complete run", slog.String("id", run.ID), slog.Any("error", err))
		}
	}

	if runErr != nil {
		return report, runErr
	}
	return report, nil
}

// testFile loads one file and runs its test functions. Only cancellation
// is returned as an error; script failures become failed cases.
func (r *Runner) testFile(ctx context.Context, file string) ([]CaseResult, error) {
	src, err := os.ReadFile(file) //nolint:gosec // G304: path is a discovered test file
	if err != nil {
		return []CaseResult{{File: file, Name: LoadCase, Message: err.Error()}}, nil
	}

	out := r.newOutput()
	thread := r.pool.Get(file, out)
	defer r.pool.Put(thread)

	start := time.Now()
	defs, err := r.exec.Exec(ctx, thread, file, src)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s: %w", file, ctx.Err())
		}
		return []CaseResult{{File: file, Name: LoadCase, Message: err.Error(), Duration: time.Since(start), Printed: out.Printed}}, nil
	}

	var names []string
	for name, v := range defs {
		fn, ok := v.(*starlark.Function)
		if ok && strings.HasPrefix(name, config.TestFuncPrefix) && fn.NumParams() == 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	cases := make([]CaseResult, 0, len(names))
	for _, name := range names {
		caseOut := r.newOutput()
		starctx.Attach(thread, caseOut)

		r.logger.Debug("running test", slog.String("file", file), slog.String("name", name))
		start := time.Now()
		_, err := r.exec.Call(ctx, thread, defs[name].(*starlark.Function))
		c := CaseResult{File: file, Name: name, Passed: err == nil, Duration: time.Since(start), Printed: caseOut.Printed}
		if err != nil {
			if ctx.Err() != nil {
				return cases, fmt.Errorf("%s: %w", file, ctx.Err())
			}
			c.Message = failureMessage(err)
		}
		cases = append(cases, c)
	}
	return cases, nil
}

// failureMessage prefers the innermost Starlark message over the
// backtrace-laden outer error.
func failureMessage(err error) string {
	var evalErr *starlark.EvalError
	if errors.As(err, &evalErr) {
		return evalErr.Msg
	}
	return err.Error()
}
