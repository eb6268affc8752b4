// Package state records test runs and their case results in SQLite.
package state

import "time"

// RunStatus is the lifecycle state of a run.
type RunStatus string

// Run statuses.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusPassed    RunStatus = "passed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// Run is one invocation of the test command.
type Run struct {
	ID          string
	Status      RunStatus
	StartedAt   time.Time
	CompletedAt *time.Time
	Error       string
}

// CaseResult is the outcome of a single test function.
type CaseResult struct {
	RunID    string
	File     string
	Name     string
	Passed   bool
	Message  string
	Duration time.Duration
}

// Store persists runs and case results.
type Store interface {
	Open(path string) error
	Close() error
	Migrate() error

	CreateRun() (*Run, error)
	CompleteRun(id string, status RunStatus, errMsg string) error
	GetRun(id string) (*Run, error)
	ListRuns(limit int) ([]*Run, error)

	RecordCase(c *CaseResult) error
	ListCases(runID string) ([]*CaseResult, error)
}

var _ Store = (*SQLiteStore)(nil)
