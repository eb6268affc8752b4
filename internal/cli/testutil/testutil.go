// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/glyph/internal/cli/output"
)

// Fixture file contents written by SetupTestProject.
const (
	ProjectConfig = `inputs:
  grid: data/grid.yaml
`

	GridInput = `[[3, 1], [2, 4]]
`

	MainScript = `r = arr.reverse(grid)
emit(r, arr.sort(r))
print("rows:", arr.len(grid))
`

	PassingTests = `def test_shape():
    assert_eq(arr.shape(grid), [2, 2])

def test_sort():
    assert_eq(arr.sort([3, 1, 2]), [1, 2, 3])
`

	FailingTests = `def test_range():
    assert_eq(arr.range(3), [0, 1, 2])

def test_wrong():
    assert_eq(arr.len(grid), 3, "row count")
`
)

// SetupTestProject creates a temporary glyph project with a config file,
// one input, a main script and two test files. One test case fails.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	WriteFile(t, root, "glyph.yaml", ProjectConfig)
	WriteFile(t, root, filepath.Join("data", "grid.yaml"), GridInput)
	WriteFile(t, root, "main.star", MainScript)
	WriteFile(t, root, filepath.Join("tests", "pass_test.star"), PassingTests)
	WriteFile(t, root, filepath.Join("tests", "fail_test.star"), FailingTests)
	return root
}

// WriteFile writes content to rel under root, creating directories.
func WriteFile(t *testing.T, root, rel, content string) string {
	t.Helper()

	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", rel, err)
	}
	return path
}

// Chdir changes the working directory for the duration of the test.
func Chdir(t *testing.T, dir string) {
	t.Helper()

	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
func NewTestRenderer(mode output.OutputMode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// Output returns the captured stdout.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the captured stderr.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and empty headers.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	for i, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
