// Package config holds defaults shared by the CLI and the script runner.
package config

// Default configuration values.
const (
	DefaultMainFile    = "main.star"
	DefaultTestsDir    = "tests"
	DefaultStateFile   = ".glyph/state.db"
	DefaultHistoryFile = ".glyph/history"
	DefaultOutput      = "auto" // TTY=text, non-TTY=markdown
	DefaultLogLevel    = "warn"
	DefaultMaxWorkers  = 4
)

// Project file conventions.
const (
	ScriptExt      = ".star"
	TestFileSuffix = "_test.star"
	TestFuncPrefix = "test_"
)

// ConfigFileNames lists the project config files, in lookup order.
var ConfigFileNames = []string{"glyph.yaml", "glyph.yml"}

// WorkersOrDefault returns n, or DefaultMaxWorkers when n is not positive.
func WorkersOrDefault(n int) int {
	if n <= 0 {
		return DefaultMaxWorkers
	}
	return n
}
