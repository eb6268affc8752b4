// Package config provides configuration management for the glyph CLI.
//
// Settings are layered, lowest to highest precedence: built-in defaults,
// the project's glyph.yaml, GLYPH_ environment variables, and explicitly
// set command-line flags.
package config

import (
	sharedcfg "github.com/leapstack-labs/glyph/internal/config"
)

// Config holds all CLI configuration options.
type Config struct {
	ProjectRoot  string            `koanf:"-"`
	Verbose      bool              `koanf:"verbose"`
	OutputFormat string            `koanf:"output"`
	LogLevel     string            `koanf:"log_level"`
	MainFile     string            `koanf:"main"`
	TestsDir     string            `koanf:"tests_dir"`
	StatePath    string            `koanf:"state_path"`
	HistoryFile  string            `koanf:"history_file"`
	MaxWorkers   int               `koanf:"max_workers"`
	Inputs       map[string]string `koanf:"inputs"` // global name -> YAML file
}

// Default configuration values - uses shared defaults from internal/config
const (
	DefaultMainFile    = sharedcfg.DefaultMainFile
	DefaultTestsDir    = sharedcfg.DefaultTestsDir
	DefaultStateFile   = sharedcfg.DefaultStateFile
	DefaultHistoryFile = sharedcfg.DefaultHistoryFile
	DefaultOutput      = sharedcfg.DefaultOutput
	DefaultLogLevel    = sharedcfg.DefaultLogLevel
	DefaultMaxWorkers  = sharedcfg.DefaultMaxWorkers
)

// Output modes accepted by the output setting.
var OutputModes = []string{"auto", "text", "json", "markdown", "table"}

// Default returns a Config populated with defaults, relative to the
// current directory.
func Default() *Config {
	return &Config{
		ProjectRoot:  ".",
		OutputFormat: DefaultOutput,
		LogLevel:     DefaultLogLevel,
		MainFile:     DefaultMainFile,
		TestsDir:     DefaultTestsDir,
		StatePath:    DefaultStateFile,
		HistoryFile:  DefaultHistoryFile,
		MaxWorkers:   DefaultMaxWorkers,
	}
}
