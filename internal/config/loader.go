package config

import (
	"os"
	"path/filepath"
)

// MaxUpwardSearchLevels limits how far up the directory tree
// FindProjectRoot looks for a config file.
const MaxUpwardSearchLevels = 10

// FindConfigFile returns the config file in dir, trying ConfigFileNames
// in order. Returns empty string if not found.
func FindConfigFile(dir string) string {
	for _, name := range ConfigFileNames {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// FindProjectRoot walks up from startDir to find a directory containing
// a config file. Returns empty string if none is found within
// MaxUpwardSearchLevels.
func FindProjectRoot(startDir string) string {
	dir := startDir
	for i := 0; i < MaxUpwardSearchLevels; i++ {
		if FindConfigFile(dir) != "" {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return ""
		}
		dir = parent
	}
	return ""
}
