package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindConfigFile(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  string
	}{
		{"none", nil, ""},
		{"yaml", []string{"glyph.yaml"}, "glyph.yaml"},
		{"yml", []string{"glyph.yml"}, "glyph.yml"},
		{"yaml wins", []string{"glyph.yml", "glyph.yaml"}, "glyph.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.files {
				require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("verbose: true\n"), 0600))
			}

			got := FindConfigFile(dir)
			if tt.want == "" {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, filepath.Join(dir, tt.want), got)
		})
	}
}

func TestFindConfigFile_IgnoresDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "glyph.yaml"), 0750))
	assert.Empty(t, FindConfigFile(dir))
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "glyph.yml"), []byte("verbose: true\n"), 0600))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0750))

	assert.Equal(t, root, FindProjectRoot(nested))
	assert.Equal(t, root, FindProjectRoot(root))
	assert.Empty(t, FindProjectRoot(t.TempDir()))
}

func TestWorkersOrDefault(t *testing.T) {
	assert.Equal(t, DefaultMaxWorkers, WorkersOrDefault(0))
	assert.Equal(t, DefaultMaxWorkers, WorkersOrDefault(-2))
	assert.Equal(t, 7, WorkersOrDefault(7))
}
