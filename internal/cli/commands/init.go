package commands

import (
	"fmt"
	"os"
	"path/filepath"

	sharedcfg "github.com/leapstack-labs/glyph/internal/config"
	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new glyph project",
		Long: `Initialize a new glyph project.

This creates:
  - glyph.yaml configuration file
  - main.star, the script 'glyph run' executes
  - data/scores.yaml, an input bound as the global 'scores'
  - tests/scores_test.star with example test cases`,
		Example: `  # Initialize in current directory
  glyph init

  # Initialize in a new directory
  glyph init my-project

  # Overwrite existing files
  glyph init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(cmd, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, force bool) error {
	r := NewCommandContextWithoutRunner(cmd).Renderer

	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, sharedcfg.ConfigFileNames[0])
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", sharedcfg.ConfigFileNames[0])
	}

	if err := copyTemplate("project", dir, force); err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	files, _ := listTemplateFiles("project")
	r.Header(2, "Created")
	for _, f := range files {
		r.Println("  " + f)
	}

	r.Println("")
	r.Success("glyph project initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  glyph run       Run main.star")
	r.Println("  glyph test      Run the tests in tests/")
	r.Println("  glyph repl      Start an interactive session")

	return nil
}
