// Package main provides the glyph CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/glyph/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
