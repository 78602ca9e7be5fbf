package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scribehq/scribe/internal/build"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "scribe",
		Short:   "A multi-role blogging service",
		Long:    "Scribe serves posts with human-readable slugs, threaded comments, and role-based authoring.",
		Version: fmt.Sprintf("%s (%s, %s)", build.Version, build.Commit, build.Branch),
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
