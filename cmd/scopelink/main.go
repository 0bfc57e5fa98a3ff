package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set via -ldflags at build time; "dev" otherwise.
var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "scopelink",
		Short:   "scopelink - scope-hoisting bundle linker",
		Long:    "scopelink merges a module graph's chunks into flat, scope-hoisted bundles, renaming conflicting identifiers and resolving imports and exports across module and chunk boundaries.",
		Version: version,
	}

	rootCmd.AddCommand(linkCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("scopelink version %s\n", version)
		},
	}
}
