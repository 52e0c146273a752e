package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dendrascience/dirlist/version"
)

// NewRootCmd creates and returns the root cobra command for the dirlist CLI.
// It sets up all subcommands, command groups, and basic configuration.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dirlist",
		Short: "dirlist - Parallel recursive directory listing",
		Long: `dirlist lists directory trees with a bounded pool of workers.

Directories are read concurrently and every path below the root is
collected exactly once. Symbolic links are never followed.

Use subcommands to perform different operations:
  - list: Print every path below a directory
  - count: Count entries in a directory tree
  - bench: Compare listing strategies on a tree
  - seed: Generate a test directory tree
  - version: Print version and build information`,
		Version: version.GetFullVersion(),
	}

	groupListing := "listing"
	groupUtilities := "utilities"

	// Add command groups for better organization
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupListing,
		Title: "Listing Operations",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupUtilities,
		Title: "Utility Commands",
	})

	listCmd := NewListCmd()
	countCmd := NewCountCmd()
	benchCmd := NewBenchCmd()
	seedCmd := NewSeedCmd()
	versionCmd := NewVersionCmd()

	listCmd.GroupID = groupListing
	countCmd.GroupID = groupListing
	benchCmd.GroupID = groupUtilities
	seedCmd.GroupID = groupUtilities
	versionCmd.GroupID = groupUtilities

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(countCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}
