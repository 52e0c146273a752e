package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewSeedCmd creates and returns the seed subcommand for the dirlist CLI.
// It generates a regular directory tree for listing and benchmarking.
func NewSeedCmd() *cobra.Command {
	var (
		outputPath string
		depth      int
		dirs       int
		files      int
		symlinks   bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate a test directory tree",
		Long: `Generate a directory tree for testing and benchmarking dirlist.

Every directory down to --depth gets --dirs subdirectories named dirNN and
--files files named fileNN.json. Each file contains a single UUID line.
With --symlinks, every leaf directory also gets a link named "up" that
points back at its parent, so listers that follow links would loop.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if depth < 0 || dirs < 0 || files < 0 {
				return fmt.Errorf("depth, dirs and files must be non-negative")
			}
			if verbose {
				fmt.Fprintf(cmd.OutOrStdout(), "Generating tree in %s (depth %d, %d dirs, %d files per level)\n", outputPath, depth, dirs, files)
			}
			created, err := seedTree(outputPath, depth, dirs, files, symlinks)
			if err != nil {
				return err
			}
			if verbose {
				fmt.Fprintf(cmd.OutOrStdout(), "Successfully created %d entries\n", created)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Path to output directory (required)")
	cmd.Flags().IntVarP(&depth, "depth", "d", 3, "Levels of subdirectories")
	cmd.Flags().IntVar(&dirs, "dirs", 4, "Subdirectories per directory")
	cmd.Flags().IntVar(&files, "files", 8, "Files per directory")
	cmd.Flags().BoolVar(&symlinks, "symlinks", false, "Add parent links to leaf directories")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	cmd.MarkFlagRequired("output")

	return cmd
}

// seedTree fills root and returns how many entries it created below root.
func seedTree(root string, depth, dirs, files int, symlinks bool) (int, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	created := 0
	for i := range files {
		p := filepath.Join(root, fmt.Sprintf("file%02d.json", i))
		if err := os.WriteFile(p, []byte(uuid.NewString()+"\n"), 0644); err != nil {
			return created, fmt.Errorf("failed to write file %s: %w", p, err)
		}
		created++
	}

	if depth == 0 {
		if symlinks {
			link := filepath.Join(root, "up")
			if err := os.Symlink("..", link); err != nil {
				return created, fmt.Errorf("failed to create link %s: %w", link, err)
			}
			created++
		}
		return created, nil
	}

	for i := range dirs {
		n, err := seedTree(filepath.Join(root, fmt.Sprintf("dir%02d", i)), depth-1, dirs, files, symlinks)
		created += n + 1
		if err != nil {
			return created, err
		}
	}
	return created, nil
}
