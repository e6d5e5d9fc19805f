package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for fsearch
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fsearch",
		Short: "Concurrent file search by name pattern",
		Long: `fsearch walks a directory tree with a bounded pool of workers and
streams every file whose name matches a glob pattern.

Searches can be capped, throttled, timed out or interrupted; matches found
before the stop are always delivered.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.AddCommand(NewSearchCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
