// Package commands holds the browsersearch command tree.
package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd(version, buildTime string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "browsersearch",
		Short: "Search browser bookmarks and history",
		Long: `browsersearch reads the bookmarks and history of the locally installed
browsers, merges them and prints the best matches for a query.

Results go to stdout as an Alfred script filter document. Diagnostics go
to stderr.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newSearchCmd(),
		newBookmarksCmd(),
		newHistoryCmd(),
		newSourcesCmd(),
		newServeCmd(version),
		newCacheCmd(),
		newVersionCmd(version, buildTime),
	)

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (json, yaml or toml)")
	rootCmd.PersistentFlags().String("env-file", "", "dotenv file loaded before the environment is read")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-file", "", "append logs to this file instead of stderr")
	rootCmd.PersistentFlags().Bool("pretty", false, "human readable log output")

	return rootCmd
}
