package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/browser-search/internal/storage"
)

func newVersionCmd(version, buildTime string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and build information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "browsersearch %s\n", version)
			fmt.Fprintf(out, "Build Time: %s\n", buildTime)
			fmt.Fprintf(out, "Build Mode: %s\n", storage.BuildMode)
			fmt.Fprintf(out, "SQLite Driver: %s\n", storage.DriverName)
		},
	}
}
