package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dshills/browser-search/internal/browser"
)

func newSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List enabled browsers found on this machine",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			found := a.registry.Discover()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SOURCE\tKEY\tBOOKMARKS\tHISTORY")
			for _, src := range browser.Sources(found) {
				paths := found[src]
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", src.Name(), src.Key(), describe(paths.Bookmarks), describe(paths.History))
			}
			return w.Flush()
		},
	}
}

func describe(path string) string {
	if path == "" {
		return "-"
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return path
	}
	return fmt.Sprintf("%s (%s)", path, humanize.Bytes(uint64(info.Size())))
}
