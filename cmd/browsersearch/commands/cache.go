package commands

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var errNoCache = errors.New("no cache configured (set cache_dir)")

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the warm-start cache",
	}
	cmd.AddCommand(newCacheStatsCmd(), newCacheClearCmd())
	return cmd
}

func newCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print cache entry count, hits and size",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			if a.cache == nil {
				return errNoCache
			}

			st, err := a.cache.Stats(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Directory: %s\n", a.config.CacheDir)
			fmt.Fprintf(out, "Entries: %d\n", st.Entries)
			fmt.Fprintf(out, "Hits: %d\n", st.TotalHits)
			fmt.Fprintf(out, "Size: %s\n", humanize.Bytes(uint64(st.SizeBytes)))
			return nil
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			if a.cache == nil {
				return errNoCache
			}

			if err := a.cache.Clear(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared")
			return nil
		},
	}
}
