package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/browser-search/internal/alfred"
	"github.com/dshills/browser-search/internal/collector"
	"github.com/dshills/browser-search/internal/searcher"
)

func newSearchCmd() *cobra.Command {
	return newQueryCmd(collector.KindAll, "search [query]", "Search bookmarks and history",
		`Search the bookmarks and history of every enabled browser.

Terms separated by "&" must all match; terms separated by "|" may match
any. An empty query lists everything.`)
}

func newBookmarksCmd() *cobra.Command {
	return newQueryCmd(collector.KindBookmarks, "bookmarks [query]", "Search bookmarks only", "")
}

func newHistoryCmd() *cobra.Command {
	return newQueryCmd(collector.KindHistory, "history [query]", "Search history only", "")
}

func newQueryCmd(kind collector.Kind, use, short, long string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			return runSearch(cmd, kind, strings.Join(args, " "), limit)
		},
	}
	cmd.Flags().IntP("limit", "n", 0, "maximum number of results (default max_results)")
	return cmd
}

func runSearch(cmd *cobra.Command, kind collector.Kind, raw string, limit int) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	resp, err := a.searcher.Search(ctx, searcher.Request{Query: raw, Kind: kind, Limit: limit})
	if err != nil {
		return err
	}

	a.logger.Debug().
		Str("kind", kind.String()).
		Int("results", len(resp.Results)).
		Int("total", resp.TotalResults).
		Bool("cache_hit", resp.CacheHit).
		Dur("duration", resp.Duration).
		Msg("search complete")

	return alfred.Write(cmd.OutOrStdout(), resp.Results, alfred.Options{ShowFavicon: a.config.ShowFavicon})
}
