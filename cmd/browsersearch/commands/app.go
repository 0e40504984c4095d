package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dshills/browser-search/internal/browser"
	"github.com/dshills/browser-search/internal/cache"
	"github.com/dshills/browser-search/internal/collector"
	"github.com/dshills/browser-search/internal/config"
	"github.com/dshills/browser-search/internal/logging"
	"github.com/dshills/browser-search/internal/ranker"
	"github.com/dshills/browser-search/internal/searcher"
)

// app holds the components built from one configuration
type app struct {
	config   *config.Config
	logger   *logging.Logger
	registry *browser.Registry
	searcher *searcher.Searcher
	cache    *cache.LRU // nil when caching is off
}

func newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	configFile, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")
	level, _ := cmd.Flags().GetString("log-level")
	logFile, _ := cmd.Flags().GetString("log-file")
	pretty, _ := cmd.Flags().GetBool("pretty")

	cfg, err := config.Load(config.LoadOptions{ConfigFile: configFile, EnvFile: envFile})
	if err != nil {
		return nil, err
	}
	if level != "" {
		cfg.LogLevel = level
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: pretty,
		File:   logFile,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}

	registry := browser.NewRegistry(cfg.Home, cfg.Enabled)
	col := collector.New(registry, collector.Config{
		Workers:  cfg.Workers,
		ReuseDir: cfg.ReuseDir,
		History:  cfg.HistoryOptions(),
	}, logger.Logger)

	a := &app{config: cfg, logger: logger, registry: registry}

	var store cache.Store = cache.Nop{}
	if cfg.CacheDir != "" {
		lru, err := cache.Open(ctx, cfg.CacheDir, cache.WithTTL(cfg.CacheTTL), cache.WithLogger(logger.Logger))
		if err != nil {
			// Searching still works without the cache
			logger.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache disabled")
		} else {
			a.cache = lru
			store = lru
		}
	}

	var scope []string
	for _, src := range cfg.EnabledSources() {
		scope = append(scope, src.Key())
	}

	a.searcher = searcher.New(col,
		searcher.WithRanker(ranker.New(ranker.WithUnit(cfg.FreshnessUnit))),
		searcher.WithCache(store),
		searcher.WithCacheScope(scope...),
		searcher.WithMaxResults(cfg.MaxResults),
		searcher.WithLogger(logger.Logger),
	)
	return a, nil
}

func (a *app) Close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("close cache")
		}
	}
	_ = a.logger.Close()
}
