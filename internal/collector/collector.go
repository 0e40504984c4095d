// Package collector fans extraction out over every discovered browser source
// on a bounded worker pool. A failing source is recorded and skipped; it
// never fails the collection.
package collector

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/browser-search/internal/browser"
	"github.com/dshills/browser-search/internal/extract"
	"github.com/dshills/browser-search/internal/query"
	"github.com/dshills/browser-search/internal/storage"
	"github.com/dshills/browser-search/pkg/types"
)

// processLock is shared by every Collector in the process
var processLock ReuseLock

// Discoverer resolves the stores of the enabled sources
type Discoverer interface {
	Discover() map[browser.Source]browser.Paths
}

// Config contains configuration for the collector
type Config struct {
	Workers  int    // Concurrent sources (default: runtime.NumCPU())
	ReuseDir string // Directory where snapshots persist between runs; empty disables reuse
	History  extract.HistoryOptions
}

// Statistics describes one collection
type Statistics struct {
	SourcesScanned   int
	SourcesFailed    int
	RecordsExtracted int
	ReusedSnapshots  int
	Duration         time.Duration
	ErrorMessages    []string
}

// Collector runs snapshot and extraction for each source
type Collector struct {
	registry Discoverer
	config   Config
	logger   zerolog.Logger
	lock     *ReuseLock

	bookmarks func(browser.Source) extract.Extractor
	history   func(browser.Source, extract.HistoryOptions) extract.Extractor
}

// New creates a Collector reading the sources registry discovers
func New(registry Discoverer, config Config, logger zerolog.Logger) *Collector {
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	return &Collector{
		registry:  registry,
		config:    config,
		logger:    logger.With().Str("component", "collector").Logger(),
		lock:      &processLock,
		bookmarks: extract.Bookmarks,
		history:   extract.History,
	}
}

// Collect extracts the records matching q from every discovered source. The
// returned batches follow source order regardless of completion order. The
// only error is the context's.
func (c *Collector) Collect(ctx context.Context, kind Kind, q query.Query) ([][]types.Record, *Statistics, error) {
	startTime := time.Now()
	stats := &Statistics{ErrorMessages: make([]string, 0)}

	found := c.registry.Discover()
	sources := browser.Sources(found)
	batches := make([][]types.Record, len(sources))

	reuseDir := ""
	if c.config.ReuseDir != "" {
		if c.lock.TryAcquire() {
			defer c.lock.Release()
			reuseDir = c.config.ReuseDir
		} else {
			c.logger.Debug().Msg("reuse directory busy, using fresh snapshots")
		}
	}

	var mu sync.Mutex // Protect stats
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.config.Workers)

	for i, src := range sources {
		paths := found[src]
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}

			u := unit{c: c, src: src, paths: paths, kind: kind, query: q, reuseDir: reuseDir}
			records := u.run(gctx)
			batches[i] = records

			mu.Lock()
			stats.SourcesScanned++
			stats.RecordsExtracted += len(records)
			stats.ReusedSnapshots += u.reused
			if len(u.errs) > 0 {
				stats.SourcesFailed++
				for _, err := range u.errs {
					stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("%s: %v", src.Name(), err))
				}
			}
			mu.Unlock()

			// Continue with other sources
			return nil
		})
	}

	_ = g.Wait()
	stats.Duration = time.Since(startTime)

	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}
	return batches, stats, nil
}

// unit is the work for one source. It owns its snapshots and its batch.
type unit struct {
	c        *Collector
	src      browser.Source
	paths    browser.Paths
	kind     Kind
	query    query.Query
	reuseDir string

	reused int
	errs   []error
}

func (u *unit) run(ctx context.Context) []types.Record {
	logger := u.c.logger.With().Str("source", u.src.Key()).Logger()
	var records []types.Record

	wantBookmarks := u.kind.Bookmarks() && u.paths.Bookmarks != ""
	wantHistory := u.kind.History() && u.paths.History != ""

	// Firefox-family profiles keep bookmarks and history in one database
	if wantBookmarks && wantHistory && u.paths.Shared() {
		snap, err := u.snapshot(ctx, u.paths.History, "places", logger)
		if err != nil {
			u.fail(logger, "places", err)
			return nil
		}
		defer snap.Close()

		h := extract.Handle{Path: snap.Path, DB: snap.DB}
		records = append(records, u.extract(ctx, "bookmarks", u.c.bookmarks(u.src), h, logger)...)
		records = append(records, u.extract(ctx, "history", u.c.history(u.src, u.c.config.History), h, logger)...)
		return records
	}

	if wantBookmarks {
		records = append(records, u.readBookmarks(ctx, logger)...)
	}
	if wantHistory {
		records = append(records, u.readHistory(ctx, logger)...)
	}
	return records
}

func (u *unit) readBookmarks(ctx context.Context, logger zerolog.Logger) []types.Record {
	e := u.c.bookmarks(u.src)
	if !extract.NeedsDatabase(u.src) {
		return u.extract(ctx, "bookmarks", e, extract.Handle{Path: u.paths.Bookmarks}, logger)
	}

	snap, err := u.snapshot(ctx, u.paths.Bookmarks, "bookmarks", logger)
	if err != nil {
		u.fail(logger, "bookmarks", err)
		return nil
	}
	defer snap.Close()

	return u.extract(ctx, "bookmarks", e, extract.Handle{Path: snap.Path, DB: snap.DB}, logger)
}

func (u *unit) readHistory(ctx context.Context, logger zerolog.Logger) []types.Record {
	snap, err := u.snapshot(ctx, u.paths.History, "history", logger)
	if err != nil {
		u.fail(logger, "history", err)
		return nil
	}
	defer snap.Close()

	e := u.c.history(u.src, u.c.config.History)
	return u.extract(ctx, "history", e, extract.Handle{Path: snap.Path, DB: snap.DB}, logger)
}

func (u *unit) snapshot(ctx context.Context, path, store string, logger zerolog.Logger) (*storage.Snapshot, error) {
	opts := []storage.SnapshotOption{storage.WithLogger(logger)}
	if u.reuseDir != "" {
		opts = append(opts,
			storage.WithReuseDir(u.reuseDir),
			storage.WithPrefix(fmt.Sprintf("%s-%s-", u.src.Key(), store)),
		)
	}

	snap, err := storage.TakeSnapshot(ctx, path, opts...)
	if err != nil {
		return nil, err
	}
	if !snap.Copied {
		u.reused++
	}
	return snap, nil
}

func (u *unit) extract(ctx context.Context, store string, e extract.Extractor, h extract.Handle, logger zerolog.Logger) []types.Record {
	records, err := e.Extract(ctx, h, u.query)
	if err != nil {
		u.fail(logger, store, err)
		return nil
	}
	logger.Debug().Str("store", store).Int("records", len(records)).Msg("extracted")
	return records
}

func (u *unit) fail(logger zerolog.Logger, store string, err error) {
	logger.Error().Err(err).Str("store", store).Msg("source skipped")
	u.errs = append(u.errs, fmt.Errorf("%s: %w", store, err))
}
