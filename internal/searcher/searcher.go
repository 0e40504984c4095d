package searcher

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/browser-search/internal/aggregate"
	"github.com/dshills/browser-search/internal/cache"
	"github.com/dshills/browser-search/internal/collector"
	"github.com/dshills/browser-search/internal/query"
	"github.com/dshills/browser-search/internal/ranker"
	"github.com/dshills/browser-search/pkg/types"
)

// DefaultLimit is used when neither the request nor the searcher sets one
const DefaultLimit = 30

// Request contains parameters for a search operation
type Request struct {
	Query string
	Kind  collector.Kind
	Limit int // 0 uses the searcher's maximum
}

// Response contains search results and metadata
type Response struct {
	Results      []types.Record
	TotalResults int // Matches before the limit was applied
	Kind         collector.Kind
	Stats        *collector.Statistics
	Duration     time.Duration
	CacheHit     bool
}

// Collector gathers per-source record batches
type Collector interface {
	Collect(ctx context.Context, kind collector.Kind, q query.Query) ([][]types.Record, *collector.Statistics, error)
}

// Searcher runs the collect, merge, rank and limit pipeline
type Searcher struct {
	collector  Collector
	ranker     *ranker.Ranker
	cache      cache.Store
	maxResults int
	scope      []string // enabled source keys, part of every cache key
	logger     zerolog.Logger
	now        func() time.Time
}

// Option configures a Searcher
type Option func(*Searcher)

// WithRanker replaces the default ranker
func WithRanker(r *ranker.Ranker) Option {
	return func(s *Searcher) { s.ranker = r }
}

// WithCache sets the warm-start cache
func WithCache(c cache.Store) Option {
	return func(s *Searcher) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithCacheScope adds the enabled source keys to cache keys, so batches
// stored under one source selection never answer another
func WithCacheScope(sources ...string) Option {
	return func(s *Searcher) {
		s.scope = append([]string(nil), sources...)
		sort.Strings(s.scope)
	}
}

// WithMaxResults sets the default result limit
func WithMaxResults(n int) Option {
	return func(s *Searcher) {
		if n > 0 {
			s.maxResults = n
		}
	}
}

// WithLogger sets the logger
func WithLogger(l zerolog.Logger) Option {
	return func(s *Searcher) { s.logger = l.With().Str("component", "searcher").Logger() }
}

// WithClock replaces time.Now as the ranking instant
func WithClock(now func() time.Time) Option {
	return func(s *Searcher) { s.now = now }
}

// New creates a Searcher over c
func New(c Collector, opts ...Option) *Searcher {
	s := &Searcher{
		collector:  c,
		ranker:     ranker.New(),
		cache:      cache.Nop{},
		maxResults: DefaultLimit,
		logger:     zerolog.Nop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search performs a search. Per-source and cache failures never fail it; the
// only errors are an invalid request and cancellation.
func (s *Searcher) Search(ctx context.Context, req Request) (*Response, error) {
	startTime := time.Now()

	if err := s.validateRequest(&req); err != nil {
		return nil, fmt.Errorf("invalid search request: %w", err)
	}

	q := query.Parse(req.Query)
	key := cache.Key(req.Kind.String(), q.Raw(), strings.Join(s.scope, ","))

	cached, hit := s.cache.Get(ctx, key)
	if hit {
		cached = q.Filter(cached)
		s.logger.Debug().Int("records", len(cached)).Msg("warm start from cache")
	}

	batches, stats, err := s.collector.Collect(ctx, req.Kind, q)
	if err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}

	// Only the fresh scan is stored; cached records expire with their entry
	fresh := aggregate.Merge(batches...)
	if err := s.cache.Put(ctx, key, fresh); err != nil {
		s.logger.Debug().Err(err).Msg("cache write skipped")
	}

	// Fresh records precede cached ones so live data wins on equal titles
	merged := aggregate.Merge(fresh, cached)

	ranked := s.ranker.Rank(merged, q, s.now())

	return &Response{
		Results:      ranker.Take(ranked, req.Limit),
		TotalResults: len(ranked),
		Kind:         req.Kind,
		Stats:        stats,
		Duration:     time.Since(startTime),
		CacheHit:     hit,
	}, nil
}

// validateRequest validates and normalizes search request parameters
func (s *Searcher) validateRequest(req *Request) error {
	if req.Limit < 0 {
		return fmt.Errorf("limit must be non-negative, got %d", req.Limit)
	}
	if req.Limit == 0 {
		req.Limit = s.maxResults
	}

	switch req.Kind {
	case collector.KindAll, collector.KindBookmarks, collector.KindHistory:
	default:
		return fmt.Errorf("unknown kind %d", req.Kind)
	}
	return nil
}
