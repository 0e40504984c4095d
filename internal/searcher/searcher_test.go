package searcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/browser-search/internal/cache"
	"github.com/dshills/browser-search/internal/collector"
	"github.com/dshills/browser-search/internal/query"
	"github.com/dshills/browser-search/internal/ranker"
	"github.com/dshills/browser-search/pkg/types"
)

// mockCollector returns fixed batches filtered by the query
type mockCollector struct {
	batches  [][]types.Record
	err      error
	calls    int
	lastKind collector.Kind
}

func (m *mockCollector) Collect(_ context.Context, kind collector.Kind, q query.Query) ([][]types.Record, *collector.Statistics, error) {
	m.calls++
	m.lastKind = kind
	if m.err != nil {
		return nil, nil, m.err
	}
	out := make([][]types.Record, len(m.batches))
	total := 0
	for i, b := range m.batches {
		out[i] = q.Filter(append([]types.Record(nil), b...))
		total += len(out[i])
	}
	return out, &collector.Statistics{SourcesScanned: len(m.batches), RecordsExtracted: total}, nil
}

// failingCache always misses and fails writes
type failingCache struct{ puts int }

func (f *failingCache) Get(context.Context, string) ([]types.Record, bool) { return nil, false }
func (f *failingCache) Put(context.Context, string, []types.Record) error {
	f.puts++
	return types.ErrCacheUnavailable
}

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func hist(title, url string, hoursAgo, visits int) types.Record {
	return types.Record{
		Title:      title,
		URL:        url,
		Origin:     types.OriginHistory,
		VisitCount: visits,
		LastVisit:  now.Add(-time.Duration(hoursAgo) * time.Hour),
	}
}

func bm(title, url string) types.Record {
	return types.Record{Title: title, URL: url, Subtitle: url, Origin: types.OriginBookmark}
}

func titles(records []types.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Title
	}
	return out
}

func newTestSearcher(c Collector, opts ...Option) *Searcher {
	return New(c, append([]Option{WithClock(func() time.Time { return now })}, opts...)...)
}

func TestSearchMergesAndRanks(t *testing.T) {
	col := &mockCollector{batches: [][]types.Record{
		{bm("Go", "https://go.dev"), bm("Rust", "https://rust-lang.org")},
		{hist("Go (visited)", "https://go.dev", 1, 5), hist("Go blog", "https://go.dev/blog", 3, 2)},
	}}
	s := newTestSearcher(col)

	resp, err := s.Search(context.Background(), Request{Query: "go"})
	require.NoError(t, err)

	assert.Len(t, resp.Results, 2)
	assert.ElementsMatch(t, []string{"Go", "Go blog"}, titles(resp.Results))
	for _, r := range resp.Results {
		if r.URL == "https://go.dev" {
			assert.Equal(t, types.OriginBookmark, r.Origin, "bookmark wins over history")
		}
	}
	assert.Equal(t, 2, resp.TotalResults)
	assert.False(t, resp.CacheHit)
	assert.Equal(t, 2, resp.Stats.SourcesScanned)
}

func TestSearchAppliesLimit(t *testing.T) {
	var batch []types.Record
	for _, u := range []string{"a", "b", "c", "d", "e"} {
		batch = append(batch, bm("page "+u, "https://"+u))
	}
	s := newTestSearcher(&mockCollector{batches: [][]types.Record{batch}}, WithMaxResults(3))

	resp, err := s.Search(context.Background(), Request{})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 3)
	assert.Equal(t, 5, resp.TotalResults)

	resp, err = s.Search(context.Background(), Request{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 1)
}

func TestSearchDeterministic(t *testing.T) {
	col := &mockCollector{batches: [][]types.Record{
		{hist("Apple", "https://apple", 10, 1), hist("Apple Pie", "https://pie", 50, 1), hist("Banana", "https://banana", 1, 1)},
	}}
	scorer := ranker.ScorerFunc(func(_ string, records []types.Record) []int {
		out := make([]int, len(records))
		for i, r := range records {
			switch r.Title {
			case "Apple", "Apple Pie":
				out[i] = 90
			default:
				out[i] = 40
			}
		}
		return out
	})
	s := newTestSearcher(col, WithRanker(ranker.New(ranker.WithScorer(scorer))))

	first, err := s.Search(context.Background(), Request{Query: "a"})
	require.NoError(t, err)
	second, err := s.Search(context.Background(), Request{Query: "a"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Apple Pie", "Apple", "Banana"}, titles(first.Results))
	assert.Equal(t, first.Results, second.Results)
}

func TestSearchWarmStartFromCache(t *testing.T) {
	ctx := context.Background()
	store, err := cache.New(8, nil)
	require.NoError(t, err)

	col := &mockCollector{batches: [][]types.Record{{hist("Go blog", "https://go.dev/blog", 1, 1)}}}
	s := newTestSearcher(col, WithCache(store))

	resp, err := s.Search(ctx, Request{Query: "go", Kind: collector.KindHistory})
	require.NoError(t, err)
	assert.False(t, resp.CacheHit)

	// the history entry disappears from the browser but stays cached
	col.batches = [][]types.Record{{hist("Go tour", "https://go.dev/tour", 1, 1)}}
	resp, err = s.Search(ctx, Request{Query: "go", Kind: collector.KindHistory})
	require.NoError(t, err)
	assert.True(t, resp.CacheHit)
	assert.ElementsMatch(t, []string{"Go blog", "Go tour"}, titles(resp.Results))

	// different kind, different key
	resp, err = s.Search(ctx, Request{Query: "go", Kind: collector.KindBookmarks})
	require.NoError(t, err)
	assert.False(t, resp.CacheHit)
	assert.Equal(t, collector.KindBookmarks, col.lastKind)
}

func TestSearchCachedRecordsExpire(t *testing.T) {
	ctx := context.Background()
	clock := now
	tick := func() time.Time { return clock }

	store, err := cache.New(8, nil, cache.WithTTL(24*time.Hour), cache.WithClock(tick))
	require.NoError(t, err)

	col := &mockCollector{batches: [][]types.Record{{hist("Deleted page", "https://example.com/gone", 1, 1)}}}
	s := New(col, WithCache(store), WithClock(tick))

	_, err = s.Search(ctx, Request{Query: "page", Kind: collector.KindHistory})
	require.NoError(t, err)

	// history cleared in the browser
	col.batches = nil

	clock = now.Add(20 * time.Hour)
	resp, err := s.Search(ctx, Request{Query: "page", Kind: collector.KindHistory})
	require.NoError(t, err)
	assert.Equal(t, []string{"Deleted page"}, titles(resp.Results))

	for _, after := range []time.Duration{25 * time.Hour, 40 * time.Hour, 100 * time.Hour} {
		clock = now.Add(after)
		resp, err := s.Search(ctx, Request{Query: "page", Kind: collector.KindHistory})
		require.NoError(t, err)
		assert.Empty(t, resp.Results, "after %s", after)
	}
}

func TestSearchCacheScopedBySources(t *testing.T) {
	ctx := context.Background()
	store, err := cache.New(8, nil)
	require.NoError(t, err)

	col := &mockCollector{batches: [][]types.Record{{bm("Go", "https://go.dev")}}}
	chrome := newTestSearcher(col, WithCache(store), WithCacheScope("chrome", "safari"))
	_, err = chrome.Search(ctx, Request{Query: "go"})
	require.NoError(t, err)

	reordered := newTestSearcher(col, WithCache(store), WithCacheScope("safari", "chrome"))
	resp, err := reordered.Search(ctx, Request{Query: "go"})
	require.NoError(t, err)
	assert.True(t, resp.CacheHit)

	// safari disabled: nothing stored under the old selection may answer
	col.batches = nil
	safariOff := newTestSearcher(col, WithCache(store), WithCacheScope("chrome"))
	resp, err = safariOff.Search(ctx, Request{Query: "go"})
	require.NoError(t, err)
	assert.False(t, resp.CacheHit)
	assert.Empty(t, resp.Results)
}

func TestSearchCacheFailureIsNotFatal(t *testing.T) {
	fc := &failingCache{}
	s := newTestSearcher(&mockCollector{batches: [][]types.Record{{bm("Go", "https://go.dev")}}}, WithCache(fc))

	resp, err := s.Search(context.Background(), Request{Query: "go"})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 1)
	assert.Equal(t, 1, fc.puts)
}

func TestSearchNoSources(t *testing.T) {
	s := newTestSearcher(&mockCollector{})

	resp, err := s.Search(context.Background(), Request{Query: "anything"})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
}

func TestSearchInvalidRequest(t *testing.T) {
	col := &mockCollector{}
	s := newTestSearcher(col)

	_, err := s.Search(context.Background(), Request{Limit: -1})
	assert.Error(t, err)

	_, err = s.Search(context.Background(), Request{Kind: collector.Kind(42)})
	assert.Error(t, err)
	assert.Equal(t, 0, col.calls)
}

func TestSearchCollectError(t *testing.T) {
	s := newTestSearcher(&mockCollector{err: context.Canceled})

	_, err := s.Search(context.Background(), Request{})
	assert.True(t, errors.Is(err, context.Canceled))
}
