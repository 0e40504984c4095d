// Package searcher answers a query against every enabled browser.
//
// A search runs the whole pipeline once:
//
//  1. Parse the query ('&' for AND, '|' for OR, otherwise substring)
//  2. Read the warm-start batch stored for the same kind and query
//  3. Collect matching records from every source in parallel
//  4. Merge batches, keeping one record per URL and preferring bookmarks
//  5. Rank by fuzzy title score, breaking ties on visit freshness
//  6. Keep the first Limit results
//
// # Basic Usage
//
//	reg := browser.NewRegistry(home, cfg.Enabled)
//	col := collector.New(reg, collector.Config{Workers: 4}, logger)
//	s := searcher.New(col, searcher.WithMaxResults(30))
//
//	resp, err := s.Search(ctx, searcher.Request{
//	    Query: "golang&blog",
//	    Kind:  collector.KindHistory,
//	})
//
//	for _, r := range resp.Results {
//	    fmt.Printf("%s\n  %s\n", r.Title, r.URL)
//	}
//
// # Failures
//
// A source whose store is missing, locked beyond repair or malformed is
// logged, counted in Response.Stats and skipped. Cache failures degrade to a
// miss. Search returns an error only for an invalid request or when ctx is
// done.
//
// # Determinism
//
// The ranking instant is captured once per search, so the same records and
// query always rank the same way. Inject a clock with WithClock in tests.
package searcher
