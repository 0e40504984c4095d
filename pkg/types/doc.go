// Package types provides the shared domain types of browser-search.
//
// # Record
//
// Record is the canonical bookmark or history entry every stage of the
// pipeline works on. Extractors build records, the aggregator deduplicates
// them by URL and the ranker orders them:
//
//	rec := types.Record{
//	    Title:      "Go Documentation",
//	    URL:        "https://go.dev/doc/",
//	    Origin:     types.OriginHistory,
//	    VisitCount: 12,
//	    LastVisit:  time.Now(),
//	}
//
// Records are plain values. Copying one never shares mutable state, so
// batches move freely between worker goroutines.
//
// # Validation
//
// History records must carry visit data, and every record needs a URL and a
// title:
//
//	if err := rec.Validate(); err != nil {
//	    // drop the row
//	}
//
// # Errors
//
// The error taxonomy (ErrSourceUnavailable, ErrSnapshotFailed,
// ErrExtractionFailed, ErrCacheUnavailable, ErrConfigParse) is wrapped with
// %w by the components and matched with errors.Is by callers.
package types
