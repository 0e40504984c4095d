package types

import "errors"

// Pipeline error taxonomy. Per-source errors wrap one of the first three and
// never abort a search; ErrConfigParse is the only fatal one.
var (
	// ErrSourceUnavailable marks a source whose store is missing on disk
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrSnapshotFailed marks a copy or integrity-probe I/O failure
	ErrSnapshotFailed = errors.New("snapshot failed")
	// ErrExtractionFailed marks a malformed schema, tree or query error
	ErrExtractionFailed = errors.New("extraction failed")
	// ErrCacheUnavailable marks a cache read or write failure
	ErrCacheUnavailable = errors.New("cache unavailable")
	// ErrConfigParse marks malformed configuration
	ErrConfigParse = errors.New("config parse error")
)

// Record validation errors
var (
	ErrEmptyURL         = errors.New("url cannot be empty")
	ErrEmptyTitle       = errors.New("title cannot be empty")
	ErrMissingVisitInfo = errors.New("history record requires visit count and last visit")
	ErrInvalidOrigin    = errors.New("invalid record origin")
)
