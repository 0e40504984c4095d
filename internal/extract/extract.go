// Package extract turns browser bookmark and history stores into canonical
// records. Tree formats are read straight from disk; SQL stores are read
// through a snapshot connection supplied by the caller.
package extract

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dshills/browser-search/internal/browser"
	"github.com/dshills/browser-search/internal/query"
	"github.com/dshills/browser-search/pkg/types"
)

// DefaultDateFormat is the strftime layout used for history subtitles
const DefaultDateFormat = "%d.%m.%Y"

// Handle is what an extractor reads from. Path is always set; DB is set for
// SQL stores and must be a read-only snapshot connection.
type Handle struct {
	Path string
	DB   *sql.DB
}

// Extractor reads one store and returns the records matching q
type Extractor interface {
	Extract(ctx context.Context, h Handle, q query.Query) ([]types.Record, error)
}

// HistoryOptions tunes history extraction
type HistoryOptions struct {
	// IgnoredDomains drops Chromium-family history whose URL contains any entry
	IgnoredDomains []string
	// DateFormat is the strftime layout for the "Last visit" subtitle
	DateFormat string
}

// Bookmarks returns the bookmark extractor for src
func Bookmarks(src browser.Source) Extractor {
	switch src.TreeFormat() {
	case browser.TreeWebKitPlist:
		return &WebKitBookmarks{Source: src.Name()}
	case browser.TreeMozillaSQL:
		return &MozillaBookmarks{Source: src.Name()}
	default:
		return &ChromiumBookmarks{Source: src.Name()}
	}
}

// History returns the history extractor for src
func History(src browser.Source, opts HistoryOptions) Extractor {
	switch src.HistorySchema() {
	case browser.HistoryWebKitSQL:
		return &WebKitHistory{Source: src.Name(), Options: opts}
	case browser.HistoryMozillaSQL:
		return &MozillaHistory{Source: src.Name(), Options: opts}
	default:
		return &ChromiumHistory{Source: src.Name(), Options: opts}
	}
}

// NeedsDatabase reports whether the bookmark store of src is an SQL file
func NeedsDatabase(src browser.Source) bool {
	return src.TreeFormat() == browser.TreeMozillaSQL
}

// finish drops records that break the canonical invariants and applies q
func finish(records []types.Record, q query.Query) []types.Record {
	out := records[:0]
	for _, r := range records {
		if r.Validate() != nil {
			continue
		}
		if !q.MatchesRecord(r) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ignoredBy reports whether url contains any non-empty entry of domains
func ignoredBy(url string, domains []string) bool {
	for _, d := range domains {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		if strings.Contains(url, d) {
			return true
		}
	}
	return false
}
