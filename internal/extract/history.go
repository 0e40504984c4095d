package extract

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/ncruces/go-strftime"

	"github.com/dshills/browser-search/internal/query"
	"github.com/dshills/browser-search/pkg/types"
)

// Chromium keeps the last visit on the urls row; the visits join only makes
// sure at least one visit exists.
const chromiumHistoryQuery = `
SELECT u.url, u.title, u.visit_count, u.last_visit_time
FROM urls AS u
WHERE EXISTS (SELECT 1 FROM visits AS v WHERE v.url = u.id)
  AND u.title IS NOT NULL AND u.title != ''
  AND u.url IS NOT NULL AND u.url != ''
  AND u.last_visit_time > 0
ORDER BY u.last_visit_time DESC, u.id`

// Safari stores the title on each visit; SQLite returns the title of the row
// holding MAX(visit_time).
const webkitHistoryQuery = `
SELECT i.url, v.title, i.visit_count, MAX(v.visit_time)
FROM history_items AS i
JOIN history_visits AS v ON v.history_item = i.id
WHERE i.url IS NOT NULL AND i.url != ''
  AND v.title IS NOT NULL AND v.title != ''
GROUP BY i.id
ORDER BY 4 DESC, i.id`

const mozillaHistoryQuery = `
SELECT p.url, p.title, p.visit_count, MAX(h.visit_date)
FROM moz_places AS p
JOIN moz_historyvisits AS h ON h.place_id = p.id
WHERE p.title IS NOT NULL AND p.title != ''
  AND p.url IS NOT NULL AND p.url != ''
GROUP BY p.id
ORDER BY 4 DESC, p.id`

// ChromiumHistory reads the "History" database of Chromium-family browsers
type ChromiumHistory struct {
	Source  string
	Options HistoryOptions
}

// Extract implements Extractor
func (e *ChromiumHistory) Extract(ctx context.Context, h Handle, q query.Query) ([]types.Record, error) {
	records, err := queryHistory(ctx, h, chromiumHistoryQuery, e.Source, e.Options, func(raw any) (time.Time, bool) {
		us, ok := asInt64(raw)
		return FromChromiumTime(us), ok && us > 0
	})
	if err != nil {
		return nil, err
	}

	kept := records[:0]
	for _, r := range records {
		if !ignoredBy(r.URL, e.Options.IgnoredDomains) {
			kept = append(kept, r)
		}
	}
	return finish(kept, q), nil
}

// WebKitHistory reads Safari's History.db
type WebKitHistory struct {
	Source  string
	Options HistoryOptions
}

// Extract implements Extractor
func (e *WebKitHistory) Extract(ctx context.Context, h Handle, q query.Query) ([]types.Record, error) {
	records, err := queryHistory(ctx, h, webkitHistoryQuery, e.Source, e.Options, func(raw any) (time.Time, bool) {
		sec, ok := asFloat64(raw)
		return FromWebKitTime(sec), ok && sec > 0
	})
	if err != nil {
		return nil, err
	}
	return finish(records, q), nil
}

// MozillaHistory reads history from a Firefox-family places.sqlite snapshot
type MozillaHistory struct {
	Source  string
	Options HistoryOptions
}

// Extract implements Extractor
func (e *MozillaHistory) Extract(ctx context.Context, h Handle, q query.Query) ([]types.Record, error) {
	records, err := queryHistory(ctx, h, mozillaHistoryQuery, e.Source, e.Options, func(raw any) (time.Time, bool) {
		us, ok := asInt64(raw)
		return FromMozillaTime(us), ok && us > 0
	})
	if err != nil {
		return nil, err
	}
	return finish(records, q), nil
}

// queryHistory runs one of the fixed history queries. Every query selects
// url, title, visit count and a raw timestamp in that order. Rows without a
// usable timestamp are dropped.
func queryHistory(ctx context.Context, h Handle, stmt, source string, opts HistoryOptions,
	convert func(raw any) (time.Time, bool)) ([]types.Record, error) {
	if h.DB == nil {
		return nil, fmt.Errorf("%w: %s: no database handle", types.ErrExtractionFailed, h.Path)
	}

	layout := opts.DateFormat
	if layout == "" {
		layout = DefaultDateFormat
	}

	rows, err := h.DB.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("%w: query history: %w", types.ErrExtractionFailed, err)
	}
	defer rows.Close()

	var records []types.Record
	for rows.Next() {
		var (
			url, title string
			visits     sql.NullInt64
			raw        any
		)
		if err := rows.Scan(&url, &title, &visits, &raw); err != nil {
			return nil, fmt.Errorf("%w: scan history: %w", types.ErrExtractionFailed, err)
		}
		last, ok := convert(raw)
		if !ok {
			continue
		}
		count := int(visits.Int64)
		if count < 0 {
			count = 0
		}

		records = append(records, types.Record{
			Title:      title,
			URL:        url,
			Subtitle:   Subtitle(last, count, layout),
			Origin:     types.OriginHistory,
			Source:     source,
			VisitCount: count,
			LastVisit:  last,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate history: %w", types.ErrExtractionFailed, err)
	}

	return records, nil
}

// asInt64 reads an integer timestamp column whatever the driver decoded it as
func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case float64:
		return int64(x), true
	case []byte:
		n, err := strconv.ParseInt(string(x), 10, 64)
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	case []byte:
		f, err := strconv.ParseFloat(string(x), 64)
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Subtitle renders the history subtitle shown under a result
func Subtitle(last time.Time, visits int, layout string) string {
	return fmt.Sprintf("Last visit: %s (Visits: %d)", strftime.Format(layout, last.UTC()), visits)
}
