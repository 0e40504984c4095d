package extract

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/browser-search/internal/query"
	"github.com/dshills/browser-search/pkg/types"
)

var visitInstant = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

func TestChromiumHistory(t *testing.T) {
	recent := ToChromiumTime(visitInstant)
	older := ToChromiumTime(visitInstant.Add(-48 * time.Hour))

	db := openFixture(t,
		`CREATE TABLE urls (id INTEGER PRIMARY KEY, url TEXT, title TEXT, visit_count INTEGER, last_visit_time INTEGER)`,
		`CREATE TABLE visits (id INTEGER PRIMARY KEY, url INTEGER, visit_time INTEGER)`,
		fmt.Sprintf(`INSERT INTO urls VALUES
			(1, 'https://go.dev/doc', 'Go docs', 3, %d),
			(2, 'https://tracker.ads.example/x', 'Ads', 9, %d),
			(3, 'https://news.example', 'News', 1, %d),
			(4, 'https://untitled.example', '', 1, %d),
			(5, 'https://never.example', 'Never visited', 0, 0),
			(6, 'https://novisits.example', 'No visit rows', 2, %d)`, recent, recent, older, recent, recent),
		`INSERT INTO visits (url, visit_time) VALUES (1, 0), (1, 0), (2, 0), (3, 0), (4, 0), (5, 0)`,
	)

	e := &ChromiumHistory{
		Source:  "Google Chrome",
		Options: HistoryOptions{IgnoredDomains: []string{"ads.example", "", " "}},
	}
	records, err := e.Extract(context.Background(), Handle{DB: db}, query.Parse(""))
	require.NoError(t, err)
	require.Equal(t, []string{"Go docs", "News"}, titles(records))

	doc := records[0]
	assert.Equal(t, types.OriginHistory, doc.Origin)
	assert.Equal(t, 3, doc.VisitCount)
	assert.True(t, doc.LastVisit.Equal(visitInstant))
	assert.Equal(t, "Last visit: 06.05.2024 (Visits: 3)", doc.Subtitle)
	assert.NoError(t, doc.Validate())

	records, err = e.Extract(context.Background(), Handle{DB: db}, query.Parse("news"))
	require.NoError(t, err)
	assert.Equal(t, []string{"News"}, titles(records))
}

func TestChromiumHistoryWithoutIgnoreList(t *testing.T) {
	db := openFixture(t,
		`CREATE TABLE urls (id INTEGER PRIMARY KEY, url TEXT, title TEXT, visit_count INTEGER, last_visit_time INTEGER)`,
		`CREATE TABLE visits (id INTEGER PRIMARY KEY, url INTEGER, visit_time INTEGER)`,
		fmt.Sprintf(`INSERT INTO urls VALUES (1, 'https://ads.example', 'Ads', 1, %d)`, ToChromiumTime(visitInstant)),
		`INSERT INTO visits (url, visit_time) VALUES (1, 0)`,
	)

	records, err := (&ChromiumHistory{}).Extract(context.Background(), Handle{DB: db}, query.Parse(""))
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestWebKitHistory(t *testing.T) {
	db := openFixture(t,
		`CREATE TABLE history_items (id INTEGER PRIMARY KEY, url TEXT, visit_count INTEGER)`,
		`CREATE TABLE history_visits (id INTEGER PRIMARY KEY, history_item INTEGER, visit_time REAL, title TEXT)`,
		`INSERT INTO history_items VALUES (1, 'https://www.apple.com', 2), (2, 'https://webkit.org', 1), (3, '', 4)`,
		fmt.Sprintf(`INSERT INTO history_visits (history_item, visit_time, title) VALUES
			(1, 100.5, 'Apple (old title)'),
			(1, %f, 'Apple'),
			(2, %f, NULL),
			(3, %f, 'No URL')`, ToWebKitTime(visitInstant), ToWebKitTime(visitInstant), ToWebKitTime(visitInstant)),
	)

	records, err := (&WebKitHistory{Source: "Safari", Options: HistoryOptions{DateFormat: "%Y-%m-%d"}}).
		Extract(context.Background(), Handle{DB: db}, query.Parse(""))
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "Apple", r.Title)
	assert.Equal(t, "https://www.apple.com", r.URL)
	assert.Equal(t, 2, r.VisitCount)
	assert.WithinDuration(t, visitInstant, r.LastVisit, time.Millisecond)
	assert.Equal(t, "Last visit: 2024-05-06 (Visits: 2)", r.Subtitle)
	assert.Equal(t, "Safari", r.Source)
}

func TestMozillaHistory(t *testing.T) {
	latest := ToMozillaTime(visitInstant)
	earlier := ToMozillaTime(visitInstant.Add(-time.Hour))

	db := openFixture(t, append(mozillaPlacesSchema,
		`INSERT INTO moz_places (id, url, title, visit_count) VALUES
			(1, 'https://www.mozilla.org', 'Mozilla', 2),
			(2, 'https://bookmarked-only.example', 'Never visited', 0),
			(3, 'https://blank.example', NULL, 1)`,
		fmt.Sprintf(`INSERT INTO moz_historyvisits (place_id, visit_date) VALUES (1, %d), (1, %d), (3, %d)`,
			earlier, latest, latest),
	)...)

	records, err := (&MozillaHistory{Source: "Firefox"}).Extract(context.Background(), Handle{DB: db}, query.Parse("moz"))
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "Mozilla", r.Title)
	assert.Equal(t, 2, r.VisitCount)
	assert.True(t, r.LastVisit.Equal(visitInstant))
	assert.Equal(t, "Last visit: 06.05.2024 (Visits: 2)", r.Subtitle)
}

func TestHistoryQueryFailure(t *testing.T) {
	db := openFixture(t, `CREATE TABLE unrelated (id INTEGER)`)

	for name, e := range map[string]Extractor{
		"chromium": &ChromiumHistory{},
		"webkit":   &WebKitHistory{},
		"mozilla":  &MozillaHistory{},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := e.Extract(context.Background(), Handle{DB: db}, query.Parse(""))
			assert.True(t, errors.Is(err, types.ErrExtractionFailed))
		})
	}
}

func TestSubtitle(t *testing.T) {
	local := time.Date(2024, 5, 6, 23, 30, 0, 0, time.FixedZone("X", -3*3600))
	// rendered in UTC, which is already the next day
	assert.Equal(t, "Last visit: 07.05.2024 (Visits: 0)", Subtitle(local, 0, DefaultDateFormat))
}

func TestTimestampColumnDecoding(t *testing.T) {
	n, ok := asInt64([]byte("13360129689123456"))
	assert.True(t, ok)
	assert.Equal(t, int64(13360129689123456), n)

	_, ok = asInt64(nil)
	assert.False(t, ok)

	f, ok := asFloat64(int64(5))
	assert.True(t, ok)
	assert.Equal(t, 5.0, f)
}
