package extract

import (
	"context"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
	"howett.net/plist"

	"github.com/dshills/browser-search/internal/query"
	"github.com/dshills/browser-search/pkg/types"
)

// ChromiumBookmarks reads the "Bookmarks" JSON file of Chromium-family browsers
type ChromiumBookmarks struct {
	Source string
}

// Extract implements Extractor
func (e *ChromiumBookmarks) Extract(ctx context.Context, h Handle, q query.Query) ([]types.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(h.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", types.ErrExtractionFailed, h.Path, err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: %s is not valid JSON", types.ErrExtractionFailed, h.Path)
	}

	roots := gjson.GetBytes(data, "roots")
	if !roots.Exists() {
		return nil, nil
	}

	return finish(collectTree(jsonNode{r: roots}, e.Source), q), nil
}

// WebKitBookmarks reads Safari's Bookmarks.plist, binary or XML
type WebKitBookmarks struct {
	Source string
}

// Extract implements Extractor
func (e *WebKitBookmarks) Extract(ctx context.Context, h Handle, q query.Query) ([]types.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(h.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", types.ErrExtractionFailed, h.Path, err)
	}

	var root interface{}
	if _, err := plist.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", types.ErrExtractionFailed, h.Path, err)
	}

	return finish(collectTree(plistNode{v: root}, e.Source), q), nil
}

func collectTree(root Node, source string) []types.Record {
	var records []types.Record
	Walk(root, func(title, url string) {
		records = append(records, types.Record{
			Title:    title,
			URL:      url,
			Subtitle: url,
			Origin:   types.OriginBookmark,
			Source:   source,
		})
	})
	return records
}

const mozillaBookmarksQuery = `
SELECT b.title, p.url
FROM moz_bookmarks AS b
JOIN moz_places AS p ON b.fk = p.id
WHERE b.type = 1
  AND p.url IS NOT NULL
  AND b.title IS NOT NULL
ORDER BY b.id`

// MozillaBookmarks reads bookmarks from a Firefox-family places.sqlite snapshot
type MozillaBookmarks struct {
	Source string
}

// Extract implements Extractor
func (e *MozillaBookmarks) Extract(ctx context.Context, h Handle, q query.Query) ([]types.Record, error) {
	if h.DB == nil {
		return nil, fmt.Errorf("%w: %s: no database handle", types.ErrExtractionFailed, h.Path)
	}

	rows, err := h.DB.QueryContext(ctx, mozillaBookmarksQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: query bookmarks: %w", types.ErrExtractionFailed, err)
	}
	defer rows.Close()

	var records []types.Record
	for rows.Next() {
		var title, url string
		if err := rows.Scan(&title, &url); err != nil {
			return nil, fmt.Errorf("%w: scan bookmark: %w", types.ErrExtractionFailed, err)
		}
		records = append(records, types.Record{
			Title:    title,
			URL:      url,
			Subtitle: url,
			Origin:   types.OriginBookmark,
			Source:   e.Source,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate bookmarks: %w", types.ErrExtractionFailed, err)
	}

	return finish(records, q), nil
}
