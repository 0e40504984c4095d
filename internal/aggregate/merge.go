// Package aggregate combines per-source record batches into one list with a
// single record per URL.
package aggregate

import (
	"sort"

	"github.com/dshills/browser-search/pkg/types"
)

// Merge concatenates batches, orders bookmarks before history and each group
// by title, then keeps the first record seen for every URL. Bookmarks
// therefore win over history entries for the same URL.
//
// Merge is idempotent: Merge(Merge(x)) equals Merge(x).
func Merge(batches ...[]types.Record) []types.Record {
	var total int
	for _, b := range batches {
		total += len(b)
	}
	if total == 0 {
		return []types.Record{}
	}

	all := make([]types.Record, 0, total)
	for _, b := range batches {
		all = append(all, b...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		hi, hj := all[i].Origin == types.OriginHistory, all[j].Origin == types.OriginHistory
		if hi != hj {
			return !hi
		}
		return all[i].Title < all[j].Title
	})

	seen := make(map[string]struct{}, len(all))
	out := all[:0]
	for _, r := range all {
		if _, dup := seen[r.URL]; dup {
			continue
		}
		seen[r.URL] = struct{}{}
		out = append(out, r)
	}
	return out
}
