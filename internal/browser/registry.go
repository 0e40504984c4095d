package browser

import (
	"os"
	"path/filepath"
	"sort"
)

// mozillaDatabase is the per-profile database holding both stores
const mozillaDatabase = "places.sqlite"

// Paths holds the resolved store locations of one source. An empty string
// means the store is absent.
type Paths struct {
	Bookmarks string
	History   string
}

// Empty reports whether neither store was found
func (p Paths) Empty() bool {
	return p.Bookmarks == "" && p.History == ""
}

// Shared reports whether both stores live in the same file
func (p Paths) Shared() bool {
	return p.Bookmarks != "" && p.Bookmarks == p.History
}

// layout is the home-relative location of a source's stores. For profile
// based sources both entries point at the profiles root.
type layout struct {
	history   string
	bookmarks string
}

var layouts = map[Source]layout{
	Chrome: {
		"Library/Application Support/Google/Chrome/Default/History",
		"Library/Application Support/Google/Chrome/Default/Bookmarks",
	},
	ChromeBeta: {
		"Library/Application Support/Google/ChromeBeta/Default/History",
		"Library/Application Support/Google/ChromeBeta/Default/Bookmarks",
	},
	Brave: {
		"Library/Application Support/BraveSoftware/Brave-Browser/Default/History",
		"Library/Application Support/BraveSoftware/Brave-Browser/Default/Bookmarks",
	},
	BraveBeta: {
		"Library/Application Support/BraveSoftware/Brave-Browser-Beta/Default/History",
		"Library/Application Support/BraveSoftware/Brave-Browser-Beta/Default/Bookmarks",
	},
	Safari: {
		"Library/Safari/History.db",
		"Library/Safari/Bookmarks.plist",
	},
	Firefox: {
		"Library/Application Support/Firefox/Profiles",
		"Library/Application Support/Firefox/Profiles",
	},
	Zen: {
		"Library/Application Support/zen/Profiles",
		"Library/Application Support/zen/Profiles",
	},
	Edge: {
		"Library/Application Support/Microsoft Edge/Default/History",
		"Library/Application Support/Microsoft Edge/Default/Bookmarks",
	},
	Opera: {
		"Library/Application Support/com.operasoftware.Opera/History",
		"Library/Application Support/com.operasoftware.Opera/Bookmarks",
	},
	Vivaldi: {
		"Library/Application Support/Vivaldi/Default/History",
		"Library/Application Support/Vivaldi/Default/Bookmarks",
	},
	Arc: {
		"Library/Application Support/Arc/User Data/Default/History",
		"Library/Application Support/Arc/User Data/Default/Bookmarks",
	},
	Chromium: {
		"Library/Application Support/Chromium/Default/History",
		"Library/Application Support/Chromium/Default/Bookmarks",
	},
	Sidekick: {
		"Library/Application Support/Sidekick/Default/History",
		"Library/Application Support/Sidekick/Default/Bookmarks",
	},
}

// Registry resolves enabled sources to their files under a home directory
type Registry struct {
	home    string
	enabled func(Source) bool
}

// NewRegistry creates a registry rooted at home. enabled reports the
// configured enable flag of each source; nil disables every source.
func NewRegistry(home string, enabled func(Source) bool) *Registry {
	if enabled == nil {
		enabled = func(Source) bool { return false }
	}
	return &Registry{home: home, enabled: enabled}
}

// Discover returns the store paths of every enabled source. Disabled sources
// are omitted; stores missing on disk are left empty. Discover never fails:
// an unreadable location is treated as absent.
func (r *Registry) Discover() map[Source]Paths {
	found := make(map[Source]Paths)
	if r.home == "" {
		return found
	}

	for _, src := range All {
		if !r.enabled(src) {
			continue
		}

		l := layouts[src]
		history := filepath.Join(r.home, l.history)
		bookmarks := filepath.Join(r.home, l.bookmarks)

		if src.ProfileBased() {
			db := findProfileDatabase(history, mozillaDatabase)
			history, bookmarks = db, db
		}

		found[src] = Paths{
			History:   existing(history),
			Bookmarks: existing(bookmarks),
		}
	}

	return found
}

// Sources returns the keys of a Discover result in enum order
func Sources(found map[Source]Paths) []Source {
	out := make([]Source, 0, len(found))
	for src := range found {
		out = append(out, src)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// findProfileDatabase scans one level of profile directories under root, in
// name order, and returns the first database named name. Only one profile
// per source is supported.
func findProfileDatabase(root, name string) string {
	entries, err := os.ReadDir(root)
	if err != nil {
		return ""
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		db := filepath.Join(root, entry.Name(), name)
		if info, err := os.Stat(db); err == nil && info.Mode().IsRegular() {
			return db
		}
	}
	return ""
}

func existing(path string) string {
	if path == "" {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
