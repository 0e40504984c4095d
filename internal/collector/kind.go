package collector

import (
	"fmt"
	"strings"
)

// Kind selects which stores a collection reads
type Kind int

const (
	KindAll Kind = iota
	KindBookmarks
	KindHistory
)

// String returns the kind name used on the command line and in cache keys
func (k Kind) String() string {
	switch k {
	case KindBookmarks:
		return "bookmarks"
	case KindHistory:
		return "history"
	default:
		return "all"
	}
}

// Bookmarks reports whether bookmark stores are read
func (k Kind) Bookmarks() bool { return k != KindHistory }

// History reports whether history stores are read
func (k Kind) History() bool { return k != KindBookmarks }

// ParseKind parses a kind name; the empty string means KindAll
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return KindAll, nil
	case "bookmarks", "bookmark":
		return KindBookmarks, nil
	case "history":
		return KindHistory, nil
	default:
		return KindAll, fmt.Errorf("unknown kind %q (want all, bookmarks or history)", s)
	}
}
