// Package browser enumerates the supported browsers and resolves their
// bookmark and history stores on disk.
package browser

// Source identifies a browser product with its own file layout and schema
type Source int

const (
	Chrome Source = iota
	ChromeBeta
	Brave
	BraveBeta
	Safari
	Firefox
	Edge
	Zen
	Opera
	Vivaldi
	Arc
	Chromium
	Sidekick
)

// All lists every compiled-in source in a fixed order
var All = []Source{
	Chrome, ChromeBeta, Brave, BraveBeta, Safari, Firefox, Edge,
	Zen, Opera, Vivaldi, Arc, Chromium, Sidekick,
}

// TreeFormat is the on-disk format of a source's bookmark store
type TreeFormat int

const (
	TreeChromiumJSON TreeFormat = iota
	TreeWebKitPlist
	TreeMozillaSQL
)

// HistorySchema is the SQL schema family of a source's history store
type HistorySchema int

const (
	HistoryChromiumSQL HistorySchema = iota
	HistoryWebKitSQL
	HistoryMozillaSQL
)

// Name returns the display name of the browser
func (s Source) Name() string {
	switch s {
	case Chrome:
		return "Google Chrome"
	case ChromeBeta:
		return "Google Chrome Beta"
	case Brave:
		return "Brave"
	case BraveBeta:
		return "Brave Beta"
	case Safari:
		return "Safari"
	case Firefox:
		return "Firefox"
	case Edge:
		return "Microsoft Edge"
	case Zen:
		return "Zen"
	case Opera:
		return "Opera"
	case Vivaldi:
		return "Vivaldi"
	case Arc:
		return "Arc"
	case Chromium:
		return "Chromium"
	case Sidekick:
		return "Sidekick"
	default:
		return "unknown"
	}
}

// Key returns the configuration key holding the source's enable flag
func (s Source) Key() string {
	switch s {
	case Chrome:
		return "chrome"
	case ChromeBeta:
		return "chrome_beta"
	case Brave:
		return "brave"
	case BraveBeta:
		return "brave_beta"
	case Safari:
		return "safari"
	case Firefox:
		return "firefox"
	case Edge:
		return "edge"
	case Zen:
		return "zen"
	case Opera:
		return "opera"
	case Vivaldi:
		return "vivaldi"
	case Arc:
		return "arc"
	case Chromium:
		return "chromium"
	case Sidekick:
		return "sidekick"
	default:
		return ""
	}
}

// String implements fmt.Stringer
func (s Source) String() string {
	return s.Name()
}

// IsMozilla reports whether the source uses the Mozilla places schema
func (s Source) IsMozilla() bool {
	return s == Firefox || s == Zen
}

// IsWebKit reports whether the source uses the WebKit stores
func (s Source) IsWebKit() bool {
	return s == Safari
}

// IsChromium reports whether the source is Chromium based
func (s Source) IsChromium() bool {
	return !s.IsMozilla() && !s.IsWebKit() && s.Key() != ""
}

// ProfileBased reports whether the source keeps one database per profile
// directory rather than at a fixed path
func (s Source) ProfileBased() bool {
	return s.IsMozilla()
}

// TreeFormat returns the format of the bookmark store
func (s Source) TreeFormat() TreeFormat {
	switch {
	case s.IsMozilla():
		return TreeMozillaSQL
	case s.IsWebKit():
		return TreeWebKitPlist
	default:
		return TreeChromiumJSON
	}
}

// HistorySchema returns the schema family of the history store
func (s Source) HistorySchema() HistorySchema {
	switch {
	case s.IsMozilla():
		return HistoryMozillaSQL
	case s.IsWebKit():
		return HistoryWebKitSQL
	default:
		return HistoryChromiumSQL
	}
}

// ParseSource resolves a configuration key or display name to a Source
func ParseSource(name string) (Source, bool) {
	for _, s := range All {
		if s.Key() == name || s.Name() == name {
			return s, true
		}
	}
	return 0, false
}
