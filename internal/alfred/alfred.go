// Package alfred renders ranked records as Alfred Script Filter JSON.
package alfred

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/browser-search/pkg/types"
)

// Item is one Script Filter result
type Item struct {
	UID      string `json:"uid,omitempty"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Arg      string `json:"arg,omitempty"`
	Icon     *Icon  `json:"icon,omitempty"`
	Valid    *bool  `json:"valid,omitempty"`
	Mods     *Mods  `json:"mods,omitempty"`
}

// Icon points Alfred at an image; Type "fileicon" uses the file's own icon
type Icon struct {
	Type string `json:"type,omitempty"`
	Path string `json:"path"`
}

// Mods holds the alternative actions bound to modifier keys
type Mods struct {
	Alt *Modifier `json:"alt,omitempty"`
	Cmd *Modifier `json:"cmd,omitempty"`
}

// Modifier is the action shown while a modifier key is held
type Modifier struct {
	Valid    bool   `json:"valid"`
	Arg      string `json:"arg"`
	Subtitle string `json:"subtitle"`
}

// Response is the top-level Script Filter document
type Response struct {
	Items []Item `json:"items"`
}

// Options controls rendering
type Options struct {
	ShowFavicon bool
}

// NewItem converts one record
func NewItem(r types.Record, opts Options) Item {
	valid := true
	item := Item{
		UID:      r.URL,
		Title:    r.Title,
		Subtitle: r.Subtitle,
		Arg:      r.URL,
		Valid:    &valid,
		Mods: &Mods{
			Alt: &Modifier{Valid: true, Arg: r.URL, Subtitle: r.URL},
			Cmd: &Modifier{Valid: true, Arg: r.URL, Subtitle: "Other Actions..."},
		},
	}
	if opts.ShowFavicon && r.Favicon != "" {
		item.Icon = &Icon{Type: "fileicon", Path: r.Favicon}
	}
	return item
}

// Build converts records in order
func Build(records []types.Record, opts Options) Response {
	items := make([]Item, 0, len(records))
	for _, r := range records {
		items = append(items, NewItem(r, opts))
	}
	return Response{Items: items}
}

// Write encodes records to w as one JSON document
func Write(w io.Writer, records []types.Record, opts Options) error {
	if err := json.NewEncoder(w).Encode(Build(records, opts)); err != nil {
		return fmt.Errorf("encode alfred response: %w", err)
	}
	return nil
}
