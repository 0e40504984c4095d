package types

import "time"

// Origin tells whether a record came from a bookmark store or a history store
type Origin int

const (
	OriginBookmark Origin = iota
	OriginHistory
)

// String returns the lower-case origin name
func (o Origin) String() string {
	switch o {
	case OriginBookmark:
		return "bookmark"
	case OriginHistory:
		return "history"
	default:
		return "unknown"
	}
}

// Record is the canonical bookmark or history entry used by the whole pipeline.
// URL is the deduplication key. VisitCount and LastVisit are optional: a zero
// LastVisit means the store had no visit data for the entry.
type Record struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Subtitle string `json:"subtitle"`
	Origin   Origin `json:"origin"`
	Source   string `json:"source,omitempty"` // Browser display name

	VisitCount int       `json:"visit_count,omitempty"`
	LastVisit  time.Time `json:"last_visit,omitempty"`

	// Favicon is a local image path set by the decoration stage, if any
	Favicon string `json:"favicon,omitempty"`
}

// HasVisits reports whether the record carries visit data
func (r Record) HasVisits() bool {
	return !r.LastVisit.IsZero()
}

// Validate checks the record invariants
func (r Record) Validate() error {
	if r.URL == "" {
		return ErrEmptyURL
	}

	if r.Title == "" {
		return ErrEmptyTitle
	}

	switch r.Origin {
	case OriginBookmark:
	case OriginHistory:
		if !r.HasVisits() || r.VisitCount < 0 {
			return ErrMissingVisitInfo
		}
	default:
		return ErrInvalidOrigin
	}

	return nil
}
