// Package query implements the launcher query language: terms joined with
// '&' must all match, terms joined with '|' need one match, anything else is a
// plain case-insensitive substring match.
package query

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/dshills/browser-search/pkg/types"
)

// Operator is the boolean operator joining the terms of a query
type Operator int

const (
	OpSingle Operator = iota
	OpAnd
	OpOr
)

// Query is a parsed search query. The zero value matches everything.
type Query struct {
	raw   string
	op    Operator
	terms []string // case-folded, trimmed, never empty strings
}

// Parse parses raw into a Query. '&' takes precedence over '|', so "a&b|c"
// is the AND of "a" and "b|c". Empty terms are dropped; a query whose terms
// are all empty matches everything.
func Parse(raw string) Query {
	q := Query{raw: raw}

	var parts []string
	switch {
	case strings.Contains(raw, "&"):
		q.op = OpAnd
		parts = strings.Split(raw, "&")
	case strings.Contains(raw, "|"):
		q.op = OpOr
		parts = strings.Split(raw, "|")
	default:
		q.op = OpSingle
		parts = []string{raw}
	}

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		q.terms = append(q.terms, Fold(p))
	}

	return q
}

// Raw returns the query as typed
func (q Query) Raw() string {
	return q.raw
}

// Op returns the operator joining the terms
func (q Query) Op() Operator {
	return q.op
}

// Terms returns the case-folded terms
func (q Query) Terms() []string {
	return append([]string(nil), q.terms...)
}

// IsEmpty reports whether the query matches everything
func (q Query) IsEmpty() bool {
	return len(q.terms) == 0
}

// Matches reports whether text satisfies the query
func (q Query) Matches(text string) bool {
	if q.IsEmpty() {
		return true
	}

	folded := Fold(text)

	if q.op == OpOr {
		for _, t := range q.terms {
			if strings.Contains(folded, t) {
				return true
			}
		}
		return false
	}

	for _, t := range q.terms {
		if !strings.Contains(folded, t) {
			return false
		}
	}
	return true
}

// MatchesRecord reports whether any of title, URL or subtitle satisfies the
// query. Each field is tested on its own.
func (q Query) MatchesRecord(r types.Record) bool {
	return q.Matches(r.Title) || q.Matches(r.URL) || q.Matches(r.Subtitle)
}

// Filter returns the records matching the query, preserving order
func (q Query) Filter(records []types.Record) []types.Record {
	if q.IsEmpty() {
		return records
	}

	out := make([]types.Record, 0, len(records))
	for _, r := range records {
		if q.MatchesRecord(r) {
			out = append(out, r)
		}
	}
	return out
}

// Matches is a convenience for Parse(query).Matches(text)
func Matches(query, text string) bool {
	return Parse(query).Matches(text)
}

// Fold applies the Unicode case folding used for terms, so callers comparing
// other text against Terms fold it the same way (ß and ss compare equal).
func Fold(s string) string {
	// cases.Caser is stateful, so one per call keeps Query safe for concurrent use
	return cases.Fold().String(s)
}
