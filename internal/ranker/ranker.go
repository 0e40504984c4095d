// Package ranker orders aggregated records by fuzzy title score and breaks
// equal scores on visit freshness.
package ranker

import (
	"math"
	"sort"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/dshills/browser-search/internal/query"
	"github.com/dshills/browser-search/pkg/types"
)

// NoMatch is the score of a record that does not match the query
const NoMatch = math.MinInt

// DefaultUnit is the time unit of the freshness formula
const DefaultUnit = time.Hour

// Scorer scores the title of every record against one query term. The
// returned slice is parallel to records; non-matching entries hold NoMatch.
type Scorer interface {
	Score(term string, records []types.Record) []int
}

// ScorerFunc adapts a function to Scorer
type ScorerFunc func(term string, records []types.Record) []int

// Score implements Scorer
func (f ScorerFunc) Score(term string, records []types.Record) []int {
	return f(term, records)
}

// FuzzyScorer scores titles with github.com/sahilm/fuzzy
type FuzzyScorer struct{}

// titleSource exposes case-folded record titles as a fuzzy.Source. Terms
// arrive folded, so titles must be folded the same way to match.
type titleSource []string

func (s titleSource) String(i int) string { return s[i] }
func (s titleSource) Len() int            { return len(s) }

func foldTitles(records []types.Record) titleSource {
	titles := make(titleSource, len(records))
	for i, r := range records {
		titles[i] = query.Fold(r.Title)
	}
	return titles
}

// Score implements Scorer
func (FuzzyScorer) Score(term string, records []types.Record) []int {
	scores := make([]int, len(records))
	for i := range scores {
		scores[i] = NoMatch
	}
	for _, m := range fuzzy.FindFrom(query.Fold(term), foldTitles(records)) {
		scores[m.Index] = m.Score
	}
	return scores
}

// Ranker orders records for display
type Ranker struct {
	scorer Scorer
	unit   time.Duration
}

// Option configures a Ranker
type Option func(*Ranker)

// WithScorer replaces the fuzzy title scorer
func WithScorer(s Scorer) Option {
	return func(r *Ranker) {
		if s != nil {
			r.scorer = s
		}
	}
}

// WithUnit sets the freshness time unit. Non-positive values are ignored.
func WithUnit(unit time.Duration) Option {
	return func(r *Ranker) {
		if unit > 0 {
			r.unit = unit
		}
	}
}

// New creates a Ranker using fuzzy scoring and hourly freshness by default
func New(opts ...Option) *Ranker {
	r := &Ranker{scorer: FuzzyScorer{}, unit: DefaultUnit}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type scored struct {
	rec       types.Record
	score     int
	freshness float64
}

// scoreGroup is a run of records that share one score
type scoreGroup []scored

// Rank scores records against q, drops non-matches and returns them ordered
// by score, then freshness, then URL and title. now is the single instant all
// freshness values are measured from, so equal inputs give equal output.
func (r *Ranker) Rank(records []types.Record, q query.Query, now time.Time) []types.Record {
	if len(records) == 0 {
		return []types.Record{}
	}

	scores := r.scoreAll(records, q)

	items := make([]scored, 0, len(records))
	for i, rec := range records {
		if scores[i] <= NoMatch {
			continue
		}
		items = append(items, scored{rec: rec, score: scores[i]})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].score > items[j].score
	})

	out := make([]types.Record, 0, len(items))
	for _, g := range groupByScore(items) {
		if len(g) > 1 {
			r.breakTie(g, now)
		}
		for _, it := range g {
			out = append(out, it.rec)
		}
	}
	return out
}

// scoreAll combines per-term scores: a plain query uses its only term, AND
// needs every term and sums them, OR keeps the best matching term.
func (r *Ranker) scoreAll(records []types.Record, q query.Query) []int {
	terms := q.Terms()
	if len(terms) == 0 {
		return make([]int, len(records))
	}

	combined := r.scorer.Score(terms[0], records)
	for _, term := range terms[1:] {
		next := r.scorer.Score(term, records)
		for i := range combined {
			switch q.Op() {
			case query.OpAnd:
				if combined[i] == NoMatch || next[i] == NoMatch {
					combined[i] = NoMatch
				} else {
					combined[i] += next[i]
				}
			default:
				if next[i] > combined[i] {
					combined[i] = next[i]
				}
			}
		}
	}
	return combined
}

// groupByScore cuts a score-sorted slice into runs of equal score
func groupByScore(items []scored) []scoreGroup {
	var groups []scoreGroup
	for start := 0; start < len(items); {
		end := start + 1
		for end < len(items) && items[end].score == items[start].score {
			end++
		}
		groups = append(groups, scoreGroup(items[start:end]))
		start = end
	}
	return groups
}

func (r *Ranker) breakTie(g scoreGroup, now time.Time) {
	for i := range g {
		g[i].freshness = Freshness(g[i].rec, now, r.unit)
	}
	sort.SliceStable(g, func(i, j int) bool {
		a, b := g[i], g[j]
		if a.freshness != b.freshness {
			return a.freshness > b.freshness
		}
		if a.rec.URL != b.rec.URL {
			return a.rec.URL < b.rec.URL
		}
		return a.rec.Title < b.rec.Title
	})
}

// Freshness is the time elapsed since the last visit, in units, multiplied by
// the visit count. Records without visit data score -1. Visits in the future
// count as zero elapsed time.
func Freshness(rec types.Record, now time.Time, unit time.Duration) float64 {
	if !rec.HasVisits() {
		return -1
	}
	if unit <= 0 {
		unit = DefaultUnit
	}
	elapsed := now.Sub(rec.LastVisit)
	if elapsed < 0 {
		elapsed = 0
	}
	return float64(elapsed) / float64(unit) * float64(rec.VisitCount)
}

// Take returns the first n ranked records without reordering
func Take(ranked []types.Record, n int) []types.Record {
	if n <= 0 {
		return []types.Record{}
	}
	if len(ranked) <= n {
		return ranked
	}
	return ranked[:n]
}
