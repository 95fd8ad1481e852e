// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package visual summarizes stored papers as monthly publication counts
// and renders them as a PNG line chart.
package visual

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/pdiddy/pubmed-tool/internal/language"
	"github.com/pdiddy/pubmed-tool/pkg/types"
)

// Filter narrows the papers counted. Zero fields do not filter.
type Filter struct {
	// Start and End bound the publication date, inclusive. They also fix
	// the month range of the counts when set.
	Start, End types.Date

	// Journals keeps papers whose journal title is listed, ignoring case.
	Journals []string

	// MinAuthors and MaxAuthors bound the number of authors, inclusive.
	MinAuthors, MaxAuthors int

	// Languages keeps papers published in any listed language, by full
	// name as stored (e.g. "English").
	Languages []string
}

func (f Filter) keep(p types.Paper) bool {
	if p.PubDate.IsZero() {
		return false
	}
	t := p.PubDate.Time()
	if !f.Start.IsZero() && t.Before(f.Start.Time()) {
		return false
	}
	if !f.End.IsZero() && t.After(f.End.Time()) {
		return false
	}
	if len(f.Journals) > 0 && !slices.ContainsFunc(f.Journals, func(j string) bool {
		return strings.EqualFold(strings.TrimSpace(j), p.Journal)
	}) {
		return false
	}
	if f.MinAuthors > 0 && p.NumAuthors < f.MinAuthors {
		return false
	}
	if f.MaxAuthors > 0 && p.NumAuthors > f.MaxAuthors {
		return false
	}
	if len(f.Languages) > 0 {
		langs, err := language.ParseList(p.Language)
		if err != nil {
			return false
		}
		return slices.ContainsFunc(langs, func(l string) bool {
			return slices.ContainsFunc(f.Languages, func(want string) bool {
				return strings.EqualFold(strings.TrimSpace(want), l)
			})
		})
	}
	return true
}

// MonthCount is the number of papers published in one calendar month.
type MonthCount struct {
	Month time.Time `json:"month" yaml:"month"`
	Count int       `json:"count" yaml:"count"`
}

// Counts tallies the papers passing f per month. Every month between the
// first and last is present, including months with no papers. When f has
// both date bounds the months span the bounds; otherwise they span the
// kept papers. Undated papers are not counted. A PMID listed twice with
// different dates is a types.ErrDuplicateKey error.
func Counts(papers []types.Paper, f Filter) ([]MonthCount, error) {
	seen := map[int]types.Date{}
	tally := map[time.Time]int{}
	var first, last time.Time

	for _, p := range papers {
		if !f.keep(p) {
			continue
		}
		if d, ok := seen[p.PMID]; ok {
			if d != p.PubDate {
				return nil, fmt.Errorf("%w: PMID %d has dates %s and %s", types.ErrDuplicateKey, p.PMID, d, p.PubDate)
			}
			continue
		}
		seen[p.PMID] = p.PubDate

		m := monthOf(p.PubDate.Time())
		tally[m]++
		if first.IsZero() || m.Before(first) {
			first = m
		}
		if last.IsZero() || m.After(last) {
			last = m
		}
	}

	if !f.Start.IsZero() && !f.End.IsZero() {
		first, last = monthOf(f.Start.Time()), monthOf(f.End.Time())
	}
	if first.IsZero() || last.Before(first) {
		return nil, nil
	}

	var out []MonthCount
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		out = append(out, MonthCount{Month: m, Count: tally[m]})
	}
	return out, nil
}

func monthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Trim drops leading and trailing months with no papers. A series with
// no papers at all is returned unchanged.
func Trim(counts []MonthCount) []MonthCount {
	lo := slices.IndexFunc(counts, func(c MonthCount) bool { return c.Count > 0 })
	if lo < 0 {
		return counts
	}
	hi := len(counts) - 1
	for counts[hi].Count == 0 {
		hi--
	}
	return counts[lo : hi+1]
}

// Stats summarizes monthly counts.
type Stats struct {
	Months int     `json:"months" yaml:"months"`
	Mean   float64 `json:"mean" yaml:"mean"`
	Std    float64 `json:"std" yaml:"std"`
	Min    float64 `json:"min" yaml:"min"`
	Q1     float64 `json:"q1" yaml:"q1"`
	Median float64 `json:"median" yaml:"median"`
	Q3     float64 `json:"q3" yaml:"q3"`
	Max    float64 `json:"max" yaml:"max"`
}

// Describe computes the summary statistics of counts. Std is the sample
// standard deviation and is 0 for fewer than two months. Quartiles
// interpolate linearly between ranks.
func Describe(counts []MonthCount) Stats {
	n := len(counts)
	if n == 0 {
		return Stats{}
	}
	vals := make([]float64, n)
	var sum float64
	for i, c := range counts {
		vals[i] = float64(c.Count)
		sum += vals[i]
	}
	slices.Sort(vals)

	s := Stats{Months: n, Mean: sum / float64(n), Min: vals[0], Max: vals[n-1]}
	if n > 1 {
		var ss float64
		for _, v := range vals {
			ss += (v - s.Mean) * (v - s.Mean)
		}
		s.Std = math.Sqrt(ss / float64(n-1))
	}
	s.Q1, s.Median, s.Q3 = quantile(vals, 0.25), quantile(vals, 0.5), quantile(vals, 0.75)
	return s
}

func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := min(lo+1, len(sorted)-1)
	return sorted[lo] + (pos-float64(lo))*(sorted[hi]-sorted[lo])
}

// CI returns the 95% interval around the mean: mean ± 1.96 std, with the
// lower bound clipped at 0 and the upper bound at the largest count.
func (s Stats) CI() (lower, upper float64) {
	lower = math.Max(s.Mean-1.96*s.Std, 0)
	upper = math.Min(s.Mean+1.96*s.Std, s.Max)
	return lower, upper
}

// Total returns the number of papers across counts.
func Total(counts []MonthCount) int {
	n := 0
	for _, c := range counts {
		n += c.Count
	}
	return n
}
