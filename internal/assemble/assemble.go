// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assemble turns raw E-utilities records into canonical articles by
// composing the field normalizers over each record.
package assemble

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdiddy/pubmed-tool/internal/diag"
	"github.com/pdiddy/pubmed-tool/internal/eutils"
	"github.com/pdiddy/pubmed-tool/internal/normalize"
	"github.com/pdiddy/pubmed-tool/pkg/types"
)

// Outcome is the result of assembling one record. Err is non-nil when the
// record was structurally unusable; Notes lists fields that resolved to
// missing and why.
type Outcome struct {
	Article types.Article
	Notes   []string
	Err     error
}

// Failure identifies a record that could not be assembled.
type Failure struct {
	Index int
	PMID  string
	Err   error
}

// BatchResult holds the outcome of assembling a batch of records.
type BatchResult struct {
	Articles []types.Article
	Failures []Failure
	Notes    int
}

// Total returns the number of records processed.
func (r BatchResult) Total() int {
	return len(r.Articles) + len(r.Failures)
}

// HasFailures reports whether any record failed.
func (r BatchResult) HasFailures() bool {
	return len(r.Failures) > 0
}

// Record assembles one raw record. Title, journal, and abbreviation are
// lowercased and trimmed. A record without a citation, an article, or a
// valid PMID yields an Outcome whose Err wraps types.ErrRecordMalformed.
func Record(raw eutils.RawRecord) Outcome {
	var out Outcome
	note := func(field string, r normalize.Reason) {
		if r != "" {
			out.Notes = append(out.Notes, field+": "+string(r))
		}
	}

	c := raw.Citation
	if c == nil {
		out.Err = fmt.Errorf("%w: no MedlineCitation", types.ErrRecordMalformed)
		return out
	}
	pmid, err := parsePMID(c.PMID.String())
	if err != nil {
		out.Err = err
		return out
	}
	if c.Article == nil {
		out.Err = fmt.Errorf("%w: PMID %d has no Article", types.ErrRecordMalformed, pmid)
		return out
	}
	a := c.Article

	art := types.Article{
		PMID:     pmid,
		Title:    text(a.Title.String()),
		Abstract: abstract(a.Abstract),
		Keywords: keywords(c.KeywordLists),
	}

	var langs []string
	for _, l := range a.Languages {
		langs = append(langs, l.String())
	}
	art.Languages = normalize.Languages(langs)

	if p := a.Pagination; p != nil {
		var r normalize.Reason
		art.PageStart, art.PageEnd, r = normalize.Pagination(p.StartPage.String(), p.EndPage.String(), p.MedlinePgn.String())
		note("pagination", r)
	} else {
		note("pagination", "no pagination")
	}

	if a.AuthorList != nil {
		for i, au := range a.AuthorList.Authors {
			m, r := normalize.Author(normalize.AuthorName{
				ForeName: au.ForeName.String(),
				Initials: au.Initials.String(),
				LastName: au.LastName.String(),
			}, i)
			note(fmt.Sprintf("author %d", i+1), r)
			art.Authors = append(art.Authors, m)
		}
	}

	jd := journal(a.Journal, &art, note)

	art.PubDate = jd
	if art.PubDate.IsZero() && len(a.ArticleDates) > 0 {
		d, r := normalize.Date(dateParts(&a.ArticleDates[0]))
		note("article date", r)
		art.PubDate = d
	}

	out.Article = art
	return out
}

// journal fills the journal-level fields of art and returns the journal
// publication date, zero when absent or unresolvable.
func journal(j *eutils.Journal, art *types.Article, note func(string, normalize.Reason)) types.Date {
	if j == nil {
		note("journal", "no journal")
		return types.Date{}
	}
	art.Journal = text(j.Title.String())
	art.ISOAbbrev = text(j.ISOAbbreviation.String())

	ji := j.Issue
	if ji == nil {
		note("journal issue", "no journal issue")
		return types.Date{}
	}

	vol, r := normalize.Volume(ji.Volume.String())
	if ji.Volume.String() != "" {
		note("volume", r)
	}
	iss, r := normalize.Volume(ji.Issue.String())
	if ji.Issue.String() != "" {
		note("issue", r)
	}
	art.Volume, art.Issue = vol.Number, iss.Number

	// The issue's qualifier wins over the volume's.
	switch {
	case iss.Kind != types.DesignatorNone:
		art.OtherType, art.OtherValue = iss.Kind, iss.Aux
	case vol.Kind != types.DesignatorNone:
		art.OtherType, art.OtherValue = vol.Kind, vol.Aux
	}

	if ji.PubDate == nil {
		return types.Date{}
	}
	d, r := normalize.Date(dateParts(ji.PubDate))
	note("journal date", r)
	return d
}

// Batch assembles every record, continuing past failures. Failures and
// notes are reported to log; a one-line summary goes to w when non-nil.
func Batch(records []eutils.RawRecord, log diag.Sink, w io.Writer) BatchResult {
	if log == nil {
		log = diag.Nop()
	}
	var result BatchResult
	for i, raw := range records {
		o := Record(raw)
		if o.Err != nil {
			f := Failure{Index: i, Err: o.Err}
			if raw.Citation != nil {
				f.PMID = raw.Citation.PMID.String()
			}
			log.Warn("record skipped", "index", i, "pmid", f.PMID, "error", o.Err)
			result.Failures = append(result.Failures, f)
			continue
		}
		for _, n := range o.Notes {
			log.Debug("field missing", "pmid", o.Article.PMID, "note", n)
		}
		result.Notes += len(o.Notes)
		result.Articles = append(result.Articles, o.Article)
	}
	if w != nil {
		fmt.Fprintf(w, "Assembled %d of %d records (%d failed)\n",
			len(result.Articles), result.Total(), len(result.Failures))
	}
	return result
}

// text is the canonical form of a free-text field.
func text(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func parsePMID(s string) (int, error) {
	if s == "" || len(s) > 8 || strings.Trim(s, "0123456789") != "" {
		return 0, fmt.Errorf("%w: invalid PMID %q", types.ErrRecordMalformed, s)
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || n > types.MaxPMID {
		return 0, fmt.Errorf("%w: invalid PMID %q", types.ErrRecordMalformed, s)
	}
	return n, nil
}

func abstract(a *eutils.Abstract) string {
	if a == nil {
		return ""
	}
	var parts []string
	for _, s := range a.Sections {
		if t := s.String(); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func keywords(lists []eutils.KeywordList) []string {
	groups := make([][]string, 0, len(lists))
	for _, l := range lists {
		var g []string
		for _, k := range l.Keywords {
			g = append(g, k.String())
		}
		groups = append(groups, g)
	}
	return normalize.Keywords(groups)
}

func dateParts(d *eutils.DateParts) normalize.DateParts {
	return normalize.DateParts{
		Year:   d.Year.String(),
		Month:  d.Month.String(),
		Day:    d.Day.String(),
		Season: d.Season.String(),
		Free:   d.MedlineDate.String(),
	}
}
