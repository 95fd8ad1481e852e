// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Paper holds the paper-level columns of the denormalized table. Keywords
// and Language are bracketed list text (e.g. "['english', 'french']").
type Paper struct {
	PMID       int        `json:"pmid" yaml:"pmid"`
	Title      string     `json:"title" yaml:"title"`
	PubDate    Date       `json:"pubdate" yaml:"pubdate"`
	Abstract   string     `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Journal    string     `json:"journal" yaml:"journal"`
	ISOAbbrev  string     `json:"isoabbrev" yaml:"isoabbrev"`
	NumAuthors int        `json:"numauthors" yaml:"numauthors"`
	Volume     *int       `json:"volume,omitempty" yaml:"volume,omitempty"`
	Issue      *int       `json:"issue,omitempty" yaml:"issue,omitempty"`
	PageStart  string     `json:"page_start,omitempty" yaml:"page_start,omitempty"`
	PageEnd    string     `json:"page_end,omitempty" yaml:"page_end,omitempty"`
	OtherType  Designator `json:"other_type,omitempty" yaml:"other_type,omitempty"`
	OtherValue string     `json:"other_val,omitempty" yaml:"other_val,omitempty"`
	Keywords   string     `json:"keywords" yaml:"keywords"`
	Language   string     `json:"language" yaml:"language"`
}

// Equal reports whether p and q carry identical paper-level data.
func (p Paper) Equal(q Paper) bool {
	return p.PMID == q.PMID &&
		p.Title == q.Title &&
		p.PubDate == q.PubDate &&
		p.Abstract == q.Abstract &&
		p.Journal == q.Journal &&
		p.ISOAbbrev == q.ISOAbbrev &&
		p.NumAuthors == q.NumAuthors &&
		EqualIntPtr(p.Volume, q.Volume) &&
		EqualIntPtr(p.Issue, q.Issue) &&
		p.PageStart == q.PageStart &&
		p.PageEnd == q.PageEnd &&
		p.OtherType == q.OtherType &&
		p.OtherValue == q.OtherValue &&
		p.Keywords == q.Keywords &&
		p.Language == q.Language
}

// Row is one (article, author) row of the denormalized table produced by
// the table formatter.
type Row struct {
	Paper
	First       string `json:"first,omitempty" yaml:"first,omitempty"`
	Last        string `json:"last" yaml:"last"`
	Initials    string `json:"initials,omitempty" yaml:"initials,omitempty"`
	FirstAuthor bool   `json:"firstauthor" yaml:"firstauthor"`
}

// Author is a deduplicated author entity keyed by FullName.
type Author struct {
	FullName string `json:"fullname" yaml:"fullname"`
	First    string `json:"first,omitempty" yaml:"first,omitempty"`
	Last     string `json:"last" yaml:"last"`
	Initials string `json:"initials,omitempty" yaml:"initials,omitempty"`
}

// Pair relates one paper to one author.
type Pair struct {
	PMID        int    `json:"pmid" yaml:"pmid"`
	FullName    string `json:"fullname" yaml:"fullname"`
	FirstAuthor bool   `json:"firstauthor" yaml:"firstauthor"`
}

// Relations holds the three projections written to the store.
type Relations struct {
	Papers  []Paper
	Authors []Author
	Pairs   []Pair
}
