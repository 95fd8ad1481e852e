// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the canonical data model shared by the pubmed-tool
// pipeline: assembled articles, the denormalized row table, and the three
// stored relations (papers, authors, author-paper pairs).
package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// Designator names a non-numeric qualifier found in a volume or issue field.
type Designator string

const (
	DesignatorNone       Designator = ""
	DesignatorIssueRange Designator = "Issue Range"
	DesignatorSupplement Designator = "Supplement"
	DesignatorPart       Designator = "Part"
	DesignatorSpecial    Designator = "Special No."
)

// Sentinel last names assigned by the table formatter.
const (
	NoneListed    = "None Listed"
	FailedCapture = "Failed Capture"
)

// MaxPMID is the largest valid PubMed identifier (8 digits).
const MaxPMID = 99999999

// Date is a calendar date without a time of day. The zero value means the
// date is missing.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

// NewDate returns the date for year, month, day. ok is false when the triple
// is not a real calendar date (e.g. 2023-02-30).
func NewDate(year int, month time.Month, day int) (d Date, ok bool) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return Date{}, false
	}
	return Date{Year: year, Month: month, Day: day}, true
}

// ParseDate parses a YYYY-MM-DD string. The empty string yields the zero Date.
func ParseDate(s string) (Date, error) {
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// IsZero reports whether the date is missing.
func (d Date) IsZero() bool { return d.Year == 0 }

// Time returns the date at midnight UTC, or the zero time when missing.
func (d Date) Time() time.Time {
	if d.IsZero() {
		return time.Time{}
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// String formats the date as YYYY-MM-DD, or "" when missing.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format(dateLayout)
}

// MarshalJSON encodes the date as a YYYY-MM-DD string or null.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts a YYYY-MM-DD string or null.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(*s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalYAML encodes the date as a YYYY-MM-DD string.
func (d Date) MarshalYAML() (any, error) {
	return d.String(), nil
}

// AuthorMention is one entry of an article's author list. Empty strings
// mean the field could not be resolved; Order is 1-based and 0 when unknown.
type AuthorMention struct {
	Order    int    `json:"order,omitempty" yaml:"order,omitempty"`
	First    string `json:"first,omitempty" yaml:"first,omitempty"`
	Last     string `json:"last,omitempty" yaml:"last,omitempty"`
	Initials string `json:"initials,omitempty" yaml:"initials,omitempty"`
}

// Article is the canonical form of one PubMed citation.
type Article struct {
	PMID       int             `json:"pmid" yaml:"pmid"`
	Title      string          `json:"title" yaml:"title"`
	Abstract   string          `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	PubDate    Date            `json:"pubdate" yaml:"pubdate"`
	Journal    string          `json:"journal" yaml:"journal"`
	ISOAbbrev  string          `json:"isoabbrev" yaml:"isoabbrev"`
	Volume     *int            `json:"volume,omitempty" yaml:"volume,omitempty"`
	Issue      *int            `json:"issue,omitempty" yaml:"issue,omitempty"`
	OtherType  Designator      `json:"other_type,omitempty" yaml:"other_type,omitempty"`
	OtherValue string          `json:"other_val,omitempty" yaml:"other_val,omitempty"`
	PageStart  string          `json:"page_start,omitempty" yaml:"page_start,omitempty"`
	PageEnd    string          `json:"page_end,omitempty" yaml:"page_end,omitempty"`
	Languages  []string        `json:"language,omitempty" yaml:"language,omitempty"`
	Keywords   []string        `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Authors    []AuthorMention `json:"authors,omitempty" yaml:"authors,omitempty"`
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// EqualIntPtr reports whether a and b are both nil or point to equal values.
func EqualIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
