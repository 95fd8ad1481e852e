// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"io"
	"strconv"

	"go.yaml.in/yaml/v3"
)

// CSLItem is a bibliographic entry in CSL (Citation Style Language) form,
// consumable by Pandoc and reference managers.
type CSLItem struct {
	ID             string    `yaml:"id"`
	Type           string    `yaml:"type"`
	Title          string    `yaml:"title"`
	Author         []CSLName `yaml:"author,omitempty"`
	ContainerTitle string    `yaml:"container-title,omitempty"`
	JournalAbbrev  string    `yaml:"container-title-short,omitempty"`
	Volume         string    `yaml:"volume,omitempty"`
	Issue          string    `yaml:"issue,omitempty"`
	Page           string    `yaml:"page,omitempty"`
	Abstract       string    `yaml:"abstract,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty"`
	PMID           string    `yaml:"PMID"`
}

// CSLName is a person's name in CSL form.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate is a date in CSL date-parts form.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// FormatCSL writes one CSL-YAML item per matched paper, listing the
// matched authors of that paper in first-author-first order.
func FormatCSL(groups []AuthorGroup, w io.Writer) error {
	var (
		items []CSLItem
		index = map[int]int{}
	)
	for _, g := range groups {
		name := cslName(g.Author.First, g.Author.Initials, g.Author.Last)
		for _, m := range g.Papers {
			i, ok := index[m.PMID]
			if !ok {
				i = len(items)
				index[m.PMID] = i
				items = append(items, toCSLItem(m))
			}
			if m.FirstAuthor {
				items[i].Author = append([]CSLName{name}, items[i].Author...)
			} else {
				items[i].Author = append(items[i].Author, name)
			}
		}
	}
	if items == nil {
		items = []CSLItem{}
	}

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

func toCSLItem(m Match) CSLItem {
	item := CSLItem{
		ID:             "pmid" + strconv.Itoa(m.PMID),
		Type:           "article-journal",
		Title:          m.Title,
		ContainerTitle: m.Journal,
		JournalAbbrev:  m.ISOAbbrev,
		Volume:         itoaPtr(m.Volume),
		Issue:          itoaPtr(m.Issue),
		Abstract:       m.Abstract,
		PMID:           strconv.Itoa(m.PMID),
	}
	switch {
	case m.PageStart != "" && m.PageEnd != "" && m.PageEnd != m.PageStart:
		item.Page = m.PageStart + "-" + m.PageEnd
	case m.PageStart != "":
		item.Page = m.PageStart
	}
	if !m.PubDate.IsZero() {
		item.Issued = &CSLDate{DateParts: [][]int{{m.PubDate.Year, int(m.PubDate.Month), m.PubDate.Day}}}
	}
	return item
}

// cslName maps a stored author to CSL. Sentinel authors without a real
// name use the literal field.
func cslName(first, initials, last string) CSLName {
	given := first
	if given == "" {
		given = initials
	}
	if given == "" {
		return CSLName{Literal: last}
	}
	return CSLName{Family: last, Given: given}
}
