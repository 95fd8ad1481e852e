// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package table turns a batch of assembled articles into the denormalized
// row-per-author table and splits that table into the papers, authors, and
// authorship-pair relations.
package table

import (
	"fmt"
	"reflect"

	"github.com/pdiddy/pubmed-tool/internal/language"
	"github.com/pdiddy/pubmed-tool/pkg/types"
)

// Format explodes articles into one row per (article, author).
//
// An article with a single row and no resolved last name is marked
// types.NoneListed and counts zero authors. Any other leading row without a
// last name is marked types.FailedCapture. Remaining rows without a last
// name are dropped. Exact duplicate articles are collapsed; the same PMID
// with different content is a types.ErrDuplicateKey error. A nil lang uses
// the built-in language table.
func Format(articles []types.Article, lang language.Lookup) ([]types.Row, error) {
	if lang == nil {
		lang = language.Default()
	}

	seen := make(map[int]int, len(articles))
	var unique []types.Article
	for i, a := range articles {
		if j, ok := seen[a.PMID]; ok {
			if !reflect.DeepEqual(articles[j], a) {
				return nil, fmt.Errorf("%w: PMID %d appears with different content", types.ErrDuplicateKey, a.PMID)
			}
			continue
		}
		seen[a.PMID] = i
		unique = append(unique, a)
	}

	var rows []types.Row
	for _, a := range unique {
		rows = append(rows, articleRows(a, lang)...)
	}
	return rows, nil
}

// articleRows applies the per-article row rules.
func articleRows(a types.Article, lang language.Lookup) []types.Row {
	paper := types.Paper{
		PMID:       a.PMID,
		Title:      a.Title,
		PubDate:    a.PubDate,
		Abstract:   a.Abstract,
		Journal:    a.Journal,
		ISOAbbrev:  a.ISOAbbrev,
		Volume:     a.Volume,
		Issue:      a.Issue,
		PageStart:  a.PageStart,
		PageEnd:    a.PageEnd,
		OtherType:  a.OtherType,
		OtherValue: a.OtherValue,
		Keywords:   language.FormatList(a.Keywords),
		Language:   language.FormatList(language.Translate(lang, a.Languages)),
	}

	mentions := a.Authors
	if len(mentions) == 0 {
		mentions = []types.AuthorMention{{}}
	}

	if len(mentions) == 1 && mentions[0].Last == "" {
		m := mentions[0]
		return []types.Row{{
			Paper:    paper,
			First:    m.First,
			Last:     types.NoneListed,
			Initials: m.Initials,
		}}
	}

	rows := make([]types.Row, 0, len(mentions))
	for _, m := range mentions {
		last := m.Last
		if last == "" {
			if m.Order >= 2 {
				continue
			}
			last = types.FailedCapture
		}
		rows = append(rows, types.Row{
			Paper:       paper,
			First:       m.First,
			Last:        last,
			Initials:    m.Initials,
			FirstAuthor: m.Order == 1,
		})
	}
	for i := range rows {
		rows[i].NumAuthors = len(rows)
	}
	return rows
}
