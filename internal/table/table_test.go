// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package table

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pubmed-tool/internal/language"
	"github.com/pdiddy/pubmed-tool/pkg/types"
)

func article(pmid int, authors ...types.AuthorMention) types.Article {
	return types.Article{
		PMID:      pmid,
		Title:     "Title",
		PubDate:   types.Date{Year: 2020, Month: time.January, Day: 1},
		Journal:   "J Test",
		Languages: []string{"eng", "fre"},
		Keywords:  []string{"genes", "rna"},
		Authors:   authors,
	}
}

func mention(order int, first, last, initials string) types.AuthorMention {
	return types.AuthorMention{Order: order, First: first, Last: last, Initials: initials}
}

func TestFormat_RowPerAuthor(t *testing.T) {
	rows, err := Format([]types.Article{
		article(1, mention(1, "jane", "doe", "jq"), mention(2, "ada", "king", "a")),
	}, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "doe", rows[0].Last)
	assert.True(t, rows[0].FirstAuthor)
	assert.False(t, rows[1].FirstAuthor)
	for _, r := range rows {
		assert.Equal(t, 2, r.NumAuthors)
		assert.Equal(t, "['genes', 'rna']", r.Keywords)
		assert.Equal(t, "['English', 'French']", r.Language)
	}
}

func TestFormat_NoneListed(t *testing.T) {
	tests := []struct {
		name    string
		authors []types.AuthorMention
	}{
		{"no authors", nil},
		{"single nameless author", []types.AuthorMention{mention(1, "", "", "")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := Format([]types.Article{article(5, tt.authors...)}, nil)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, types.NoneListed, rows[0].Last)
			assert.Equal(t, 0, rows[0].NumAuthors)
			assert.False(t, rows[0].FirstAuthor)
		})
	}
}

func TestFormat_FailedCaptureAndDroppedRows(t *testing.T) {
	rows, err := Format([]types.Article{
		article(7,
			mention(1, "", "", ""),
			mention(2, "ada", "king", "a"),
			mention(3, "", "", "zz"),
		),
	}, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, types.FailedCapture, rows[0].Last)
	assert.True(t, rows[0].FirstAuthor)
	assert.Equal(t, "king", rows[1].Last)
	for _, r := range rows {
		assert.Equal(t, 2, r.NumAuthors)
	}
}

func TestFormat_Duplicates(t *testing.T) {
	a := article(9, mention(1, "jane", "doe", "j"))

	rows, err := Format([]types.Article{a, a}, nil)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "exact duplicate collapsed")

	b := a
	b.Title = "Other"
	_, err = Format([]types.Article{a, b}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrDuplicateKey))
}

func TestFormat_CustomLanguageTable(t *testing.T) {
	rows, err := Format([]types.Article{article(3)}, language.Table{"eng": "english"})
	require.NoError(t, err)
	assert.Equal(t, "['english', 'fre']", rows[0].Language)
}

func TestFullNameKey(t *testing.T) {
	assert.Equal(t, "jq|doe|jane", FullNameKey("jq", "doe", "jane"))
	assert.NotEqual(t, FullNameKey("a|b", "c", ""), FullNameKey("a", "b|c", ""))
	assert.NotEqual(t, FullNameKey(`a\`, "b", ""), FullNameKey("a", `\b`, ""))
}

func TestSplit_ReferentialIntegrity(t *testing.T) {
	rows, err := Format([]types.Article{
		article(1, mention(1, "jane", "doe", "jq"), mention(2, "ada", "king", "a")),
		article(2, mention(1, "ada", "king", "a")),
		article(3),
	}, nil)
	require.NoError(t, err)

	rel, err := Split(rows)
	require.NoError(t, err)
	assert.Len(t, rel.Papers, 3)
	assert.Len(t, rel.Authors, 3, "doe, king, None Listed")
	assert.Len(t, rel.Pairs, 4)

	papers := map[int]bool{}
	for _, p := range rel.Papers {
		papers[p.PMID] = true
	}
	authors := map[string]bool{}
	for _, a := range rel.Authors {
		assert.False(t, authors[a.FullName], "author keys are unique")
		authors[a.FullName] = true
	}
	for _, p := range rel.Pairs {
		assert.True(t, papers[p.PMID], "pair references paper %d", p.PMID)
		assert.True(t, authors[p.FullName], "pair references author %s", p.FullName)
	}

	for _, p := range rel.Papers {
		if p.PMID == 3 {
			assert.Equal(t, 0, p.NumAuthors)
		}
	}
}

func TestSplit_PairFirstAuthorMerged(t *testing.T) {
	paper := types.Paper{PMID: 4, Title: "T"}
	rows := []types.Row{
		{Paper: paper, First: "jane", Last: "doe", Initials: "j", FirstAuthor: false},
		{Paper: paper, First: "jane", Last: "doe", Initials: "j", FirstAuthor: true},
	}
	rel, err := Split(rows)
	require.NoError(t, err)
	require.Len(t, rel.Pairs, 1)
	assert.True(t, rel.Pairs[0].FirstAuthor)
}

func TestSplit_ConflictingPaper(t *testing.T) {
	rows := []types.Row{
		{Paper: types.Paper{PMID: 4, Title: "A"}, Last: "doe"},
		{Paper: types.Paper{PMID: 4, Title: "B"}, Last: "roe"},
	}
	_, err := Split(rows)
	assert.True(t, errors.Is(err, types.ErrDuplicateKey))
}
