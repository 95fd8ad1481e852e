// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package query searches the stored relations by author name and returns
// the matching papers grouped by author.
package query

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pdiddy/pubmed-tool/internal/store"
	"github.com/pdiddy/pubmed-tool/internal/validate"
	"github.com/pdiddy/pubmed-tool/pkg/types"
)

// Terms are optional author-name search terms. Each non-empty field is a
// case-insensitive substring match; all present terms are OR-ed. Any
// matches last name, first name, or initials.
type Terms struct {
	Any      string `json:"any,omitempty" yaml:"any,omitempty"`
	First    string `json:"first,omitempty" yaml:"first,omitempty"`
	Last     string `json:"last,omitempty" yaml:"last,omitempty"`
	Initials string `json:"initials,omitempty" yaml:"initials,omitempty"`
}

// Normalize trims and lowercases every term.
func (t Terms) Normalize() Terms {
	clean := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	return Terms{Any: clean(t.Any), First: clean(t.First), Last: clean(t.Last), Initials: clean(t.Initials)}
}

// IsEmpty reports whether no term is set.
func (t Terms) IsEmpty() bool {
	n := t.Normalize()
	return n.Any == "" && n.First == "" && n.Last == "" && n.Initials == ""
}

// Statement is a composed SQL query with its positional arguments.
type Statement struct {
	SQL  string
	Args []any
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likeArg(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

// Compose builds the author search over the three relations. Results join
// authors to pairs to papers on key equality and are ordered by author key
// then PMID. With no terms every joined row matches.
func Compose(tables types.TableNames, terms Terms) (Statement, error) {
	if err := validate.TableNames(tables); err != nil {
		return Statement{}, err
	}
	t := terms.Normalize()

	var (
		preds []string
		args  []any
	)
	like := func(col, term string) {
		preds = append(preds, fmt.Sprintf(`a.%s LIKE ? ESCAPE '\'`, col))
		args = append(args, likeArg(term))
	}
	if t.First != "" {
		like("first", t.First)
	}
	if t.Initials != "" {
		like("initials", t.Initials)
	}
	if t.Last != "" {
		like("last", t.Last)
	}
	if t.Any != "" {
		for _, col := range []string{"last", "first", "initials"} {
			like(col, t.Any)
		}
	}

	var qb strings.Builder
	fmt.Fprintf(&qb, `SELECT pr.fullname, pr.firstauthor, a.first, a.last, a.initials,
	p.pmid, p.title, p.pubdate, p.abstract, p.journal, p.isoabbrev, p.numauthors,
	p.volume, p.issue, p.page_start, p.page_end, p.other_type, p.other_val,
	p.keywords, p.language
FROM %q pr
JOIN %q a ON a.fullname = pr.fullname
JOIN %q p ON p.pmid = pr.pmid`, tables.Pairs, tables.Authors, tables.Papers)
	if len(preds) > 0 {
		qb.WriteString("\nWHERE ")
		qb.WriteString(strings.Join(preds, " OR "))
	}
	qb.WriteString("\nORDER BY pr.fullname, p.pmid")

	return Statement{SQL: qb.String(), Args: args}, nil
}

// Match is one paper credited to an author.
type Match struct {
	types.Paper `yaml:",inline"`
	FirstAuthor bool `json:"firstauthor" yaml:"firstauthor"`
}

// AuthorGroup is one author with every matching paper.
type AuthorGroup struct {
	Author types.Author `json:"author" yaml:"author"`
	Papers []Match      `json:"papers" yaml:"papers"`
}

// Total returns the number of (author, paper) matches across groups.
func Total(groups []AuthorGroup) int {
	n := 0
	for _, g := range groups {
		n += len(g.Papers)
	}
	return n
}

// Run checks that the relations exist, executes the composed search, and
// groups rows by author key. A missing relation, or one lacking the expected
// columns, is a types.ErrSchema error.
func Run(ctx context.Context, s *store.Store, terms Terms) ([]AuthorGroup, error) {
	if err := s.RequireTables(ctx); err != nil {
		return nil, err
	}
	stmt, err := Compose(s.Tables(), terms)
	if err != nil {
		return nil, err
	}
	rows, err := s.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []AuthorGroup
	for rows.Next() {
		var (
			au                    types.Author
			first, initials, last sql.NullString
			firstAuthor           bool
		)
		paper, err := store.ScanPaper(prefixed{rows, []any{&au.FullName, &firstAuthor, &first, &last, &initials}})
		if err != nil {
			return nil, err
		}
		au.First, au.Last, au.Initials = first.String, last.String, initials.String

		if n := len(groups); n == 0 || groups[n-1].Author.FullName != au.FullName {
			groups = append(groups, AuthorGroup{Author: au})
		}
		g := &groups[len(groups)-1]
		g.Papers = append(g.Papers, Match{Paper: paper, FirstAuthor: firstAuthor})
	}
	return groups, rows.Err()
}

// prefixed scans leading columns into head before the paper columns.
type prefixed struct {
	rows *sql.Rows
	head []any
}

func (p prefixed) Scan(dest ...any) error {
	return p.rows.Scan(append(append([]any{}, p.head...), dest...)...)
}
