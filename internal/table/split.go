// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package table

import (
	"fmt"
	"strings"

	"github.com/pdiddy/pubmed-tool/pkg/types"
)

var keyEscaper = strings.NewReplacer(`\`, `\\`, `|`, `\|`)

// FullNameKey derives the author identity from initials, last name, and
// first name. Parts are joined with '|' after escaping, so distinct triples
// never share a key. Two different people with the same name share a key.
func FullNameKey(initials, last, first string) string {
	return keyEscaper.Replace(initials) + "|" + keyEscaper.Replace(last) + "|" + keyEscaper.Replace(first)
}

// Split partitions formatted rows into the three relations. Papers are
// deduplicated by PMID, authors by FullNameKey, and pairs by (PMID, key)
// with the first-author flag OR-ed. Every pair references a paper and an
// author present in the result.
func Split(rows []types.Row) (types.Relations, error) {
	var rel types.Relations

	papers := make(map[int]int)
	authors := make(map[string]bool)
	type pairKey struct {
		pmid int
		name string
	}
	pairs := make(map[pairKey]int)

	for _, r := range rows {
		if i, ok := papers[r.PMID]; ok {
			if !rel.Papers[i].Equal(r.Paper) {
				return types.Relations{}, fmt.Errorf("%w: PMID %d has conflicting paper rows", types.ErrDuplicateKey, r.PMID)
			}
		} else {
			papers[r.PMID] = len(rel.Papers)
			rel.Papers = append(rel.Papers, r.Paper)
		}

		key := FullNameKey(r.Initials, r.Last, r.First)
		if !authors[key] {
			authors[key] = true
			rel.Authors = append(rel.Authors, types.Author{
				FullName: key,
				First:    r.First,
				Last:     r.Last,
				Initials: r.Initials,
			})
		}

		pk := pairKey{r.PMID, key}
		if i, ok := pairs[pk]; ok {
			rel.Pairs[i].FirstAuthor = rel.Pairs[i].FirstAuthor || r.FirstAuthor
			continue
		}
		pairs[pk] = len(rel.Pairs)
		rel.Pairs = append(rel.Pairs, types.Pair{PMID: r.PMID, FullName: key, FirstAuthor: r.FirstAuthor})
	}
	return rel, nil
}
