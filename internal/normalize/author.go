// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/pubmed-tool/pkg/types"
)

// AuthorName is one raw author-list entry. Any field may be empty.
type AuthorName struct {
	ForeName string
	Initials string
	LastName string
}

// Author resolves a raw author entry at 0-based position index into a
// mention with lowercase name fields.
//
// A fore name that equals the initials once spaces are removed carries no
// information and is dropped. A multi-token fore name whose token initials
// match the given initials loses its single-letter tokens, which were extra
// initials. Missing initials are derived from the fore name tokens, or from
// its first letter.
func Author(n AuthorName, index int) (types.AuthorMention, Reason) {
	first := strings.ToLower(strings.TrimSpace(n.ForeName))
	initials := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(n.Initials)), " ", "")
	last := strings.ToLower(strings.TrimSpace(n.LastName))

	if first != "" && strings.ReplaceAll(first, " ", "") == initials {
		first = ""
	}

	var derived string
	if strings.Contains(first, " ") {
		var pieces, long []string
		for _, tok := range strings.Split(first, " ") {
			tok = strings.NewReplacer(".", "", ",", "").Replace(strings.TrimSpace(tok))
			if tok == "" {
				continue
			}
			pieces = append(pieces, tok)
			if utf8.RuneCountInString(tok) > 1 {
				long = append(long, tok)
			}
		}
		var b strings.Builder
		for _, p := range pieces {
			r, _ := utf8.DecodeRuneInString(p)
			b.WriteRune(r)
		}
		derived = b.String()
		if initials != "" && derived == initials {
			first = strings.Join(long, " ")
		}
	}

	if initials == "" {
		switch {
		case derived != "":
			initials = derived
		case first != "":
			r, _ := utf8.DecodeRuneInString(first)
			initials = string(r)
		}
	}

	m := types.AuthorMention{
		Order:    index + 1,
		First:    first,
		Last:     last,
		Initials: initials,
	}
	if last == "" {
		return m, "no last name"
	}
	return m, ""
}
