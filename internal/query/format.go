// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Output formats accepted by Write.
const (
	FormatTableName = "table"
	FormatJSONName  = "json"
	FormatYAMLName  = "yaml"
	FormatCSLName   = "csl"
)

// Write renders groups in the named format.
func Write(w io.Writer, groups []AuthorGroup, format string) error {
	switch strings.ToLower(format) {
	case "", FormatTableName:
		FormatTable(groups, w)
		return nil
	case FormatJSONName:
		return FormatJSON(groups, w)
	case FormatYAMLName:
		return FormatYAML(groups, w)
	case FormatCSLName:
		return FormatCSL(groups, w)
	default:
		return fmt.Errorf("unknown output format %q (want table, json, yaml, or csl)", format)
	}
}

// FormatTable writes a human-readable table, one line per match.
func FormatTable(groups []AuthorGroup, w io.Writer) {
	if len(groups) == 0 {
		fmt.Fprintln(w, "No matches found.")
		return
	}

	fmt.Fprintf(w, "%-24s  %-8s  %-5s  %-50s  %-10s  %s\n",
		"Author", "PMID", "First", "Title", "Date", "Journal")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for _, g := range groups {
		name := displayName(g.Author.First, g.Author.Initials, g.Author.Last)
		for _, m := range g.Papers {
			first := ""
			if m.FirstAuthor {
				first = "yes"
			}
			fmt.Fprintf(w, "%-24s  %-8d  %-5s  %-50s  %-10s  %s\n",
				truncate(name, 24), m.PMID, first, truncate(m.Title, 50), m.PubDate.String(), truncate(m.Journal, 30))
		}
	}

	fmt.Fprintf(w, "\n%d matches across %d authors\n", Total(groups), len(groups))
}

// FormatJSON writes groups as indented JSON.
func FormatJSON(groups []AuthorGroup, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if groups == nil {
		groups = []AuthorGroup{}
	}
	return enc.Encode(groups)
}

// FormatYAML writes groups as YAML.
func FormatYAML(groups []AuthorGroup, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	enc.SetIndent(2)
	if groups == nil {
		groups = []AuthorGroup{}
	}
	return enc.Encode(groups)
}

func displayName(first, initials, last string) string {
	given := first
	if given == "" {
		given = initials
	}
	return strings.TrimSpace(given + " " + last)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func itoaPtr(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}
