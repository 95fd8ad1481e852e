// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	pageRangeRe  = regexp.MustCompile(`^([0-9A-Za-z]+)[\s\-–:/,]+([0-9A-Za-z]+)$`)
	pageSingleRe = regexp.MustCompile(`^[0-9A-Za-z]+$`)
)

// Pagination resolves start and end page labels. Explicit start/end fields
// win; otherwise the combined pagination text ("123-9", "e123") is parsed.
// A lone start page is also the end page. Labels stay strings because
// electronic page labels are not numeric.
func Pagination(start, end, combined string) (string, string, Reason) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)

	if start == "" && end == "" {
		c := strings.TrimSpace(combined)
		switch {
		case c == "":
			return "", "", "no pagination"
		case pageRangeRe.MatchString(c):
			m := pageRangeRe.FindStringSubmatch(c)
			start, end = m[1], m[2]
		case pageSingleRe.MatchString(c):
			start = c
		default:
			return "", "", Reason(fmt.Sprintf("unparseable pagination %q", c))
		}
	}

	if end == "" {
		end = start
	}
	return start, end, ""
}

// Keywords merges every keyword group into one lowercase, deduplicated,
// sorted list.
func Keywords(groups [][]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, g := range groups {
		for _, kw := range g {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" || seen[kw] {
				continue
			}
			seen[kw] = true
			out = append(out, kw)
		}
	}
	sort.Strings(out)
	return out
}

// Languages returns the language codes in source order, lowercased, with
// blanks removed. Duplicates are kept; position is meaningful.
func Languages(codes []string) []string {
	var out []string
	for _, c := range codes {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}
