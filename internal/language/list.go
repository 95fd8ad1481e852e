// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package language

import (
	"fmt"
	"strings"
)

// FormatList renders items as a bracketed, quoted list such as
// ['english', 'french']. Items containing a single quote are double quoted.
// An empty list renders as [].
func FormatList(items []string) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, it := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		q := byte('\'')
		if strings.ContainsRune(it, '\'') {
			q = '"'
		}
		b.WriteByte(q)
		b.WriteString(it)
		b.WriteByte(q)
	}
	b.WriteByte(']')
	return b.String()
}

// ParseList reads text produced by FormatList back into items. The empty
// string parses as an empty list.
func ParseList(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "[]" {
		return nil, nil
	}
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("list %q is not bracketed", s)
	}
	body := s[1 : len(s)-1]

	var out []string
	for i := 0; i < len(body); {
		switch c := body[i]; c {
		case ' ', ',':
			i++
		case '\'', '"':
			end := strings.IndexByte(body[i+1:], c)
			if end < 0 {
				return nil, fmt.Errorf("list %q has an unterminated item", s)
			}
			out = append(out, body[i+1:i+1+end])
			i += end + 2
		default:
			return nil, fmt.Errorf("list %q has an unquoted item at offset %d", s, i+1)
		}
	}
	return out, nil
}
