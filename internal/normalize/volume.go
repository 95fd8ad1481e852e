// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/pubmed-tool/pkg/types"
)

var volumeRe = regexp.MustCompile(`^([0-9]*)([^0-9]*)([0-9]*)`)

// VolumeIssue is a resolved volume or issue token.
type VolumeIssue struct {
	// Number is the volume or issue number, nil when none applies.
	Number *int
	// Kind classifies a non-numeric qualifier.
	Kind types.Designator
	// Aux is the qualifier's value, e.g. the part or supplement number.
	Aux string
}

// Volume resolves a raw volume or issue token. Digits alone are the number.
// Otherwise the token is read as leading digits / qualifier / trailing
// digits: the number comes from the leading digits, or from the trailing
// digits when the qualifier spells out "vol" or "iss". An issue range such
// as "3-4" has no single number and keeps the range as Aux.
func Volume(token string) (VolumeIssue, Reason) {
	s := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(token, "\u00a0", " ")))
	if s == "" {
		return VolumeIssue{}, "empty"
	}
	if isDigits(s, 1, len(s)) {
		n, err := strconv.Atoi(s)
		if err != nil {
			return VolumeIssue{}, Reason(fmt.Sprintf("number %q out of range", s))
		}
		return VolumeIssue{Number: &n}, ""
	}

	m := volumeRe.FindStringSubmatch(s)
	lead, mid, trail := m[1], strings.TrimSpace(m[2]), m[3]

	var out VolumeIssue
	spelled := (strings.Contains(mid, "vol") || strings.Contains(mid, "iss")) && trail != ""
	switch {
	case mid == "-":
		out.Kind = types.DesignatorIssueRange
	case strings.Contains(mid, "sup"):
		out.Kind = types.DesignatorSupplement
	case strings.Contains(mid, "part") || strings.Contains(mid, "pt") || strings.Contains(mid, "cz"):
		out.Kind = types.DesignatorPart
	case strings.Contains(mid, "spec"):
		out.Kind = types.DesignatorSpecial
	}

	if out.Kind == types.DesignatorIssueRange {
		out.Aux = lead + "-" + trail
		return out, ""
	}

	switch {
	case lead != "":
		if n, err := strconv.Atoi(lead); err == nil {
			out.Number = &n
		}
	case spelled:
		if n, err := strconv.Atoi(trail); err == nil {
			out.Number = &n
		}
	}
	if !spelled || lead != "" {
		out.Aux = trail
	}

	if out.Number == nil && out.Kind == types.DesignatorNone {
		return out, Reason(fmt.Sprintf("unrecognized token %q", s))
	}
	return out, ""
}
