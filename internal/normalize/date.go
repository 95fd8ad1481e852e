// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize converts single raw citation sub-fields (dates, author
// names, volume/issue tokens, pagination, keyword and language lists) into
// canonical values. Every function is total: malformed input yields a
// missing value and a Reason, never an error or panic.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/pubmed-tool/pkg/types"
)

// Reason explains why a normalized value is missing. The empty Reason means
// the value resolved.
type Reason string

// monthAbbrev maps 3-letter month and meteorological season names to the
// month they start in.
var monthAbbrev = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
	"spr": time.March, "sum": time.June, "fal": time.September,
	"win": time.December,
}

var (
	freeYearRe  = regexp.MustCompile(`[0-9]{4}`)
	freeMonthRe = regexp.MustCompile(`[A-Za-z]{3}`)
)

// DateParts is a loose date as found in citation records. Any field may be
// empty. Free holds unstructured text such as "1998 Dec-1999 Jan".
type DateParts struct {
	Year   string
	Month  string
	Day    string
	Season string
	Free   string
}

// IsEmpty reports whether no field is set.
func (p DateParts) IsEmpty() bool {
	return strings.TrimSpace(p.Year+p.Month+p.Day+p.Season+p.Free) == ""
}

// Date resolves p into a calendar date. A missing month or day rounds to
// the first; a present but malformed component, or a triple that is not a
// calendar date, makes the whole date missing.
func Date(p DateParts) (types.Date, Reason) {
	year := strings.TrimSpace(p.Year)
	monthText := strings.ToLower(strings.TrimSpace(p.Month))
	dayText := strings.TrimSpace(p.Day)

	if year != "" && !isDigits(year, 4, 4) {
		return types.Date{}, Reason(fmt.Sprintf("year %q is not 4 digits", year))
	}

	var month time.Month
	var day int
	if year == "" {
		// Without a year the structured month and day are ignored and the
		// free text supplies both year and month.
		free := strings.TrimSpace(p.Free + " " + p.Season)
		year = freeYearRe.FindString(free)
		if tok := freeMonthRe.FindString(free); tok != "" {
			month = monthAbbrev[strings.ToLower(tok)]
		}
	} else {
		if monthText != "" {
			m, ok := parseMonth(monthText)
			if !ok {
				return types.Date{}, Reason(fmt.Sprintf("month %q is not a month", monthText))
			}
			month = m
		}
		if dayText != "" {
			d, ok := parseDay(dayText)
			if !ok {
				return types.Date{}, Reason(fmt.Sprintf("day %q is not in 1-31", dayText))
			}
			day = d
		}
		if season := strings.ToLower(strings.TrimSpace(p.Season)); month == 0 && len(season) >= 3 {
			month = monthAbbrev[season[:3]]
		}
	}

	if year == "" {
		return types.Date{}, "no year"
	}
	y, _ := strconv.Atoi(year)

	if month == 0 {
		month, day = time.January, 1
	} else if day == 0 {
		day = 1
	}

	d, ok := types.NewDate(y, month, day)
	if !ok {
		return types.Date{}, Reason(fmt.Sprintf("%04d-%02d-%02d is not a calendar date", y, month, day))
	}
	return d, ""
}

// parseMonth accepts "01".."12", "1".."9", or a 3-letter month/season name.
func parseMonth(s string) (time.Month, bool) {
	if isDigits(s, 1, 2) {
		n, _ := strconv.Atoi(s)
		if n < 1 || n > 12 {
			return 0, false
		}
		return time.Month(n), true
	}
	if len(s) != 3 {
		return 0, false
	}
	m, ok := monthAbbrev[s]
	return m, ok
}

// parseDay accepts 1-2 digit days in 1..31. Per-month lengths are checked
// later by calendar validation.
func parseDay(s string) (int, bool) {
	if !isDigits(s, 1, 2) {
		return 0, false
	}
	n, _ := strconv.Atoi(s)
	if n < 1 || n > 31 {
		return 0, false
	}
	return n, true
}

// isDigits reports whether s is all ASCII digits with length in [min, max].
func isDigits(s string, min, max int) bool {
	if len(s) < min || len(s) > max {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
