// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate checks and normalizes user input before it reaches the
// pipeline. Failures wrap types.ErrInputValidation. Where a safe default
// exists the validator substitutes it and reports a warning instead.
package validate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/pubmed-tool/internal/diag"
	"github.com/pdiddy/pubmed-tool/pkg/types"
)

const (
	// MaxResultsCeiling is the largest ESearch result count requested.
	MaxResultsCeiling = 200000
	// DefaultChunkSize is the chunk size used when the given one is invalid.
	DefaultChunkSize = 100

	defaultFileStem = "default"
)

var (
	emailRe = regexp.MustCompile("^[a-z0-9!#$%&'*+/=?^_`{|}~-]+(?:\\.[a-z0-9!#$%&'*+/=?^_`{|}~-]+)*" +
		"@(?:[a-z0-9](?:[a-z0-9-]*[a-z0-9])?\\.)+[a-z0-9](?:[a-z0-9-]*[a-z0-9])?$")
	dateRe       = regexp.MustCompile(`^([0-9]{4})[ -/]*?([0-9]{1,2})[ -/]*?([0-9]{1,2})$`)
	identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", types.ErrInputValidation, fmt.Sprintf(format, args...))
}

// Email returns the address lowercased and trimmed.
func Email(s string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(s))
	if e == "" || !emailRe.MatchString(e) {
		return "", invalid("email %q is not valid", s)
	}
	return e, nil
}

// Date accepts a year-month-day date separated by '-', '/', spaces, or
// nothing, and returns it as YYYY/MM/DD.
func Date(s string) (string, error) {
	m := dateRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", invalid("date %q is not YYYY/MM/DD", s)
	}
	y, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	d, _ := strconv.Atoi(m[3])
	if _, ok := types.NewDate(y, time.Month(mo), d); !ok || y < 1 {
		return "", invalid("date %q is not a calendar date", s)
	}
	return fmt.Sprintf("%04d/%02d/%02d", y, mo, d), nil
}

// DateRange validates both bounds and rejects a start after the end.
func DateRange(start, end string) (string, string, error) {
	s, err := Date(start)
	if err != nil {
		return "", "", err
	}
	e, err := Date(end)
	if err != nil {
		return "", "", err
	}
	// YYYY/MM/DD compares lexically.
	if s > e {
		return "", "", invalid("start date %s is after end date %s", s, e)
	}
	return s, e, nil
}

// PMID parses a PubMed identifier: 1 to 8 digits after leading zeros are
// removed, and not zero.
func PMID(s string) (int, error) {
	t := strings.TrimSpace(s)
	if t == "" || strings.Trim(t, "0123456789") != "" {
		return 0, invalid("PMID %q is not a number", s)
	}
	t = strings.TrimLeft(t, "0")
	if t == "" {
		return 0, invalid("PMID %q cannot be 0", s)
	}
	if len(t) > 8 {
		return 0, invalid("PMID %q must be between 1 and 8 digits", s)
	}
	n, _ := strconv.Atoi(t)
	return n, nil
}

// MaxResults clamps n into 1..MaxResultsCeiling, warning when it changes.
func MaxResults(n int, log diag.Sink) int {
	if n < 1 || n > MaxResultsCeiling {
		if log != nil {
			log.Warn("max results out of range, using ceiling", "given", n, "using", MaxResultsCeiling)
		}
		return MaxResultsCeiling
	}
	return n
}

// ChunkSize returns n, or DefaultChunkSize with a warning when n is
// negative. Zero means no chunking.
func ChunkSize(n int, log diag.Sink) int {
	if n < 0 {
		if log != nil {
			log.Warn("chunk size is negative, using default", "given", n, "using", DefaultChunkSize)
		}
		return DefaultChunkSize
	}
	return n
}

// TableName checks that name is a plain SQL identifier.
func TableName(name string) error {
	if !identifierRe.MatchString(name) {
		return invalid("table name %q is not a valid identifier", name)
	}
	return nil
}

// TableNames checks all three relation names and that they are distinct.
func TableNames(t types.TableNames) error {
	for _, n := range []string{t.Papers, t.Authors, t.Pairs} {
		if err := TableName(n); err != nil {
			return err
		}
	}
	if t.Papers == t.Authors || t.Papers == t.Pairs || t.Authors == t.Pairs {
		return invalid("table names must be distinct: %s, %s, %s", t.Papers, t.Authors, t.Pairs)
	}
	return nil
}

// PathOptions controls Path.
type PathOptions struct {
	// Dir is the project directory. Empty uses the working directory. An
	// absolute file name ignores Dir.
	Dir string
	// Name is the file name. Empty uses "default" with the first suffix.
	Name string
	// Suffixes lists accepted extensions, e.g. ".csv". A name with any
	// other extension gets the first one.
	Suffixes []string
	// MustExist requires the file to exist. It implies Overwrite.
	MustExist bool
	// Overwrite allows an existing file.
	Overwrite bool
}

// Path resolves a destination or source file, creating its directory when
// missing. Adjustments are reported to log at info level.
func Path(opts PathOptions, log diag.Sink) (string, error) {
	if log == nil {
		log = diag.Nop()
	}
	if opts.MustExist && !opts.Overwrite {
		return "", invalid("must-exist requires overwrite")
	}
	if len(opts.Suffixes) == 0 {
		return "", invalid("no accepted file suffixes given")
	}

	name := strings.TrimSpace(opts.Name)
	if name == "" {
		name = defaultFileStem + opts.Suffixes[0]
		log.Info("no file name given", "using", name)
	}
	if ext := filepath.Ext(name); !slices.Contains(opts.Suffixes, ext) {
		fixed := strings.TrimSuffix(name, ext) + opts.Suffixes[0]
		log.Info("file suffix not accepted", "name", name, "using", fixed, "accepted", strings.Join(opts.Suffixes, " "))
		name = fixed
	}

	var path string
	switch {
	case filepath.IsAbs(name):
		path = name
	case strings.TrimSpace(opts.Dir) != "":
		path = filepath.Join(strings.TrimSpace(opts.Dir), name)
	default:
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolving working directory: %w", err)
		}
		path = filepath.Join(wd, name)
	}
	path, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("creating directory %s: %w", dir, err)
		}
		log.Info("created directory", "dir", dir)
	}

	_, statErr := os.Stat(path)
	exists := statErr == nil
	if exists && !opts.Overwrite {
		return "", invalid("%s already exists and overwrite is off", path)
	}
	if !exists && opts.MustExist {
		return "", invalid("%s does not exist", path)
	}
	return path, nil
}
