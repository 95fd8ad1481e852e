// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package csvio reads and writes assembled articles in the fixed-column CSV
// interchange format. List-valued cells (authors, keywords, language) hold
// JSON arrays; a missing date or number is an empty cell.
package csvio

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/pdiddy/pubmed-tool/pkg/types"
)

// Columns is the interchange column order.
var Columns = []string{
	"pmid", "title", "pubdate", "authors", "keywords", "journal", "isoabbrev",
	"volume", "issue", "page_start", "page_end", "language", "abstract",
	"other_type", "other_val",
}

// Write stores articles at path. With overwrite, or when path does not
// exist, the file is replaced and a header written. Otherwise the existing
// header must match Columns exactly and rows are appended without a header.
func Write(path string, articles []types.Article, overwrite bool) error {
	_, statErr := os.Stat(path)
	exists := statErr == nil

	if overwrite || !exists {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		if err := Encode(f, articles, true); err != nil {
			f.Close()
			return fmt.Errorf("writing %s: %w", path, err)
		}
		return f.Close()
	}

	if err := CheckHeader(path); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	if err := Encode(f, articles, false); err != nil {
		f.Close()
		return fmt.Errorf("appending to %s: %w", path, err)
	}
	return f.Close()
}

// Encode writes articles as CSV rows to w, preceded by the header when
// header is true.
func Encode(w io.Writer, articles []types.Article, header bool) error {
	cw := csv.NewWriter(w)
	if header {
		if err := cw.Write(Columns); err != nil {
			return err
		}
	}
	for _, a := range articles {
		row, err := toRow(a)
		if err != nil {
			return fmt.Errorf("PMID %d: %w", a.PMID, err)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CheckHeader verifies that the CSV at path starts with exactly Columns.
func CheckHeader(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	got, err := csv.NewReader(f).Read()
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: reading header of %s: %v", types.ErrSchema, path, err)
	}
	if !slices.Equal(got, Columns) {
		return fmt.Errorf("%w: %s has columns %v, want %v", types.ErrSchema, path, got, Columns)
	}
	return nil
}

// RowError is a data row that could not be decoded. Line is the 1-based
// line the row starts on.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// Result holds the decoded articles and the rows that were skipped.
type Result struct {
	Articles []types.Article
	Skipped  []RowError
}

// Read loads every decodable article from the CSV at path.
func Read(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	res, err := Decode(f)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

// Decode reads a header and article rows from r. A row with the wrong
// number of cells or an undecodable cell is skipped and recorded with an
// error wrapping types.ErrRecordMalformed; a bad header or unreadable input
// fails the whole decode with types.ErrSchema.
func Decode(r io.Reader) (Result, error) {
	var res Result
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Columns)

	header, err := cr.Read()
	if err != nil {
		return res, fmt.Errorf("%w: reading header: %v", types.ErrSchema, err)
	}
	if !slices.Equal(header, Columns) {
		return res, fmt.Errorf("%w: columns %v, want %v", types.ErrSchema, header, Columns)
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) && errors.Is(err, csv.ErrFieldCount) {
			res.Skipped = append(res.Skipped, RowError{
				Line: perr.StartLine,
				Err:  fmt.Errorf("%w: %d cells, want %d", types.ErrRecordMalformed, len(rec), len(Columns)),
			})
			continue
		}
		if err != nil {
			return res, fmt.Errorf("%w: %v", types.ErrSchema, err)
		}
		line, _ := cr.FieldPos(0)
		a, err := fromRow(rec)
		if err != nil {
			res.Skipped = append(res.Skipped, RowError{
				Line: line,
				Err:  fmt.Errorf("%w: %v", types.ErrRecordMalformed, err),
			})
			continue
		}
		res.Articles = append(res.Articles, a)
	}
	return res, nil
}

func toRow(a types.Article) ([]string, error) {
	authors, err := jsonList(a.Authors)
	if err != nil {
		return nil, err
	}
	keywords, err := jsonList(a.Keywords)
	if err != nil {
		return nil, err
	}
	langs, err := jsonList(a.Languages)
	if err != nil {
		return nil, err
	}
	return []string{
		strconv.Itoa(a.PMID),
		a.Title,
		dateCell(a.PubDate),
		authors,
		keywords,
		a.Journal,
		a.ISOAbbrev,
		intCell(a.Volume),
		intCell(a.Issue),
		a.PageStart,
		a.PageEnd,
		langs,
		a.Abstract,
		string(a.OtherType),
		a.OtherValue,
	}, nil
}

func fromRow(rec []string) (types.Article, error) {
	col := func(name string) string { return rec[slices.Index(Columns, name)] }

	var a types.Article
	pmid, err := strconv.Atoi(strings.TrimSpace(col("pmid")))
	if err != nil || pmid <= 0 || pmid > types.MaxPMID {
		return a, fmt.Errorf("invalid pmid %q", col("pmid"))
	}
	a.PMID = pmid
	a.Title = col("title")
	if a.PubDate, err = types.ParseDate(col("pubdate")); err != nil {
		return a, err
	}
	if err := parseJSONList(col("authors"), &a.Authors); err != nil {
		return a, fmt.Errorf("authors: %w", err)
	}
	if err := parseJSONList(col("keywords"), &a.Keywords); err != nil {
		return a, fmt.Errorf("keywords: %w", err)
	}
	a.Journal = col("journal")
	a.ISOAbbrev = col("isoabbrev")
	if a.Volume, err = parseIntCell(col("volume")); err != nil {
		return a, fmt.Errorf("volume: %w", err)
	}
	if a.Issue, err = parseIntCell(col("issue")); err != nil {
		return a, fmt.Errorf("issue: %w", err)
	}
	a.PageStart = col("page_start")
	a.PageEnd = col("page_end")
	if err := parseJSONList(col("language"), &a.Languages); err != nil {
		return a, fmt.Errorf("language: %w", err)
	}
	a.Abstract = col("abstract")
	a.OtherType = types.Designator(col("other_type"))
	a.OtherValue = col("other_val")
	return a, nil
}

func jsonList[T any](items []T) (string, error) {
	if len(items) == 0 {
		return "", nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func parseJSONList[T any](cell string, dst *[]T) error {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil
	}
	return json.Unmarshal([]byte(cell), dst)
}

func dateCell(d types.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func intCell(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func parseIntCell(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
