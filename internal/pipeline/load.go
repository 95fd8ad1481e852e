// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/pubmed-tool/internal/csvio"
	"github.com/pdiddy/pubmed-tool/internal/diag"
	"github.com/pdiddy/pubmed-tool/internal/language"
	"github.com/pdiddy/pubmed-tool/internal/store"
	"github.com/pdiddy/pubmed-tool/internal/table"
	"github.com/pdiddy/pubmed-tool/internal/validate"
)

// LoadResult summarizes a load run.
type LoadResult struct {
	Articles  int
	Malformed []csvio.RowError
	Rows      int
	store.UploadSummary
}

// Load reads the scraped CSV at csvPath, formats and splits it into the
// three relations, and uploads them to s. CSV rows that cannot be decoded
// are reported and left out. With overwrite the relations are
// replaced; otherwise rows are appended and existing keys kept.
func Load(ctx context.Context, csvPath string, s *store.Store, lang language.Lookup, overwrite bool, log diag.Sink, w io.Writer) (LoadResult, error) {
	if log == nil {
		log = diag.Nop()
	}
	var res LoadResult

	path, err := validate.Path(validate.PathOptions{
		Name:      csvPath,
		Suffixes:  []string{".csv"},
		MustExist: true,
		Overwrite: true,
	}, log)
	if err != nil {
		return res, err
	}

	in, err := csvio.Read(path)
	if err != nil {
		return res, err
	}
	articles := in.Articles
	res.Articles = len(articles)
	res.Malformed = in.Skipped
	for _, rerr := range in.Skipped {
		log.Warn("csv row skipped", "csv", path, "line", rerr.Line, "error", rerr.Err)
	}
	if w != nil && len(in.Skipped) > 0 {
		fmt.Fprintf(w, "skipped %d malformed rows in %s\n", len(in.Skipped), path)
	}

	rows, err := table.Format(articles, lang)
	if err != nil {
		return res, fmt.Errorf("formatting %s: %w", path, err)
	}
	res.Rows = len(rows)

	rel, err := table.Split(rows)
	if err != nil {
		return res, fmt.Errorf("splitting %s: %w", path, err)
	}
	log.Info("relations built", "csv", path, "articles", len(articles), "rows", len(rows),
		"papers", len(rel.Papers), "authors", len(rel.Authors), "pairs", len(rel.Pairs))
	if w != nil {
		fmt.Fprintf(w, "read %d articles (%d author rows) from %s\n", len(articles), len(rows), path)
	}

	sum, err := s.Upload(ctx, rel, overwrite, w)
	if err != nil {
		return res, err
	}
	res.UploadSummary = sum
	return res, nil
}
