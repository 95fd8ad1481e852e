// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates the stages: scrape PubMed into a CSV in
// chunks, and load a CSV into the relational store.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/pdiddy/pubmed-tool/internal/assemble"
	"github.com/pdiddy/pubmed-tool/internal/csvio"
	"github.com/pdiddy/pubmed-tool/internal/diag"
	"github.com/pdiddy/pubmed-tool/internal/eutils"
	"github.com/pdiddy/pubmed-tool/internal/validate"
	"github.com/pdiddy/pubmed-tool/pkg/types"
)

// Source finds and fetches citation records. *eutils.Client implements it.
type Source interface {
	SearchIDs(ctx context.Context, s eutils.Search) ([]string, error)
	FetchRecords(ctx context.Context, ids []string) ([]eutils.RawRecord, error)
}

// ChunkFailure describes a chunk that was skipped.
type ChunkFailure struct {
	Chunk int    `yaml:"chunk"`
	IDs   int    `yaml:"ids"`
	Error string `yaml:"error"`
}

// ScrapeResult summarizes a scrape run.
type ScrapeResult struct {
	RunID     string
	Term      string
	Output    string
	IDs       int
	Chunks    int
	Assembled int
	Malformed int
	Failed    []ChunkFailure

	// Articles holds the assembled articles when the run keeps them in
	// memory: no output path, or a single unchunked pass.
	Articles []types.Article

	Metrics *Metrics
}

// HasFailures reports whether any chunk was skipped.
func (r ScrapeResult) HasFailures() bool {
	return len(r.Failed) > 0
}

// Scrape searches PubMed for cfg.Keyword within the date window, then
// fetches, assembles, and writes the records chunk by chunk. Only the first
// written chunk may overwrite the CSV; later chunks append. A chunk whose
// fetch or write fails is reported and skipped. Progress lines go to w.
func Scrape(ctx context.Context, src Source, cfg types.ScrapeConfig, log diag.Sink, w io.Writer) (ScrapeResult, error) {
	if log == nil {
		log = diag.Nop()
	}
	if w == nil {
		w = io.Discard
	}

	keyword := strings.TrimSpace(cfg.Keyword)
	if keyword == "" {
		return ScrapeResult{}, fmt.Errorf("%w: keyword is required", types.ErrInputValidation)
	}
	start, end, err := validate.DateRange(cfg.StartDate, cfg.EndDate)
	if err != nil {
		return ScrapeResult{}, err
	}
	maxResults := validate.MaxResults(cfg.MaxResults, log)
	chunkSize := validate.ChunkSize(cfg.ChunkSize, log)

	var out string
	if strings.TrimSpace(cfg.OutputPath) != "" {
		out, err = validate.Path(validate.PathOptions{
			Name:      cfg.OutputPath,
			Suffixes:  []string{".csv"},
			Overwrite: true,
		}, log)
		if err != nil {
			return ScrapeResult{}, err
		}
		if _, statErr := os.Stat(out); statErr == nil && !cfg.Overwrite {
			if err := csvio.CheckHeader(out); err != nil {
				return ScrapeResult{}, err
			}
		}
	}

	search := eutils.Search{Keyword: keyword, StartDate: start, EndDate: end, MaxResults: maxResults}
	res := ScrapeResult{
		RunID:   uuid.NewString(),
		Term:    search.Term(),
		Output:  out,
		Metrics: NewMetrics(),
	}
	started := time.Now()
	log.Info("scrape started", "run_id", res.RunID, "term", res.Term, "max_results", maxResults, "chunk_size", chunkSize)

	ids, err := src.SearchIDs(ctx, search)
	if err != nil {
		return res, err
	}
	res.IDs = len(ids)
	res.Metrics.IDsFound.Add(float64(len(ids)))
	fmt.Fprintf(w, "Found %s PMIDs for %s\n", humanize.Comma(int64(len(ids))), res.Term)

	chunks := Chunk(ids, chunkSize)
	res.Chunks = len(chunks)
	keep := out == "" || chunkSize == 0
	overwrite := cfg.Overwrite

	fail := func(i int, n int, err error) {
		log.Error("chunk skipped", "run_id", res.RunID, "chunk", i+1, "ids", n, "error", err)
		fmt.Fprintf(w, "chunk %d/%d failed: %v\n", i+1, len(chunks), err)
		res.Failed = append(res.Failed, ChunkFailure{Chunk: i + 1, IDs: n, Error: err.Error()})
		res.Metrics.ChunksFailed.Inc()
	}

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		fmt.Fprintf(w, "chunk %d/%d: fetching %d records\n", i+1, len(chunks), len(chunk))

		records, err := src.FetchRecords(ctx, chunk)
		if err != nil {
			fail(i, len(chunk), err)
			continue
		}
		res.Metrics.RecordsFetched.Add(float64(len(records)))

		batch := assemble.Batch(records, log, w)
		res.Metrics.Assembled.Add(float64(len(batch.Articles)))
		res.Metrics.Malformed.Add(float64(len(batch.Failures)))

		if out != "" {
			if err := csvio.Write(out, batch.Articles, overwrite); err != nil {
				if errors.Is(err, types.ErrSchema) {
					return res, err
				}
				fail(i, len(chunk), err)
				continue
			}
			overwrite = false
		}

		res.Assembled += len(batch.Articles)
		res.Malformed += len(batch.Failures)
		if keep {
			res.Articles = append(res.Articles, batch.Articles...)
		}
	}

	if !res.HasFailures() {
		res.Metrics.LastSuccess.SetToCurrentTime()
	}
	fmt.Fprintf(w, "\nScrape summary: %s articles from %s PMIDs, %d malformed, %d of %d chunks failed\n",
		humanize.Comma(int64(res.Assembled)), humanize.Comma(int64(res.IDs)), res.Malformed, len(res.Failed), res.Chunks)
	log.Info("scrape complete", "run_id", res.RunID, "articles", res.Assembled, "malformed", res.Malformed,
		"failed_chunks", len(res.Failed), "elapsed", time.Since(started))

	if cfg.MetricsPath != "" {
		if err := res.Metrics.WriteTextfile(cfg.MetricsPath); err != nil {
			return res, fmt.Errorf("writing metrics: %w", err)
		}
	}
	if out != "" {
		m := Manifest{
			RunID:        res.RunID,
			Term:         res.Term,
			Output:       out,
			Started:      started.UTC(),
			Finished:     time.Now().UTC(),
			IDs:          res.IDs,
			ChunkSize:    chunkSize,
			Chunks:       res.Chunks,
			Articles:     res.Assembled,
			Malformed:    res.Malformed,
			FailedChunks: res.Failed,
		}
		if err := WriteManifest(m, ManifestPath(out)); err != nil {
			return res, err
		}
	}
	return res, nil
}

// Chunk splits ids into consecutive slices of at most size. A size of zero
// or less yields one chunk holding every id.
func Chunk(ids []string, size int) [][]string {
	if len(ids) == 0 {
		return nil
	}
	if size <= 0 || size >= len(ids) {
		return [][]string{ids}
	}
	chunks := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		chunks = append(chunks, ids[start:min(start+size, len(ids))])
	}
	return chunks
}
