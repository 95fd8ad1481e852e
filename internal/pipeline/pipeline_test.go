// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/pubmed-tool/internal/csvio"
	"github.com/pdiddy/pubmed-tool/internal/diag"
	"github.com/pdiddy/pubmed-tool/internal/eutils"
	"github.com/pdiddy/pubmed-tool/internal/store"
	"github.com/pdiddy/pubmed-tool/pkg/types"
)

// fakeSource serves canned ids and records. Fetching a chunk that contains
// failOn returns an error.
type fakeSource struct {
	ids       []string
	searchErr error
	failOn    string
	malformed string
	searches  int
	fetched   [][]string
}

func (f *fakeSource) SearchIDs(_ context.Context, _ eutils.Search) ([]string, error) {
	f.searches++
	return f.ids, f.searchErr
}

func (f *fakeSource) FetchRecords(_ context.Context, ids []string) ([]eutils.RawRecord, error) {
	f.fetched = append(f.fetched, ids)
	if f.failOn != "" && slices.Contains(ids, f.failOn) {
		return nil, fmt.Errorf("%w: efetch: HTTP 500", types.ErrRemoteService)
	}
	var out []eutils.RawRecord
	for _, id := range ids {
		if id == f.malformed {
			out = append(out, eutils.RawRecord{Citation: &eutils.Citation{PMID: eutils.Text(id)}})
			continue
		}
		out = append(out, record(id))
	}
	return out, nil
}

func record(pmid string) eutils.RawRecord {
	return eutils.RawRecord{Citation: &eutils.Citation{
		PMID: eutils.Text(pmid),
		Article: &eutils.Article{
			Title: eutils.Text("Paper " + pmid),
			AuthorList: &eutils.AuthorList{Authors: []eutils.Author{
				{ForeName: "Ada", LastName: "King"},
			}},
			Journal: &eutils.Journal{
				Title: "J Test",
				Issue: &eutils.JournalIssue{PubDate: &eutils.DateParts{Year: "2021", Month: "03"}},
			},
			Languages: []eutils.Text{"eng"},
		},
	}}
}

func baseConfig(dir string) types.ScrapeConfig {
	return types.ScrapeConfig{
		Keyword:    "genomics",
		StartDate:  "2020/01/01",
		EndDate:    "2021/12/31",
		MaxResults: 100,
		ChunkSize:  2,
		OutputPath: filepath.Join(dir, "out.csv"),
		Overwrite:  true,
	}
}

func pmids(t *testing.T, path string) []int {
	t.Helper()
	in, err := csvio.Read(path)
	require.NoError(t, err)
	var out []int
	for _, a := range in.Articles {
		out = append(out, a.PMID)
	}
	return out
}

func TestChunk(t *testing.T) {
	ids := []string{"1", "2", "3", "4", "5"}
	tests := []struct {
		name string
		size int
		want [][]string
	}{
		{"no chunking", 0, [][]string{ids}},
		{"exact fit", 5, [][]string{ids}},
		{"remainder", 2, [][]string{{"1", "2"}, {"3", "4"}, {"5"}}},
		{"singletons", 1, [][]string{{"1"}, {"2"}, {"3"}, {"4"}, {"5"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Chunk(ids, tt.size))
		})
	}
	assert.Nil(t, Chunk(nil, 3))
}

func TestScrape_ChunksToCSV(t *testing.T) {
	dir := t.TempDir()
	cfg := baseConfig(dir)
	src := &fakeSource{ids: []string{"101", "102", "103", "104", "105"}}

	var buf bytes.Buffer
	res, err := Scrape(context.Background(), src, cfg, nil, &buf)
	require.NoError(t, err)

	assert.Len(t, src.fetched, 3)
	assert.Equal(t, 3, res.Chunks)
	assert.Equal(t, 5, res.Assembled)
	assert.False(t, res.HasFailures())
	assert.Nil(t, res.Articles, "chunked runs stream to disk")
	assert.Equal(t, []int{101, 102, 103, 104, 105}, pmids(t, cfg.OutputPath))

	assert.Equal(t, 5.0, testutil.ToFloat64(res.Metrics.IDsFound))
	assert.Equal(t, 5.0, testutil.ToFloat64(res.Metrics.Assembled))
	assert.Positive(t, testutil.ToFloat64(res.Metrics.LastSuccess))

	assert.Contains(t, buf.String(), "Found 5 PMIDs for (genomics) AND")
	assert.Contains(t, buf.String(), "chunk 3/3: fetching 1 records")

	m, err := ReadManifest(ManifestPath(res.Output))
	require.NoError(t, err)
	assert.Equal(t, res.RunID, m.RunID)
	assert.Equal(t, 5, m.IDs)
	assert.Equal(t, 5, m.Articles)
	assert.Equal(t, 2, m.ChunkSize)
	assert.Empty(t, m.FailedChunks)
}

func TestScrape_FailedChunkSkipped(t *testing.T) {
	dir := t.TempDir()
	cfg := baseConfig(dir)
	src := &fakeSource{ids: []string{"101", "102", "103", "104", "105"}, failOn: "103"}

	core, logs := observer.New(zapcore.WarnLevel)
	res, err := Scrape(context.Background(), src, cfg, diag.FromZap(zap.New(core)), nil)
	require.NoError(t, err)

	require.Len(t, res.Failed, 1)
	assert.Equal(t, 2, res.Failed[0].Chunk)
	assert.Equal(t, 2, res.Failed[0].IDs)
	assert.Contains(t, res.Failed[0].Error, "HTTP 500")
	assert.Equal(t, 1.0, testutil.ToFloat64(res.Metrics.ChunksFailed))
	assert.Zero(t, testutil.ToFloat64(res.Metrics.LastSuccess))
	assert.Equal(t, []int{101, 102, 105}, pmids(t, cfg.OutputPath))
	assert.Equal(t, 1, logs.FilterMessage("chunk skipped").Len())

	m, err := ReadManifest(ManifestPath(res.Output))
	require.NoError(t, err)
	assert.Equal(t, res.Failed, m.FailedChunks)
}

func TestScrape_FirstWrittenChunkOverwrites(t *testing.T) {
	dir := t.TempDir()
	cfg := baseConfig(dir)
	require.NoError(t, csvio.Write(cfg.OutputPath, []types.Article{{PMID: 9, Title: "old"}}, true))

	src := &fakeSource{ids: []string{"101", "102", "103"}, failOn: "101"}
	_, err := Scrape(context.Background(), src, cfg, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{103}, pmids(t, cfg.OutputPath), "old rows replaced by the first chunk written")
}

func TestScrape_AppendToExisting(t *testing.T) {
	dir := t.TempDir()
	cfg := baseConfig(dir)
	cfg.Overwrite = false
	require.NoError(t, csvio.Write(cfg.OutputPath, []types.Article{{PMID: 9, Title: "old"}}, true))

	src := &fakeSource{ids: []string{"101", "102", "103"}}
	_, err := Scrape(context.Background(), src, cfg, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{9, 101, 102, 103}, pmids(t, cfg.OutputPath))
}

func TestScrape_AppendRequiresHeader(t *testing.T) {
	dir := t.TempDir()
	cfg := baseConfig(dir)
	cfg.Overwrite = false
	require.NoError(t, os.WriteFile(cfg.OutputPath, []byte("a,b\n1,2\n"), 0o644))

	src := &fakeSource{ids: []string{"101"}}
	_, err := Scrape(context.Background(), src, cfg, nil, nil)
	assert.True(t, errors.Is(err, types.ErrSchema))
	assert.Zero(t, src.searches, "schema checked before any request")
}

func TestScrape_InMemory(t *testing.T) {
	src := &fakeSource{ids: []string{"101", "102", "103"}, malformed: "102"}
	cfg := types.ScrapeConfig{Keyword: "genomics", StartDate: "2020/01/01", EndDate: "2021/12/31"}

	res, err := Scrape(context.Background(), src, cfg, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Chunks)
	assert.Empty(t, res.Output)
	assert.Equal(t, 1, res.Malformed)
	require.Len(t, res.Articles, 2)
	assert.Equal(t, 103, res.Articles[1].PMID)
	assert.Equal(t, 1.0, testutil.ToFloat64(res.Metrics.Malformed))
}

func TestScrape_NoChunkingKeepsArticles(t *testing.T) {
	cfg := baseConfig(t.TempDir())
	cfg.ChunkSize = 0
	src := &fakeSource{ids: []string{"101", "102", "103"}}

	res, err := Scrape(context.Background(), src, cfg, nil, nil)
	require.NoError(t, err)
	assert.Len(t, src.fetched, 1)
	assert.Len(t, res.Articles, 3)
	assert.Equal(t, []int{101, 102, 103}, pmids(t, cfg.OutputPath))
}

func TestScrape_InputErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.ScrapeConfig)
	}{
		{"missing keyword", func(c *types.ScrapeConfig) { c.Keyword = " " }},
		{"bad start date", func(c *types.ScrapeConfig) { c.StartDate = "2020/13/01" }},
		{"end before start", func(c *types.ScrapeConfig) { c.StartDate, c.EndDate = "2022/01/01", "2021/01/01" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig(t.TempDir())
			tt.mutate(&cfg)
			src := &fakeSource{}
			_, err := Scrape(context.Background(), src, cfg, nil, nil)
			assert.True(t, errors.Is(err, types.ErrInputValidation), "got %v", err)
			assert.Zero(t, src.searches)
		})
	}
}

func TestScrape_SearchFailure(t *testing.T) {
	cfg := baseConfig(t.TempDir())
	src := &fakeSource{searchErr: fmt.Errorf("%w: esearch: HTTP 429", types.ErrRemoteService)}

	_, err := Scrape(context.Background(), src, cfg, nil, nil)
	assert.True(t, errors.Is(err, types.ErrRemoteService))
	assert.Empty(t, src.fetched)
	_, statErr := os.Stat(cfg.OutputPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestScrape_MetricsTextfile(t *testing.T) {
	dir := t.TempDir()
	cfg := baseConfig(dir)
	cfg.MetricsPath = filepath.Join(dir, "scrape.prom")
	src := &fakeSource{ids: []string{"101", "102"}}

	_, err := Scrape(context.Background(), src, cfg, nil, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(cfg.MetricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "pubmed_tool_articles_assembled_total 2")
	assert.Contains(t, string(data), "pubmed_tool_chunks_failed_total 0")
}

func TestScrape_EutilsClient(t *testing.T) {
	const efetchBody = `<PubmedArticleSet>
<PubmedArticle><MedlineCitation><PMID>12345</PMID><Article>
  <Journal><JournalIssue><Volume>12</Volume><Issue>Suppl 2</Issue>
    <PubDate><Year>2020</Year><Month>Jan</Month></PubDate></JournalIssue><Title>J Test</Title></Journal>
  <ArticleTitle>Study X</ArticleTitle>
  <AuthorList><Author><LastName>Doe</LastName><ForeName>Jane Q</ForeName><Initials>JQ</Initials></Author></AuthorList>
</Article></MedlineCitation></PubmedArticle>
</PubmedArticleSet>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/esearch.fcgi"):
			fmt.Fprint(w, `{"esearchresult":{"count":"1","idlist":["12345"]}}`)
		case strings.HasSuffix(r.URL.Path, "/efetch.fcgi"):
			fmt.Fprint(w, efetchBody)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := eutils.NewClient(types.EutilsConfig{
		BaseURL:           srv.URL,
		Email:             "jane@example.org",
		RequestsPerSecond: 1000,
	}, nil)

	cfg := baseConfig(t.TempDir())
	res, err := Scrape(context.Background(), client, cfg, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Assembled)

	in, err := csvio.Read(cfg.OutputPath)
	require.NoError(t, err)
	require.Len(t, in.Articles, 1)
	assert.Equal(t, "study x", in.Articles[0].Title)
	assert.Equal(t, types.DesignatorSupplement, in.Articles[0].OtherType)
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg := baseConfig(dir)
	_, err := Scrape(ctx, &fakeSource{ids: []string{"101", "102", "103"}}, cfg, nil, nil)
	require.NoError(t, err)

	s, err := store.Open(types.StoreConfig{DBPath: filepath.Join(dir, "pubs.db")}, nil)
	require.NoError(t, err)
	defer s.Close()

	var buf bytes.Buffer
	res, err := Load(ctx, cfg.OutputPath, s, nil, true, nil, &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Articles)
	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, 3, res.Papers)
	assert.Equal(t, 1, res.Authors, "one shared author")
	assert.Equal(t, 3, res.Pairs)
	assert.Contains(t, buf.String(), "read 3 articles")

	papers, err := s.ReadPapers(ctx)
	require.NoError(t, err)
	require.Len(t, papers, 3)
	assert.Equal(t, "['English']", papers[0].Language)

	res, err = Load(ctx, cfg.OutputPath, s, nil, false, nil, nil)
	require.NoError(t, err)
	assert.Zero(t, res.Papers)
	assert.Equal(t, 7, res.Skipped)
}

func TestLoad_SkipsMalformedRows(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg := baseConfig(dir)
	_, err := Scrape(ctx, &fakeSource{ids: []string{"101", "102"}}, cfg, nil, nil)
	require.NoError(t, err)

	f, err := os.OpenFile(cfg.OutputPath, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("not-a-pmid,x,,,,,,,,,,,,,\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	s, err := store.Open(types.StoreConfig{DBPath: filepath.Join(dir, "pubs.db")}, nil)
	require.NoError(t, err)
	defer s.Close()

	core, logs := observer.New(zapcore.WarnLevel)
	var buf bytes.Buffer
	res, err := Load(ctx, cfg.OutputPath, s, nil, true, diag.FromZap(zap.New(core)), &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Articles)
	assert.Equal(t, 2, res.Papers)
	require.Len(t, res.Malformed, 1)
	assert.Equal(t, 4, res.Malformed[0].Line)
	assert.True(t, errors.Is(res.Malformed[0], types.ErrRecordMalformed))
	assert.Equal(t, 1, logs.FilterMessage("csv row skipped").Len())
	assert.Contains(t, buf.String(), "skipped 1 malformed rows")
}

func TestLoad_MissingCSV(t *testing.T) {
	dir := t.TempDir()
	s, err := store.Open(types.StoreConfig{DBPath: filepath.Join(dir, "pubs.db")}, nil)
	require.NoError(t, err)
	defer s.Close()

	_, err = Load(context.Background(), filepath.Join(dir, "absent.csv"), s, nil, true, nil, nil)
	assert.True(t, errors.Is(err, types.ErrInputValidation))
}
