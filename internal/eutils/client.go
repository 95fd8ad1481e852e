// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package eutils talks to the NCBI E-utilities: ESearch for PMIDs matching a
// query and EFetch for the citation records behind them.
package eutils

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/pubmed-tool/internal/diag"
	"github.com/pdiddy/pubmed-tool/internal/httputil"
	"github.com/pdiddy/pubmed-tool/pkg/types"
)

// eutilsAPIBase is the E-utilities endpoint root. Declared as a var so tests
// can substitute an httptest server.
var eutilsAPIBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

const (
	defaultTool       = "pubmed-tool"
	defaultUserAgent  = "pubmed-tool/0.1"
	defaultTimeout    = 60 * time.Second
	rateWithoutAPIKey = 3
	rateWithAPIKey    = 10
)

// Search is an ESearch request: a keyword restricted to a publication date
// window, sorted by relevance.
type Search struct {
	Keyword    string
	StartDate  string // YYYY/MM/DD
	EndDate    string // YYYY/MM/DD
	MaxResults int
}

// Term renders the PubMed query string.
func (s Search) Term() string {
	return fmt.Sprintf(`(%s) AND ("%s"[Date - Publication] : "%s"[Date - Publication])`,
		s.Keyword, s.StartDate, s.EndDate)
}

// Client issues E-utilities requests, one attempt each, under the NCBI rate
// limit.
type Client struct {
	cfg  types.EutilsConfig
	base string
	http *httputil.Limiter
	log  diag.Sink
}

// NewClient builds a Client from cfg. A zero RequestsPerSecond selects the
// NCBI ceiling for the configured credential.
func NewClient(cfg types.EutilsConfig, log diag.Sink) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Tool == "" {
		cfg.Tool = defaultTool
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = rateWithoutAPIKey
		if cfg.APIKey != "" {
			rps = rateWithAPIKey
		}
	}
	base := cfg.BaseURL
	if base == "" {
		base = eutilsAPIBase
	}
	if log == nil {
		log = diag.Nop()
	}
	return &Client{
		cfg:  cfg,
		base: strings.TrimRight(base, "/"),
		http: httputil.NewLimiter(&http.Client{Timeout: cfg.Timeout}, rps),
		log:  log,
	}
}

// esearchResponse is the JSON body of an ESearch call.
type esearchResponse struct {
	Result struct {
		Count  string   `json:"count"`
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// SearchIDs returns the PMIDs matching s, at most s.MaxResults of them.
func (c *Client) SearchIDs(ctx context.Context, s Search) ([]string, error) {
	params := c.baseParams()
	params.Set("term", s.Term())
	params.Set("retmode", "json")
	params.Set("sort", "relevance")
	if s.MaxResults > 0 {
		params.Set("retmax", strconv.Itoa(s.MaxResults))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/esearch.fcgi?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating esearch request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	c.log.Debug("esearch", "term", s.Term(), "retmax", s.MaxResults)
	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: esearch: %v", types.ErrRemoteService, err)
	}
	defer resp.Body.Close()

	var body esearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: parsing esearch response: %v", types.ErrRemoteService, err)
	}
	c.log.Info("esearch complete", "count", body.Result.Count, "returned", len(body.Result.IDList))
	return body.Result.IDList, nil
}

// FetchRecords retrieves the citation records for ids in one EFetch call.
// The ids are sent as a POST form so long chunks fit.
func (c *Client) FetchRecords(ctx context.Context, ids []string) ([]RawRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	form := c.baseParams()
	form.Set("id", strings.Join(ids, ","))
	form.Set("retmode", "xml")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/efetch.fcgi", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating efetch request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	c.log.Debug("efetch", "ids", len(ids))
	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: efetch: %v", types.ErrRemoteService, err)
	}
	defer resp.Body.Close()

	records, err := ParseArticleSet(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrRemoteService, err)
	}
	if len(records) != len(ids) {
		c.log.Warn("efetch returned a different record count", "requested", len(ids), "returned", len(records))
	}
	return records, nil
}

func (c *Client) baseParams() url.Values {
	v := url.Values{}
	v.Set("db", "pubmed")
	v.Set("tool", c.cfg.Tool)
	if c.cfg.Email != "" {
		v.Set("email", c.cfg.Email)
	}
	if c.cfg.APIKey != "" {
		v.Set("api_key", c.cfg.APIKey)
	}
	return v
}
