package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-tool/internal/eutils"
	"github.com/pdiddy/pubmed-tool/internal/pipeline"
	"github.com/pdiddy/pubmed-tool/internal/secrets"
	"github.com/pdiddy/pubmed-tool/internal/validate"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Search PubMed and write normalized citations to CSV",
	Long: `Scrape searches PubMed for a keyword within a publication date window,
fetches the matching records in chunks, normalizes them, and writes them to a
CSV file. Only the first chunk may replace an existing file; later chunks
append. A chunk that fails to download is reported and skipped.

NCBI requires a contact email: pass --email, set eutils.email in the config
file, write it to .secrets/ncbi-email, or export NCBI_EMAIL.`,
	PreRunE: bindFlags(map[string]string{
		"scrape.keyword":      "keyword",
		"scrape.start_date":   "start",
		"scrape.end_date":     "end",
		"scrape.max_results":  "max-results",
		"scrape.chunk_size":   "chunk-size",
		"scrape.output_path":  "output",
		"scrape.overwrite":    "overwrite",
		"scrape.metrics_path": "metrics",
		"eutils.email":        "email",
		"eutils.api_key":      "api-key",
		"eutils.timeout":      "timeout",
	}),
	RunE: runScrape,
}

func init() {
	scrapeCmd.Flags().String("keyword", "", "search term placed before the date filter")
	scrapeCmd.Flags().String("start", "", "publication date range start (YYYY/MM/DD)")
	scrapeCmd.Flags().String("end", "", "publication date range end (YYYY/MM/DD)")
	scrapeCmd.Flags().Int("max-results", validate.MaxResultsCeiling, "maximum number of PMIDs to retrieve")
	scrapeCmd.Flags().Int("chunk-size", validate.DefaultChunkSize, "records fetched and written per chunk (0 disables chunking)")
	scrapeCmd.Flags().String("output", "articles.csv", "CSV destination")
	scrapeCmd.Flags().Bool("overwrite", false, "replace an existing CSV instead of appending")
	scrapeCmd.Flags().String("metrics", "", "write run counters to this file in Prometheus text format")
	scrapeCmd.Flags().String("email", "", "contact email sent to NCBI")
	scrapeCmd.Flags().String("api-key", "", "NCBI API key (raises the rate limit to 10 requests/s)")
	scrapeCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")

	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := secrets.Apply(&cfg.Eutils, secretsDir, logger); err != nil {
		return err
	}
	if cfg.Eutils.Email, err = validate.Email(cfg.Eutils.Email); err != nil {
		return err
	}

	client := eutils.NewClient(cfg.Eutils, logger)
	res, err := pipeline.Scrape(cmd.Context(), client, cfg.Scrape, logger, os.Stdout)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "wrote %s (run %s)\n", res.Output, res.RunID)
	if res.HasFailures() {
		return fmt.Errorf("%d chunk(s) failed; see %s", len(res.Failed), pipeline.ManifestPath(res.Output))
	}
	return nil
}
