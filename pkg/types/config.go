package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pubmed-tool/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// EutilsConfig holds settings for the NCBI E-utilities client.
type EutilsConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the E-utilities endpoint root (default
	// https://eutils.ncbi.nlm.nih.gov/entrez/eutils).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// Email identifies the caller to NCBI and is required for every request.
	Email string `json:"email" yaml:"email" mapstructure:"email"`

	// APIKey is an optional NCBI API key that raises the rate limit.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Tool is the tool name reported to NCBI.
	Tool string `json:"tool" yaml:"tool" mapstructure:"tool"`

	// RequestsPerSecond caps the request rate. Zero selects the NCBI
	// default: 3 without an API key, 10 with one.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// ScrapeConfig holds settings for the scrape stage.
type ScrapeConfig struct {
	// Keyword is the search term placed in front of the date filter.
	Keyword string `json:"keyword" yaml:"keyword" mapstructure:"keyword"`

	// StartDate and EndDate bound the publication date, YYYY/MM/DD.
	StartDate string `json:"start_date" yaml:"start_date" mapstructure:"start_date"`
	EndDate   string `json:"end_date" yaml:"end_date" mapstructure:"end_date"`

	// MaxResults is the maximum number of PMIDs requested (default 200000).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// ChunkSize is the number of records fetched and written per chunk.
	// Zero processes the whole result set as one chunk.
	ChunkSize int `json:"chunk_size" yaml:"chunk_size" mapstructure:"chunk_size"`

	// OutputPath is the CSV destination. Empty keeps results in memory.
	OutputPath string `json:"output_path" yaml:"output_path" mapstructure:"output_path"`

	// Overwrite replaces an existing destination with the first chunk.
	// When false, every chunk appends to a compatible existing file.
	Overwrite bool `json:"overwrite" yaml:"overwrite" mapstructure:"overwrite"`

	// MetricsPath, when set, receives the run's Prometheus counters in
	// text exposition format.
	MetricsPath string `json:"metrics_path,omitempty" yaml:"metrics_path,omitempty" mapstructure:"metrics_path"`
}

// TableNames names the three relations in the store.
type TableNames struct {
	Papers  string `json:"papers" yaml:"papers" mapstructure:"papers"`
	Authors string `json:"authors" yaml:"authors" mapstructure:"authors"`
	Pairs   string `json:"pairs" yaml:"pairs" mapstructure:"pairs"`
}

// DefaultTableNames returns the table names used when none are configured.
func DefaultTableNames() TableNames {
	return TableNames{
		Papers:  "papers",
		Authors: "authors",
		Pairs:   "pairs_authorpapers",
	}
}

// StoreConfig holds settings for the SQLite store.
type StoreConfig struct {
	// DBPath is the SQLite database file (default publications.db).
	DBPath string `json:"db_path" yaml:"db_path" mapstructure:"db_path"`

	// Tables names the papers, authors, and pairs relations.
	Tables TableNames `json:"tables" yaml:"tables" mapstructure:"tables"`

	// Overwrite drops existing tables before upload; otherwise rows are
	// appended and duplicate keys are ignored.
	Overwrite bool `json:"overwrite" yaml:"overwrite" mapstructure:"overwrite"`
}

// VisualConfig holds settings for the visualization stage.
type VisualConfig struct {
	// OutputPath is the PNG destination (default visual.png).
	OutputPath string `json:"output_path" yaml:"output_path" mapstructure:"output_path"`

	// Width and Height are the image size in pixels.
	Width  int `json:"width" yaml:"width" mapstructure:"width"`
	Height int `json:"height" yaml:"height" mapstructure:"height"`

	// PrimaryColor draws the monthly counts line, the box, and the
	// histogram bars; SecondaryColor the 95% confidence bounds and box plot
	// outliers; AccentColor the mean line. Names or #rrggbb.
	PrimaryColor   string `json:"primary_color" yaml:"primary_color" mapstructure:"primary_color"`
	SecondaryColor string `json:"secondary_color" yaml:"secondary_color" mapstructure:"secondary_color"`
	AccentColor    string `json:"accent_color" yaml:"accent_color" mapstructure:"accent_color"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Eutils EutilsConfig `json:"eutils" yaml:"eutils" mapstructure:"eutils"`
	Scrape ScrapeConfig `json:"scrape" yaml:"scrape" mapstructure:"scrape"`
	Store  StoreConfig  `json:"store" yaml:"store" mapstructure:"store"`
	Visual VisualConfig `json:"visual" yaml:"visual" mapstructure:"visual"`
}
