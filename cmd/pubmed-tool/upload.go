package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubmed-tool/internal/language"
	"github.com/pdiddy/pubmed-tool/internal/pipeline"
	"github.com/pdiddy/pubmed-tool/internal/store"
	"github.com/pdiddy/pubmed-tool/pkg/types"
)

// storeFlags defines the database flags shared by upload, query, and visual.
func storeFlags(fs *pflag.FlagSet) {
	def := types.DefaultTableNames()
	fs.String("db", "publications.db", "SQLite database file")
	fs.String("papers-table", def.Papers, "name of the papers table")
	fs.String("authors-table", def.Authors, "name of the authors table")
	fs.String("pairs-table", def.Pairs, "name of the author-paper pairs table")
}

// storeKeys maps storeFlags to configuration keys, plus any extra keys.
func storeKeys(extra map[string]string) map[string]string {
	keys := map[string]string{
		"store.db_path":        "db",
		"store.tables.papers":  "papers-table",
		"store.tables.authors": "authors-table",
		"store.tables.pairs":   "pairs-table",
	}
	for k, v := range extra {
		keys[k] = v
	}
	return keys
}

// openStore opens the configured database.
func openStore() (*store.Store, types.PipelineConfig, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, cfg, err
	}
	s, err := store.Open(cfg.Store, logger)
	return s, cfg, err
}

var uploadCmd = &cobra.Command{
	Use:   "upload [csv]",
	Short: "Load a scraped CSV into the SQLite database",
	Long: `Upload reads a CSV written by scrape, expands it into one row per
article author, and writes the papers, authors, and author-paper pairs
tables. With --overwrite the tables are replaced; otherwise new rows are
appended and rows whose key already exists are kept.

The CSV defaults to scrape.output_path from the configuration.`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: bindFlags(storeKeys(map[string]string{"store.overwrite": "overwrite"})),
	RunE:    runUpload,
}

func init() {
	storeFlags(uploadCmd.Flags())
	uploadCmd.Flags().Bool("overwrite", false, "drop and recreate the tables before loading")
	uploadCmd.Flags().String("languages", "", "YAML file of language code to name overrides")

	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	csvPath := viper.GetString("scrape.output_path")
	if len(args) == 1 {
		csvPath = args[0]
	}
	if csvPath == "" {
		return fmt.Errorf("provide the CSV to upload")
	}

	var lang language.Lookup = language.Default()
	if file, _ := cmd.Flags().GetString("languages"); file != "" {
		t, err := language.LoadFile(file)
		if err != nil {
			return err
		}
		lang = t
	}

	s, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	_, err = pipeline.Load(cmd.Context(), csvPath, s, lang, cfg.Store.Overwrite, logger, os.Stdout)
	return err
}
