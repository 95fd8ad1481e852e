// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pubmed-tool CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubmed-tool/internal/diag"
	"github.com/pdiddy/pubmed-tool/internal/secrets"
	"github.com/pdiddy/pubmed-tool/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// secretsDir holds credential files (ncbi-email, ncbi-api-key).
const secretsDir = ".secrets/"

// logger is built in the root pre-run from --log-mode and --verbose.
var logger = diag.Nop()

// rootCmd is the base command for the pubmed-tool CLI.
var rootCmd = &cobra.Command{
	Use:   "pubmed-tool",
	Short: "Scrape, normalize, store, and query PubMed citations",
	Long: `pubmed-tool retrieves citation records from PubMed through NCBI
E-utilities, normalizes their dates, authors, volume/issue designators, and
languages into a canonical form, and stores them as papers, authors, and
author-paper pairs in SQLite.

The stages are subcommands: scrape writes a CSV, upload loads a CSV into the
database, query searches it by author name, and visual charts publications
per month.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		mode, _ := cmd.Flags().GetString("log-mode")
		verbose, _ := cmd.Flags().GetBool("verbose")
		l, err := diag.New(mode, verbose)
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		logger = l
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug("using config file", "path", used)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pubmed-tool.yaml or ~/.config/pubmed-tool/pubmed-tool.yaml)")
	rootCmd.PersistentFlags().String("log-mode", "dev", "log format: dev (console) or prod (JSON)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}

func initConfig() {
	secrets.LoadEnv(".env")

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pubmed-tool")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pubmed-tool"))
		}
	}

	viper.SetEnvPrefix("PUBMED_TOOL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// bindFlags binds the named flags of the running command to viper keys.
// Binding happens at run time because several commands share keys.
func bindFlags(keys map[string]string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		for key, name := range keys {
			f := cmd.Flags().Lookup(name)
			if f == nil {
				return fmt.Errorf("flag --%s not defined on %s", name, cmd.Name())
			}
			if err := viper.BindPFlag(key, f); err != nil {
				return err
			}
		}
		return nil
	}
}

// loadConfig decodes the merged flag, environment, and file settings.
func loadConfig() (types.PipelineConfig, error) {
	var cfg types.PipelineConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	return cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
