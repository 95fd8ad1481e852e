package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-tool/internal/query"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Find stored papers by author name",
	Long: `Query searches the authors table for case-insensitive substring matches
on first name, last name, or initials and lists each matching author's
papers. All given terms are OR-ed; --any matches any of the three name
fields. With no terms every author is listed.`,
	PreRunE: bindFlags(storeKeys(nil)),
	RunE:    runQuery,
}

func init() {
	storeFlags(queryCmd.Flags())
	queryCmd.Flags().String("any", "", "match first name, last name, or initials")
	queryCmd.Flags().String("first", "", "match first name")
	queryCmd.Flags().String("last", "", "match last name")
	queryCmd.Flags().String("initials", "", "match initials")
	queryCmd.Flags().String("format", query.FormatTableName, "output format: table, json, yaml, or csl")

	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	var terms query.Terms
	terms.Any, _ = cmd.Flags().GetString("any")
	terms.First, _ = cmd.Flags().GetString("first")
	terms.Last, _ = cmd.Flags().GetString("last")
	terms.Initials, _ = cmd.Flags().GetString("initials")
	format, _ := cmd.Flags().GetString("format")

	s, _, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	groups, err := query.Run(cmd.Context(), s, terms)
	if err != nil {
		return err
	}
	logger.Debug("query complete", "terms", terms, "authors", len(groups), "matches", query.Total(groups))
	return query.Write(os.Stdout, groups, format)
}
