package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-tool/internal/validate"
	"github.com/pdiddy/pubmed-tool/internal/visual"
	"github.com/pdiddy/pubmed-tool/pkg/types"
)

var visualCmd = &cobra.Command{
	Use:   "visual",
	Short: "Chart stored publications per month",
	Long: `Visual counts stored papers per publication month, prints summary
statistics, and renders a line chart with the mean and its 95% confidence
bounds to a PNG file. A box plot and a histogram of the monthly counts are
written next to it with _box and _hist added to the file name. Filters narrow the papers by date range, journal,
number of authors, and language. Months with no papers are included;
leading and trailing empty months are trimmed unless --no-trim is set.`,
	PreRunE: bindFlags(storeKeys(map[string]string{
		"visual.output_path":     "output",
		"visual.width":           "width",
		"visual.height":          "height",
		"visual.primary_color":   "primary-color",
		"visual.secondary_color": "secondary-color",
		"visual.accent_color":    "accent-color",
	})),
	RunE: runVisual,
}

func init() {
	storeFlags(visualCmd.Flags())
	visualCmd.Flags().String("start", "", "earliest publication date (YYYY/MM/DD)")
	visualCmd.Flags().String("end", "", "latest publication date (YYYY/MM/DD)")
	visualCmd.Flags().StringSlice("journal", nil, "keep only these journals (repeatable)")
	visualCmd.Flags().Int("min-authors", 0, "minimum number of authors")
	visualCmd.Flags().Int("max-authors", 0, "maximum number of authors")
	visualCmd.Flags().StringSlice("language", nil, "keep only these languages, e.g. English (repeatable)")
	visualCmd.Flags().Bool("no-trim", false, "keep leading and trailing months with no papers")
	visualCmd.Flags().String("output", "visual.png", "PNG destination")
	visualCmd.Flags().Int("width", visual.DefaultWidth, "image width in pixels")
	visualCmd.Flags().Int("height", visual.DefaultHeight, "image height in pixels")
	visualCmd.Flags().String("primary-color", visual.DefaultPrimaryColor, "color of the counts line, box, and histogram bars")
	visualCmd.Flags().String("secondary-color", visual.DefaultSecondaryColor, "color of the 95% confidence bounds and box plot outliers")
	visualCmd.Flags().String("accent-color", visual.DefaultAccentColor, "color of the mean line")

	rootCmd.AddCommand(visualCmd)
}

func runVisual(cmd *cobra.Command, args []string) error {
	var f visual.Filter
	var err error
	start, _ := cmd.Flags().GetString("start")
	if f.Start, err = dateBound(start); err != nil {
		return err
	}
	end, _ := cmd.Flags().GetString("end")
	if f.End, err = dateBound(end); err != nil {
		return err
	}
	if !f.Start.IsZero() && !f.End.IsZero() && f.End.Time().Before(f.Start.Time()) {
		return fmt.Errorf("%w: --start %s is after --end %s", types.ErrInputValidation, start, end)
	}
	f.Journals, _ = cmd.Flags().GetStringSlice("journal")
	f.MinAuthors, _ = cmd.Flags().GetInt("min-authors")
	f.MaxAuthors, _ = cmd.Flags().GetInt("max-authors")
	f.Languages, _ = cmd.Flags().GetStringSlice("language")
	noTrim, _ := cmd.Flags().GetBool("no-trim")

	s, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	papers, err := s.ReadPapers(cmd.Context())
	if err != nil {
		return err
	}
	rep, err := visual.NewReport(papers, f, !noTrim)
	if err != nil {
		return err
	}
	rep.WriteStats(os.Stdout)

	written, err := rep.SaveCharts(cfg.Visual.OutputPath, cfg.Visual)
	for _, out := range written {
		fmt.Fprintf(os.Stdout, "chart written to %s\n", out)
	}
	return err
}

// dateBound parses an optional YYYY/MM/DD filter bound.
func dateBound(s string) (types.Date, error) {
	if s == "" {
		return types.Date{}, nil
	}
	norm, err := validate.Date(s)
	if err != nil {
		return types.Date{}, err
	}
	t, err := time.Parse("2006/01/02", norm)
	if err != nil {
		return types.Date{}, err
	}
	d, _ := types.NewDate(t.Year(), t.Month(), t.Day())
	return d, nil
}
