// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package visual

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fogleman/gg"
	"golang.org/x/image/colornames"

	"github.com/pdiddy/pubmed-tool/internal/validate"
	"github.com/pdiddy/pubmed-tool/pkg/types"
)

// Chart defaults.
const (
	DefaultWidth          = 1000
	DefaultHeight         = 400
	DefaultPrimaryColor   = "blue"
	DefaultSecondaryColor = "grey"
	DefaultAccentColor    = "grey"
)

const (
	marginLeft   = 70.0
	marginRight  = 30.0
	marginTop    = 50.0
	marginBottom = 60.0
)

// ParseColor resolves a CSS color name or a #rrggbb / #rgb hex value.
func ParseColor(s string) (color.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := colornames.Map[s]; ok {
		return c, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if (len(hex) == 6 || len(hex) == 3) && strings.Trim(hex, "0123456789abcdef") == "" {
		return hexColor(hex), nil
	}
	return nil, fmt.Errorf("%w: unknown color %q", types.ErrInputValidation, s)
}

func hexColor(hex string) color.Color {
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	v, _ := strconv.ParseUint(hex, 16, 32)
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}

// Title describes the date range and size of counts, e.g.
// "Articles between January 2020 -- March 2021: 1,234 articles".
func Title(counts []MonthCount) string {
	if len(counts) == 0 {
		return "No articles"
	}
	return fmt.Sprintf("Articles between %s -- %s: %s articles",
		counts[0].Month.Format("January 2006"), counts[len(counts)-1].Month.Format("January 2006"),
		humanize.Comma(int64(Total(counts))))
}

type palette struct {
	counts, ci, mean color.Color
}

func chartOptions(cfg types.VisualConfig) (types.VisualConfig, palette, error) {
	if cfg.Width <= 0 {
		cfg.Width = DefaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = DefaultHeight
	}
	if cfg.PrimaryColor == "" {
		cfg.PrimaryColor = DefaultPrimaryColor
	}
	if cfg.SecondaryColor == "" {
		cfg.SecondaryColor = DefaultSecondaryColor
	}
	if cfg.AccentColor == "" {
		cfg.AccentColor = DefaultAccentColor
	}
	var p palette
	var err error
	if p.counts, err = ParseColor(cfg.PrimaryColor); err != nil {
		return cfg, p, err
	}
	if p.ci, err = ParseColor(cfg.SecondaryColor); err != nil {
		return cfg, p, err
	}
	if p.mean, err = ParseColor(cfg.AccentColor); err != nil {
		return cfg, p, err
	}
	return cfg, p, nil
}

// LineChart draws the monthly counts with the mean and its 95% interval
// as horizontal reference lines.
func LineChart(counts []MonthCount, title string, cfg types.VisualConfig) (image.Image, error) {
	if len(counts) == 0 {
		return nil, fmt.Errorf("%w: no months to plot", types.ErrInputValidation)
	}
	cfg, pal, err := chartOptions(cfg)
	if err != nil {
		return nil, err
	}

	stats := Describe(counts)
	lower, upper := stats.CI()

	w, h := float64(cfg.Width), float64(cfg.Height)
	plotW, plotH := w-marginLeft-marginRight, h-marginTop-marginBottom
	yMax := stats.Max
	if yMax < 1 {
		yMax = 1
	}
	yMax *= 1.1

	x := func(i int) float64 {
		if len(counts) == 1 {
			return marginLeft + plotW/2
		}
		return marginLeft + float64(i)*plotW/float64(len(counts)-1)
	}
	y := func(v float64) float64 { return marginTop + plotH - v/yMax*plotH }

	dc := gg.NewContext(cfg.Width, cfg.Height)
	dc.SetColor(color.White)
	dc.Clear()

	// Axes and y ticks.
	dc.SetColor(color.Black)
	dc.SetLineWidth(1)
	dc.DrawLine(marginLeft, marginTop, marginLeft, marginTop+plotH)
	dc.DrawLine(marginLeft, marginTop+plotH, marginLeft+plotW, marginTop+plotH)
	dc.Stroke()
	for _, frac := range []float64{0, 0.25, 0.5, 0.75, 1} {
		v := frac * yMax
		dc.DrawStringAnchored(fmt.Sprintf("%.0f", v), marginLeft-8, y(v), 1, 0.5)
	}
	dc.DrawStringAnchored(counts[0].Month.Format("Jan 2006"), x(0), marginTop+plotH+14, 0.5, 0.5)
	if len(counts) > 1 {
		dc.DrawStringAnchored(counts[len(counts)-1].Month.Format("Jan 2006"), x(len(counts)-1), marginTop+plotH+14, 0.5, 0.5)
	}
	dc.DrawStringAnchored("Published Date", marginLeft+plotW/2, h-18, 0.5, 0.5)
	dc.DrawStringAnchored(title, w/2, marginTop/2, 0.5, 0.5)

	// Reference lines.
	hline := func(v float64, c color.Color, dashed bool) {
		dc.SetColor(c)
		if dashed {
			dc.SetDash(6, 4)
			dc.SetLineWidth(1.5)
		} else {
			dc.SetDash()
			dc.SetLineWidth(1)
		}
		dc.DrawLine(marginLeft, y(v), marginLeft+plotW, y(v))
		dc.Stroke()
	}
	hline(lower, pal.ci, false)
	hline(upper, pal.ci, false)
	hline(stats.Mean, pal.mean, true)
	dc.SetDash()

	// Counts.
	dc.SetColor(pal.counts)
	dc.SetLineWidth(2)
	for i, c := range counts {
		if i == 0 {
			dc.MoveTo(x(i), y(float64(c.Count)))
		} else {
			dc.LineTo(x(i), y(float64(c.Count)))
		}
	}
	if len(counts) == 1 {
		dc.DrawCircle(x(0), y(float64(counts[0].Count)), 3)
		dc.Fill()
	} else {
		dc.Stroke()
	}

	return dc.Image(), nil
}

// Report is a filtered, summarized view of stored papers.
type Report struct {
	Title  string       `json:"title" yaml:"title"`
	Counts []MonthCount `json:"counts" yaml:"counts"`
	Stats  Stats        `json:"stats" yaml:"stats"`
	Filter Filter       `json:"-" yaml:"-"`
}

// NewReport counts papers per month under f, trims empty leading and
// trailing months when trim is set, and summarizes the result.
func NewReport(papers []types.Paper, f Filter, trim bool) (Report, error) {
	counts, err := Counts(papers, f)
	if err != nil {
		return Report{}, err
	}
	if trim {
		counts = Trim(counts)
	}
	if len(counts) == 0 {
		return Report{}, fmt.Errorf("%w: no dated papers match the filter", types.ErrInputValidation)
	}
	return Report{Title: Title(counts), Counts: counts, Stats: Describe(counts), Filter: f}, nil
}

// WriteStats prints the title and summary statistics.
func (r Report) WriteStats(w io.Writer) {
	lower, upper := r.Stats.CI()
	fmt.Fprintln(w, r.Title)
	fmt.Fprintf(w, "  %-8s %d\n", "months", r.Stats.Months)
	for _, row := range []struct {
		name string
		v    float64
	}{
		{"mean", r.Stats.Mean}, {"std", r.Stats.Std}, {"min", r.Stats.Min},
		{"25%", r.Stats.Q1}, {"50%", r.Stats.Median}, {"75%", r.Stats.Q3}, {"max", r.Stats.Max},
		{"ci low", lower}, {"ci high", upper},
	} {
		fmt.Fprintf(w, "  %-8s %.2f\n", row.name, row.v)
	}
}

// SaveCharts renders the report to PNG files: the line chart at path,
// which must end in .png, and the box plot and histogram next to it with
// "_box" and "_hist" added to the file name. It returns the paths written.
func (r Report) SaveCharts(path string, cfg types.VisualConfig) ([]string, error) {
	out, err := validate.Path(validate.PathOptions{Name: path, Suffixes: []string{".png"}, Overwrite: true}, nil)
	if err != nil {
		return nil, err
	}
	stem := strings.TrimSuffix(out, filepath.Ext(out))

	charts := []struct {
		path string
		draw func() (image.Image, error)
	}{
		{out, func() (image.Image, error) { return LineChart(r.Counts, r.Title, cfg) }},
		{stem + "_box.png", func() (image.Image, error) { return BoxPlot(r.Counts, cfg) }},
		{stem + "_hist.png", func() (image.Image, error) { return Histogram(r.Counts, cfg) }},
	}
	var written []string
	for _, c := range charts {
		img, err := c.draw()
		if err != nil {
			return written, err
		}
		if err := gg.SavePNG(c.path, img); err != nil {
			return written, fmt.Errorf("saving chart %s: %w", c.path, err)
		}
		written = append(written, c.path)
	}
	return written, nil
}
