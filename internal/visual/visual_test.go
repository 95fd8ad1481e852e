// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package visual

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pubmed-tool/pkg/types"
)

func day(y int, m time.Month, d int) types.Date {
	return types.Date{Year: y, Month: m, Day: d}
}

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func samplePapers() []types.Paper {
	return []types.Paper{
		{PMID: 1, PubDate: day(2020, time.January, 3), Journal: "J Test", NumAuthors: 1, Language: "['English']"},
		{PMID: 2, PubDate: day(2020, time.January, 28), Journal: "J Test", NumAuthors: 4, Language: "['English', 'French']"},
		{PMID: 3, PubDate: day(2020, time.March, 1), Journal: "J Other", NumAuthors: 2, Language: "['French']"},
		{PMID: 4, Journal: "J Test", NumAuthors: 1, Language: "['English']"},
	}
}

func TestCounts_IncludesEmptyMonths(t *testing.T) {
	got, err := Counts(samplePapers(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, []MonthCount{
		{Month: month(2020, time.January), Count: 2},
		{Month: month(2020, time.February), Count: 0},
		{Month: month(2020, time.March), Count: 1},
	}, got)
}

func TestCounts_Filters(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"journal ignores case", Filter{Journals: []string{"j test"}}, 2},
		{"min authors", Filter{MinAuthors: 2}, 2},
		{"author range", Filter{MinAuthors: 2, MaxAuthors: 3}, 1},
		{"language", Filter{Languages: []string{"French"}}, 2},
		{"language any of", Filter{Languages: []string{"german", "english"}}, 2},
		{"date window", Filter{Start: day(2020, time.January, 10), End: day(2020, time.March, 1)}, 2},
		{"nothing", Filter{Journals: []string{"Nature"}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Counts(samplePapers(), tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, Total(got))
		})
	}
}

func TestCounts_DateBoundsFixRange(t *testing.T) {
	f := Filter{Start: day(2019, time.November, 15), End: day(2020, time.April, 30)}
	got, err := Counts(samplePapers(), f)
	require.NoError(t, err)
	require.Len(t, got, 6)
	assert.Equal(t, month(2019, time.November), got[0].Month)
	assert.Equal(t, month(2020, time.April), got[5].Month)

	trimmed := Trim(got)
	require.Len(t, trimmed, 3)
	assert.Equal(t, month(2020, time.January), trimmed[0].Month)
	assert.Equal(t, month(2020, time.March), trimmed[2].Month)
}

func TestCounts_DuplicatePMID(t *testing.T) {
	papers := append(samplePapers(), types.Paper{PMID: 1, PubDate: day(2020, time.January, 3)})
	got, err := Counts(papers, Filter{})
	require.NoError(t, err)
	assert.Equal(t, 3, Total(got), "identical duplicate counted once")

	papers = append(samplePapers(), types.Paper{PMID: 1, PubDate: day(2021, time.May, 1)})
	_, err = Counts(papers, Filter{})
	assert.True(t, errors.Is(err, types.ErrDuplicateKey))
}

func TestTrim(t *testing.T) {
	zeros := []MonthCount{{Month: month(2020, 1)}, {Month: month(2020, 2)}}
	assert.Equal(t, zeros, Trim(zeros))
	assert.Empty(t, Trim(nil))

	one := []MonthCount{{Month: month(2020, 1)}, {Month: month(2020, 2), Count: 5}, {Month: month(2020, 3)}}
	assert.Equal(t, one[1:2], Trim(one))
}

func TestDescribe(t *testing.T) {
	counts := []MonthCount{{Count: 2}, {Count: 0}, {Count: 1}}
	s := Describe(counts)
	assert.Equal(t, 3, s.Months)
	assert.InDelta(t, 1.0, s.Mean, 1e-9)
	assert.InDelta(t, 1.0, s.Std, 1e-9)
	assert.Equal(t, 0.0, s.Min)
	assert.InDelta(t, 0.5, s.Q1, 1e-9)
	assert.InDelta(t, 1.0, s.Median, 1e-9)
	assert.InDelta(t, 1.5, s.Q3, 1e-9)
	assert.Equal(t, 2.0, s.Max)

	lower, upper := s.CI()
	assert.Equal(t, 0.0, lower, "clipped at zero")
	assert.Equal(t, 2.0, upper, "clipped at max")

	single := Describe([]MonthCount{{Count: 4}})
	assert.Zero(t, single.Std)
	assert.Equal(t, 4.0, single.Median)
	assert.Equal(t, Stats{}, Describe(nil))
}

func TestTitle(t *testing.T) {
	counts := []MonthCount{
		{Month: month(2020, time.January), Count: 1000},
		{Month: month(2021, time.March), Count: 234},
	}
	assert.Equal(t, "Articles between January 2020 -- March 2021: 1,234 articles", Title(counts))
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("Blue")
	require.NoError(t, err)
	r, g, b, _ := c.RGBA()
	assert.Equal(t, []uint32{0, 0, 0xffff}, []uint32{r, g, b})

	c, err = ParseColor("#ff8000")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0xff, G: 0x80, A: 0xff}, c)

	c, err = ParseColor("#0f0")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{G: 0xff, A: 0xff}, c)

	_, err = ParseColor("ultraviolet")
	assert.True(t, errors.Is(err, types.ErrInputValidation))
}

func TestLineChart(t *testing.T) {
	counts := []MonthCount{
		{Month: month(2020, 1), Count: 2}, {Month: month(2020, 2), Count: 8}, {Month: month(2020, 3), Count: 4},
	}
	img, err := LineChart(counts, "test", types.VisualConfig{Width: 300, Height: 200, PrimaryColor: "#0000ff"})
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())

	blue := 0
	for y := 0; y < 200; y++ {
		for x := 0; x < 300; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			if b > 0xc000 && r < 0x4000 && g < 0x4000 {
				blue++
			}
		}
	}
	assert.Positive(t, blue, "counts line drawn in the primary color")

	_, err = LineChart(nil, "", types.VisualConfig{})
	assert.Error(t, err)
	_, err = LineChart(counts, "", types.VisualConfig{AccentColor: "nope"})
	assert.True(t, errors.Is(err, types.ErrInputValidation))
}

// bluePixels counts the pixels of img that are mostly blue.
func bluePixels(img image.Image) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if bl > 0xc000 && r < 0x4000 && g < 0x4000 {
				n++
			}
		}
	}
	return n
}

func TestBoxSummary(t *testing.T) {
	var counts []MonthCount
	for i, c := range []int{2, 3, 3, 4, 5, 30} {
		counts = append(counts, MonthCount{Month: month(2020, time.Month(i+1)), Count: c})
	}
	b := BoxSummary(counts)
	assert.InDelta(t, 3.0, b.Q1, 1e-9)
	assert.InDelta(t, 3.5, b.Median, 1e-9)
	assert.InDelta(t, 4.75, b.Q3, 1e-9)
	assert.Equal(t, 2.0, b.Low)
	assert.Equal(t, 5.0, b.High)
	assert.Equal(t, []float64{30}, b.Outliers)
}

func TestBins(t *testing.T) {
	counts := []MonthCount{
		{Month: month(2020, 1), Count: 2}, {Month: month(2020, 2), Count: 8},
		{Month: month(2020, 3), Count: 4}, {Month: month(2020, 4), Count: 4},
	}
	bins := Bins(counts, 3)
	require.Len(t, bins, 3)
	assert.Equal(t, Bin{Lo: 2, Hi: 5, Months: 3}, bins[0])
	assert.Equal(t, Bin{Lo: 5, Hi: 8, Months: 0}, bins[1])
	assert.Equal(t, Bin{Lo: 8, Hi: 11, Months: 1}, bins[2])

	total := 0
	for _, b := range Bins(counts, HistogramBins) {
		total += b.Months
	}
	assert.Equal(t, len(counts), total)
	assert.Nil(t, Bins(nil, 3))
}

func TestBoxPlot(t *testing.T) {
	counts := []MonthCount{
		{Month: month(2020, 1), Count: 2}, {Month: month(2020, 2), Count: 8}, {Month: month(2020, 3), Count: 4},
	}
	img, err := BoxPlot(counts, types.VisualConfig{PrimaryColor: "#0000ff"})
	require.NoError(t, err)
	assert.Equal(t, PanelWidth, img.Bounds().Dx())
	assert.Equal(t, PanelHeight, img.Bounds().Dy())
	assert.Positive(t, bluePixels(img), "box drawn in the primary color")

	_, err = BoxPlot(nil, types.VisualConfig{})
	assert.Error(t, err)
	_, err = BoxPlot(counts, types.VisualConfig{SecondaryColor: "nope"})
	assert.True(t, errors.Is(err, types.ErrInputValidation))
}

func TestHistogram(t *testing.T) {
	counts := []MonthCount{
		{Month: month(2020, 1), Count: 2}, {Month: month(2020, 2), Count: 8}, {Month: month(2020, 3), Count: 4},
	}
	img, err := Histogram(counts, types.VisualConfig{PrimaryColor: "#0000ff"})
	require.NoError(t, err)
	assert.Equal(t, PanelWidth, img.Bounds().Dx())
	assert.Equal(t, PanelHeight, img.Bounds().Dy())
	assert.Positive(t, bluePixels(img), "bars drawn in the primary color")

	_, err = Histogram(nil, types.VisualConfig{})
	assert.Error(t, err)
	_, err = Histogram(counts, types.VisualConfig{PrimaryColor: "nope"})
	assert.True(t, errors.Is(err, types.ErrInputValidation))
}

func TestReport(t *testing.T) {
	rep, err := NewReport(samplePapers(), Filter{Start: day(2019, time.December, 1), End: day(2020, time.June, 30)}, true)
	require.NoError(t, err)
	assert.Len(t, rep.Counts, 3)
	assert.Equal(t, "Articles between January 2020 -- March 2020: 3 articles", rep.Title)

	var buf bytes.Buffer
	rep.WriteStats(&buf)
	assert.Contains(t, buf.String(), rep.Title)
	assert.Contains(t, buf.String(), "months   3")
	assert.Contains(t, buf.String(), "mean     1.00")

	dir := t.TempDir()
	written, err := rep.SaveCharts(filepath.Join(dir, "chart.jpg"), types.VisualConfig{Width: 400, Height: 250})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "chart.png"),
		filepath.Join(dir, "chart_box.png"),
		filepath.Join(dir, "chart_hist.png"),
	}, written)

	widths := []int{400, PanelWidth, PanelWidth}
	for i, out := range written {
		f, err := os.Open(out)
		require.NoError(t, err)
		cfg, err := png.DecodeConfig(f)
		f.Close()
		require.NoError(t, err)
		assert.Equal(t, widths[i], cfg.Width, out)
	}

	_, err = NewReport(samplePapers(), Filter{Journals: []string{"Nature"}}, true)
	assert.True(t, errors.Is(err, types.ErrInputValidation))
}
