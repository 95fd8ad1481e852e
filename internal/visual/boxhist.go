// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package visual

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"

	"github.com/fogleman/gg"

	"github.com/pdiddy/pubmed-tool/pkg/types"
)

// Panel sizes for the distribution charts.
const (
	PanelWidth  = 450
	PanelHeight = 250

	// HistogramBins is the most bins Bins produces.
	HistogramBins = 20
)

// Box is the five-number summary drawn by BoxPlot. The whiskers reach the
// most extreme counts within 1.5 interquartile ranges of the box; counts
// beyond them are outliers.
type Box struct {
	Q1, Median, Q3 float64
	Low, High      float64
	Outliers       []float64
}

// BoxSummary computes the box plot summary of counts.
func BoxSummary(counts []MonthCount) Box {
	s := Describe(counts)
	b := Box{Q1: s.Q1, Median: s.Median, Q3: s.Q3, Low: s.Q3, High: s.Q1}
	iqr := s.Q3 - s.Q1
	lo, hi := s.Q1-1.5*iqr, s.Q3+1.5*iqr
	for _, c := range counts {
		v := float64(c.Count)
		if v < lo || v > hi {
			b.Outliers = append(b.Outliers, v)
			continue
		}
		b.Low = math.Min(b.Low, v)
		b.High = math.Max(b.High, v)
	}
	slices.Sort(b.Outliers)
	return b
}

// Bin is one histogram bar: the months whose count falls in [Lo, Hi).
// The last bin also holds counts equal to Hi.
type Bin struct {
	Lo, Hi float64
	Months int
}

// Bins groups the monthly counts into at most n equal-width bins spanning
// the smallest to the largest count. Widths are whole numbers.
func Bins(counts []MonthCount, n int) []Bin {
	if len(counts) == 0 || n <= 0 {
		return nil
	}
	s := Describe(counts)
	span := s.Max - s.Min + 1
	width := math.Ceil(span / float64(n))
	nbins := int(math.Ceil(span / width))

	bins := make([]Bin, nbins)
	for i := range bins {
		bins[i].Lo = s.Min + float64(i)*width
		bins[i].Hi = bins[i].Lo + width
	}
	for _, c := range counts {
		i := int((float64(c.Count) - s.Min) / width)
		bins[min(i, nbins-1)].Months++
	}
	return bins
}

// panel is a drawing context with a plot area and linear y scale.
type panel struct {
	dc           *gg.Context
	plotW, plotH float64
	yMax         float64
}

func newPanel(w, h int, yMax float64, title, xLabel, yLabel string) *panel {
	p := &panel{dc: gg.NewContext(w, h)}
	p.plotW = float64(w) - marginLeft - marginRight
	p.plotH = float64(h) - marginTop - marginBottom
	if yMax < 1 {
		yMax = 1
	}
	p.yMax = yMax * 1.1

	dc := p.dc
	dc.SetColor(color.White)
	dc.Clear()
	dc.SetColor(color.Black)
	dc.SetLineWidth(1)
	dc.DrawLine(marginLeft, marginTop, marginLeft, marginTop+p.plotH)
	dc.DrawLine(marginLeft, marginTop+p.plotH, marginLeft+p.plotW, marginTop+p.plotH)
	dc.Stroke()
	for _, frac := range []float64{0, 0.5, 1} {
		v := frac * p.yMax
		dc.DrawStringAnchored(fmt.Sprintf("%.0f", v), marginLeft-8, p.y(v), 1, 0.5)
	}
	dc.DrawStringAnchored(title, float64(w)/2, marginTop/2, 0.5, 0.5)
	if xLabel != "" {
		dc.DrawStringAnchored(xLabel, marginLeft+p.plotW/2, float64(h)-18, 0.5, 0.5)
	}
	dc.Push()
	dc.RotateAbout(gg.Radians(-90), 16, marginTop+p.plotH/2)
	dc.DrawStringAnchored(yLabel, 16, marginTop+p.plotH/2, 0.5, 0.5)
	dc.Pop()
	return p
}

func (p *panel) y(v float64) float64 {
	return marginTop + p.plotH - v/p.yMax*p.plotH
}

// BoxPlot draws the distribution of monthly counts as a box with whiskers.
// The box uses the primary color and outliers the secondary color.
func BoxPlot(counts []MonthCount, cfg types.VisualConfig) (image.Image, error) {
	if len(counts) == 0 {
		return nil, fmt.Errorf("%w: no months to plot", types.ErrInputValidation)
	}
	_, pal, err := chartOptions(cfg)
	if err != nil {
		return nil, err
	}
	b := BoxSummary(counts)
	yMax := b.High
	if len(b.Outliers) > 0 {
		yMax = math.Max(yMax, b.Outliers[len(b.Outliers)-1])
	}

	p := newPanel(PanelWidth, PanelHeight, yMax,
		"Distribution of Publications per Month", "", "Publications per Month")
	dc := p.dc
	cx := marginLeft + p.plotW/2
	half := p.plotW / 6

	dc.SetColor(pal.counts)
	dc.SetLineWidth(1.5)
	dc.DrawRectangle(cx-half, p.y(b.Q3), 2*half, p.y(b.Q1)-p.y(b.Q3))
	dc.Stroke()
	dc.SetLineWidth(2.5)
	dc.DrawLine(cx-half, p.y(b.Median), cx+half, p.y(b.Median))
	dc.Stroke()

	dc.SetLineWidth(1.5)
	for _, end := range [][2]float64{{b.Q3, b.High}, {b.Q1, b.Low}} {
		dc.DrawLine(cx, p.y(end[0]), cx, p.y(end[1]))
		dc.DrawLine(cx-half/2, p.y(end[1]), cx+half/2, p.y(end[1]))
	}
	dc.Stroke()

	dc.SetColor(pal.ci)
	for _, v := range b.Outliers {
		dc.DrawCircle(cx, p.y(v), 3)
		dc.Fill()
	}
	return dc.Image(), nil
}

// Histogram draws how many months had each range of publication counts,
// with bars in the primary color.
func Histogram(counts []MonthCount, cfg types.VisualConfig) (image.Image, error) {
	if len(counts) == 0 {
		return nil, fmt.Errorf("%w: no months to plot", types.ErrInputValidation)
	}
	_, pal, err := chartOptions(cfg)
	if err != nil {
		return nil, err
	}
	bins := Bins(counts, HistogramBins)
	most := 0
	for _, b := range bins {
		most = max(most, b.Months)
	}

	p := newPanel(PanelWidth, PanelHeight, float64(most),
		"Number of Publications per Month", "Publications per Month", "Months")
	dc := p.dc
	barW := p.plotW / float64(len(bins))
	base := p.y(0)

	for i, b := range bins {
		x := marginLeft + float64(i)*barW
		if b.Months > 0 {
			dc.SetColor(pal.counts)
			dc.DrawRectangle(x+1, p.y(float64(b.Months)), barW-2, base-p.y(float64(b.Months)))
			dc.Fill()
		}
	}
	dc.SetColor(color.Black)
	dc.DrawStringAnchored(fmt.Sprintf("%.0f", bins[0].Lo), marginLeft, base+14, 0.5, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%.0f", bins[len(bins)-1].Hi), marginLeft+p.plotW, base+14, 0.5, 0.5)
	return dc.Image(), nil
}
