package visualize

import (
	"fmt"
	"image/color"
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"volscope/internal/frame"
)

var (
	colorBlue   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	colorOrange = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	colorGray   = color.RGBA{R: 211, G: 211, B: 211, A: 255}
)

func withAlpha(c color.RGBA, alpha float64) color.RGBA {
	a := uint8(alpha * 255)
	scale := func(v uint8) uint8 { return uint8(float64(v) * alpha) }
	return color.RGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: a}
}

func newPanel(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	return p
}

// textPanel is an axis-free panel showing lines of text
func textPanel(title string, lines []string, boxed bool) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.HideAxes()
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1

	if boxed {
		box, err := plotter.NewPolygon(plotter.XYs{{X: 0.02, Y: 0.02}, {X: 0.98, Y: 0.02}, {X: 0.98, Y: 0.98}, {X: 0.02, Y: 0.98}})
		if err == nil {
			box.Color = colorGray
			box.LineStyle.Width = 0
			p.Add(box)
		}
	}

	n := len(lines)
	xys := make(plotter.XYs, n)
	for i := range lines {
		xys[i] = plotter.XY{X: 0.08, Y: 0.5 + (float64(n-1)/2-float64(i))*0.07}
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: lines})
	if err == nil {
		for i := range labels.TextStyle {
			labels.TextStyle[i].Font.Size = vg.Points(10)
			labels.TextStyle[i].XAlign = text.XLeft
			labels.TextStyle[i].YAlign = text.YCenter
		}
		p.Add(labels)
	}
	return p
}

// placeholder stands in for a panel whose data is not available
func placeholder(title, reason string) *plot.Plot {
	return textPanel(title, []string{reason}, false)
}

// histBins splits values into n equal-width bins over [min, max], the
// last bin closed on both ends. Constant data gets one unit-wide bin.
func histBins(values []float64, n int) ([]plotter.HistogramBin, float64) {
	lo, hi := frame.Min(values), frame.Max(values)
	if lo == hi {
		return []plotter.HistogramBin{{Min: lo - 0.5, Max: hi + 0.5, Weight: float64(len(values))}}, 1
	}
	width := (hi - lo) / float64(n)
	bins := make([]plotter.HistogramBin, n)
	for i := range bins {
		bins[i].Min = lo + float64(i)*width
		bins[i].Max = lo + float64(i+1)*width
	}
	for _, v := range values {
		i := int((v - lo) / width)
		if i >= n {
			i = n - 1
		}
		bins[i].Weight++
	}
	return bins, width
}

// histogram draws values into n bins. Non-finite values are dropped.
func histogram(title, xlabel string, values []float64, n int, fill color.RGBA, logY bool) (*plot.Plot, bool) {
	vals := frame.Finite(values)
	if len(vals) == 0 {
		return placeholder(title, "no finite values"), false
	}
	if n < 1 {
		n = 1
	}
	bins, width := histBins(vals, n)

	h := &plotter.Histogram{
		Bins:      bins,
		Width:     width,
		FillColor: withAlpha(fill, 0.7),
		LineStyle: plotter.DefaultLineStyle,
		LogY:      logY,
	}
	h.LineStyle.Width = vg.Points(0.5)

	p := newPanel(title, xlabel, "Frequency")
	p.Add(h)
	if logY {
		// Counts are whole numbers, so 0.5 sits below the smallest bar and
		// the range never collapses when every bin holds one value.
		var top float64
		for _, b := range bins {
			top = math.Max(top, b.Weight)
		}
		p.Y.Min, p.Y.Max = 0.5, math.Max(2, 2*top)
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	return p, true
}

// scatter draws paired points with a fixed radius. Points that are not
// finite, or not positive on a log axis, are dropped.
func scatter(title, xlabel, ylabel string, xs, ys []float64, radius vg.Length, logX, logY bool) (*plot.Plot, bool) {
	pts := pairs(xs, ys, logX, logY)
	if len(pts) == 0 {
		return placeholder(title, "no plottable points"), false
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return placeholder(title, err.Error()), false
	}
	s.GlyphStyle.Radius = radius
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	s.GlyphStyle.Color = withAlpha(colorBlue, 0.5)

	p := newPanel(title, xlabel, ylabel)
	p.Add(s)
	setLogAxes(p, logX, logY)
	return p, true
}

func setLogAxes(p *plot.Plot, logX, logY bool) {
	if logX {
		setLogAxis(&p.X)
	}
	if logY {
		setLogAxis(&p.Y)
	}
}

// setLogAxis switches a to a log scale. A single value range is widened
// by a factor of two each way, as the linear widening by one could reach
// zero.
func setLogAxis(a *plot.Axis) {
	if a.Min == a.Max {
		a.Min, a.Max = a.Min/2, a.Max*2
	}
	a.Scale = plot.LogScale{}
	a.Tick.Marker = plot.LogTicks{Prec: -1}
}

func pairs(xs, ys []float64, logX, logY bool) plotter.XYs {
	n := min(len(xs), len(ys))
	pts := make(plotter.XYs, 0, n)
	for i := 0; i < n; i++ {
		x, y := xs[i], ys[i]
		if !isFinite(x) || !isFinite(y) {
			continue
		}
		if (logX && x <= 0) || (logY && y <= 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: x, Y: y})
	}
	return pts
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// boxPlot draws one box per group, labelled along the x axis
func boxPlot(title, xlabel, ylabel string, labels []string, groups [][]float64) (*plot.Plot, bool) {
	p := newPanel(title, xlabel, ylabel)
	added := 0
	for i, g := range groups {
		vals := frame.Finite(g)
		if len(vals) == 0 {
			continue
		}
		b, err := plotter.NewBoxPlot(vg.Points(18), float64(i), plotter.Values(vals))
		if err != nil {
			continue
		}
		b.FillColor = withAlpha(colorPalette(i), 0.8)
		p.Add(b)
		added++
	}
	if added == 0 {
		return placeholder(title, "no groups to plot"), false
	}
	p.NominalX(labels...)
	return p, true
}

// heatMap draws a correlation matrix on a diverging palette fixed to
// [-1, 1], annotating every cell with its value
func heatMap(title string, m frame.CorrMatrix) (*plot.Plot, bool) {
	if len(m.Columns) < 2 {
		return placeholder(title, "fewer than two price columns"), false
	}

	cm := moreland.SmoothBlueRed()
	cm.SetMin(-1)
	cm.SetMax(1)
	hm := plotter.NewHeatMap(corrGrid{m}, cm.Palette(255))
	hm.Min, hm.Max = -1, 1
	hm.NaN = colorGray

	p := newPanel(title, "", "")
	p.Add(hm)

	n := len(m.Columns)
	var xys plotter.XYs
	var texts []string
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			xys = append(xys, plotter.XY{X: float64(c), Y: float64(n - 1 - r)})
			texts = append(texts, formatCorr(m.Values[r][c]))
		}
	}
	if labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts}); err == nil {
		for i := range labels.TextStyle {
			labels.TextStyle[i].XAlign = text.XCenter
			labels.TextStyle[i].YAlign = text.YCenter
		}
		p.Add(labels)
	}

	names := append([]string(nil), m.Columns...)
	p.NominalX(names...)
	reversed := make([]string, n)
	for i, name := range names {
		reversed[n-1-i] = name
	}
	p.NominalY(reversed...)
	return p, true
}

func formatCorr(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// corrGrid adapts a correlation matrix to plotter.GridXYZ. Row 0 of the
// matrix is drawn at the top.
type corrGrid struct {
	m frame.CorrMatrix
}

func (g corrGrid) Dims() (c, r int) {
	n := len(g.m.Columns)
	return n, n
}

func (g corrGrid) Z(c, r int) float64 {
	n := len(g.m.Columns)
	return g.m.Values[n-1-r][c]
}

func (g corrGrid) X(c int) float64 { return float64(c) }

func (g corrGrid) Y(r int) float64 { return float64(r) }

var boxColors = []color.RGBA{
	{R: 246, G: 112, B: 136, A: 255},
	{R: 206, G: 143, B: 49, A: 255},
	{R: 150, G: 163, B: 49, A: 255},
	{R: 50, G: 176, B: 101, A: 255},
	{R: 53, G: 172, B: 164, A: 255},
	{R: 56, G: 167, B: 208, A: 255},
	{R: 163, G: 140, B: 244, A: 255},
	{R: 244, G: 97, B: 221, A: 255},
}

func colorPalette(i int) color.RGBA {
	return boxColors[i%len(boxColors)]
}

func formatKey(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func skipReason(missing []string) string {
	return fmt.Sprintf("missing columns: %v", missing)
}
