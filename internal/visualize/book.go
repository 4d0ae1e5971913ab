package visualize

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	apperrors "volscope/internal/errors"
	"volscope/internal/frame"
	"volscope/pkg/contracts/domain"
)

const (
	// priceSeriesRows bounds the price evolution panel
	priceSeriesRows = 1000
	// timeStatsBuckets is how many time buckets the mean spread panel shows
	timeStatsBuckets = 20
)

// Spread returns ask_price1 - bid_price1 for every row of book
func Spread(book *frame.Table) ([]float64, error) {
	if missing := book.Missing(domain.ColAskPrice1, domain.ColBidPrice1); len(missing) > 0 {
		return nil, apperrors.NewSchemaError(missing...)
	}
	ask, _ := book.Floats(domain.ColAskPrice1)
	bid, _ := book.Floats(domain.ColBidPrice1)
	return frame.Sub(ask, bid), nil
}

// PricePoint is one level-1 quote of the sample stock
type PricePoint struct {
	Seconds float64
	Bid     float64
	Ask     float64
}

// TimeStat aggregates the book rows of one time bucket
type TimeStat struct {
	TimeID       float64
	Rows         int
	MeanSpread   float64
	MeanBidSize1 float64
	MeanAskSize1 float64
}

// BookAnalysis holds the values derived from an order book sample
type BookAnalysis struct {
	Spread      []float64
	MeanSpread  float64
	SampleStock float64
	HasSample   bool
	Prices      []PricePoint
	Correlation frame.CorrMatrix
	TimeStats   []TimeStat
}

// AnalyzeBook derives the level-1 spread, the price series of the first
// stock, the price level correlations and mean spread per time bucket.
// Parts whose columns are missing are left empty.
func AnalyzeBook(book *frame.Table) *BookAnalysis {
	a := &BookAnalysis{MeanSpread: math.NaN()}

	if spread, err := Spread(book); err == nil {
		a.Spread = spread
		a.MeanSpread = frame.Mean(spread)
	}

	if book.Has(domain.ColStockID, domain.ColSecondsInBucket, domain.ColBidPrice1, domain.ColAskPrice1) {
		stocks, _ := book.Floats(domain.ColStockID)
		if first, ok := firstKey(stocks); ok {
			a.SampleStock, a.HasSample = first, true
			secs, _ := book.Floats(domain.ColSecondsInBucket)
			bid, _ := book.Floats(domain.ColBidPrice1)
			ask, _ := book.Floats(domain.ColAskPrice1)
			for _, i := range book.RowsWhereEqual(domain.ColStockID, first) {
				a.Prices = append(a.Prices, PricePoint{Seconds: secs[i], Bid: bid[i], Ask: ask[i]})
				if len(a.Prices) == priceSeriesRows {
					break
				}
			}
		}
	}

	a.Correlation = book.Corr(domain.PriceLevelColumns...)

	if times, ok := book.Floats(domain.ColTimeID); ok {
		spread := a.Spread
		if spread == nil {
			spread = nanColumn(len(times))
		}
		bidSize := columnOrNaN(book, domain.ColBidSize1)
		askSize := columnOrNaN(book, domain.ColAskSize1)
		groups := frame.GroupMeans(times, spread, bidSize, askSize)
		if len(groups) > timeStatsBuckets {
			groups = groups[:timeStatsBuckets]
		}
		for _, g := range groups {
			a.TimeStats = append(a.TimeStats, TimeStat{
				TimeID:       g.Key,
				Rows:         g.Count,
				MeanSpread:   g.Means[0],
				MeanBidSize1: g.Means[1],
				MeanAskSize1: g.Means[2],
			})
		}
	}
	return a
}

// Records renders the time bucket aggregates for export
func (a *BookAnalysis) Records() ([]string, [][]string) {
	header := []string{domain.ColTimeID, "rows", "mean_spread_1", "mean_bid_size1", "mean_ask_size1"}
	rows := make([][]string, 0, len(a.TimeStats))
	for _, t := range a.TimeStats {
		rows = append(rows, []string{
			formatKey(t.TimeID),
			fmt.Sprint(t.Rows),
			formatFloat(t.MeanSpread, 8),
			formatFloat(t.MeanBidSize1, 4),
			formatFloat(t.MeanAskSize1, 4),
		})
	}
	return header, rows
}

func firstKey(xs []float64) (float64, bool) {
	for _, x := range xs {
		if !math.IsNaN(x) {
			return x, true
		}
	}
	return 0, false
}

func nanColumn(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func columnOrNaN(t *frame.Table, name string) []float64 {
	if vals, ok := t.Floats(name); ok {
		return vals
	}
	return nanColumn(t.Len())
}

// PlotBookAnalysis renders the six order book panels: spread histogram,
// price evolution of the first stock, bid/ask size scatter, seconds in
// bucket histogram, price level correlations and mean spread per time
// bucket. It returns the written figure path, or "" when book is absent.
func (v *Visualizer) PlotBookAnalysis(ctx context.Context, book *frame.Table) string {
	ctx, span := v.telemetry.StartSpan(ctx, "visualize.book_analysis")
	defer span.End()

	if book.Empty() {
		v.notice(ctx, "No book data available", slog.String("figure", FigureBook))
		return ""
	}

	a := AnalyzeBook(book)
	fig := &Figure{
		Name:  FigureBook,
		Title: "Order Book Analysis",
		Rows:  2,
		Cols:  3,
	}

	var spreadPanel *plot.Plot
	if a.Spread == nil {
		spreadPanel = v.skipPanel(ctx, FigureBook, "Spread distribution (level 1)", book.Missing(domain.ColAskPrice1, domain.ColBidPrice1))
	} else {
		spreadPanel, _ = histogram("Spread distribution (level 1)", "Ask price 1 - Bid price 1", a.Spread, v.bins, colorBlue, false)
	}

	pricePanel := v.pricePanel(ctx, book, a)

	var sizePanel *plot.Plot
	if missing := book.Missing(domain.ColBidSize1, domain.ColAskSize1); len(missing) > 0 {
		sizePanel = v.skipPanel(ctx, FigureBook, "Bid vs ask sizes (level 1)", missing)
	} else {
		bidSize, _ := book.Floats(domain.ColBidSize1)
		askSize, _ := book.Floats(domain.ColAskSize1)
		sizePanel, _ = scatter("Bid vs ask sizes (level 1)", "Bid size 1", "Ask size 1", bidSize, askSize, vg.Points(0.6), true, true)
	}

	var secondsPanel *plot.Plot
	if secs, ok := book.Floats(domain.ColSecondsInBucket); ok {
		secondsPanel, _ = histogram("Seconds in bucket distribution", "Seconds", secs, v.bins, colorBlue, false)
	} else {
		secondsPanel = v.skipPanel(ctx, FigureBook, "Seconds in bucket distribution", []string{domain.ColSecondsInBucket})
	}

	corrPanel, ok := heatMap("Price level correlation", a.Correlation)
	if !ok {
		v.panelSkipped(ctx, FigureBook, "Price level correlation", "fewer than two price columns")
	}

	fig.Panels = []*plot.Plot{spreadPanel, pricePanel, sizePanel, secondsPanel, corrPanel, v.timeStatsPanel(ctx, book, a)}

	path := v.save(ctx, fig)
	v.export(ctx, "book_time_stats", a)
	return path
}

func (v *Visualizer) pricePanel(ctx context.Context, book *frame.Table, a *BookAnalysis) *plot.Plot {
	const title = "Price evolution"
	if !a.HasSample {
		missing := book.Missing(domain.ColStockID, domain.ColSecondsInBucket, domain.ColBidPrice1, domain.ColAskPrice1)
		if len(missing) == 0 {
			return placeholder(title, "no stock id values")
		}
		return v.skipPanel(ctx, FigureBook, title, missing)
	}

	bidPts := make(plotter.XYs, 0, len(a.Prices))
	askPts := make(plotter.XYs, 0, len(a.Prices))
	for _, pp := range a.Prices {
		if isFinite(pp.Seconds) && isFinite(pp.Bid) {
			bidPts = append(bidPts, plotter.XY{X: pp.Seconds, Y: pp.Bid})
		}
		if isFinite(pp.Seconds) && isFinite(pp.Ask) {
			askPts = append(askPts, plotter.XY{X: pp.Seconds, Y: pp.Ask})
		}
	}

	p := newPanel(fmt.Sprintf("%s - stock %s", title, formatKey(a.SampleStock)), "Seconds in bucket", "Normalized price")
	p.Legend.Top = true
	for _, series := range []struct {
		label string
		pts   plotter.XYs
		tint  color.RGBA
	}{
		{"Bid price 1", bidPts, colorBlue},
		{"Ask price 1", askPts, colorOrange},
	} {
		if len(series.pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(series.pts)
		if err != nil {
			continue
		}
		line.LineStyle.Color = withAlpha(series.tint, 0.7)
		line.LineStyle.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(series.label, line)
	}
	return p
}

func (v *Visualizer) timeStatsPanel(ctx context.Context, book *frame.Table, a *BookAnalysis) *plot.Plot {
	const title = "Mean spread by time id (sample)"
	if !book.Has(domain.ColTimeID) {
		return v.skipPanel(ctx, FigureBook, title, []string{domain.ColTimeID})
	}
	if a.Spread == nil {
		return v.skipPanel(ctx, FigureBook, title, book.Missing(domain.ColAskPrice1, domain.ColBidPrice1))
	}

	pts := make(plotter.XYs, 0, len(a.TimeStats))
	for _, t := range a.TimeStats {
		if isFinite(t.MeanSpread) {
			pts = append(pts, plotter.XY{X: t.TimeID, Y: t.MeanSpread})
		}
	}
	if len(pts) == 0 {
		return placeholder(title, "no spread values")
	}
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return placeholder(title, err.Error())
	}
	line.LineStyle.Color = colorBlue
	points.GlyphStyle.Radius = vg.Points(1.5)
	points.GlyphStyle.Color = colorBlue

	p := newPanel(title, "Time ID", "Mean spread")
	p.Add(line, points)
	return p
}
