package visualize

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"volscope/internal/frame"
	"volscope/pkg/contracts/domain"
)

const (
	// tradeSeriesRows bounds the trades-over-time panel
	tradeSeriesRows = 500
	// orderCountBins is the bin count of the order count histogram
	orderCountBins = 30
)

// TradePoint is one trade of the sample stock
type TradePoint struct {
	Seconds float64
	Price   float64
	Size    float64
}

// TradeAnalysis holds the values derived from a trade sample
type TradeAnalysis struct {
	SampleStock float64
	HasSample   bool
	Trades      []TradePoint
}

// AnalyzeTrades picks the first stock of the sample and its first trades
func AnalyzeTrades(trades *frame.Table) *TradeAnalysis {
	a := &TradeAnalysis{}
	if !trades.Has(domain.ColStockID, domain.ColSecondsInBucket, domain.ColPrice, domain.ColSize) {
		return a
	}
	stocks, _ := trades.Floats(domain.ColStockID)
	first, ok := firstKey(stocks)
	if !ok {
		return a
	}
	a.SampleStock, a.HasSample = first, true

	secs, _ := trades.Floats(domain.ColSecondsInBucket)
	price, _ := trades.Floats(domain.ColPrice)
	size, _ := trades.Floats(domain.ColSize)
	for _, i := range trades.RowsWhereEqual(domain.ColStockID, first) {
		a.Trades = append(a.Trades, TradePoint{Seconds: secs[i], Price: price[i], Size: size[i]})
		if len(a.Trades) == tradeSeriesRows {
			break
		}
	}
	return a
}

// markerRadius converts a marker area in square points, size/10 of the
// trade, to a circle radius
func markerRadius(size float64) vg.Length {
	area := size / 10
	if !isFinite(area) || area <= 0 {
		return 0
	}
	return vg.Points(math.Sqrt(area / math.Pi))
}

// PlotTradeAnalysis renders the four trade panels: trade size histogram
// with log counts, order count histogram, size against price, and the
// first stock's trades over the bucket sized by volume. It returns the
// written figure path, or "" when trades is absent.
func (v *Visualizer) PlotTradeAnalysis(ctx context.Context, trades *frame.Table) string {
	ctx, span := v.telemetry.StartSpan(ctx, "visualize.trade_analysis")
	defer span.End()

	if trades.Empty() {
		v.notice(ctx, "No trade data available", slog.String("figure", FigureTrades))
		return ""
	}

	fig := &Figure{
		Name:  FigureTrades,
		Title: "Executed Trades Analysis",
		Rows:  2,
		Cols:  2,
	}

	var sizePanel *plot.Plot
	if size, ok := trades.Floats(domain.ColSize); ok {
		sizePanel, _ = histogram("Trade size distribution", "Size (shares)", size, v.bins, colorBlue, true)
	} else {
		sizePanel = v.skipPanel(ctx, FigureTrades, "Trade size distribution", []string{domain.ColSize})
	}

	var ordersPanel *plot.Plot
	if orders, ok := trades.Floats(domain.ColOrderCount); ok {
		ordersPanel, _ = histogram("Orders per trade", "Order count", orders, orderCountBins, colorOrange, false)
	} else {
		ordersPanel = v.skipPanel(ctx, FigureTrades, "Orders per trade", []string{domain.ColOrderCount})
	}

	var pricePanel *plot.Plot
	if missing := trades.Missing(domain.ColSize, domain.ColPrice); len(missing) > 0 {
		pricePanel = v.skipPanel(ctx, FigureTrades, "Size vs price", missing)
	} else {
		size, _ := trades.Floats(domain.ColSize)
		price, _ := trades.Floats(domain.ColPrice)
		pricePanel, _ = scatter("Size vs price", "Size", "Price", size, price, vg.Points(0.6), true, false)
	}

	fig.Panels = []*plot.Plot{sizePanel, ordersPanel, pricePanel, v.tradesOverTimePanel(ctx, trades)}
	return v.save(ctx, fig)
}

func (v *Visualizer) tradesOverTimePanel(ctx context.Context, trades *frame.Table) *plot.Plot {
	const title = "Trades over time"
	a := AnalyzeTrades(trades)
	if !a.HasSample {
		missing := trades.Missing(domain.ColStockID, domain.ColSecondsInBucket, domain.ColPrice, domain.ColSize)
		if len(missing) == 0 {
			return placeholder(title, "no stock id values")
		}
		return v.skipPanel(ctx, FigureTrades, title, missing)
	}

	pts := make(plotter.XYs, 0, len(a.Trades))
	radii := make([]vg.Length, 0, len(a.Trades))
	for _, tp := range a.Trades {
		if !isFinite(tp.Seconds) || !isFinite(tp.Price) {
			continue
		}
		pts = append(pts, plotter.XY{X: tp.Seconds, Y: tp.Price})
		radii = append(radii, markerRadius(tp.Size))
	}
	if len(pts) == 0 {
		return placeholder(title, "no plottable points")
	}

	s, err := plotter.NewScatter(pts)
	if err != nil {
		return placeholder(title, err.Error())
	}
	fill := withAlpha(colorBlue, 0.6)
	s.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{Color: fill, Radius: radii[i], Shape: draw.CircleGlyph{}}
	}

	p := newPanel(fmt.Sprintf("%s - stock %s", title, formatKey(a.SampleStock)), "Seconds in bucket", "Price")
	p.Add(s)
	return p
}
