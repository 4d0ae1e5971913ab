package visualize

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"volscope/internal/frame"
	"volscope/pkg/contracts/domain"
)

// NextSteps are the analysis steps suggested at the end of every report
var NextSteps = []string{
	"Feature engineering on the microstructure data",
	"Book-trade-volatility correlation analysis",
	"High-frequency technical indicators",
	"10-minute volatility modelling",
	"Time-based model validation",
}

// TargetReport aggregates the label table
type TargetReport struct {
	Observations int
	Stocks       int
	TimeBuckets  int
	Mean         float64
	Median       float64
	Std          float64
}

// BookReport aggregates the order book sample
type BookReport struct {
	Observations int
	Stocks       int
	MaxSeconds   float64
	MeanSpread   float64
}

// TradeReport aggregates the trade sample
type TradeReport struct {
	Trades         int
	Stocks         int
	MeanSize       float64
	TotalVolume    int64
	MeanOrderCount float64
}

// Report is the synthesis of the three datasets. A section is nil when
// its dataset is absent.
type Report struct {
	Targets *TargetReport
	Book    *BookReport
	Trades  *TradeReport
}

func countUnique(t *frame.Table, col string) int {
	vals, ok := t.Floats(col)
	if !ok {
		return 0
	}
	return frame.CountUnique(vals)
}

func column(t *frame.Table, col string) []float64 {
	vals, _ := t.Floats(col)
	return vals
}

// BuildReport computes the report sections for the datasets that are present
func BuildReport(book, trades, targets *frame.Table) *Report {
	r := &Report{}

	if targets != nil {
		vals := column(targets, domain.ColTarget)
		r.Targets = &TargetReport{
			Observations: targets.Len(),
			Stocks:       countUnique(targets, domain.ColStockID),
			TimeBuckets:  countUnique(targets, domain.ColTimeID),
			Mean:         frame.Mean(vals),
			Median:       frame.Median(vals),
			Std:          frame.Std(vals),
		}
	}

	if book != nil {
		br := &BookReport{
			Observations: book.Len(),
			Stocks:       countUnique(book, domain.ColStockID),
			MaxSeconds:   frame.Max(column(book, domain.ColSecondsInBucket)),
			MeanSpread:   math.NaN(),
		}
		if spread, err := Spread(book); err == nil {
			br.MeanSpread = frame.Mean(spread)
		}
		r.Book = br
	}

	if trades != nil {
		size := column(trades, domain.ColSize)
		r.Trades = &TradeReport{
			Trades:         trades.Len(),
			Stocks:         countUnique(trades, domain.ColStockID),
			MeanSize:       frame.Mean(size),
			TotalVolume:    int64(math.Round(frame.Sum(size))),
			MeanOrderCount: frame.Mean(column(trades, domain.ColOrderCount)),
		}
	}
	return r
}

func mark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

// WriteTo prints the report in console form
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	rule := strings.Repeat("=", 60)

	fmt.Fprintf(&b, "\n%s\nSYNTHESIS REPORT - VOLATILITY DATASET\n%s\n", rule, rule)

	b.WriteString("\nOVERVIEW:\n")
	fmt.Fprintf(&b, "   • Book data available: %s\n", mark(r.Book != nil))
	fmt.Fprintf(&b, "   • Trade data available: %s\n", mark(r.Trades != nil))
	fmt.Fprintf(&b, "   • Target data available: %s\n", mark(r.Targets != nil))

	if t := r.Targets; t != nil {
		b.WriteString("\nTARGETS (VOLATILITY):\n")
		fmt.Fprintf(&b, "   • Observations: %s\n", formatCount(t.Observations))
		fmt.Fprintf(&b, "   • Stocks: %d\n", t.Stocks)
		fmt.Fprintf(&b, "   • Time buckets: %d\n", t.TimeBuckets)
		fmt.Fprintf(&b, "   • Mean volatility: %s\n", formatFloat(t.Mean, 4))
		fmt.Fprintf(&b, "   • Median volatility: %s\n", formatFloat(t.Median, 4))
		fmt.Fprintf(&b, "   • Standard deviation: %s\n", formatFloat(t.Std, 4))
	}

	if bk := r.Book; bk != nil {
		b.WriteString("\nORDER BOOK:\n")
		fmt.Fprintf(&b, "   • Observations: %s\n", formatCount(bk.Observations))
		fmt.Fprintf(&b, "   • Stocks: %d\n", bk.Stocks)
		fmt.Fprintf(&b, "   • Time resolution: %s seconds max\n", formatFloat(bk.MaxSeconds, 0))
		fmt.Fprintf(&b, "   • Mean spread (level 1): %s\n", formatFloat(bk.MeanSpread, 6))
	}

	if tr := r.Trades; tr != nil {
		b.WriteString("\nEXECUTED TRADES:\n")
		fmt.Fprintf(&b, "   • Trades: %s\n", formatCount(tr.Trades))
		fmt.Fprintf(&b, "   • Stocks: %d\n", tr.Stocks)
		fmt.Fprintf(&b, "   • Mean trade size: %s\n", formatFloat(tr.MeanSize, 0))
		fmt.Fprintf(&b, "   • Total volume: %s\n", formatCount(tr.TotalVolume))
		fmt.Fprintf(&b, "   • Mean orders per trade: %s\n", formatFloat(tr.MeanOrderCount, 1))
	}

	b.WriteString("\nSUGGESTED NEXT STEPS:\n")
	for i, step := range NextSteps {
		fmt.Fprintf(&b, "   %d. %s\n", i+1, step)
	}
	b.WriteString(rule + "\n")

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

// GenerateSummaryReport prints availability flags, per-dataset aggregates
// and suggested next steps, and returns the report
func (v *Visualizer) GenerateSummaryReport(ctx context.Context, book, trades, targets *frame.Table) *Report {
	ctx, span := v.telemetry.StartSpan(ctx, "visualize.summary_report")
	defer span.End()

	r := BuildReport(book, trades, targets)
	if _, err := r.WriteTo(v.out); err != nil {
		v.logger.ErrorContext(ctx, "Failed to print report", slog.String("error", err.Error()))
	}
	v.logger.InfoContext(ctx, "Summary report generated",
		slog.Bool("book", r.Book != nil),
		slog.Bool("trades", r.Trades != nil),
		slog.Bool("targets", r.Targets != nil))
	return r
}

// RunResult lists what RunAll produced
type RunResult struct {
	Figures []string
	Report  *Report
}

// RunAll renders the target, book and trade figures, then prints the
// synthesis report
func (v *Visualizer) RunAll(ctx context.Context, book, trades, targets *frame.Table) *RunResult {
	ctx, span := v.telemetry.StartSpan(ctx, "visualize.run_all")
	defer span.End()

	v.printf("=== GENERATING VISUALIZATIONS ===\n\n")
	res := &RunResult{}

	v.printf("1. Target analysis...\n")
	if path := v.PlotTargetDistribution(ctx, targets); path != "" {
		res.Figures = append(res.Figures, path)
	}
	v.printf("2. Order book analysis...\n")
	if path := v.PlotBookAnalysis(ctx, book); path != "" {
		res.Figures = append(res.Figures, path)
	}
	v.printf("3. Trade analysis...\n")
	if path := v.PlotTradeAnalysis(ctx, trades); path != "" {
		res.Figures = append(res.Figures, path)
	}
	v.printf("4. Generating synthesis report...\n")
	res.Report = v.GenerateSummaryReport(ctx, book, trades, targets)

	v.printf("\n=== VISUALIZATIONS DONE ===\n")
	return res
}
