package visualize

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"gonum.org/v1/plot"

	apperrors "volscope/internal/errors"
	"volscope/internal/frame"
	"volscope/pkg/contracts/domain"
)

// topStocks is how many of the most frequent stocks get a box plot
const topStocks = 10

// StockTargets is the target distribution of one stock
type StockTargets struct {
	StockID float64
	Count   int
	Mean    float64
	Values  []float64
}

// TargetStats summarizes the target column of a label table
type TargetStats struct {
	Count    int
	Mean     float64
	Std      float64
	Min      float64
	Max      float64
	Skew     float64
	Kurtosis float64
	Stocks   int
	TimeIDs  int

	Values    []float64
	TopStocks []StockTargets
}

// ComputeTargetStats summarizes targets. It fails when the target column
// is absent; stock and time bucket counts are zero when those columns are.
func ComputeTargetStats(targets *frame.Table) (*TargetStats, error) {
	values, ok := targets.Floats(domain.ColTarget)
	if !ok {
		return nil, apperrors.NewSchemaError(domain.ColTarget)
	}

	st := &TargetStats{
		Count:    len(frame.DropNaN(values)),
		Mean:     frame.Mean(values),
		Std:      frame.Std(values),
		Min:      frame.Min(values),
		Max:      frame.Max(values),
		Skew:     frame.Skew(values),
		Kurtosis: frame.Kurtosis(values),
		Values:   values,
	}
	if times, ok := targets.Floats(domain.ColTimeID); ok {
		st.TimeIDs = frame.CountUnique(times)
	}

	stocks, ok := targets.Floats(domain.ColStockID)
	if !ok {
		return st, nil
	}
	st.Stocks = frame.CountUnique(stocks)

	top := frame.TopKeys(stocks, topStocks)
	sort.Float64s(top)
	byStock := make(map[float64][]float64, len(top))
	for _, k := range top {
		byStock[k] = nil
	}
	for i, k := range stocks {
		if _, want := byStock[k]; want {
			byStock[k] = append(byStock[k], values[i])
		}
	}
	for _, k := range top {
		vals := byStock[k]
		st.TopStocks = append(st.TopStocks, StockTargets{
			StockID: k,
			Count:   len(vals),
			Mean:    frame.Mean(vals),
			Values:  vals,
		})
	}
	return st, nil
}

// Lines renders the statistics shown in the figure's text panel
func (st *TargetStats) Lines() []string {
	return []string{
		"Target statistics:",
		"Count: " + formatCount(st.Count),
		fmt.Sprintf("Mean: %.4f", st.Mean),
		fmt.Sprintf("Std: %.4f", st.Std),
		fmt.Sprintf("Min: %.4f", st.Min),
		fmt.Sprintf("Max: %.4f", st.Max),
		"",
		fmt.Sprintf("Skewness: %.4f", st.Skew),
		fmt.Sprintf("Kurtosis: %.4f", st.Kurtosis),
		"",
		fmt.Sprintf("Stocks: %d", st.Stocks),
		fmt.Sprintf("Time buckets: %d", st.TimeIDs),
	}
}

// Records renders the per-stock aggregates for export
func (st *TargetStats) Records() ([]string, [][]string) {
	header := []string{domain.ColStockID, "count", "mean_target"}
	rows := make([][]string, 0, len(st.TopStocks))
	for _, s := range st.TopStocks {
		rows = append(rows, []string{formatKey(s.StockID), fmt.Sprint(s.Count), formatFloat(s.Mean, 6)})
	}
	return header, rows
}

// PlotTargetDistribution renders the realized volatility figure: raw and
// log1p histograms, a box plot for the most frequent stocks and a panel
// of summary statistics. Without target data it prints one notice and
// renders nothing. It returns the written figure path, or "".
func (v *Visualizer) PlotTargetDistribution(ctx context.Context, targets *frame.Table) string {
	ctx, span := v.telemetry.StartSpan(ctx, "visualize.target_distribution")
	defer span.End()

	if targets.Empty() || !targets.Has(domain.ColTarget) {
		v.notice(ctx, "No target data available", slog.String("figure", FigureTargets))
		return ""
	}

	st, err := ComputeTargetStats(targets)
	if err != nil {
		v.notice(ctx, "No target data available", slog.String("error", err.Error()))
		return ""
	}

	fig := &Figure{
		Name:  FigureTargets,
		Title: "Target Distribution (Realized Volatility)",
		Rows:  2,
		Cols:  2,
	}

	raw, _ := histogram("Target distribution", "Realized volatility", st.Values, v.bins, colorBlue, false)
	logged, _ := histogram("Log target distribution", "log(1 + realized volatility)", frame.Log1p(st.Values), v.bins, colorOrange, false)

	var box *plot.Plot
	if len(st.TopStocks) == 0 {
		box = v.skipPanel(ctx, FigureTargets, "Distribution by stock (top 10)", []string{domain.ColStockID})
	} else {
		labels := make([]string, len(st.TopStocks))
		groups := make([][]float64, len(st.TopStocks))
		for i, s := range st.TopStocks {
			labels[i] = formatKey(s.StockID)
			groups[i] = s.Values
		}
		box, _ = boxPlot("Distribution by stock (top 10)", domain.ColStockID, domain.ColTarget, labels, groups)
	}

	fig.Panels = []*plot.Plot{raw, logged, box, textPanel("", st.Lines(), true)}

	path := v.save(ctx, fig)
	v.export(ctx, "target_by_stock", st)
	return path
}
