package exporter

import (
	"math"
	"strconv"

	"volscope/internal/frame"
	"volscope/internal/loader"
	"volscope/internal/visualize"
)

// cellFloat returns f for a spreadsheet cell; NaN and infinities become
// empty cells
func cellFloat(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return f
}

// formatFloat renders f for CSV output; NaN is an empty field
func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// DescribeHeader is the header of a descriptive statistics table
var DescribeHeader = []string{"column", "count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// DescribeRecords renders descriptive statistics as CSV records
func DescribeRecords(stats []frame.Description) [][]string {
	rows := make([][]string, 0, len(stats))
	for _, d := range stats {
		rows = append(rows, []string{
			d.Column,
			strconv.Itoa(d.Count),
			formatFloat(d.Mean),
			formatFloat(d.Std),
			formatFloat(d.Min),
			formatFloat(d.Q25),
			formatFloat(d.Q50),
			formatFloat(d.Q75),
			formatFloat(d.Max),
		})
	}
	return rows
}

func describeCells(d frame.Description) []any {
	return []any{
		d.Column, d.Count,
		cellFloat(d.Mean), cellFloat(d.Std), cellFloat(d.Min),
		cellFloat(d.Q25), cellFloat(d.Q50), cellFloat(d.Q75), cellFloat(d.Max),
	}
}

// summaryFacts lists the scalar facts of a summary as label/value pairs
func summaryFacts(s *loader.Summary) [][]any {
	facts := [][]any{
		{"rows", s.Rows},
		{"columns", len(s.Columns)},
		{"missing values", s.MissingTotal()},
	}
	if s.HasStocks() {
		facts = append(facts, []any{"unique stocks", len(s.StockIDs)})
	}
	if s.TimeRange != nil {
		facts = append(facts,
			[]any{"unique time_id", s.TimeIDs},
			[]any{"time_id min", cellFloat(s.TimeRange.Min)},
			[]any{"time_id max", cellFloat(s.TimeRange.Max)})
	}
	if s.Seconds != nil {
		facts = append(facts,
			[]any{"seconds_in_bucket min", cellFloat(s.Seconds.Min)},
			[]any{"seconds_in_bucket max", cellFloat(s.Seconds.Max)})
	}
	return facts
}

// reportFacts lists the report sections as section/metric/value rows
func reportFacts(r *visualize.Report) [][]any {
	facts := [][]any{
		{"overview", "book data available", r.Book != nil},
		{"overview", "trade data available", r.Trades != nil},
		{"overview", "target data available", r.Targets != nil},
	}
	if t := r.Targets; t != nil {
		facts = append(facts,
			[]any{"targets", "observations", t.Observations},
			[]any{"targets", "stocks", t.Stocks},
			[]any{"targets", "time buckets", t.TimeBuckets},
			[]any{"targets", "mean", cellFloat(t.Mean)},
			[]any{"targets", "median", cellFloat(t.Median)},
			[]any{"targets", "std", cellFloat(t.Std)})
	}
	if b := r.Book; b != nil {
		facts = append(facts,
			[]any{"book", "observations", b.Observations},
			[]any{"book", "stocks", b.Stocks},
			[]any{"book", "max seconds_in_bucket", cellFloat(b.MaxSeconds)},
			[]any{"book", "mean spread", cellFloat(b.MeanSpread)})
	}
	if tr := r.Trades; tr != nil {
		facts = append(facts,
			[]any{"trades", "trades", tr.Trades},
			[]any{"trades", "stocks", tr.Stocks},
			[]any{"trades", "mean size", cellFloat(tr.MeanSize)},
			[]any{"trades", "total volume", tr.TotalVolume},
			[]any{"trades", "mean order count", cellFloat(tr.MeanOrderCount)})
	}
	return facts
}
