package loader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"text/tabwriter"

	"volscope/internal/frame"
	"volscope/pkg/contracts/domain"
)

// headRows is the number of rows shown in a summary
const headRows = 5

// ColumnType pairs a column with its display dtype
type ColumnType struct {
	Name  string
	DType string
}

// Range is the minimum and maximum of a column
type Range struct {
	Min float64
	Max float64
}

// Summary holds the facts printed by Summarize
type Summary struct {
	Label   string
	Rows    int
	Columns []ColumnType
	Head    string
	Nulls   []frame.NullCount
	Stats   []frame.Description

	StockIDs  []float64
	TimeIDs   int
	TimeRange *Range
	Seconds   *Range
	hasStocks bool
}

// HasStocks reports whether the table carried a stock_id column
func (s *Summary) HasStocks() bool { return s.hasStocks }

// Summarize prints shape, columns, dtypes, the first rows, missing-value
// counts and descriptive statistics of tbl, followed by stock, time bucket
// and seconds facts when those columns are present. It returns the same
// facts, or nil for a nil table.
func (l *Loader) Summarize(ctx context.Context, tbl *frame.Table, label string) *Summary {
	if tbl == nil {
		return nil
	}
	_, span := l.telemetry.StartSpan(ctx, "loader.summarize")
	defer span.End()

	s := BuildSummary(tbl, label)
	if _, err := s.WriteTo(l.out); err != nil {
		l.logger.ErrorContext(ctx, "Failed to print summary", slog.String("error", err.Error()))
	}

	l.logger.InfoContext(ctx, "Table summarized",
		slog.String("label", label),
		slog.Int("rows", s.Rows),
		slog.Int("columns", len(s.Columns)))
	return s
}

// BuildSummary computes the summary of tbl without printing it
func BuildSummary(tbl *frame.Table, label string) *Summary {
	s := &Summary{
		Label: label,
		Rows:  tbl.Len(),
		Head:  tbl.Head(headRows).String(),
		Nulls: tbl.NullCounts(),
		Stats: tbl.Describe(),
	}
	for _, name := range tbl.Columns() {
		s.Columns = append(s.Columns, ColumnType{Name: name, DType: tbl.DType(name)})
	}

	if ids, ok := tbl.Floats(domain.ColStockID); ok {
		s.hasStocks = true
		s.StockIDs = frame.Unique(ids)
	}
	if ids, ok := tbl.Floats(domain.ColTimeID); ok {
		s.TimeIDs = frame.CountUnique(ids)
		s.TimeRange = &Range{Min: frame.Min(ids), Max: frame.Max(ids)}
	}
	if secs, ok := tbl.Floats(domain.ColSecondsInBucket); ok {
		s.Seconds = &Range{Min: frame.Min(secs), Max: frame.Max(secs)}
	}
	return s
}

// ColumnNames returns the column names in order
func (s *Summary) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// MissingTotal sums the missing values over every column
func (s *Summary) MissingTotal() int {
	total := 0
	for _, n := range s.Nulls {
		total += n.Count
	}
	return total
}

// WriteTo prints the summary in console form
func (s *Summary) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "\n=== Basic exploration - %s ===\n", s.Label)
	fmt.Fprintf(&b, "Shape: (%d, %d)\n", s.Rows, len(s.Columns))
	fmt.Fprintf(&b, "Columns: [%s]\n", strings.Join(s.ColumnNames(), ", "))

	b.WriteString("Data types:\n")
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	for _, c := range s.Columns {
		fmt.Fprintf(tw, "%s\t%s\n", c.Name, c.DType)
	}
	tw.Flush()

	fmt.Fprintf(&b, "\nFirst rows:\n%s\n", s.Head)

	b.WriteString("\nMissing values:\n")
	tw = tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, n := range s.Nulls {
		fmt.Fprintf(tw, "%s\t%d\t\n", n.Column, n.Count)
	}
	tw.Flush()

	b.WriteString("\nDescriptive statistics:\n")
	writeDescribe(&b, s.Stats)

	if s.hasStocks {
		fmt.Fprintf(&b, "\nUnique stocks: %d\n", len(s.StockIDs))
		fmt.Fprintf(&b, "Stock IDs: [%s]\n", joinNumbers(s.StockIDs))
	}
	if s.TimeRange != nil {
		fmt.Fprintf(&b, "Unique time_id: %d\n", s.TimeIDs)
		fmt.Fprintf(&b, "time_id range: %s to %s\n", formatNumber(s.TimeRange.Min), formatNumber(s.TimeRange.Max))
	}
	if s.Seconds != nil {
		fmt.Fprintf(&b, "seconds_in_bucket range: %s to %s\n", formatNumber(s.Seconds.Min), formatNumber(s.Seconds.Max))
	}

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

func writeDescribe(w io.Writer, stats []frame.Description) {
	if len(stats) == 0 {
		fmt.Fprintln(w, "(no numeric columns)")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	header := []string{""}
	for _, d := range stats {
		header = append(header, d.Column)
	}
	fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")

	rows := []struct {
		name string
		get  func(frame.Description) float64
	}{
		{"count", func(d frame.Description) float64 { return float64(d.Count) }},
		{"mean", func(d frame.Description) float64 { return d.Mean }},
		{"std", func(d frame.Description) float64 { return d.Std }},
		{"min", func(d frame.Description) float64 { return d.Min }},
		{"25%", func(d frame.Description) float64 { return d.Q25 }},
		{"50%", func(d frame.Description) float64 { return d.Q50 }},
		{"75%", func(d frame.Description) float64 { return d.Q75 }},
		{"max", func(d frame.Description) float64 { return d.Max }},
	}
	for _, r := range rows {
		cells := []string{r.name}
		for _, d := range stats {
			cells = append(cells, strconv.FormatFloat(r.get(d), 'f', 6, 64))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
	}
	tw.Flush()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func joinNumbers(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = formatNumber(v)
	}
	return strings.Join(parts, ", ")
}
