package exporter

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"volscope/internal/frame"
	"volscope/internal/loader"
	"volscope/internal/visualize"
	"volscope/pkg/contracts/domain"
)

func targetsTable(t *testing.T) *frame.Table {
	t.Helper()
	tbl, err := frame.FromSeries(
		series.New([]int{1, 1, 2}, series.Int, domain.ColStockID),
		series.New([]int{1, 2, 1}, series.Int, domain.ColTimeID),
		series.New([]float64{0.01, 0.02, 0.03}, series.Float, domain.ColTarget),
	)
	require.NoError(t, err)
	return tbl
}

func openRows(t *testing.T, path, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestSheetName(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"train", "train"},
		{"book/train [sample]", "book_train _sample_"},
		{"  ", "sheet"},
		{strings.Repeat("x", 40), strings.Repeat("x", 31)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SheetName(tt.label), tt.label)
	}
}

func TestWorkbook_SummaryAndReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "summary.xlsx")
	wb, err := NewWorkbook(path, quietLogger())
	require.NoError(t, err)
	defer wb.Close()

	tbl := targetsTable(t)
	require.NoError(t, wb.AddSummary(loader.BuildSummary(tbl, "train")))
	require.NoError(t, wb.AddReport(visualize.BuildReport(nil, nil, tbl)))
	require.NoError(t, wb.AddTable("book_time_stats", []string{"time_id", "rows"}, [][]string{{"5", "4"}}))
	require.NoError(t, wb.Save())

	assert.Equal(t, []string{"train", ReportSheet, "book_time_stats"}, wb.Sheets())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"train", ReportSheet, "book_time_stats"}, f.GetSheetList())
	require.NoError(t, f.Close())

	summary := openRows(t, path, "train")
	require.NotEmpty(t, summary)
	assert.Equal(t, []string{"fact", "value"}, summary[0])
	assert.Equal(t, []string{"rows", "3"}, summary[1])
	assert.Equal(t, []string{"columns", "3"}, summary[2])
	assert.Equal(t, []string{"missing values", "0"}, summary[3])
	assert.Equal(t, []string{"unique stocks", "2"}, summary[4])

	var statsHeader int
	for i, row := range summary {
		if len(row) > 0 && row[0] == "column" && len(row) == len(DescribeHeader) {
			statsHeader = i
		}
	}
	require.NotZero(t, statsHeader)
	assert.Equal(t, DescribeHeader, summary[statsHeader])

	report := openRows(t, path, ReportSheet)
	assert.Contains(t, report, []string{"overview", "target data available", "TRUE"})
	assert.Contains(t, report, []string{"targets", "observations", "3"})
	assert.Contains(t, report, []string{"targets", "stocks", "2"})
	assert.Equal(t, []string{visualize.NextSteps[len(visualize.NextSteps)-1]}, report[len(report)-1])

	table := openRows(t, path, "book_time_stats")
	assert.Equal(t, [][]string{{"time_id", "rows"}, {"5", "4"}}, table)
}

func TestWorkbook_WriteTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	wb, err := NewWorkbook(path, quietLogger())
	require.NoError(t, err)
	defer wb.Close()

	var sink visualize.RecordSink = wb
	where, err := sink.WriteTable(context.Background(), "target_by_stock",
		[]string{"stock_id", "mean"}, [][]string{{"0", "0.004"}, {"1", "0.003"}})
	require.NoError(t, err)
	assert.Equal(t, path+"[target_by_stock]", where)
	assert.NoFileExists(t, path)

	require.NoError(t, wb.Save())
	assert.Equal(t, [][]string{{"stock_id", "mean"}, {"0", "0.004"}, {"1", "0.003"}}, openRows(t, path, "target_by_stock"))
}

func TestWorkbook_RejectsNil(t *testing.T) {
	wb, err := NewWorkbook(filepath.Join(t.TempDir(), "x.xlsx"), nil)
	require.NoError(t, err)
	defer wb.Close()

	assert.Error(t, wb.AddSummary(nil))
	assert.Error(t, wb.AddReport(nil))
}

func TestDescribeRecords(t *testing.T) {
	rows := DescribeRecords([]frame.Description{frame.Describe("target", []float64{0.01, 0.02, 0.03})})
	require.Len(t, rows, 1)
	assert.Equal(t, "target", rows[0][0])
	assert.Equal(t, "3", rows[0][1])
	assert.Equal(t, "0.02", rows[0][6])

	assert.Equal(t, "", formatFloat(frame.Mean(nil)))
}
