package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volscope/internal/synth"
)

func TestRun(t *testing.T) {
	root := filepath.Join(t.TempDir(), "raw_data")
	opts := synth.Options{Stocks: []int{0, 1}, TrainBuckets: 3, TestBuckets: 1, BookPerBucket: 30, TradePerBucket: 10, Seed: 5}
	_, err := synth.New(opts, nil).Generate(context.Background(), root)
	require.NoError(t, err)

	dir := t.TempDir()
	charts := filepath.Join(dir, "charts")
	exports := filepath.Join(dir, "exports")
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{
		"-data", root,
		"-out", charts,
		"-format", "svg",
		"-export", exports,
		"-workbook", filepath.Join(dir, "report.xlsx"),
	}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	for _, name := range []string{"target_distribution.svg", "book_analysis.svg", "trade_analysis.svg"} {
		assert.FileExists(t, filepath.Join(charts, name))
	}
	assert.FileExists(t, filepath.Join(exports, "book_time_stats.csv"))
	assert.FileExists(t, filepath.Join(dir, "report.xlsx"))
	assert.Contains(t, stdout.String(), "SYNTHESIS REPORT - VOLATILITY DATASET")
}

func TestRunWithoutData(t *testing.T) {
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"-data", filepath.Join(dir, "absent"), "-out", filepath.Join(dir, "charts")}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "No target data available")
	assert.Contains(t, stdout.String(), "Book data available: ✗")
}
