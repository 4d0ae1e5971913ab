package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volscope/internal/config"
)

func TestParseStocks(t *testing.T) {
	tests := []struct {
		in      string
		want    []int
		wantErr bool
	}{
		{"0,1,2", []int{0, 1, 2}, false},
		{" 5 , 7 ,", []int{5, 7}, false},
		{"", nil, false},
		{"1,x", nil, true},
	}
	for _, tt := range tests {
		got, err := parseStocks(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestRun(t *testing.T) {
	root := filepath.Join(t.TempDir(), "raw_data")
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"-data", root, "-stocks", "0,1", "-buckets", "2", "-rows", "10", "-trades", "3"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	assert.Contains(t, stdout.String(), "book rows:  40")
	assert.Contains(t, stdout.String(), "trade rows: 12")
	assert.Contains(t, stdout.String(), "targets:    4")
	assert.FileExists(t, filepath.Join(root, config.TrainCSVFile))
	assert.DirExists(t, filepath.Join(root, config.TradeTrainFile, "stock_id=1"))
}

func TestRunFailures(t *testing.T) {
	root := t.TempDir()
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"unknown flag", []string{"-nope"}, 2},
		{"bad stock list", []string{"-data", root, "-stocks", "a"}, 2},
		{"no stocks", []string{"-data", root, "-stocks", ""}, 1},
		{"too few book rows", []string{"-data", root, "-rows", "1", "-trades", "0"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, tt.want, run(context.Background(), tt.args, &stdout, &stderr))
			assert.NotEmpty(t, stderr.String())
		})
	}
}
