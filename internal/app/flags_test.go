package app

import (
	"flag"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volscope/internal/config"
)

func TestBindFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts := BindFlags(fs)

	require.NoError(t, fs.Parse([]string{"-data", "d", "-rows", "10", "-out", "c", "-format", "pdf", "-config", "x.yaml"}))
	assert.Equal(t, Options{ConfigPath: "x.yaml", DataRoot: "d", Rows: 10, ChartsDir: "c", Format: "pdf"}, *opts)

	require.NoError(t, fs.Parse([]string{"-version"}))
	assert.True(t, opts.ShowVersion)

	assert.Error(t, fs.Parse([]string{"-rows", "many"}))
}

func TestApplyOverrides(t *testing.T) {
	cfg := config.Default()
	applyOverrides(cfg, Options{})
	assert.Equal(t, config.Default(), cfg)

	applyOverrides(cfg, Options{DataRoot: "d", Rows: 7, ChartsDir: "c", Format: "svg", ExportDir: "e", WorkbookPath: "w.xlsx"})
	assert.Equal(t, "d", cfg.Data.Root)
	assert.Equal(t, 7, cfg.Sample.BookRows)
	assert.Equal(t, 7, cfg.Sample.TradeRows)
	assert.Equal(t, "c", cfg.Plot.OutputDir)
	assert.Equal(t, "svg", cfg.Plot.Format)
	assert.Equal(t, "e", cfg.Export.CSVDir)
	assert.Equal(t, "w.xlsx", cfg.Export.WorkbookPath)
}
