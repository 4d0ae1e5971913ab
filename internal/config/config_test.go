package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "volscope.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no file and no env",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultDataRoot, cfg.Data.Root)
				assert.Equal(t, DefaultSampleRows, cfg.Sample.BookRows)
				assert.Equal(t, DefaultSampleRows, cfg.Sample.TradeRows)
				assert.Equal(t, "png", cfg.Plot.Format)
				assert.Equal(t, 50, cfg.Plot.Bins)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "stderr", cfg.Logging.Output)
				assert.Equal(t, AppName, cfg.Telemetry.ServiceName)
				assert.Empty(t, cfg.Export.WorkbookPath)
			},
		},
		{
			name: "file overrides defaults",
			file: "data:\n  root: /srv/optiver\nplot:\n  format: SVG\n  bins: 20\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/srv/optiver", cfg.Data.Root)
				assert.Equal(t, "svg", cfg.Plot.Format)
				assert.Equal(t, 20, cfg.Plot.Bins)
				// untouched keys keep their defaults
				assert.Equal(t, 15.0, cfg.Plot.Width)
				assert.Equal(t, DefaultChartsDir, cfg.Plot.OutputDir)
			},
		},
		{
			name: "env overrides file",
			file: "data:\n  root: /srv/optiver\nsample:\n  book_rows: 100\n",
			env: map[string]string{
				"VOLSCOPE_DATA_ROOT":         "/mnt/data",
				"VOLSCOPE_SAMPLE_TRADE_ROWS": "42",
				"VOLSCOPE_LOGGING_LEVEL":     "DEBUG",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/mnt/data", cfg.Data.Root)
				assert.Equal(t, 100, cfg.Sample.BookRows)
				assert.Equal(t, 42, cfg.Sample.TradeRows)
				assert.Equal(t, "debug", cfg.Logging.Level)
			},
		},
		{
			name:    "invalid format rejected",
			env:     map[string]string{"VOLSCOPE_PLOT_FORMAT": "gif"},
			wantErr: true,
		},
		{
			name:    "non positive sample rejected",
			file:    "sample:\n  book_rows: 0\n",
			wantErr: true,
		},
		{
			name:    "file output without path rejected",
			file:    "logging:\n  output: file\n  file_path: \"\"\n",
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			file:    "data: [unterminated\n",
			wantErr: true,
		},
		{
			name:    "malformed env value",
			env:     map[string]string{"VOLSCOPE_PLOT_BINS": "many"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := Load(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestDefault_IsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}
