package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "VOLSCOPE"

// Config represents the complete application configuration
type Config struct {
	Data      DataConfig      `yaml:"data" envconfig:"DATA"`
	Sample    SampleConfig    `yaml:"sample" envconfig:"SAMPLE"`
	Plot      PlotConfig      `yaml:"plot" envconfig:"PLOT"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Export    ExportConfig    `yaml:"export" envconfig:"EXPORT"`
}

// DataConfig locates the input dataset
type DataConfig struct {
	Root string `yaml:"root" envconfig:"ROOT" validate:"required"`
}

// SampleConfig bounds how many rows are materialized per columnar dataset
type SampleConfig struct {
	BookRows  int `yaml:"book_rows" envconfig:"BOOK_ROWS" validate:"min=1"`
	TradeRows int `yaml:"trade_rows" envconfig:"TRADE_ROWS" validate:"min=1"`
}

// PlotConfig controls figure output
type PlotConfig struct {
	OutputDir string  `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	Format    string  `yaml:"format" envconfig:"FORMAT" validate:"oneof=png svg pdf jpg jpeg tif tiff eps"`
	Width     float64 `yaml:"width" envconfig:"WIDTH" validate:"gt=0"`   // inches
	Height    float64 `yaml:"height" envconfig:"HEIGHT" validate:"gt=0"` // inches
	Bins      int     `yaml:"bins" envconfig:"BINS" validate:"min=1"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=stderr file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// TelemetryConfig controls the run metrics textfile and the trace file.
// An empty path disables the corresponding signal.
type TelemetryConfig struct {
	ServiceName     string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	MetricsTextfile string `yaml:"metrics_textfile" envconfig:"METRICS_TEXTFILE"`
	TraceFile       string `yaml:"trace_file" envconfig:"TRACE_FILE"`
}

// ExportConfig controls optional derived-data exports
type ExportConfig struct {
	CSVDir       string `yaml:"csv_dir" envconfig:"CSV_DIR"`
	WorkbookPath string `yaml:"workbook_path" envconfig:"WORKBOOK_PATH"`
}

// Load builds the configuration from defaults, an optional YAML file and
// VOLSCOPE_* environment variables, in increasing order of precedence.
// An empty path searches the default locations.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file %s: %w", path, err)
		}
	}

	// Fields without a matching variable keep the value set above.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML document at filePath onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks struct constraints and normalizes values
func (c *Config) Validate() error {
	c.Plot.Format = strings.ToLower(strings.TrimPrefix(c.Plot.Format, "."))
	c.Logging.Level = strings.ToLower(c.Logging.Level)

	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if c.Logging.Output != "stderr" && c.Logging.FilePath == "" {
		return fmt.Errorf("logging output %q requires a file path", c.Logging.Output)
	}

	return nil
}

// DatasetPaths resolves the six well-known dataset files under Data.Root
func (c *Config) DatasetPaths() DatasetPaths {
	return NewDatasetPaths(c.Data.Root)
}

// getConfigFilePath returns the first existing default config location
func getConfigFilePath() string {
	locations := []string{
		"volscope.yaml",
		"configs/volscope.yaml",
		"../configs/volscope.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Root: DefaultDataRoot,
		},
		Sample: SampleConfig{
			BookRows:  DefaultSampleRows,
			TradeRows: DefaultSampleRows,
		},
		Plot: PlotConfig{
			OutputDir: DefaultChartsDir,
			Format:    "png",
			Width:     15,
			Height:    10,
			Bins:      50,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "stderr",
			FilePath: "logs/volscope.log",
		},
		Telemetry: TelemetryConfig{
			ServiceName: AppName,
		},
	}
}
