package loader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"volscope/internal/config"
	"volscope/internal/files"
	"volscope/internal/infrastructure"
	"volscope/internal/validation"
)

// Loader resolves the dataset files under one root directory and loads
// them into memory. Status lines and notices go to the console writer;
// structured logs go to the logger. No operation returns an error: a
// missing or unreadable dataset is reported and comes back as nil.
type Loader struct {
	paths     config.DatasetPaths
	discovery *files.Discovery
	out       io.Writer
	logger    *slog.Logger
	telemetry *infrastructure.Telemetry
	validator *validation.FileValidator
}

// Option configures a Loader
type Option func(*Loader)

// WithOutput sets the console writer (stdout by default)
func WithOutput(w io.Writer) Option {
	return func(l *Loader) {
		if w != nil {
			l.out = w
		}
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithTelemetry records spans and run metrics for every load
func WithTelemetry(t *infrastructure.Telemetry) Option {
	return func(l *Loader) {
		l.telemetry = t
	}
}

// New creates a loader over root; an empty root means ./raw_data
func New(root string, opts ...Option) *Loader {
	paths := config.NewDatasetPaths(root)
	l := &Loader{
		paths:     paths,
		discovery: files.NewDiscovery(""),
		out:       os.Stdout,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = infrastructure.WithComponent(l.logger, "loader")
	l.validator = validation.NewFileValidator(l.logger)
	paths.LogPathResolution(l.logger)
	return l
}

// Paths returns the resolved dataset paths
func (l *Loader) Paths() config.DatasetPaths {
	return l.paths
}

func (l *Loader) printf(format string, args ...any) {
	fmt.Fprintf(l.out, format, args...)
}

// notice prints a console message and logs it at warn level
func (l *Loader) notice(ctx context.Context, msg string, attrs ...any) {
	l.printf("%s\n", msg)
	l.logger.WarnContext(ctx, msg, attrs...)
}

func (l *Loader) metrics() *infrastructure.RunMetrics {
	if l.telemetry == nil {
		return nil
	}
	return l.telemetry.Metrics
}
