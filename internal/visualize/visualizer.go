package visualize

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/plot"

	"volscope/internal/config"
	"volscope/internal/infrastructure"
)

// Figure names, also used as image file names
const (
	FigureTargets = "target_distribution"
	FigureBook    = "book_analysis"
	FigureTrades  = "trade_analysis"
)

// RecordSink receives derived tables, such as per time bucket aggregates
type RecordSink interface {
	WriteTable(ctx context.Context, name string, header []string, rows [][]string) (string, error)
}

// recorder is implemented by analyses that can be exported
type recorder interface {
	Records() ([]string, [][]string)
}

// Visualizer renders the exploration figures and the synthesis report.
// Like the loader it never fails: problems become console notices.
type Visualizer struct {
	renderer  *Renderer
	bins      int
	out       io.Writer
	logger    *slog.Logger
	telemetry *infrastructure.Telemetry
	sinks     []RecordSink
}

// Option configures a Visualizer
type Option func(*Visualizer)

// WithOutput sets the console writer (stdout by default)
func WithOutput(w io.Writer) Option {
	return func(v *Visualizer) {
		if w != nil {
			v.out = w
		}
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(v *Visualizer) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithTelemetry records spans and chart metrics
func WithTelemetry(t *infrastructure.Telemetry) Option {
	return func(v *Visualizer) {
		v.telemetry = t
	}
}

// WithRecordSink exports derived aggregates alongside the figures. Every
// sink given receives every table.
func WithRecordSink(sink RecordSink) Option {
	return func(v *Visualizer) {
		if sink != nil {
			v.sinks = append(v.sinks, sink)
		}
	}
}

// New creates a visualizer writing figures as configured
func New(cfg config.PlotConfig, opts ...Option) *Visualizer {
	bins := cfg.Bins
	if bins <= 0 {
		bins = 50
	}
	v := &Visualizer{
		renderer: NewRenderer(cfg),
		bins:     bins,
		out:      os.Stdout,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = infrastructure.WithComponent(v.logger, "visualize")
	return v
}

// Renderer returns the figure renderer
func (v *Visualizer) Renderer() *Renderer { return v.renderer }

func (v *Visualizer) printf(format string, args ...any) {
	fmt.Fprintf(v.out, format, args...)
}

func (v *Visualizer) notice(ctx context.Context, msg string, attrs ...any) {
	v.printf("%s\n", msg)
	v.logger.WarnContext(ctx, msg, attrs...)
}

func (v *Visualizer) metrics() *infrastructure.RunMetrics {
	if v.telemetry == nil {
		return nil
	}
	return v.telemetry.Metrics
}

func (v *Visualizer) panelSkipped(ctx context.Context, figure, panel, reason string) {
	v.notice(ctx, fmt.Sprintf("Skipping panel %q: %s", panel, reason),
		slog.String("figure", figure),
		slog.String("panel", panel))
	v.metrics().RecordPanelSkipped(ctx, figure, panel)
}

// skipPanel reports a panel whose columns are missing and returns its placeholder
func (v *Visualizer) skipPanel(ctx context.Context, figure, panel string, missing []string) *plot.Plot {
	reason := skipReason(missing)
	v.panelSkipped(ctx, figure, panel, reason)
	return placeholder(panel, reason)
}

func (v *Visualizer) save(ctx context.Context, fig *Figure) string {
	path, err := v.renderer.Save(fig)
	if err != nil {
		infrastructure.RecordSpanError(trace.SpanFromContext(ctx), err)
		v.printf("Failed to render %s: %v\n", fig.Name, err)
		v.logger.ErrorContext(ctx, "Failed to render figure",
			slog.String("figure", fig.Name),
			slog.String("error", err.Error()))
		return ""
	}
	v.printf("Figure saved: %s\n", path)
	v.metrics().RecordChart(ctx, fig.Name)
	v.logger.InfoContext(ctx, "Figure rendered",
		slog.String("figure", fig.Name),
		slog.String("path", path))
	return path
}

func (v *Visualizer) export(ctx context.Context, name string, r recorder) {
	if len(v.sinks) == 0 {
		return
	}
	header, rows := r.Records()
	for _, sink := range v.sinks {
		path, err := sink.WriteTable(ctx, name, header, rows)
		if err != nil {
			v.printf("Failed to export %s: %v\n", name, err)
			v.logger.ErrorContext(ctx, "Failed to export aggregates",
				slog.String("table", name),
				slog.String("error", err.Error()))
			continue
		}
		v.printf("Aggregates exported: %s\n", path)
	}
}

var printer = message.NewPrinter(language.English)

// formatCount renders n with thousands separators
func formatCount[T int | int64](n T) string {
	return printer.Sprintf("%d", n)
}

// formatFloat renders v with prec decimals; NaN becomes "n/a"
func formatFloat(v float64, prec int) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}
