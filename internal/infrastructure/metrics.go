package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RunMetrics contains the instruments recorded during an exploration run.
// All methods are safe on a nil receiver.
type RunMetrics struct {
	filesChecked   metric.Int64Counter
	rowsLoaded     metric.Int64Counter
	loadDuration   metric.Float64Histogram
	readErrors     metric.Int64Counter
	chartsRendered metric.Int64Counter
	panelsSkipped  metric.Int64Counter
}

// NewRunMetrics creates the run instruments on meter
func NewRunMetrics(meter metric.Meter) (*RunMetrics, error) {
	m := &RunMetrics{}
	var err error

	if m.filesChecked, err = meter.Int64Counter("volscope_files_checked",
		metric.WithDescription("Dataset files checked for availability")); err != nil {
		return nil, err
	}
	if m.rowsLoaded, err = meter.Int64Counter("volscope_rows_loaded",
		metric.WithDescription("Rows materialized into memory")); err != nil {
		return nil, err
	}
	if m.loadDuration, err = meter.Float64Histogram("volscope_load_duration",
		metric.WithDescription("Time spent loading a dataset"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60)); err != nil {
		return nil, err
	}
	if m.readErrors, err = meter.Int64Counter("volscope_read_errors",
		metric.WithDescription("Dataset reads that failed and were treated as absent")); err != nil {
		return nil, err
	}
	if m.chartsRendered, err = meter.Int64Counter("volscope_charts_rendered",
		metric.WithDescription("Figures written to the charts directory")); err != nil {
		return nil, err
	}
	if m.panelsSkipped, err = meter.Int64Counter("volscope_panels_skipped",
		metric.WithDescription("Chart panels replaced by a placeholder")); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordFileChecked counts an availability check
func (m *RunMetrics) RecordFileChecked(ctx context.Context, name string, present bool) {
	if m == nil {
		return
	}
	m.filesChecked.Add(ctx, 1, metric.WithAttributes(
		attribute.String("file", name),
		attribute.Bool("present", present)))
}

// RecordLoad counts loaded rows and observes the load duration
func (m *RunMetrics) RecordLoad(ctx context.Context, dataset string, rows int, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("dataset", dataset))
	m.rowsLoaded.Add(ctx, int64(rows), attrs)
	m.loadDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordReadError counts a failed read
func (m *RunMetrics) RecordReadError(ctx context.Context, stage string) {
	if m == nil {
		return
	}
	m.readErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
}

// RecordChart counts a written figure
func (m *RunMetrics) RecordChart(ctx context.Context, figure string) {
	if m == nil {
		return
	}
	m.chartsRendered.Add(ctx, 1, metric.WithAttributes(attribute.String("figure", figure)))
}

// RecordPanelSkipped counts a placeholder panel
func (m *RunMetrics) RecordPanelSkipped(ctx context.Context, figure, panel string) {
	if m == nil {
		return
	}
	m.panelsSkipped.Add(ctx, 1, metric.WithAttributes(
		attribute.String("figure", figure),
		attribute.String("panel", panel)))
}
