package loader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"

	apperrors "volscope/internal/errors"
	"volscope/internal/frame"
	"volscope/internal/infrastructure"
	"volscope/pkg/contracts/domain"
)

// LoadSample loads at most maxRows rows of the book or trade dataset for
// a split. Rows come in partition order, so the sample is the head of the
// dataset. It returns nil when the request is invalid or the dataset is
// absent or unreadable.
func (l *Loader) LoadSample(ctx context.Context, kind domain.DatasetKind, split domain.Split, maxRows int) *frame.Table {
	ctx, span := l.telemetry.StartSpan(ctx, "loader.load_sample",
		attribute.String("kind", string(kind)),
		attribute.String("split", string(split)),
		attribute.Int("max_rows", maxRows))
	defer span.End()

	path, ok := l.paths.Columnar(kind, split)
	if !ok {
		l.notice(ctx, fmt.Sprintf("Unknown dataset %q/%q: kind must be book or trade, split must be train or test", kind, split),
			slog.String("kind", string(kind)),
			slog.String("split", string(split)))
		return nil
	}
	if maxRows <= 0 {
		l.notice(ctx, fmt.Sprintf("Sample size must be positive, got %d", maxRows),
			slog.Int("max_rows", maxRows))
		return nil
	}
	if !l.discovery.Exists(path) {
		l.notice(ctx, "File not found: "+path, slog.String("path", path))
		return nil
	}

	l.printf("\n=== Loading sample of %s ===\n", filepath.Base(path))
	start := time.Now()

	ds, err := l.discovery.ResolveParquet(path)
	var total int64
	if err == nil {
		total, err = countRows(ds)
	}
	var tbl *frame.Table
	if err == nil {
		tbl, err = readDataset(ds, maxRows)
	}
	if err != nil {
		infrastructure.RecordSpanError(span, err)
		l.metrics().RecordReadError(ctx, "sample")
		l.printf("Error while loading: %v\n", err)
		l.logger.ErrorContext(ctx, "Failed to load sample",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil
	}

	if total > int64(maxRows) {
		l.printf("Sample of %d rows loaded (total: %d rows in dataset)\n", tbl.Len(), total)
	} else {
		l.printf("All %d rows loaded\n", tbl.Len())
	}

	name := fmt.Sprintf("%s_%s", kind, split)
	l.metrics().RecordLoad(ctx, name, tbl.Len(), time.Since(start))
	l.logger.InfoContext(ctx, "Sample loaded",
		slog.String("dataset", name),
		slog.Int("rows", tbl.Len()),
		slog.Int64("total_rows", total),
		slog.Duration("elapsed", time.Since(start)))

	return tbl
}

// LoadTargets loads the whole train.csv label file
func (l *Loader) LoadTargets(ctx context.Context) *frame.Table {
	return l.loadCSV(ctx, "train_csv", l.paths.TrainCSV, "\n=== Loading training targets ===")
}

// LoadTestIndex loads the whole test.csv file
func (l *Loader) LoadTestIndex(ctx context.Context) *frame.Table {
	return l.loadCSV(ctx, "test_csv", l.paths.TestCSV, "\n=== Loading test index ===")
}

func (l *Loader) loadCSV(ctx context.Context, name, path, banner string) *frame.Table {
	ctx, span := l.telemetry.StartSpan(ctx, "loader.load_csv", attribute.String("dataset", name))
	defer span.End()

	if !l.discovery.Exists(path) {
		l.notice(ctx, fmt.Sprintf("%s not found: %s", filepath.Base(path), path), slog.String("path", path))
		return nil
	}

	l.printf("%s\n", banner)
	start := time.Now()

	err := l.validator.ValidateCSVFile(path)
	var tbl *frame.Table
	if err == nil {
		tbl, err = readCSVFile(path)
	}
	if err != nil {
		infrastructure.RecordSpanError(span, err)
		l.metrics().RecordReadError(ctx, "csv")
		l.printf("Error while loading: %v\n", err)
		l.logger.ErrorContext(ctx, "Failed to load csv",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil
	}

	l.printf("Shape: (%d, %d)\n", tbl.Len(), tbl.Width())
	l.metrics().RecordLoad(ctx, name, tbl.Len(), time.Since(start))
	l.logger.InfoContext(ctx, "CSV loaded",
		slog.String("dataset", name),
		slog.Int("rows", tbl.Len()),
		slog.Int("columns", tbl.Width()))

	return tbl
}

func readCSVFile(path string) (*frame.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open csv file", err).WithContext("path", path)
	}
	defer f.Close()
	return frame.ReadCSV(f)
}
