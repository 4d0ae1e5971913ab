package exporter

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "volscope/internal/errors"
)

// CSVWriter writes CSV files below one export directory
type CSVWriter struct {
	dir    string
	logger *slog.Logger
}

// NewCSVWriter creates a writer rooted at dir
func NewCSVWriter(dir string, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{dir: dir, logger: logger.With(slog.String("component", "exporter"))}
}

// Dir returns the export directory
func (w *CSVWriter) Dir() string { return w.dir }

// WriteCSV writes headers and records to filePath, replacing any previous
// content. Relative paths are placed below the export directory.
func (w *CSVWriter) WriteCSV(filePath string, headers []string, records [][]string) error {
	fullPath := w.resolvePath(filePath)

	w.logger.Info("Writing CSV file",
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return apperrors.NewStorageError("failed to create export directory", err).WithContext("path", fullPath)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return apperrors.NewStorageError("failed to open file", err).WithContext("path", fullPath)
	}
	defer file.Close()

	return writeRecords(file, headers, records)
}

func writeRecords(out io.Writer, headers []string, records [][]string) error {
	writer := csv.NewWriter(out)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			return apperrors.NewStorageError("failed to write headers", err)
		}
	}
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return apperrors.NewStorageError("failed to write record", err).WithContext("record", i)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return apperrors.NewStorageError("failed to flush CSV", err)
	}
	return nil
}

// WriteTable writes one named aggregate table as <dir>/<name>.csv and
// returns the written path
func (w *CSVWriter) WriteTable(ctx context.Context, name string, header []string, rows [][]string) (string, error) {
	file := name + ".csv"
	if err := w.WriteCSV(file, header, rows); err != nil {
		return "", err
	}
	path := w.resolvePath(file)
	w.logger.DebugContext(ctx, "Table exported",
		slog.String("table", name),
		slog.String("path", path))
	return path, nil
}

// resolvePath places relative paths below the export directory
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) {
		return filePath
	}
	return filepath.Join(w.dir, filePath)
}
