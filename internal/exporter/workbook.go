package exporter

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"volscope/internal/config"
	apperrors "volscope/internal/errors"
	"volscope/internal/loader"
	"volscope/internal/visualize"
)

// maxSheetName is the longest sheet name a workbook accepts
const maxSheetName = 31

// ReportSheet is the sheet holding the synthesis report
const ReportSheet = "report"

// Workbook collects summaries and reports into one XLSX file
type Workbook struct {
	path   string
	file   *excelize.File
	bold   int
	sheets []string
	logger *slog.Logger
}

// NewWorkbook creates an empty workbook that Save writes to path
func NewWorkbook(path string, logger *slog.Logger) (*Workbook, error) {
	if logger == nil {
		logger = slog.Default()
	}
	f := excelize.NewFile()
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, apperrors.NewStorageError("failed to create workbook style", err)
	}
	return &Workbook{
		path:   path,
		file:   f,
		bold:   bold,
		logger: logger.With(slog.String("component", "exporter")),
	}, nil
}

// Path returns where the workbook is saved
func (w *Workbook) Path() string { return w.path }

// Sheets returns the sheets added so far in order
func (w *Workbook) Sheets() []string { return append([]string(nil), w.sheets...) }

// SheetName turns a label into a valid, unique-per-label sheet name
func SheetName(label string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.TrimSpace(label))
	if name == "" {
		name = "sheet"
	}
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	return name
}

func (w *Workbook) newSheet(label string) (string, error) {
	name := SheetName(label)
	if _, err := w.file.NewSheet(name); err != nil {
		return "", apperrors.NewStorageError("failed to add sheet", err).WithContext("sheet", name)
	}
	for _, s := range w.sheets {
		if s == name {
			return name, nil
		}
	}
	w.sheets = append(w.sheets, name)
	return name, nil
}

// sheetWriter appends rows to one sheet
type sheetWriter struct {
	wb    *Workbook
	sheet string
	row   int
	err   error
}

func (sw *sheetWriter) write(values []any, bold bool) {
	if sw.err != nil {
		return
	}
	sw.row++
	cell, err := excelize.CoordinatesToCellName(1, sw.row)
	if err != nil {
		sw.err = err
		return
	}
	if err := sw.wb.file.SetSheetRow(sw.sheet, cell, &values); err != nil {
		sw.err = err
		return
	}
	if bold {
		sw.err = sw.wb.file.SetRowStyle(sw.sheet, sw.row, sw.row, sw.wb.bold)
	}
}

func (sw *sheetWriter) blank() { sw.row++ }

func (sw *sheetWriter) done() error {
	if sw.err != nil {
		return apperrors.NewStorageError("failed to write sheet", sw.err).WithContext("sheet", sw.sheet)
	}
	return nil
}

func strings2any(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// AddSummary writes a summary on a sheet named after its label: scalar
// facts, column dtypes and missing counts, then descriptive statistics
func (w *Workbook) AddSummary(s *loader.Summary) error {
	if s == nil {
		return apperrors.NewValidationError("nil summary")
	}
	sheet, err := w.newSheet(s.Label)
	if err != nil {
		return err
	}
	sw := &sheetWriter{wb: w, sheet: sheet}

	sw.write([]any{"fact", "value"}, true)
	for _, fact := range summaryFacts(s) {
		sw.write(fact, false)
	}

	sw.blank()
	sw.write([]any{"column", "dtype", "missing"}, true)
	nulls := make(map[string]int, len(s.Nulls))
	for _, n := range s.Nulls {
		nulls[n.Column] = n.Count
	}
	for _, c := range s.Columns {
		sw.write([]any{c.Name, c.DType, nulls[c.Name]}, false)
	}

	if len(s.Stats) > 0 {
		sw.blank()
		sw.write(strings2any(DescribeHeader), true)
		for _, d := range s.Stats {
			sw.write(describeCells(d), false)
		}
	}
	if err := sw.done(); err != nil {
		return err
	}
	if err := w.file.SetColWidth(sheet, "A", "A", 24); err != nil {
		return apperrors.NewStorageError("failed to size column", err).WithContext("sheet", sheet)
	}
	return nil
}

// AddReport writes the synthesis report on the report sheet
func (w *Workbook) AddReport(r *visualize.Report) error {
	if r == nil {
		return apperrors.NewValidationError("nil report")
	}
	sheet, err := w.newSheet(ReportSheet)
	if err != nil {
		return err
	}
	sw := &sheetWriter{wb: w, sheet: sheet}
	sw.write([]any{"section", "metric", "value"}, true)
	for _, fact := range reportFacts(r) {
		sw.write(fact, false)
	}
	sw.blank()
	sw.write([]any{"next steps"}, true)
	for _, step := range visualize.NextSteps {
		sw.write([]any{step}, false)
	}
	return sw.done()
}

// AddTable writes header and rows on a sheet named name
func (w *Workbook) AddTable(name string, header []string, rows [][]string) error {
	sheet, err := w.newSheet(name)
	if err != nil {
		return err
	}
	sw := &sheetWriter{wb: w, sheet: sheet}
	sw.write(strings2any(header), true)
	for _, row := range rows {
		sw.write(strings2any(row), false)
	}
	return sw.done()
}

// WriteTable adds an aggregate table on its own sheet. The workbook is
// only written by Save.
func (w *Workbook) WriteTable(_ context.Context, name string, header []string, rows [][]string) (string, error) {
	if err := w.AddTable(name, header, rows); err != nil {
		return "", err
	}
	return w.path + "[" + SheetName(name) + "]", nil
}

// Save writes the workbook. The default sheet is removed once another
// sheet exists.
func (w *Workbook) Save() error {
	if len(w.sheets) > 0 {
		if idx, err := w.file.GetSheetIndex("Sheet1"); err == nil && idx >= 0 && !w.has("Sheet1") {
			if err := w.file.DeleteSheet("Sheet1"); err != nil {
				return apperrors.NewStorageError("failed to remove default sheet", err)
			}
		}
		if idx, err := w.file.GetSheetIndex(w.sheets[0]); err == nil {
			w.file.SetActiveSheet(idx)
		}
	}
	if err := config.EnsureDir(filepath.Dir(w.path)); err != nil {
		return apperrors.NewStorageError("failed to create workbook directory", err).WithContext("path", w.path)
	}
	if err := w.file.SaveAs(w.path); err != nil {
		return apperrors.NewStorageError("failed to save workbook", err).WithContext("path", w.path)
	}
	w.logger.Info("Workbook saved",
		slog.String("path", w.path),
		slog.Int("sheets", len(w.sheets)))
	return nil
}

func (w *Workbook) has(sheet string) bool {
	for _, s := range w.sheets {
		if s == sheet {
			return true
		}
	}
	return false
}

// Close releases the workbook
func (w *Workbook) Close() error {
	return w.file.Close()
}
