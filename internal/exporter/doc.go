// Package exporter writes derived artifacts of an exploration run.
//
// CSVWriter writes aggregate tables as CSV files below an export
// directory and serves as the record sink of the visualizer. Workbook
// collects table summaries and the synthesis report into one XLSX file.
//
//	w := exporter.NewCSVWriter("exports", logger)
//	v := visualize.New(cfg.Plot, visualize.WithRecordSink(w))
//
//	wb, err := exporter.NewWorkbook("exports/summary.xlsx", logger)
//	if err != nil {
//		return err
//	}
//	defer wb.Close()
//	_ = wb.AddSummary(summary)
//	err = wb.Save()
package exporter
