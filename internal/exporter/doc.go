// Package exporter writes analysis reports to disk.
//
// CSVWriter: Core CSV writing with UTF-8 BOM for Excel compatibility.
//
// XLSXWriter: One workbook with a sheet per report table.
//
// ReportExporter: Turns a report.Report into tables and writes them in every
// requested format, plus the chart input as JSON.
//
// Example usage:
//
//	exp := exporter.NewReportExporter("output", logger)
//	files, err := exp.Export(ctx, rep, []string{exporter.FormatCSV, exporter.FormatXLSX})
package exporter
