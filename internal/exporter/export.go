package exporter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"macrocycle/internal/report"
)

// Export formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// File names written next to the per-table CSV files.
const (
	WorkbookFile   = "macrocycle_report.xlsx"
	ChartInputFile = "chart_input.json"
)

// ReportExporter writes a report in one or more formats under a directory.
type ReportExporter struct {
	dir    string
	csv    *CSVWriter
	xlsx   *XLSXWriter
	logger *slog.Logger
}

// NewReportExporter creates a report exporter rooted at dir
func NewReportExporter(dir string, logger *slog.Logger) *ReportExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportExporter{
		dir:    dir,
		csv:    NewCSVWriter(dir),
		xlsx:   NewXLSXWriter(dir),
		logger: logger.With(slog.String("component", "exporter")),
	}
}

// Export writes every table of r in each format and returns the written paths.
func (e *ReportExporter) Export(ctx context.Context, r *report.Report, formats []string) ([]string, error) {
	tables := Tables(r)
	if len(tables) == 0 {
		e.logger.WarnContext(ctx, "report has no tables to export")
		return nil, nil
	}

	var files []string
	for _, format := range formats {
		switch format {
		case FormatCSV:
			for _, t := range tables {
				path, err := e.csv.WriteTable(t)
				if err != nil {
					return files, fmt.Errorf("export %s: %w", t.Name, err)
				}
				files = append(files, path)
			}
		case FormatXLSX:
			path, err := e.xlsx.WriteWorkbook(WorkbookFile, tables)
			if err != nil {
				return files, fmt.Errorf("export workbook: %w", err)
			}
			files = append(files, path)
		default:
			return files, fmt.Errorf("unsupported export format %q", format)
		}
	}

	if chart := r.ChartInput(); len(chart.Quarters) > 0 {
		path, err := e.writeJSON(ChartInputFile, chart)
		if err != nil {
			return files, fmt.Errorf("export chart input: %w", err)
		}
		files = append(files, path)
	}

	e.logger.InfoContext(ctx, "report exported",
		slog.String("dir", e.dir),
		slog.Int("tables", len(tables)),
		slog.Int("files", len(files)))
	return files, nil
}

func (e *ReportExporter) writeJSON(name string, v any) (string, error) {
	path := filepath.Join(e.dir, name)
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return path, os.WriteFile(path, data, 0644)
}
