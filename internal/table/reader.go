package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "macrocycle/internal/errors"
)

// ReadFile loads and cleans a table from a .csv or .xlsx file. For workbooks,
// sheet selects the worksheet; an empty sheet means the first one.
func ReadFile(path, sheet string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		return ReadCSV(filepath.Base(path), f)
	case ".xlsx", ".xlsm":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("open workbook %s: %w", path, err)
		}
		defer f.Close()
		return readWorkbook(filepath.Base(path), f, sheet)
	default:
		return nil, unsupportedFormat(path)
	}
}

// ReadCSV parses a CSV stream into a cleaned table.
func ReadCSV(name string, r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", name, err)
	}

	t, err := New(name, records)
	if err != nil {
		return nil, err
	}
	cleaned := Clean(t)
	slog.Debug("loaded csv table",
		slog.String("table", name),
		slog.Int("raw_rows", len(t.Rows)),
		slog.Int("rows", len(cleaned.Rows)),
		slog.Int("columns", len(cleaned.Header)))
	return cleaned, nil
}

// ReadXLSX parses a workbook stream into a cleaned table.
func ReadXLSX(name string, r io.Reader, sheet string) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", name, err)
	}
	defer f.Close()
	return readWorkbook(name, f, sheet)
}

func readWorkbook(name string, f *excelize.File, sheet string) (*Table, error) {
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", name)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q of %s: %w", sheet, name, err)
	}

	t, err := New(name, rows)
	if err != nil {
		return nil, err
	}
	cleaned := Clean(t)
	slog.Debug("loaded workbook table",
		slog.String("table", name),
		slog.String("sheet", sheet),
		slog.Int("rows", len(cleaned.Rows)),
		slog.Int("columns", len(cleaned.Header)))
	return cleaned, nil
}

// Read dispatches on the file name extension for uploaded streams.
func Read(name string, r io.Reader, sheet string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return ReadCSV(name, r)
	case ".xlsx", ".xlsm":
		return ReadXLSX(name, r, sheet)
	default:
		return nil, unsupportedFormat(name)
	}
}

func unsupportedFormat(name string) error {
	return &apperrors.DataFormatError{
		Source:  filepath.Base(name),
		Message: fmt.Sprintf("unsupported table format %q (expected .csv or .xlsx)", filepath.Ext(name)),
	}
}
