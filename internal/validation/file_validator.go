// Package validation checks input tables and output locations before a run
// touches them, so failures name the file rather than a parse position.
package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "macrocycle/internal/errors"
)

// TableExtensions are the input formats the table reader understands.
var TableExtensions = []string{".csv", ".txt", ".xlsx", ".xlsm"}

// FileValidator validates run inputs and outputs
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{logger: logger}
}

// ValidateTableFile checks that path is a readable, non-empty table in a
// supported format. Spreadsheet lock files ("~$name.xlsx") are rejected.
func (v *FileValidator) ValidateTableFile(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !supported(ext) {
		return apperrors.NewValidationError(
			fmt.Sprintf("%s: unsupported table format %q (expected one of %s)", path, ext, strings.Join(TableExtensions, ", ")), nil)
	}
	if strings.HasPrefix(filepath.Base(path), "~$") {
		return apperrors.NewValidationError(fmt.Sprintf("%s is a spreadsheet lock file", path), nil)
	}

	info, err := os.Stat(path)
	if err != nil {
		v.logger.Error("Table file not accessible",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewValidationError(fmt.Sprintf("table file %s is not accessible", path), err)
	}
	if info.IsDir() {
		return apperrors.NewValidationError(fmt.Sprintf("%s is a directory, not a table file", path), nil)
	}
	if info.Size() == 0 {
		return apperrors.NewValidationError(fmt.Sprintf("table file %s is empty", path), nil)
	}

	file, err := os.Open(path)
	if err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("table file %s is not readable", path), err)
	}
	file.Close()

	v.logger.Debug("Table file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory ensures dir exists or can be created and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	probe, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	probe.Close()
	os.Remove(probe.Name())

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}

func supported(ext string) bool {
	for _, e := range TableExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
