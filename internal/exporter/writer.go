package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"bikepulse/internal/infrastructure"
	"bikepulse/pkg/contracts/domain"
)

// Write encodes a summary in the requested format. sheet names the XLSX
// worksheet and is ignored for CSV.
func Write(w io.Writer, table domain.Tabular, format Format, sheet string) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, table, WriteOptions{BOMPrefix: true})
	case FormatXLSX:
		return WriteXLSX(w, Sheet{Name: sheet, Table: table})
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// FileWriter writes summaries as files under a single directory
type FileWriter struct {
	dir    string
	logger *slog.Logger
}

// NewFileWriter creates a writer rooted at dir. The directory is created on
// first write.
func NewFileWriter(dir string, logger *slog.Logger) *FileWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileWriter{
		dir:    dir,
		logger: infrastructure.WithComponent(logger, "exporter"),
	}
}

// Dir returns the output directory
func (w *FileWriter) Dir() string {
	return w.dir
}

// WriteFile writes table to <dir>/<name><ext> and returns the full path.
// Existing files are replaced.
func (w *FileWriter) WriteFile(name string, table domain.Tabular, format Format) (string, error) {
	fullPath := w.resolvePath(name + format.Extension())

	w.logger.Info("Writing export file",
		slog.String("name", name),
		slog.String("format", string(format)),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(table.Rows())))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}

	if err := Write(file, table, format, name); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close file: %w", err)
	}
	return fullPath, nil
}

// WriteWorkbook writes every sheet into <dir>/<name>.xlsx
func (w *FileWriter) WriteWorkbook(name string, sheets ...Sheet) (string, error) {
	fullPath := w.resolvePath(name + FormatXLSX.Extension())

	w.logger.Info("Writing export workbook",
		slog.String("name", name),
		slog.String("full_path", fullPath),
		slog.Int("sheet_count", len(sheets)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	if err := WriteXLSX(file, sheets...); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close file: %w", err)
	}
	return fullPath, nil
}

// resolvePath keeps absolute names as-is and places relative ones under dir
func (w *FileWriter) resolvePath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(w.dir, name)
}
