package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"bikepulse/pkg/contracts/domain"
)

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	BOMPrefix  bool // Add UTF-8 BOM for Excel compatibility
	OmitHeader bool
}

// WriteCSV writes a summary table as CSV, header first
func WriteCSV(w io.Writer, table domain.Tabular, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if !options.OmitHeader {
		if err := writer.Write(table.Columns()); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range table.Rows() {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
