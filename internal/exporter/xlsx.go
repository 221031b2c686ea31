package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"bikepulse/pkg/contracts/domain"
)

// DefaultSheet is the sheet a new workbook starts with
const DefaultSheet = "Sheet1"

// Sheet is one worksheet of an exported workbook
type Sheet struct {
	Name  string
	Table domain.Tabular
}

// WriteXLSX writes each summary to its own worksheet, in order, with a bold
// header row. An unnamed first sheet keeps the default name.
func WriteXLSX(w io.Writer, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("workbook needs at least one sheet")
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, sheet := range sheets {
		name := sheet.Name
		if name == "" {
			name = fmt.Sprintf("Sheet%d", i+1)
		}
		if i == 0 {
			if name != DefaultSheet {
				if err := f.SetSheetName(DefaultSheet, name); err != nil {
					return fmt.Errorf("failed to name sheet %q: %w", name, err)
				}
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet %q: %w", name, err)
		}

		if err := writeSheet(f, name, sheet.Table, headerStyle); err != nil {
			return fmt.Errorf("sheet %q: %w", name, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, name string, table domain.Tabular, headerStyle int) error {
	sw, err := f.NewStreamWriter(name)
	if err != nil {
		return fmt.Errorf("failed to open sheet writer: %w", err)
	}

	columns := table.Columns()
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: c}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, record := range table.Rows() {
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(record))
		for j, v := range record {
			values[j] = cellValue(v)
		}
		if err := sw.SetRow(cellRef, values); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	return sw.Flush()
}
