package dataprocessing

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"bikepulse/pkg/contracts/domain"
)

// Canonical column names of the cleaned dataset
const (
	ColumnDate       = "dteday"
	ColumnCasual     = "casual"
	ColumnRegistered = "registered"
	ColumnTotal      = "cnt"
	ColumnSeason     = "season"
	ColumnWeekday    = "weekday"
	ColumnHour       = "hr"
	ColumnTemp       = "temp"
)

// columnAliases maps each canonical column to the header spellings accepted for it
var columnAliases = map[string][]string{
	ColumnDate:       {"dteday", "date", "day"},
	ColumnCasual:     {"casual", "casual_count"},
	ColumnRegistered: {"registered", "registered_count"},
	ColumnTotal:      {"cnt", "total", "count", "total_count"},
	ColumnSeason:     {"season"},
	ColumnWeekday:    {"weekday", "day_of_week"},
	ColumnHour:       {"hr", "hour", "hour_of_day"},
	ColumnTemp:       {"temp", "temperature"},
}

var requiredColumns = []string{
	ColumnDate, ColumnCasual, ColumnRegistered, ColumnTotal, ColumnSeason, ColumnWeekday,
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
}

// ctxCheckEvery bounds how often a long load looks at its context
const ctxCheckEvery = 1024

// LoadOptions configures dataset loading
type LoadOptions struct {
	// Sheet selects the worksheet of an XLSX source; empty means the first sheet
	Sheet string

	Logger *slog.Logger
}

// LoadFile reads a dataset from disk, choosing the reader by extension
// (.csv or .xlsx). A missing file fails immediately.
func LoadFile(ctx context.Context, path string, opts LoadOptions) (*Table, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	start := time.Now()
	var table *Table
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		table, err = LoadCSV(ctx, f)
	case ".xlsx":
		table, err = LoadXLSX(ctx, f, opts.Sheet)
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset %s: %w", filepath.Base(path), err)
	}

	logger.InfoContext(ctx, "Dataset loaded",
		slog.String("path", path),
		slog.Int("records", table.Len()),
		slog.Bool("has_hour", table.schema.HasHour),
		slog.Bool("has_temp", table.schema.HasTemp),
		slog.Duration("duration", time.Since(start)))

	return table, nil
}

// LoadCSV parses a CSV dataset with a header row. A UTF-8 BOM is stripped.
func LoadCSV(ctx context.Context, r io.Reader) (*Table, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	content = bytes.TrimPrefix(content, []byte{0xEF, 0xBB, 0xBF})

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}
	return LoadRows(ctx, records[0], records[1:])
}

// LoadXLSX parses a workbook whose sheet starts with a header row
func LoadXLSX(ctx context.Context, r io.Reader, sheet string) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrEmptyDataset
		}
		sheet = sheets[0]
	}

	// Raw values: date cells come back as serial numbers instead of the
	// locale-formatted display text
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyDataset
	}
	return loadRows(ctx, rows[0], rows[1:], excelDates)
}

// LoadRows validates the header against the dataset schema and converts each
// row into a record. Blank rows are skipped.
func LoadRows(ctx context.Context, header []string, rows [][]string) (*Table, error) {
	return loadRows(ctx, header, rows, parseDate)
}

func loadRows(ctx context.Context, header []string, rows [][]string, dates dateParser) (*Table, error) {
	cols, err := findColumnIndices(header)
	if err != nil {
		return nil, err
	}

	schema := Schema{
		HasHour: cols[ColumnHour] >= 0,
		HasTemp: cols[ColumnTemp] >= 0,
	}

	records := make([]domain.Record, 0, len(rows))
	for i, row := range rows {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if isBlank(row) {
			continue
		}
		rec, err := parseRecord(row, cols, schema, dates)
		if err != nil {
			// +2: 1-based, plus the header row
			err.Row = i + 2
			return nil, err
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}
	return &Table{schema: schema, records: records}, nil
}

// findColumnIndices resolves every canonical column to its header position,
// -1 when absent. The first missing required column is reported.
func findColumnIndices(header []string) (map[string]int, error) {
	positions := make(map[string]int, len(header))
	for i, col := range header {
		clean := strings.TrimPrefix(strings.TrimSpace(col), "\ufeff")
		clean = strings.ToLower(clean)
		if _, dup := positions[clean]; !dup {
			positions[clean] = i
		}
	}

	cols := make(map[string]int, len(columnAliases))
	for canonical, aliases := range columnAliases {
		cols[canonical] = -1
		for _, alias := range aliases {
			if idx, ok := positions[alias]; ok {
				cols[canonical] = idx
				break
			}
		}
	}

	for _, name := range requiredColumns {
		if cols[name] < 0 {
			return nil, &MissingColumnError{Column: name, Op: "load"}
		}
	}
	return cols, nil
}

func parseRecord(row []string, cols map[string]int, schema Schema, dates dateParser) (domain.Record, *RowError) {
	var rec domain.Record
	var err error

	if rec.Date, err = dates(cell(row, cols[ColumnDate])); err != nil {
		return rec, &RowError{Column: ColumnDate, Err: err}
	}
	if rec.Casual, err = parseCount(cell(row, cols[ColumnCasual])); err != nil {
		return rec, &RowError{Column: ColumnCasual, Err: err}
	}
	if rec.Registered, err = parseCount(cell(row, cols[ColumnRegistered])); err != nil {
		return rec, &RowError{Column: ColumnRegistered, Err: err}
	}
	if rec.Total, err = parseCount(cell(row, cols[ColumnTotal])); err != nil {
		return rec, &RowError{Column: ColumnTotal, Err: err}
	}
	if rec.Season, err = domain.ParseSeason(cell(row, cols[ColumnSeason])); err != nil {
		return rec, &RowError{Column: ColumnSeason, Err: err}
	}
	if rec.Weekday, err = domain.ParseWeekday(cell(row, cols[ColumnWeekday])); err != nil {
		return rec, &RowError{Column: ColumnWeekday, Err: err}
	}

	if schema.HasHour {
		hr, err := strconv.Atoi(strings.TrimSpace(cell(row, cols[ColumnHour])))
		if err != nil || hr < 0 || hr > 23 {
			return rec, &RowError{Column: ColumnHour, Err: fmt.Errorf("invalid hour %q", cell(row, cols[ColumnHour]))}
		}
		rec.Hour = hr
	}
	if schema.HasTemp {
		if rec.Temp, err = strconv.ParseFloat(strings.TrimSpace(cell(row, cols[ColumnTemp])), 64); err != nil {
			return rec, &RowError{Column: ColumnTemp, Err: err}
		}
	}

	if rec.Casual < 0 || rec.Registered < 0 || rec.Total < 0 {
		return rec, &RowError{Err: fmt.Errorf("%w: negative count", ErrInconsistentCounts)}
	}
	if rec.Casual+rec.Registered != rec.Total {
		return rec, &RowError{Err: fmt.Errorf("%w: casual %d + registered %d != total %d",
			ErrInconsistentCounts, rec.Casual, rec.Registered, rec.Total)}
	}
	return rec, nil
}

type dateParser func(raw string) (time.Time, error)

func parseDate(raw string) (time.Time, error) {
	v := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, v); err == nil {
			return truncateDay(ts), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
}

// excelDates accepts the text layouts plus spreadsheet serial dates in the
// 1900 date system
func excelDates(raw string) (time.Time, error) {
	ts, err := parseDate(raw)
	if err == nil {
		return ts, nil
	}
	serial, serr := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if serr != nil || serial <= 0 {
		return time.Time{}, err
	}
	ts, serr = excelize.ExcelDateToTime(serial, false)
	if serr != nil {
		return time.Time{}, fmt.Errorf("invalid date serial %q: %w", raw, serr)
	}
	return truncateDay(ts.Round(time.Second)), nil
}

// parseCount accepts integers and integral floats ("12.0"), which spreadsheet
// exports sometimes produce
func parseCount(raw string) (int64, error) {
	v := strings.TrimSpace(raw)
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("invalid count %q", raw)
	}
	return int64(f), nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
