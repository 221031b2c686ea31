package exporter

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"bikepulse/pkg/contracts/domain"
)

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, Sheet{Name: "monthly", Table: testMonthly}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"monthly"}, f.GetSheetList())

	rows, err := f.GetRows("monthly")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"yearmonth", "casual_rides", "registered_rides", "total_rides"},
		{"Jan-24", "10", "20", "30"},
		{"Feb-24", "5", "5", "10"},
	}, rows)
}

func TestWriteXLSX_DefaultSheet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, Sheet{Table: testMonthly}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{DefaultSheet}, f.GetSheetList())
}

func TestWriteXLSX_MultipleSheets(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf,
		Sheet{Name: "monthly", Table: testMonthly},
		Sheet{Name: "totals", Table: domain.Totals{TotalRides: 40, CasualRides: 15, RegisteredRides: 25, Records: 2}},
	))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"monthly", "totals"}, f.GetSheetList())

	rows, err := f.GetRows("totals")
	require.NoError(t, err)
	assert.Equal(t, []string{"40", "15", "25", "2"}, rows[1])

	assert.Error(t, WriteXLSX(&bytes.Buffer{}))
}

func TestWrite_UnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, testMonthly, Format("pdf"), "")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Zero(t, buf.Len())
}

func TestFileWriter_WriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	w := NewFileWriter(dir, nil)
	assert.Equal(t, dir, w.Dir())

	path, err := w.WriteFile("monthly", testMonthly, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "monthly.csv"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Jan-24,10,20,30")

	// a second write replaces the file
	path, err = w.WriteFile("monthly", testMonthly[:1], FormatCSV)
	require.NoError(t, err)
	content, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "Feb-24")

	path, err = w.WriteFile("monthly", testMonthly, FormatXLSX)
	require.NoError(t, err)
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"monthly"}, f.GetSheetList())

	path, err = w.WriteWorkbook("dashboard", Sheet{Name: "monthly", Table: testMonthly}, Sheet{Name: "daily", Table: domain.DailySummary{}})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "dashboard.xlsx"), path)
	wb, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer wb.Close()
	assert.Equal(t, []string{"monthly", "daily"}, wb.GetSheetList())
}
