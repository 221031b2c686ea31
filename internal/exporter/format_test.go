package exporter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
		wantErr  bool
	}{
		{input: "csv", expected: FormatCSV},
		{input: "XLSX", expected: FormatXLSX},
		{input: ".csv", expected: FormatCSV},
		{input: " xlsx ", expected: FormatXLSX},
		{input: "json", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFormat_Metadata(t *testing.T) {
	assert.Equal(t, ".csv", FormatCSV.Extension())
	assert.Equal(t, ".xlsx", FormatXLSX.Extension())
	assert.Contains(t, FormatCSV.ContentType(), "text/csv")
	assert.Contains(t, FormatXLSX.ContentType(), "spreadsheetml")
}

func TestCellValue(t *testing.T) {
	assert.Equal(t, int64(42), cellValue("42"))
	assert.Equal(t, 0.25, cellValue("0.25"))
	assert.Equal(t, "Jan-24", cellValue("Jan-24"))
	assert.Equal(t, "", cellValue(""))
}
