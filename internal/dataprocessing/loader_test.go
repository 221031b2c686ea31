package dataprocessing

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"bikepulse/pkg/contracts/domain"
)

const hourlyCSV = `instant,dteday,season,yr,mnth,hr,holiday,weekday,workingday,weathersit,temp,atemp,hum,windspeed,casual,registered,cnt
1,2011-01-01,Winter,0,1,0,0,Saturday,0,1,0.24,0.2879,0.81,0,3,13,16
2,2011-01-01,Winter,0,1,1,0,Saturday,0,1,0.22,0.2727,0.8,0,8,32,40
3,2011-01-02,Winter,0,1,0,0,Sunday,0,1,0.46,0.4545,0.88,0.2985,17,17,34
`

const dailyCSV = "\xEF\xBB\xBFdteday,season,weekday,casual,registered,cnt\n" +
	"2011-01-01,1,6,331,654,985\n" +
	"2011-01-02,1,0,131,670,801\n" +
	"\n" +
	"2011-01-03,1,1,120,1229,1349\n"

func TestLoadCSV(t *testing.T) {
	ctx := context.Background()

	t.Run("hourly dataset with named categories", func(t *testing.T) {
		table, err := LoadCSV(ctx, strings.NewReader(hourlyCSV))
		require.NoError(t, err)
		assert.Equal(t, 3, table.Len())
		assert.Equal(t, Schema{HasHour: true, HasTemp: true}, table.Schema())

		records := table.Records()
		assert.Equal(t, "2011-01-01", records[1].Date.Format(domain.DateLayout))
		assert.Equal(t, 1, records[1].Hour)
		assert.Equal(t, domain.SeasonWinter, records[1].Season)
		assert.Equal(t, domain.Saturday, records[1].Weekday)
		assert.Equal(t, int64(40), records[1].Total)
		assert.InDelta(t, 0.22, records[1].Temp, 1e-9)
	})

	t.Run("daily dataset with numeric codes and BOM", func(t *testing.T) {
		table, err := LoadCSV(ctx, strings.NewReader(dailyCSV))
		require.NoError(t, err)
		assert.Equal(t, 3, table.Len())
		assert.Equal(t, Schema{}, table.Schema())

		records := table.Records()
		assert.Equal(t, domain.SeasonSpring, records[0].Season)
		assert.Equal(t, domain.Saturday, records[0].Weekday)
		assert.Equal(t, domain.Sunday, records[1].Weekday)
		assert.Equal(t, domain.Monday, records[2].Weekday)
	})
}

func TestLoadCSV_SchemaErrors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		input      string
		wantIs     error
		wantColumn string
		wantRow    int
	}{
		{
			name:       "missing registered column",
			input:      "dteday,season,weekday,casual,cnt\n2011-01-01,1,6,1,1\n",
			wantIs:     ErrMissingColumn,
			wantColumn: ColumnRegistered,
		},
		{
			name:    "total does not match split",
			input:   "dteday,season,weekday,casual,registered,cnt\n2011-01-01,1,6,1,1,1\n2011-01-02,1,0,1,1,3\n",
			wantIs:  ErrInconsistentCounts,
			wantRow: 2,
		},
		{
			name:    "negative count",
			input:   "dteday,season,weekday,casual,registered,cnt\n2011-01-01,1,6,-1,2,1\n",
			wantIs:  ErrInconsistentCounts,
			wantRow: 2,
		},
		{
			name:   "header only",
			input:  "dteday,season,weekday,casual,registered,cnt\n",
			wantIs: ErrEmptyDataset,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCSV(ctx, strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantIs)

			if tt.wantColumn != "" {
				var mce *MissingColumnError
				require.True(t, errors.As(err, &mce))
				assert.Equal(t, tt.wantColumn, mce.Column)
			}
			if tt.wantRow != 0 {
				var rowErr *RowError
				require.True(t, errors.As(err, &rowErr))
				assert.Equal(t, tt.wantRow, rowErr.Row)
			}
		})
	}
}

func TestLoadCSV_MalformedCell(t *testing.T) {
	input := "dteday,season,weekday,casual,registered,cnt\n2011-01-01,1,6,1,1,2\n2011-13-45,1,6,1,1,2\n"
	_, err := LoadCSV(context.Background(), strings.NewReader(input))

	var rowErr *RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, 3, rowErr.Row)
	assert.Equal(t, ColumnDate, rowErr.Column)
}

func TestLoadCSV_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LoadCSV(ctx, strings.NewReader(hourlyCSV))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]interface{}{
		{"date", "season", "weekday", "hour", "casual", "registered", "total"},
		{"2024-01-15", "Winter", "Monday", 8, 10, 20, 30},
		{"2024-02-10", "Winter", "Saturday", 17, 5, 5, 10},
	}
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cellRef, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	table, err := LoadXLSX(context.Background(), &buf, "")
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	assert.True(t, table.Schema().HasHour)
	assert.False(t, table.Schema().HasTemp)
	assert.Equal(t, 17, table.Records()[1].Hour)
}

func TestLoadXLSX_DateCells(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]interface{}{
		{"dteday", "casual", "registered", "cnt", "season", "weekday"},
		{time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), 10, 20, 30, "Winter", "Monday"},
		{time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), 5, 5, 10, "Winter", "Saturday"},
		{"2024-02-11", 1, 2, 3, "Winter", "Sunday"},
	}
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cellRef, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	table, err := LoadXLSX(context.Background(), &buf, "Sheet1")
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())

	records := table.Records()
	assert.Equal(t, "2024-01-15", records[0].Date.Format(domain.DateLayout))
	assert.Equal(t, "2024-02-10", records[1].Date.Format(domain.DateLayout))
	assert.Equal(t, "2024-02-11", records[2].Date.Format(domain.DateLayout))
	assert.Equal(t, int64(30), records[0].Total)
}

func TestLoadCSV_RejectsSerialDates(t *testing.T) {
	input := "dteday,season,weekday,casual,registered,cnt\n45306,1,1,1,1,2\n"
	_, err := LoadCSV(context.Background(), strings.NewReader(input))

	var rowErr *RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, ColumnDate, rowErr.Column)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dataset_clean.csv")
	require.NoError(t, os.WriteFile(path, []byte(hourlyCSV), 0644))

	table, err := LoadFile(context.Background(), path, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())

	_, err = LoadFile(context.Background(), filepath.Join(dir, "absent.csv"), LoadOptions{})
	assert.ErrorIs(t, err, os.ErrNotExist)

	other := filepath.Join(dir, "dataset.json")
	require.NoError(t, os.WriteFile(other, []byte("{}"), 0644))
	_, err = LoadFile(context.Background(), other, LoadOptions{})
	assert.Error(t, err)
}
