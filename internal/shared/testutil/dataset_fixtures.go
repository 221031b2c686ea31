package testutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bikepulse/internal/dataprocessing"
)

// SampleHourlyCSV is a small hourly dataset spanning January to April 2011.
// Totals: 50 casual, 192 registered, 242 rides over 5 records.
const SampleHourlyCSV = `dteday,season,hr,weekday,temp,casual,registered,cnt
2011-01-01,Winter,0,Saturday,0.24,3,13,16
2011-01-01,Winter,1,Saturday,0.22,8,32,40
2011-01-02,Winter,0,Sunday,0.46,17,17,34
2011-02-14,Winter,8,Monday,0.30,2,50,52
2011-04-05,Spring,17,Tuesday,0.52,20,80,100
`

// SampleDailyCSV is a daily dataset without the optional hr and temp columns
const SampleDailyCSV = `dteday,season,weekday,casual,registered,cnt
2011-01-01,Winter,Saturday,331,654,985
2011-01-02,Winter,Sunday,131,670,801
2011-01-03,Winter,Monday,120,1229,1349
`

// WriteDataset writes content to dir/name and returns the path
func WriteDataset(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write dataset fixture: %v", err)
	}
	return path
}

// LoadTable parses a CSV fixture into a table, failing the test on error
func LoadTable(t *testing.T, content string) *dataprocessing.Table {
	t.Helper()

	table, err := dataprocessing.LoadCSV(context.Background(), strings.NewReader(content))
	if err != nil {
		t.Fatalf("failed to load dataset fixture: %v", err)
	}
	return table
}

// HourlyTable returns SampleHourlyCSV as a table
func HourlyTable(t *testing.T) *dataprocessing.Table {
	return LoadTable(t, SampleHourlyCSV)
}

// DailyTable returns SampleDailyCSV as a table
func DailyTable(t *testing.T) *dataprocessing.Table {
	return LoadTable(t, SampleDailyCSV)
}
