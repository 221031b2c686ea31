package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"bikepulse/internal/dataprocessing"
	"bikepulse/internal/exporter"
	"bikepulse/internal/infrastructure"
	"bikepulse/internal/shared/testutil"
	"bikepulse/pkg/contracts/domain"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(domain.DateLayout, s)
	require.NoError(t, err)
	return ts
}

func window(t *testing.T, start, end string) domain.DateRange {
	return domain.DateRange{Start: day(t, start), End: day(t, end)}
}

func TestDashboardService_Bounds(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	svc := NewDashboardService(testutil.HourlyTable(t), nil, logger)

	bounds, err := svc.Bounds()
	require.NoError(t, err)
	assert.Equal(t, window(t, "2011-01-01", "2011-04-05"), bounds)

	info, err := svc.Dataset()
	require.NoError(t, err)
	assert.Equal(t, 5, info.Records)
	assert.Equal(t, dataprocessing.Schema{HasHour: true, HasTemp: true}, info.Schema)
	assert.True(t, svc.Ready())
}

func TestDashboardService_NotLoaded(t *testing.T) {
	svc := NewDashboardService(nil, nil, nil)
	ctx := context.Background()

	assert.False(t, svc.Ready())

	_, err := svc.Bounds()
	assert.ErrorIs(t, err, ErrDatasetNotLoaded)
	_, err = svc.Dataset()
	assert.ErrorIs(t, err, ErrDatasetNotLoaded)
	_, err = svc.Dashboard(ctx, domain.DateRange{})
	assert.ErrorIs(t, err, ErrDatasetNotLoaded)
	_, err = svc.Summary(ctx, domain.SummaryMonthly, domain.DateRange{})
	assert.ErrorIs(t, err, ErrDatasetNotLoaded)
	err = svc.ExportWorkbook(ctx, &bytes.Buffer{}, domain.DateRange{})
	assert.ErrorIs(t, err, ErrDatasetNotLoaded)
}

func TestDashboardService_Dashboard(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	svc := NewDashboardService(testutil.HourlyTable(t), nil, logger)
	ctx := context.Background()

	t.Run("full range", func(t *testing.T) {
		bounds, err := svc.Bounds()
		require.NoError(t, err)

		d, err := svc.Dashboard(ctx, bounds)
		require.NoError(t, err)

		assert.Equal(t, bounds, d.Range)
		assert.Equal(t, bounds, d.Bounds)
		assert.Empty(t, d.Errors)
		assert.Equal(t, domain.Totals{TotalRides: 242, CasualRides: 50, RegisteredRides: 192, Records: 5}, d.Totals)
		assert.Equal(t, domain.MonthlySummary{
			{YearMonth: "Jan-11", CasualRides: 28, RegisteredRides: 62, TotalRides: 90},
			{YearMonth: "Feb-11", CasualRides: 2, RegisteredRides: 50, TotalRides: 52},
			{YearMonth: "Mar-11"},
			{YearMonth: "Apr-11", CasualRides: 20, RegisteredRides: 80, TotalRides: 100},
		}, d.Monthly)
		assert.Equal(t, domain.HourlySummary{
			{Hour: 0, CasualRides: 20, RegisteredRides: 30, TotalRides: 50},
			{Hour: 1, CasualRides: 8, RegisteredRides: 32, TotalRides: 40},
			{Hour: 8, CasualRides: 2, RegisteredRides: 50, TotalRides: 52},
			{Hour: 17, CasualRides: 20, RegisteredRides: 80, TotalRides: 100},
		}, d.Hourly)
		assert.Len(t, d.Scatter, 5)
		assert.Len(t, d.Daily, 4)
		assert.Len(t, d.Seasonal, 4)
		assert.False(t, d.GeneratedAt.IsZero())

		testutil.AssertLogContains(t, logs, slog.LevelInfo, "Dashboard built")
	})

	t.Run("february window", func(t *testing.T) {
		d, err := svc.Dashboard(ctx, window(t, "2011-02-01", "2011-02-28"))
		require.NoError(t, err)

		assert.Equal(t, int64(52), d.Totals.TotalRides)
		assert.Equal(t, domain.MonthlySummary{{YearMonth: "Feb-11", CasualRides: 2, RegisteredRides: 50, TotalRides: 52}}, d.Monthly)
		assert.Equal(t, domain.WeekdaySummary{
			{Weekday: domain.Monday, TypeOfRides: domain.RideTypeCasual, CountRides: 2},
			{Weekday: domain.Monday, TypeOfRides: domain.RideTypeRegistered, CountRides: 50},
		}, d.Weekday)
	})

	t.Run("inverted window yields empty summaries", func(t *testing.T) {
		d, err := svc.Dashboard(ctx, window(t, "2011-04-01", "2011-01-01"))
		require.NoError(t, err)

		assert.Equal(t, domain.Totals{}, d.Totals)
		assert.Empty(t, d.Monthly)
		assert.Empty(t, d.Seasonal)
		assert.Empty(t, d.Hourly)
		assert.Empty(t, d.Errors)
	})
}

func TestDashboardService_Dashboard_DailyDataset(t *testing.T) {
	svc := NewDashboardService(testutil.DailyTable(t), nil, nil)
	bounds, err := svc.Bounds()
	require.NoError(t, err)

	d, err := svc.Dashboard(context.Background(), bounds)
	require.NoError(t, err)

	require.Len(t, d.Errors, 2)
	assert.Contains(t, d.Errors[domain.SummaryHourly], `"hr"`)
	assert.Contains(t, d.Errors[domain.SummaryScatter], `"temp"`)
	assert.Nil(t, d.Hourly)
	assert.Nil(t, d.Scatter)

	// the remaining summaries are intact
	assert.Equal(t, int64(3135), d.Totals.TotalRides)
	assert.Len(t, d.Monthly, 1)
	assert.Len(t, d.Daily, 3)
}

func TestDashboardService_Dashboard_Cancelled(t *testing.T) {
	svc := NewDashboardService(testutil.HourlyTable(t), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Dashboard(ctx, window(t, "2011-01-01", "2011-12-31"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDashboardService_Summary(t *testing.T) {
	hourly := NewDashboardService(testutil.HourlyTable(t), nil, nil)
	daily := NewDashboardService(testutil.DailyTable(t), nil, nil)
	ctx := context.Background()
	all := window(t, "2011-01-01", "2011-12-31")

	tests := []struct {
		name        string
		svc         *DashboardService
		summary     string
		wantErr     error
		wantColumns []string
		wantRows    int
	}{
		{name: "totals", svc: hourly, summary: domain.SummaryTotals, wantColumns: []string{"total_rides", "casual_rides", "registered_rides", "records"}, wantRows: 1},
		{name: "seasonal long form", svc: hourly, summary: domain.SummarySeasonal, wantColumns: []string{"season", "type_of_rides", "count_rides"}, wantRows: 4},
		{name: "hourly", svc: hourly, summary: domain.SummaryHourly, wantColumns: []string{"hr", "casual_rides", "registered_rides", "total_rides"}, wantRows: 4},
		{name: "hourly on a daily dataset", svc: daily, summary: domain.SummaryHourly, wantErr: dataprocessing.ErrMissingColumn},
		{name: "scatter on a daily dataset", svc: daily, summary: domain.SummaryScatter, wantErr: dataprocessing.ErrMissingColumn},
		{name: "unknown table", svc: hourly, summary: "yearly", wantErr: ErrUnknownTable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := tt.svc.Summary(ctx, tt.summary, all)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, table)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantColumns, table.Columns())
			assert.Len(t, table.Rows(), tt.wantRows)
		})
	}

	_, err := daily.Summary(ctx, domain.SummaryHourly, all)
	var mce *dataprocessing.MissingColumnError
	require.True(t, errors.As(err, &mce))
	assert.Equal(t, dataprocessing.ColumnHour, mce.Column)
}

func TestDashboardService_Export(t *testing.T) {
	svc := NewDashboardService(testutil.HourlyTable(t), nil, nil)
	ctx := context.Background()
	rng := window(t, "2011-01-01", "2011-02-28")

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, svc.Export(ctx, &buf, domain.SummaryMonthly, exporter.FormatCSV, rng))

		body := strings.TrimPrefix(buf.String(), "\xEF\xBB\xBF")
		lines := strings.Split(strings.TrimSpace(body), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "yearmonth,casual_rides,registered_rides,total_rides", strings.TrimSpace(lines[0]))
		assert.Equal(t, "Jan-11,28,62,90", strings.TrimSpace(lines[1]))
		assert.Equal(t, "Feb-11,2,50,52", strings.TrimSpace(lines[2]))
	})

	t.Run("xlsx", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, svc.Export(ctx, &buf, domain.SummaryWeekday, exporter.FormatXLSX, rng))

		f, err := excelize.OpenReader(&buf)
		require.NoError(t, err)
		defer f.Close()

		assert.Equal(t, []string{domain.SummaryWeekday}, f.GetSheetList())
		rows, err := f.GetRows(domain.SummaryWeekday)
		require.NoError(t, err)
		assert.Equal(t, []string{"weekday", "type_of_rides", "count_rides"}, rows[0])
		assert.Len(t, rows, 7)
	})

	t.Run("unsupported format", func(t *testing.T) {
		err := svc.Export(ctx, &bytes.Buffer{}, domain.SummaryMonthly, exporter.Format("pdf"), rng)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("unknown table", func(t *testing.T) {
		err := svc.Export(ctx, &bytes.Buffer{}, "yearly", exporter.FormatCSV, rng)
		assert.ErrorIs(t, err, ErrUnknownTable)
	})
}

func TestDashboardService_ExportWorkbook(t *testing.T) {
	svc := NewDashboardService(testutil.DailyTable(t), nil, nil)
	bounds, err := svc.Bounds()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportWorkbook(context.Background(), &buf, bounds))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		domain.SummaryTotals,
		domain.SummaryMonthly,
		domain.SummarySeasonal,
		domain.SummaryWeekday,
		domain.SummaryDaily,
	}, f.GetSheetList())
}

func TestDashboardService_RecordsMetrics(t *testing.T) {
	providers, err := infrastructure.InitializeOTel(&infrastructure.OTelConfig{
		ServiceName:   "bikepulse-test",
		EnableMetrics: true,
		TraceExporter: "none",
	}, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { providers.Shutdown(context.Background()) })

	metrics, err := infrastructure.CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)

	svc := NewDashboardService(testutil.DailyTable(t), metrics, nil)
	bounds, err := svc.Bounds()
	require.NoError(t, err)
	_, err = svc.Dashboard(context.Background(), bounds)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	body := w.Body.String()

	assert.Contains(t, body, "aggregation_runs_total")
	assert.Contains(t, body, `summary="monthly"`)
	assert.Contains(t, body, "aggregation_errors_total")
	assert.Contains(t, body, "filtered_records")
}
