package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bikepulse/internal/dataprocessing"
	"bikepulse/internal/exporter"
	"bikepulse/internal/infrastructure"
	"bikepulse/pkg/contracts/domain"
)

// DatasetInfo describes the loaded table
type DatasetInfo struct {
	Records int                   `json:"records"`
	Bounds  domain.DateRange      `json:"bounds"`
	Schema  dataprocessing.Schema `json:"schema"`
}

// DashboardService answers dashboard queries over the loaded table. The
// table is immutable, so one service serves every request concurrently and
// recomputes summaries from scratch on each call.
type DashboardService struct {
	table   *dataprocessing.Table
	bounds  domain.DateRange
	metrics *infrastructure.BusinessMetrics
	tracer  trace.Tracer
	logger  *slog.Logger
}

// NewDashboardService wraps a loaded table. table may be nil, in which case
// every query fails with ErrDatasetNotLoaded; metrics may be nil.
func NewDashboardService(table *dataprocessing.Table, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}

	s := &DashboardService{
		table:   table,
		metrics: metrics,
		tracer:  otel.Tracer(infrastructure.MeterName),
		logger:  infrastructure.WithComponent(logger, "dashboard_service"),
	}
	if table != nil {
		if start, end, ok := table.Bounds(); ok {
			s.bounds = domain.DateRange{Start: start, End: end}
		}
	}
	return s
}

// Ready reports whether a dataset is loaded
func (s *DashboardService) Ready() bool {
	return s.table != nil
}

// Dataset describes the loaded table
func (s *DashboardService) Dataset() (DatasetInfo, error) {
	if s.table == nil {
		return DatasetInfo{}, ErrDatasetNotLoaded
	}
	return DatasetInfo{
		Records: s.table.Len(),
		Bounds:  s.bounds,
		Schema:  s.table.Schema(),
	}, nil
}

// Bounds returns the first and last day of the dataset, the default window
// of every query
func (s *DashboardService) Bounds() (domain.DateRange, error) {
	if s.table == nil {
		return domain.DateRange{}, ErrDatasetNotLoaded
	}
	return s.bounds, nil
}

// Dashboard filters the table to rng and computes every summary. Summaries
// the dataset cannot support are recorded in Errors and left empty; any other
// failure aborts the whole dashboard.
func (s *DashboardService) Dashboard(ctx context.Context, rng domain.DateRange) (*domain.Dashboard, error) {
	if s.table == nil {
		return nil, ErrDatasetNotLoaded
	}

	ctx, span := s.tracer.Start(ctx, "dashboard.build", trace.WithAttributes(
		attribute.String("range.start", rng.Start.Format(domain.DateLayout)),
		attribute.String("range.end", rng.End.Format(domain.DateLayout)),
	))
	defer span.End()

	start := time.Now()
	filtered := s.filter(ctx, rng)

	d := &domain.Dashboard{
		Range:       rng,
		Bounds:      s.bounds,
		GeneratedAt: time.Now().UTC(),
	}

	for _, name := range domain.SummaryNames {
		if err := ctx.Err(); err != nil {
			infrastructure.RecordError(ctx, err)
			return nil, err
		}

		table, err := s.compute(ctx, name, filtered)
		if err != nil {
			if errors.Is(err, dataprocessing.ErrMissingColumn) {
				if d.Errors == nil {
					d.Errors = make(map[string]string)
				}
				d.Errors[name] = err.Error()
				continue
			}
			infrastructure.RecordError(ctx, err)
			return nil, fmt.Errorf("failed to compute %s summary: %w", name, err)
		}
		assignSummary(d, table)
	}

	s.logger.InfoContext(ctx, "Dashboard built",
		slog.String("range", rng.String()),
		slog.Int("records", filtered.Len()),
		slog.Int("skipped", len(d.Errors)),
		slog.Duration("duration", time.Since(start)))

	return d, nil
}

// Summary filters the table to rng and computes the named summary
func (s *DashboardService) Summary(ctx context.Context, name string, rng domain.DateRange) (domain.Tabular, error) {
	if s.table == nil {
		return nil, ErrDatasetNotLoaded
	}
	if !isSummaryName(name) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, name)
	}

	ctx, span := s.tracer.Start(ctx, "dashboard.summary", trace.WithAttributes(
		attribute.String("summary", name),
	))
	defer span.End()

	table, err := s.compute(ctx, name, s.filter(ctx, rng))
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}
	return table, nil
}

// Export writes the named summary to w in the given format
func (s *DashboardService) Export(ctx context.Context, w io.Writer, name string, format exporter.Format, rng domain.DateRange) error {
	if format != exporter.FormatCSV && format != exporter.FormatXLSX {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	table, err := s.Summary(ctx, name, rng)
	if err != nil {
		return err
	}

	if err := exporter.Write(w, table, format, name); err != nil {
		return fmt.Errorf("failed to export %s: %w", name, err)
	}

	s.logger.InfoContext(ctx, "Summary exported",
		slog.String("summary", name),
		slog.String("format", string(format)),
		slog.String("range", rng.String()))
	return nil
}

// ExportWorkbook writes every summary the dataset supports into one XLSX
// workbook, one sheet per summary in page order
func (s *DashboardService) ExportWorkbook(ctx context.Context, w io.Writer, rng domain.DateRange) error {
	sheets, err := s.Sheets(ctx, rng)
	if err != nil {
		return err
	}
	if err := exporter.WriteXLSX(w, sheets...); err != nil {
		return fmt.Errorf("failed to export workbook: %w", err)
	}
	return nil
}

// Sheets computes every supported summary for rng as named export sheets
func (s *DashboardService) Sheets(ctx context.Context, rng domain.DateRange) ([]exporter.Sheet, error) {
	if s.table == nil {
		return nil, ErrDatasetNotLoaded
	}

	filtered := s.filter(ctx, rng)
	sheets := make([]exporter.Sheet, 0, len(domain.SummaryNames))
	for _, name := range domain.SummaryNames {
		table, err := s.compute(ctx, name, filtered)
		if errors.Is(err, dataprocessing.ErrMissingColumn) {
			continue
		}
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, exporter.Sheet{Name: name, Table: table})
	}
	return sheets, nil
}

func (s *DashboardService) filter(ctx context.Context, rng domain.DateRange) *dataprocessing.Table {
	filtered := dataprocessing.FilterRange(s.table, rng)
	infrastructure.RecordFilterMetrics(ctx, s.metrics, filtered.Len())

	s.logger.DebugContext(ctx, "Date filter applied",
		slog.String("range", rng.String()),
		slog.Int("kept", filtered.Len()),
		slog.Int("total", s.table.Len()))
	return filtered
}

// compute runs one aggregator and records its metrics
func (s *DashboardService) compute(ctx context.Context, name string, t *dataprocessing.Table) (domain.Tabular, error) {
	start := time.Now()

	var (
		out domain.Tabular
		err error
	)
	switch name {
	case domain.SummaryTotals:
		out = dataprocessing.Totals(t)
	case domain.SummaryMonthly:
		out = dataprocessing.Monthly(t)
	case domain.SummarySeasonal:
		out = dataprocessing.Seasonal(t)
	case domain.SummaryWeekday:
		out = dataprocessing.Weekday(t)
	case domain.SummaryHourly:
		out, err = hourly(t)
	case domain.SummaryDaily:
		out = dataprocessing.Daily(t)
	case domain.SummaryScatter:
		out, err = scatter(t)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownTable, name)
	}

	infrastructure.RecordAggregationMetrics(ctx, s.metrics, name, time.Since(start), err)
	if err != nil {
		s.logger.DebugContext(ctx, "Summary skipped",
			slog.String("summary", name),
			slog.String("error", err.Error()))
		return nil, err
	}
	return out, nil
}

// hourly and scatter keep a nil summary out of the Tabular interface
func hourly(t *dataprocessing.Table) (domain.Tabular, error) {
	out, err := dataprocessing.Hourly(t)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func scatter(t *dataprocessing.Table) (domain.Tabular, error) {
	out, err := dataprocessing.Scatter(t)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func assignSummary(d *domain.Dashboard, table domain.Tabular) {
	switch v := table.(type) {
	case domain.Totals:
		d.Totals = v
	case domain.MonthlySummary:
		d.Monthly = v
	case domain.SeasonalSummary:
		d.Seasonal = v
	case domain.WeekdaySummary:
		d.Weekday = v
	case domain.HourlySummary:
		d.Hourly = v
	case domain.DailySummary:
		d.Daily = v
	case domain.ScatterSeries:
		d.Scatter = v
	}
}

func isSummaryName(name string) bool {
	for _, n := range domain.SummaryNames {
		if n == name {
			return true
		}
	}
	return false
}
