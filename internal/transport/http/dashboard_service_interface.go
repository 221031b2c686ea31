package http

import (
	"context"
	"io"

	"bikepulse/internal/exporter"
	"bikepulse/pkg/contracts/domain"
)

// DashboardServiceInterface is the part of services.DashboardService the
// HTTP handlers call
type DashboardServiceInterface interface {
	Bounds() (domain.DateRange, error)
	Dashboard(ctx context.Context, rng domain.DateRange) (*domain.Dashboard, error)
	Summary(ctx context.Context, name string, rng domain.DateRange) (domain.Tabular, error)
	Export(ctx context.Context, w io.Writer, name string, format exporter.Format, rng domain.DateRange) error
	ExportWorkbook(ctx context.Context, w io.Writer, rng domain.DateRange) error
}
