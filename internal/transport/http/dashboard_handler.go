package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"bikepulse/internal/dataprocessing"
	apierrors "bikepulse/internal/errors"
	"bikepulse/internal/exporter"
	"bikepulse/internal/infrastructure"
	"bikepulse/internal/middleware"
	"bikepulse/internal/services"
	"bikepulse/internal/validation"
	v1 "bikepulse/pkg/contracts/api/v1"
	"bikepulse/pkg/contracts/domain"
)

// WorkbookName is the download name of the all-summaries workbook
const WorkbookName = "dashboard"

// DashboardHandler serves the dashboard payload, single summaries and
// their downloads with RFC 7807 errors
type DashboardHandler struct {
	service      DashboardServiceInterface
	validator    *validation.RequestValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if errorHandler == nil {
		errorHandler = apierrors.NewErrorHandler(logger, false)
	}
	return &DashboardHandler{
		service:      service,
		validator:    validation.NewRequestValidator(),
		logger:       infrastructure.WithComponent(logger, "dashboard_handler"),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes, mounted under /api/dashboard
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.GetDashboard)
	r.Get("/range", h.GetRange)

	// Download routes set their own content type
	r.Get("/export.xlsx", h.ExportWorkbook)
	r.With(h.TableCtx).Get("/export/{table}.{format}", h.ExportSummary)

	r.With(h.TableCtx).Get("/{table}", h.GetSummary)

	return r
}

// TableCtx rejects summary names the dashboard does not produce
func (h *DashboardHandler) TableCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		table := chi.URLParam(r, "table")
		if !isSummaryName(table) {
			h.errorHandler.HandleError(w, r, apierrors.UnknownSummaryError(table))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetDashboard handles GET /api/dashboard?start=&end=
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	req := dashboardRequest(r)
	if err := h.validator.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	rng, err := h.resolve(req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "building dashboard",
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("range", rng.String()))

	dashboard, err := h.service.Dashboard(r.Context(), rng)
	if err != nil {
		h.fail(w, r, "failed to build dashboard", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   dashboard,
	})
}

// GetRange handles GET /api/dashboard/range, the bounds of the date widget
func (h *DashboardHandler) GetRange(w http.ResponseWriter, r *http.Request) {
	bounds, err := h.service.Bounds()
	if err != nil {
		h.fail(w, r, "failed to read dataset bounds", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data": map[string]string{
			"min_date": bounds.Start.Format(domain.DateLayout),
			"max_date": bounds.End.Format(domain.DateLayout),
		},
	})
}

// GetSummary handles GET /api/dashboard/{table}
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	req := v1.SummaryRequest{
		DashboardRequest: dashboardRequest(r),
		Table:            chi.URLParam(r, "table"),
	}
	if err := h.validator.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	rng, err := h.resolve(req.DashboardRequest)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	table, err := h.service.Summary(r.Context(), req.Table, rng)
	if err != nil {
		h.fail(w, r, "failed to compute summary", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":  "success",
		"table":   req.Table,
		"columns": table.Columns(),
		"data":    table,
		"count":   len(table.Rows()),
	})
}

// ExportSummary handles GET /api/dashboard/export/{table}.{format}
func (h *DashboardHandler) ExportSummary(w http.ResponseWriter, r *http.Request) {
	req := v1.ExportRequest{
		SummaryRequest: v1.SummaryRequest{
			DashboardRequest: dashboardRequest(r),
			Table:            chi.URLParam(r, "table"),
		},
		Format: chi.URLParam(r, "format"),
	}
	if err := h.validator.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	format, err := exporter.ParseFormat(req.Format)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrUnsupportedFormat)
		return
	}

	rng, err := h.resolve(req.DashboardRequest)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	// Buffer so a failure can still be reported as a problem response
	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), &buf, req.Table, format, rng); err != nil {
		h.failExport(w, r, "failed to export summary", err)
		return
	}

	h.logger.InfoContext(r.Context(), "summary downloaded",
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("table", req.Table),
		slog.String("format", string(format)),
		slog.Int("bytes", buf.Len()))

	writeDownload(w, req.Table+format.Extension(), format.ContentType(), buf.Bytes())
}

// ExportWorkbook handles GET /api/dashboard/export.xlsx, one sheet per
// summary the dataset supports
func (h *DashboardHandler) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	req := dashboardRequest(r)
	if err := h.validator.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	rng, err := h.resolve(req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := h.service.ExportWorkbook(r.Context(), &buf, rng); err != nil {
		h.failExport(w, r, "failed to export workbook", err)
		return
	}

	writeDownload(w, WorkbookName+exporter.FormatXLSX.Extension(), exporter.FormatXLSX.ContentType(), buf.Bytes())
}

// resolve fills omitted bounds from the dataset bounds
func (h *DashboardHandler) resolve(req v1.DashboardRequest) (domain.DateRange, error) {
	bounds, err := h.service.Bounds()
	if err != nil {
		return domain.DateRange{}, mapServiceError(err)
	}
	rng, err := req.Resolve(bounds)
	if err != nil {
		return domain.DateRange{}, apierrors.InvalidRequestWithError(err)
	}
	return rng, nil
}

// fail logs a service failure and writes it as a problem response
func (h *DashboardHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	level := slog.LevelError
	if isClientError(err) {
		level = slog.LevelWarn
	}
	h.logger.Log(r.Context(), level, msg,
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("path", r.URL.Path))

	h.errorHandler.HandleError(w, r, mapServiceError(err))
}

// failExport reports encoder and writer failures as EXPORT_FAILED; request
// and dataset problems keep their own status
func (h *DashboardHandler) failExport(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if isClientError(err) || errors.Is(err, services.ErrDatasetNotLoaded) || errors.Is(err, context.DeadlineExceeded) {
		h.fail(w, r, msg, err)
		return
	}

	h.logger.ErrorContext(r.Context(), msg,
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("path", r.URL.Path))
	h.errorHandler.HandleError(w, r, apierrors.ExportError(err))
}

// mapServiceError converts service sentinels into API errors. Missing
// columns and context errors pass through; the error handler maps them.
func mapServiceError(err error) error {
	var colErr *dataprocessing.MissingColumnError
	switch {
	case errors.Is(err, services.ErrDatasetNotLoaded):
		return apierrors.ErrDatasetUnavailable
	case errors.Is(err, services.ErrUnknownTable):
		return apierrors.NewWithDetails(http.StatusNotFound, apierrors.CodeUnknownSummary, err.Error(), nil)
	case errors.Is(err, services.ErrUnsupportedFormat):
		return apierrors.ErrUnsupportedFormat
	case errors.As(err, &colErr):
		return apierrors.MissingColumnError(colErr.Column, colErr.Op)
	default:
		return err
	}
}

func isClientError(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, services.ErrUnknownTable) ||
		errors.Is(err, services.ErrUnsupportedFormat) ||
		errors.Is(err, dataprocessing.ErrMissingColumn)
}

func dashboardRequest(r *http.Request) v1.DashboardRequest {
	q := r.URL.Query()
	return v1.DashboardRequest{
		Start: q.Get("start"),
		End:   q.Get("end"),
	}
}

func writeDownload(w http.ResponseWriter, filename, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func isSummaryName(name string) bool {
	for _, n := range domain.SummaryNames {
		if n == name {
			return true
		}
	}
	return false
}
