package http

import (
	"net/http"

	apierrors "bikepulse/internal/errors"
)

// MetricsHandler exposes the Prometheus registry behind the OTel meter
type MetricsHandler struct {
	prometheus   http.Handler
	errorHandler *apierrors.ErrorHandler
}

// NewMetricsHandler wraps the scrape handler. A nil handler means metrics
// are disabled and every scrape answers 503.
func NewMetricsHandler(prometheus http.Handler, errorHandler *apierrors.ErrorHandler) *MetricsHandler {
	if errorHandler == nil {
		errorHandler = apierrors.NewErrorHandler(nil, false)
	}
	return &MetricsHandler{
		prometheus:   prometheus,
		errorHandler: errorHandler,
	}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.prometheus == nil {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusServiceUnavailable,
			apierrors.CodeServiceUnavailable,
			"Metrics are disabled",
			"set BIKEPULSE_TELEMETRY_METRICS_ENABLED=true",
		))
		return
	}
	h.prometheus.ServeHTTP(w, r)
}
