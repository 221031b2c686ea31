package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"bikepulse/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

// TestOTelInitialization tests OpenTelemetry initialization with defaults
func TestOTelInitialization(t *testing.T) {
	providers, err := InitializeOTel(nil, testLogger())
	require.NoError(t, err)
	require.NotNil(t, providers)

	// Default telemetry config: metrics on, tracing off
	assert.Nil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestNewOTelConfig(t *testing.T) {
	cfg := NewOTelConfig(config.TelemetryConfig{
		ServiceName:    "bikepulse-test",
		Environment:    "test",
		TracingEnabled: true,
		TraceExporter:  config.TraceExporterStdout,
		SampleRatio:    0.5,
		MetricsEnabled: false,
	})

	assert.Equal(t, "bikepulse-test", cfg.ServiceName)
	assert.Equal(t, "test", cfg.Environment)
	assert.True(t, cfg.EnableTracing)
	assert.False(t, cfg.EnableMetrics)
	assert.Equal(t, 0.5, cfg.SampleRatio)
	assert.NotEmpty(t, cfg.ServiceVersion)
}

// TestOTelConfiguration tests different configuration options
func TestOTelConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		config  *OTelConfig
		wantErr bool
	}{
		{
			name: "tracing and metrics",
			config: &OTelConfig{
				ServiceName:   "test-service",
				Environment:   "development",
				TraceExporter: "stdout",
				EnableMetrics: true,
				EnableTracing: true,
				SampleRatio:   1.0,
			},
		},
		{
			name: "tracing with no exporter",
			config: &OTelConfig{
				ServiceName:   "test-service",
				TraceExporter: "none",
				EnableTracing: true,
			},
		},
		{
			name: "everything disabled",
			config: &OTelConfig{
				ServiceName: "test-service",
			},
		},
		{
			name: "unknown exporter",
			config: &OTelConfig{
				ServiceName:   "test-service",
				TraceExporter: "zipkin",
				EnableTracing: true,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			providers, err := InitializeOTel(tt.config, testLogger())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			if tt.config.EnableTracing && tt.config.TraceExporter == "stdout" {
				assert.NotNil(t, providers.TracerProvider)
			} else {
				assert.Nil(t, providers.TracerProvider)
			}
			if tt.config.EnableMetrics {
				assert.NotNil(t, providers.PrometheusHTTP)
			} else {
				assert.Nil(t, providers.PrometheusHTTP)
			}

			// no-op fallbacks still hand out usable instruments
			metrics, err := CreateBusinessMetrics(providers.Meter)
			require.NoError(t, err)
			RecordAggregationMetrics(context.Background(), metrics, "monthly", time.Millisecond, nil)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			assert.NoError(t, providers.Shutdown(ctx))
		})
	}
}

// TestPrometheusEndpoint checks recorded business metrics reach /metrics
func TestPrometheusEndpoint(t *testing.T) {
	providers, err := InitializeOTel(DefaultOTelConfig(), testLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	RecordAggregationMetrics(ctx, metrics, "seasonal", 2*time.Millisecond, nil)
	RecordAggregationMetrics(ctx, metrics, "hourly", time.Millisecond, errors.New("missing column"))
	RecordFilterMetrics(ctx, metrics, 365)
	RecordDatasetMetrics(ctx, metrics, 731, 40*time.Millisecond)
	RecordWebSocketConnection(ctx, metrics, 1)
	RecordWebSocketMessage(ctx, metrics, "in", "filter")

	server := httptest.NewServer(providers.PrometheusHTTP)
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "aggregation_runs")
	assert.Contains(t, string(body), "aggregation_errors")
	assert.Contains(t, string(body), "dataset_records")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestRecordHelpers_NilMetrics(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordAggregationMetrics(ctx, nil, "monthly", time.Second, assert.AnError)
		RecordFilterMetrics(ctx, nil, 1)
		RecordDatasetMetrics(ctx, nil, 1, time.Second)
		RecordWebSocketMessage(ctx, nil, "out", "dashboard")
		RecordWebSocketConnection(ctx, nil, -1)
	})
}

// TestTraceCorrelation tests trace ID extraction and span error recording
func TestTraceCorrelation(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{
		ServiceName:   "test-service",
		TraceExporter: "stdout",
		EnableTracing: true,
		SampleRatio:   1.0,
	}, testLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	ctx, span := otel.Tracer("test").Start(context.Background(), "test-operation")
	defer span.End()

	traceID := TraceIDFromContext(ctx)
	assert.NotEmpty(t, traceID)
	assert.Equal(t, span.SpanContext().TraceID().String(), traceID)

	RecordError(ctx, assert.AnError)
	assert.True(t, span.IsRecording())

	assert.Empty(t, TraceIDFromContext(context.Background()))
}
