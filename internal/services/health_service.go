package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"bikepulse/internal/infrastructure"
	"bikepulse/pkg/contracts"
	"bikepulse/pkg/contracts/domain"
)

// DatasetStatus is the part of the dashboard service the health checks need
type DatasetStatus interface {
	Ready() bool
	Dataset() (DatasetInfo, error)
}

// SessionCounter reports open live-filter sessions
type SessionCounter interface {
	ActiveSessions() int
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	dataset   DatasetStatus
	sessions  SessionCounter
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// Health states
const (
	StatusOK       = "ok"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
	StatusAlive    = "alive"
)

// NewHealthService creates a health service. sessions may be nil.
func NewHealthService(dataset DatasetStatus, sessions SessionCounter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	return &HealthService{
		version:   contracts.Version,
		dataset:   dataset,
		sessions:  sessions,
		startTime: time.Now(),
		logger:    infrastructure.WithComponent(logger, "health_service"),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    StatusOK,
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports ready only once a dataset is loaded
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusReady,
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	status.Services["dataset"] = hs.checkDatasetHealth()
	status.Services["websocket"] = hs.checkWebSocketHealth()

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != StatusReady {
			status.Status = StatusNotReady
			break
		}
	}

	if status.Status != StatusReady {
		hs.logger.WarnContext(ctx, "ReadinessCheck: not ready",
			slog.Any("services", status.Services))
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    StatusAlive,
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()
	return map[string]interface{}{
		"version":      info.Version,
		"build_time":   info.BuildTime,
		"git_commit":   info.GitCommit,
		"api_version":  info.APIVersion,
		"data_format":  info.DataFormat,
		"go_version":   info.GoVersion,
		"os":           info.OS,
		"arch":         info.Architecture,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
}

func (hs *HealthService) checkDatasetHealth() ServiceHealth {
	if hs.dataset == nil || !hs.dataset.Ready() {
		return ServiceHealth{
			Status:  StatusNotReady,
			Message: "dataset not loaded",
		}
	}

	info, err := hs.dataset.Dataset()
	if err != nil {
		return ServiceHealth{
			Status:  StatusNotReady,
			Message: err.Error(),
		}
	}

	msg := fmt.Sprintf("%d records, %s to %s", info.Records,
		info.Bounds.Start.Format(domain.DateLayout), info.Bounds.End.Format(domain.DateLayout))
	return ServiceHealth{
		Status:  StatusReady,
		Message: msg,
	}
}

func (hs *HealthService) checkWebSocketHealth() ServiceHealth {
	health := ServiceHealth{
		Status: StatusReady,
		Uptime: time.Since(hs.startTime).String(),
	}
	if hs.sessions != nil {
		health.Message = fmt.Sprintf("%d active sessions", hs.sessions.ActiveSessions())
	}
	return health
}
