// Package api contains API contract definitions for BikePulse.
// Version v1 represents the current stable API version.
package api

import (
	"fmt"
	"time"

	"bikepulse/pkg/contracts/domain"
)

// DashboardRequest is the date window of a dashboard query. Either bound may
// be omitted; it then defaults to the matching dataset bound.
type DashboardRequest struct {
	Start string `json:"start_date" query:"start" validate:"omitempty,datetime=2006-01-02"`
	End   string `json:"end_date" query:"end" validate:"omitempty,datetime=2006-01-02"`
}

// Resolve turns the request into a concrete range, filling omitted bounds
// from the dataset bounds. Call it after validation.
func (r DashboardRequest) Resolve(bounds domain.DateRange) (domain.DateRange, error) {
	rng := bounds
	if r.Start != "" {
		start, err := time.Parse(domain.DateLayout, r.Start)
		if err != nil {
			return domain.DateRange{}, fmt.Errorf("invalid start date %q: %w", r.Start, err)
		}
		rng.Start = start
	}
	if r.End != "" {
		end, err := time.Parse(domain.DateLayout, r.End)
		if err != nil {
			return domain.DateRange{}, fmt.Errorf("invalid end date %q: %w", r.End, err)
		}
		rng.End = end
	}
	return rng, nil
}

// SummaryRequest selects one summary table
type SummaryRequest struct {
	DashboardRequest
	Table string `json:"table" param:"table" validate:"required,oneof=totals monthly seasonal weekday hourly daily scatter"`
}

// ExportRequest selects one summary table and a download format
type ExportRequest struct {
	SummaryRequest
	Format string `json:"format" param:"format" validate:"required,oneof=csv xlsx"`
}

// WebSocket message types
const (
	MessageTypeFilter    = "filter"
	MessageTypeHeartbeat = "heartbeat"
	MessageTypeDashboard = "dashboard"
	MessageTypeError     = "error"
)

// FilterMessage is sent by a websocket client whenever the date widget changes
type FilterMessage struct {
	Type      string `json:"type" validate:"required,oneof=filter heartbeat"`
	StartDate string `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// DashboardRequest returns the date window carried by the message
func (m FilterMessage) DashboardRequest() DashboardRequest {
	return DashboardRequest{Start: m.StartDate, End: m.EndDate}
}

// ServerMessage is pushed to websocket clients
type ServerMessage struct {
	Type  string            `json:"type"`
	Data  *domain.Dashboard `json:"data,omitempty"`
	Error string            `json:"error,omitempty"`
}
