package services

import (
	"errors"

	"bikepulse/internal/exporter"
)

// Dashboard service errors
var (
	// ErrDatasetNotLoaded is returned by every query when the service was
	// built without a table
	ErrDatasetNotLoaded = errors.New("dataset not loaded")

	// ErrUnknownTable names a summary the dashboard does not produce
	ErrUnknownTable = errors.New("unknown summary table")

	// ErrUnsupportedFormat is the exporter's sentinel, re-exported so callers
	// only need this package
	ErrUnsupportedFormat = exporter.ErrUnsupportedFormat
)
