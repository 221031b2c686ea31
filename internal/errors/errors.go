package errors

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError represents validation errors
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors represents multiple validation errors
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeUnknownSummary     = "UNKNOWN_SUMMARY"
	CodeMissingColumn      = "MISSING_COLUMN"
	CodeUnsupportedFormat  = "UNSUPPORTED_FORMAT"
	CodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	CodeExportFailed       = "EXPORT_FAILED"
	CodeWebSocketUpgrade   = "WEBSOCKET_UPGRADE_FAILED"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeDatasetUnavailable = "DATASET_UNAVAILABLE"
)

// Predefined error types for common scenarios
var (
	// 400 Bad Request
	ErrUnsupportedFormat = New(http.StatusBadRequest, CodeUnsupportedFormat, "Unsupported export format")

	// 429 Too Many Requests
	ErrRateLimitExceeded = New(http.StatusTooManyRequests, CodeRateLimitExceeded, "Rate limit exceeded")

	// 503 Service Unavailable
	ErrDatasetUnavailable = New(http.StatusServiceUnavailable, CodeDatasetUnavailable, "Dataset is not loaded")
)

// InvalidRequestWithError creates an invalid request error with details
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format", err.Error())
}

// NewValidationErrors creates validation errors from multiple fields
func NewValidationErrors(errors []ValidationError) *APIError {
	return NewWithDetails(
		http.StatusBadRequest,
		CodeValidationFailed,
		"Request validation failed",
		ValidationErrors{Errors: errors},
	)
}

// UnknownSummaryError reports a summary name the dashboard does not produce
func UnknownSummaryError(name string) *APIError {
	return NewWithDetails(http.StatusNotFound, CodeUnknownSummary, fmt.Sprintf("summary %q not found", name), name)
}

// MissingColumnError reports a summary that the loaded dataset cannot support
func MissingColumnError(column, summary string) *APIError {
	return NewWithDetails(
		http.StatusUnprocessableEntity,
		CodeMissingColumn,
		fmt.Sprintf("the loaded dataset has no %q column, required by %s", column, summary),
		map[string]string{"column": column, "summary": summary},
	)
}

// ExportError wraps a failure while writing an export
func ExportError(err error) *APIError {
	return NewWithDetails(http.StatusInternalServerError, CodeExportFailed, "Failed to write export", err.Error())
}
