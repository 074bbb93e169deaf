package errors

import (
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

// WithDetails returns a copy of e carrying details, leaving e untouched so
// the predefined errors below stay shareable.
func (e *APIError) WithDetails(details interface{}) *APIError {
	c := *e
	c.Details = details
	return &c
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError describes one invalid request field
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag,omitempty"`
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
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeValidationFailed     = "VALIDATION_FAILED"
	CodeUnsupportedMediaType = "UNSUPPORTED_MEDIA_TYPE"
	CodeRateLimitExceeded    = "RATE_LIMIT_EXCEEDED"
	CodeServiceUnavailable   = "SERVICE_UNAVAILABLE"
	CodeWebSocketUpgrade     = "WEBSOCKET_UPGRADE_FAILED"
)

// Predefined error types for common scenarios
var (
	ErrInvalidRequest       = New(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format")
	ErrValidationFailed     = New(http.StatusBadRequest, CodeValidationFailed, "Request validation failed")
	ErrUnsupportedMediaType = New(http.StatusUnsupportedMediaType, CodeUnsupportedMediaType, "Unsupported content type")
	ErrRateLimitExceeded    = New(http.StatusTooManyRequests, CodeRateLimitExceeded, "Rate limit exceeded")
	ErrServiceUnavailable   = New(http.StatusServiceUnavailable, CodeServiceUnavailable, "Service temporarily unavailable")
	ErrWebSocketUpgrade     = New(http.StatusBadRequest, CodeWebSocketUpgrade, "WebSocket upgrade failed")
)

// InvalidRequestWithError creates an invalid request error carrying the decode error
func InvalidRequestWithError(err error) *APIError {
	return ErrInvalidRequest.WithDetails(err.Error())
}

// NewValidationErrors creates a validation error from multiple fields
func NewValidationErrors(errs []ValidationError) *APIError {
	return ErrValidationFailed.WithDetails(ValidationErrors{Errors: errs})
}
