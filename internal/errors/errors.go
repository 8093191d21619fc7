// Package errors defines the typed error values the HTTP layer renders.
// The extraction pipeline's own taxonomy (file-level vs row-level) maps
// onto these at the transport boundary: file-level failures become 4xx
// responses, row-level failures stay diagnostics inside a 200.
package errors

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// APIError is a structured API error response.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// Render implements render.Renderer for chi/render.
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// New creates a new APIError.
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{StatusCode: statusCode, ErrorCode: errorCode, Message: message}
}

// NewWithDetails creates a new APIError with additional details.
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{StatusCode: statusCode, ErrorCode: errorCode, Message: message, Details: details}
}

// Predefined error values for common scenarios.
var (
	ErrInvalidRequest = New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	ErrUnauthorized   = New(http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	ErrForbidden      = New(http.StatusForbidden, "FORBIDDEN", "You are not authorized to access this resource")
	ErrNotFound       = New(http.StatusNotFound, "NOT_FOUND", "Resource not found")
	ErrConflict       = New(http.StatusConflict, "CONFLICT", "Resource already exists")
	ErrInternalServer = New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
)

// InvalidRequestWithError creates an invalid request error carrying the
// underlying cause.
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format", err.Error())
}

// UnsupportedFormatError reports a result-sheet upload in an extension the
// pipeline has no extractor for.
func UnsupportedFormatError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, "UNSUPPORTED_FORMAT", "Unsupported file format", err.Error())
}

// ExtractionFailedError reports a file-level extraction failure.
func ExtractionFailedError(err error) *APIError {
	return NewWithDetails(http.StatusUnprocessableEntity, "EXTRACTION_FAILED", "Could not extract results from file", err.Error())
}

// NotFoundError creates a not found error naming the missing resource.
func NotFoundError(resource string) *APIError {
	return New(http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("%s not found", resource))
}

// ValidationError creates a validation error with field details.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrValidation creates a validation error for one field.
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", ValidationError{
		Field:   field,
		Message: message,
	})
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

// NewErrorResponse wraps an APIError in the standard envelope.
func NewErrorResponse(err *APIError) *ErrorResponse {
	return &ErrorResponse{Success: false, Error: err}
}

// Render implements render.Renderer.
func (e *ErrorResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return e.Error.Render(w, r)
}
