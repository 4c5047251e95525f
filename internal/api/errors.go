package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/portico-hosting/portico/internal/pool"
	"github.com/portico-hosting/portico/internal/storage"
)

// APIError represents a structured API error with HTTP status code.
type APIError struct {
	Code       int                    `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	FieldError map[string]string      `json:"field_errors,omitempty"`
	Context    map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

// NewAPIError creates a new API error.
func NewAPIError(code int, message string, details string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// Common error constructors
func BadRequestError(message, details string) *APIError {
	return NewAPIError(http.StatusBadRequest, message, details)
}

func NotFoundError(resource, id string) *APIError {
	return &APIError{
		Code:    http.StatusNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Context: map[string]interface{}{"id": id},
	}
}

func ValidationError(message string, fieldErrors map[string]string) *APIError {
	return &APIError{
		Code:       http.StatusBadRequest,
		Message:    message,
		FieldError: fieldErrors,
	}
}

func InternalError(message, details string) *APIError {
	return NewAPIError(http.StatusInternalServerError, message, details)
}

func ConflictError(message, details string) *APIError {
	return NewAPIError(http.StatusConflict, message, details)
}

// domainError maps the storage and pool sentinel errors onto the API error
// taxonomy: missing documents to 404, duplicate endpoints and refused deletes
// to 409, rejected arguments to 400. Anything unrecognized is a 500. The
// blocked node-delete outcome is not mapped here; it carries a workload count
// and handlers present it separately.
func domainError(err error, resource, id string) *APIError {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return NotFoundError(resource, id)
	case errors.Is(err, storage.ErrConflict):
		return ConflictError("Endpoint already allocated", err.Error())
	case errors.Is(err, storage.ErrNameTaken):
		return ConflictError("Node name already in use", err.Error())
	case errors.Is(err, storage.ErrAllocationAssigned):
		return ConflictError("Allocation has an active workload", err.Error())
	case errors.Is(err, pool.ErrInvalidArgument):
		return BadRequestError("Invalid argument", err.Error())
	default:
		return InternalError("Operation failed", err.Error())
	}
}

// HTTPErrorHandler is a custom error handler for Echo.
func HTTPErrorHandler(err error, c echo.Context) {
	// Don't send response if already sent
	if c.Response().Committed {
		return
	}

	var apiErr *APIError
	code := http.StatusInternalServerError

	// Check if it's an Echo HTTPError
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		apiErr = &APIError{
			Code:    code,
			Message: getHTTPMessage(code),
			Details: fmt.Sprintf("%v", he.Message),
		}
	} else if ae, ok := err.(*APIError); ok {
		// It's already an APIError
		apiErr = ae
		code = ae.Code
	} else {
		// Generic error
		apiErr = &APIError{
			Code:    code,
			Message: "Internal server error",
			Details: err.Error(),
		}
	}

	// Don't expose internal errors in production
	if code == http.StatusInternalServerError && !c.Echo().Debug {
		apiErr.Details = "An internal error occurred. Please try again later."
	}

	// Send JSON response
	if err := c.JSON(code, apiErr); err != nil {
		c.Logger().Error(err)
	}
}

// getHTTPMessage returns a user-friendly message for HTTP status codes.
func getHTTPMessage(code int) string {
	messages := map[int]string{
		http.StatusBadRequest:          "Bad request",
		http.StatusUnauthorized:        "Unauthorized",
		http.StatusForbidden:           "Forbidden",
		http.StatusNotFound:            "Resource not found",
		http.StatusMethodNotAllowed:    "Method not allowed",
		http.StatusConflict:            "Conflict",
		http.StatusUnprocessableEntity: "Unprocessable entity",
		http.StatusTooManyRequests:     "Too many requests",
		http.StatusInternalServerError: "Internal server error",
		http.StatusBadGateway:          "Bad gateway",
		http.StatusServiceUnavailable:  "Service unavailable",
	}

	if msg, ok := messages[code]; ok {
		return msg
	}
	return http.StatusText(code)
}
