package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/portico-hosting/portico/internal/validation"
)

// validateNode validates a node JSON-LD document
func (s *Server) validateNode(c echo.Context) error {
	// Read request body
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Failed to read request body",
		})
	}

	// Create validator
	validator := validation.New()

	// Validate node
	result, err := validator.ValidateNode(body)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Validation error",
			Details: err.Error(),
		})
	}

	// Return validation result
	if result.Valid {
		return c.JSON(http.StatusOK, result)
	}

	return c.JSON(http.StatusBadRequest, result)
}

// validateAllocation validates an allocation JSON-LD document
func (s *Server) validateAllocation(c echo.Context) error {
	// Read request body
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Failed to read request body",
		})
	}

	// Create validator
	validator := validation.New()

	// Validate allocation
	result, err := validator.ValidateAllocation(body)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Validation error",
			Details: err.Error(),
		})
	}

	// Return validation result
	if result.Valid {
		return c.JSON(http.StatusOK, result)
	}

	return c.JSON(http.StatusBadRequest, result)
}

// validateWorkload validates a workload JSON-LD document
func (s *Server) validateWorkload(c echo.Context) error {
	// Read request body
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Failed to read request body",
		})
	}

	// Create validator
	validator := validation.New()

	// Validate workload
	result, err := validator.ValidateWorkload(body)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Validation error",
			Details: err.Error(),
		})
	}

	// Return validation result
	if result.Valid {
		return c.JSON(http.StatusOK, result)
	}

	return c.JSON(http.StatusBadRequest, result)
}

// validateGeneric validates a generic JSON-LD document based on type
func (s *Server) validateGeneric(c echo.Context) error {
	entityType := c.Param("type")

	// Read request body
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Failed to read request body",
		})
	}

	// Create validator
	validator := validation.New()

	// Validate based on type
	var result *validation.ValidationResult
	switch entityType {
	case "node":
		result, err = validator.ValidateNode(body)
	case "allocation":
		result, err = validator.ValidateAllocation(body)
	case "workload":
		result, err = validator.ValidateWorkload(body)
	default:
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid entity type",
			Details: "Type must be 'node', 'allocation' or 'workload'",
		})
	}

	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Validation error",
			Details: err.Error(),
		})
	}

	// Return validation result
	if result.Valid {
		return c.JSON(http.StatusOK, result)
	}

	return c.JSON(http.StatusBadRequest, result)
}

// validationDetails flattens field errors into one details string.
func validationDetails(errs []validation.ValidationError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return strings.Join(parts, "; ")
}
