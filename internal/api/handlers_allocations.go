package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// CreateAllocationRequest describes either one endpoint or a port range to
// add to a node's pool. Port and rangeStart/rangeEnd are mutually exclusive.
type CreateAllocationRequest struct {
	BindAddress string `json:"bindAddress"`
	Port        int    `json:"port,omitempty"`
	RangeStart  int    `json:"rangeStart,omitempty"`
	RangeEnd    int    `json:"rangeEnd,omitempty"`
	Alias       string `json:"alias,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// getNodePool handles GET /api/v1/nodes/:id/allocations
// @Summary Get one page of a node's allocation pool
// @Description Render the partitioned pool view: assigned allocations first, then unassigned, under one continuous page window. The page clamps to the last non-empty page after deletions.
// @Tags Allocations
// @Accept json
// @Produce json
// @Param id path string true "Node ID"
// @Param page query int false "1-based page number" default(1)
// @Param limit query int false "Page size" default(100)
// @Success 200 {object} PoolPageResponse
// @Failure 404 {object} ErrorResponse
// @Router /nodes/{id}/allocations [get]
func (s *Server) getNodePool(c echo.Context) error {
	id := c.Param("id")
	page, limit := parsePageWindow(c)

	view, err := s.registry.Page(id, page, limit)
	if err != nil {
		return domainError(err, "Node", id)
	}

	return c.JSON(http.StatusOK, PoolPageResponse{
		View:       view,
		TotalPages: view.TotalPages(),
	})
}

// createAllocations handles POST /api/v1/nodes/:id/allocations
// @Summary Add allocations to a node's pool
// @Description Create a single endpoint, or every missing port of a range. Range creation is idempotent: ports already in the pool are skipped and only the newly created allocations are returned. A single create returns the allocation itself.
// @Tags Allocations
// @Accept json
// @Produce json
// @Param id path string true "Node ID"
// @Param request body CreateAllocationRequest true "Endpoint or range to add"
// @Success 201 {object} AllocationsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /nodes/{id}/allocations [post]
func (s *Server) createAllocations(c echo.Context) error {
	id := c.Param("id")

	var req CreateAllocationRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestError("Invalid request body", "Failed to parse JSON: "+err.Error())
	}

	isRange := req.RangeStart != 0 || req.RangeEnd != 0
	if isRange && req.Port != 0 {
		return BadRequestError(
			"Invalid allocation request",
			"Specify either port or rangeStart/rangeEnd, not both",
		)
	}

	// Argument validation lives in the pool manager; anything it refuses
	// comes back as a 400 through the domain error mapping.
	if isRange {
		created, err := s.registry.CreateAllocationRange(
			c.Request().Context(), id, req.BindAddress, req.RangeStart, req.RangeEnd, req.Alias, req.Notes)
		if err != nil {
			return domainError(err, "Node", id)
		}

		s.BroadcastEvent(EventAllocationCreated, created)

		return c.JSON(http.StatusCreated, AllocationsResponse{
			Count:       len(created),
			Allocations: created,
		})
	}

	alloc, err := s.registry.CreateAllocation(
		c.Request().Context(), id, req.BindAddress, req.Port, req.Alias, req.Notes)
	if err != nil {
		return domainError(err, "Node", id)
	}

	s.BroadcastEvent(EventAllocationCreated, alloc)

	return c.JSON(http.StatusCreated, alloc)
}

// deleteAllocation handles DELETE /api/v1/nodes/:id/allocations/:allocationId
// @Summary Delete an unassigned allocation
// @Description Remove one allocation from a node's pool. An allocation bound by an active workload is refused with a conflict.
// @Tags Allocations
// @Accept json
// @Produce json
// @Param id path string true "Node ID"
// @Param allocationId path string true "Allocation ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /nodes/{id}/allocations/{allocationId} [delete]
func (s *Server) deleteAllocation(c echo.Context) error {
	id := c.Param("id")
	allocationID := c.Param("allocationId")

	if err := s.registry.DeleteAllocation(c.Request().Context(), id, allocationID); err != nil {
		return domainError(err, "Allocation", allocationID)
	}

	s.BroadcastEvent(EventAllocationDeleted, map[string]string{
		"id":     allocationID,
		"nodeId": id,
	})

	return c.JSON(http.StatusOK, MessageResponse{
		Message: "allocation deleted successfully",
		ID:      allocationID,
	})
}
