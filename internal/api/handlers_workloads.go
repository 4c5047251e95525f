package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/portico-hosting/portico/internal/storage"
	"github.com/portico-hosting/portico/models"
)

// listWorkloads handles GET /api/v1/workloads
func (s *Server) listWorkloads(c echo.Context) error {
	// Parse query parameters
	filters := make(map[string]string)

	if status := c.QueryParam("status"); status != "" {
		filters["status"] = status
	}
	if nodeID := c.QueryParam("node"); nodeID != "" {
		filters["nodeId"] = nodeID
	}

	// Parse pagination parameters
	limit, offset := parsePagination(c)

	workloads, err := s.storage.ListWorkloads(filters)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "failed to list workloads",
			Details: err.Error(),
		})
	}

	// Get total count before pagination
	total := len(workloads)

	// Apply pagination
	workloads = paginateSliceWorkloads(workloads, limit, offset)

	return c.JSON(http.StatusOK, PaginatedWorkloadsResponse{
		Count:     len(workloads),
		Total:     total,
		Limit:     limit,
		Offset:    offset,
		Workloads: workloads,
	})
}

// getWorkload handles GET /api/v1/workloads/:id
func (s *Server) getWorkload(c echo.Context) error {
	id := c.Param("id")

	workload, err := s.storage.GetWorkload(id)
	if err != nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "workload not found",
			Details: err.Error(),
		})
	}

	return c.JSON(http.StatusOK, workload)
}

// syncWorkload handles PUT /api/v1/workloads/:id
//
// Workload lifecycle is owned by the application layer and the node agents;
// this endpoint only records the pushed state. The upsert refreshes the
// registry, which recomputes the assigned projection and the per-node
// aggregation from the new bindings.
func (s *Server) syncWorkload(c echo.Context) error {
	id := c.Param("id")

	var workload models.Workload
	if err := c.Bind(&workload); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid request body",
			Details: err.Error(),
		})
	}

	// The URL ID wins over whatever the body carries
	workload.ID = id

	if result := s.validator.CheckWorkload(&workload); !result.Valid {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid workload document",
			Details: validationDetails(result.Errors),
		})
	}

	// Refuse references to unknown nodes so orphans cannot enter through
	// the API; integrity repair covers drift from outside edits
	if _, err := s.storage.GetNode(workload.NodeID); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "unknown node",
			Details: err.Error(),
		})
	}

	if err := s.registry.SaveWorkload(c.Request().Context(), &workload); err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "failed to sync workload",
			Details: err.Error(),
		})
	}

	// Broadcast WebSocket event
	s.BroadcastEvent(EventWorkloadSynced, workload)

	return c.JSON(http.StatusOK, workload)
}

// deleteWorkload handles DELETE /api/v1/workloads/:id
func (s *Server) deleteWorkload(c echo.Context) error {
	id := c.Param("id")

	if err := s.registry.DeleteWorkload(c.Request().Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "workload not found",
				Details: err.Error(),
			})
		}
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "failed to delete workload",
			Details: err.Error(),
		})
	}

	// Broadcast WebSocket event
	s.BroadcastEvent(EventWorkloadDeleted, map[string]string{"id": id})

	return c.JSON(http.StatusOK, MessageResponse{
		Message: "workload deleted successfully",
		ID:      id,
	})
}

// listNodeWorkloads handles GET /api/v1/nodes/:id/workloads
func (s *Server) listNodeWorkloads(c echo.Context) error {
	id := c.Param("id")

	if _, ok := s.registry.View(id); !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "node not found",
			Details: "no node with id " + id,
		})
	}

	workloads, err := s.storage.ListWorkloadsByNode(id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "failed to list workloads",
			Details: err.Error(),
		})
	}

	return c.JSON(http.StatusOK, WorkloadsResponse{
		Count:     len(workloads),
		Workloads: workloads,
	})
}
