package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/portico-hosting/portico/internal/registry"
	"github.com/portico-hosting/portico/internal/storage"
	"github.com/portico-hosting/portico/models"
)

// listNodes handles GET /api/v1/nodes
func (s *Server) listNodes(c echo.Context) error {
	// Filters apply to the registry snapshot, not storage: state is a
	// probe-derived field that only the snapshot has.
	status := c.QueryParam("status")
	datacenter := c.QueryParam("datacenter")

	// Parse pagination parameters
	limit, offset := parsePagination(c)

	views := s.registry.List()

	filtered := make([]*registry.NodeView, 0, len(views))
	for _, view := range views {
		if status != "" && string(view.State) != status {
			continue
		}
		if datacenter != "" && view.Node.Datacenter != datacenter {
			continue
		}
		filtered = append(filtered, view)
	}

	// Get total count before pagination
	total := len(filtered)

	// Apply pagination
	filtered = paginateSliceNodeViews(filtered, limit, offset)

	return c.JSON(http.StatusOK, PaginatedNodesResponse{
		Count:  len(filtered),
		Total:  total,
		Limit:  limit,
		Offset: offset,
		Nodes:  filtered,
	})
}

// getNode handles GET /api/v1/nodes/:id
func (s *Server) getNode(c echo.Context) error {
	id := c.Param("id")

	view, ok := s.registry.View(id)
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "node not found",
			Details: "no node with id " + id,
		})
	}

	return c.JSON(http.StatusOK, view)
}

// createNode handles POST /api/v1/nodes
func (s *Server) createNode(c echo.Context) error {
	var node models.Node

	if err := c.Bind(&node); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid request body",
			Details: err.Error(),
		})
	}

	// Validate name, fqdn and port before touching storage
	if result := s.validator.CheckNode(&node); !result.Valid {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid node document",
			Details: validationDetails(result.Errors),
		})
	}

	// The registry mints the ID and refreshes the snapshot
	if err := s.registry.CreateNode(c.Request().Context(), &node); err != nil {
		if errors.Is(err, storage.ErrNameTaken) {
			return c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "node name already in use",
				Details: err.Error(),
			})
		}
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "failed to create node",
			Details: err.Error(),
		})
	}

	// Broadcast WebSocket event
	s.BroadcastEvent(EventNodeCreated, node)

	return c.JSON(http.StatusCreated, node)
}

// updateNode handles PUT /api/v1/nodes/:id
func (s *Server) updateNode(c echo.Context) error {
	id := c.Param("id")

	// Check if node exists
	existing, err := s.storage.GetNode(id)
	if err != nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "node not found",
			Details: err.Error(),
		})
	}

	var node models.Node
	if err := c.Bind(&node); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid request body",
			Details: err.Error(),
		})
	}

	// Preserve the ID. The prober owns the status snapshot and the
	// connection key is minted externally, so neither can be replaced
	// through an update; an omitted key keeps the stored one.
	node.ID = id
	node.Online = existing.Online
	node.LastChecked = existing.LastChecked
	if node.ConnectionKey == "" {
		node.ConnectionKey = existing.ConnectionKey
	}

	if result := s.validator.CheckNode(&node); !result.Valid {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid node document",
			Details: validationDetails(result.Errors),
		})
	}

	// Update node
	if err := s.registry.UpdateNode(c.Request().Context(), &node); err != nil {
		if errors.Is(err, storage.ErrNameTaken) {
			return c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "node name already in use",
				Details: err.Error(),
			})
		}
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "failed to update node",
			Details: err.Error(),
		})
	}

	// Broadcast WebSocket event
	s.BroadcastEvent(EventNodeUpdated, node)

	return c.JSON(http.StatusOK, node)
}

// deleteNode handles DELETE /api/v1/nodes/:id
func (s *Server) deleteNode(c echo.Context) error {
	id := c.Param("id")

	if err := s.registry.DeleteNode(c.Request().Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "node not found",
				Details: err.Error(),
			})
		}

		// A node hosting workloads is blocked, not conflicted: the
		// response carries the live workload count so the caller can
		// tell the user what stands in the way.
		var inUse *storage.NodeInUseError
		if errors.As(err, &inUse) {
			return c.JSON(http.StatusConflict, BlockedResponse{
				Code:    "BLOCKED",
				Message: inUse.Error(),
				Context: map[string]int{"workloads": inUse.Workloads},
			})
		}

		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "failed to delete node",
			Details: err.Error(),
		})
	}

	// Broadcast WebSocket event
	s.BroadcastEvent(EventNodeDeleted, map[string]string{"id": id})

	return c.JSON(http.StatusOK, MessageResponse{
		Message: "node deleted successfully",
		ID:      id,
	})
}

// probeNode handles POST /api/v1/nodes/:id/probe
func (s *Server) probeNode(c echo.Context) error {
	id := c.Param("id")

	// An unreachable daemon is a result, not an error: the node goes
	// offline and the result says why.
	result, err := s.registry.ProbeNode(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "node not found",
				Details: err.Error(),
			})
		}
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "failed to probe node",
			Details: err.Error(),
		})
	}

	// Broadcast WebSocket event
	s.BroadcastEvent(EventNodeProbed, result)

	return c.JSON(http.StatusOK, result)
}

// getNodeUsage handles GET /api/v1/nodes/:id/usage
func (s *Server) getNodeUsage(c echo.Context) error {
	id := c.Param("id")

	view, ok := s.registry.View(id)
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "node not found",
			Details: "no node with id " + id,
		})
	}

	return c.JSON(http.StatusOK, view.Usage)
}

// selectNode handles POST /api/v1/nodes/:id/select
func (s *Server) selectNode(c echo.Context) error {
	id := c.Param("id")

	if err := s.registry.Select(id); err != nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "node not found",
			Details: err.Error(),
		})
	}

	return c.JSON(http.StatusOK, MessageResponse{
		Message: "node selected",
		ID:      id,
	})
}

// getSelectedNode handles GET /api/v1/nodes/selected
func (s *Server) getSelectedNode(c echo.Context) error {
	view := s.registry.Selected()
	if view == nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "no node selected",
		})
	}

	return c.JSON(http.StatusOK, view)
}

// clearSelectedNode handles DELETE /api/v1/nodes/selected
func (s *Server) clearSelectedNode(c echo.Context) error {
	s.registry.ClearSelection()

	return c.JSON(http.StatusOK, MessageResponse{
		Message: "selection cleared",
	})
}
