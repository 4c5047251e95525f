package api

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/portico-hosting/portico/internal/registry"
	"github.com/portico-hosting/portico/models"
)

// parsePagination parses limit and offset from query parameters.
// Default limit is 100, default offset is 0.
// Maximum limit is 1000 to prevent excessive memory usage.
func parsePagination(c echo.Context) (limit, offset int) {
	// Parse limit with default of 100
	limit = 100
	if limitParam := c.QueryParam("limit"); limitParam != "" {
		if parsed, err := strconv.Atoi(limitParam); err == nil && parsed > 0 {
			limit = parsed
			// Cap at 1000
			if limit > 1000 {
				limit = 1000
			}
		}
	}

	// Parse offset with default of 0
	offset = 0
	if offsetParam := c.QueryParam("offset"); offsetParam != "" {
		if parsed, err := strconv.Atoi(offsetParam); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	return limit, offset
}

// parsePageWindow parses the 1-based page and limit query parameters used by
// the partitioned pool views. The raw values go to the registry untouched;
// the pager owns the defaults and caps, so every caller agrees on them.
func parsePageWindow(c echo.Context) (page, limit int) {
	page = 1
	if pageParam := c.QueryParam("page"); pageParam != "" {
		if parsed, err := strconv.Atoi(pageParam); err == nil {
			page = parsed
		}
	}

	limit = 0
	if limitParam := c.QueryParam("limit"); limitParam != "" {
		if parsed, err := strconv.Atoi(limitParam); err == nil {
			limit = parsed
		}
	}

	return page, limit
}

// paginateSliceNodeViews applies pagination to a slice of node views.
func paginateSliceNodeViews(views []*registry.NodeView, limit, offset int) []*registry.NodeView {
	// Handle edge cases
	if offset >= len(views) {
		return []*registry.NodeView{}
	}

	end := offset + limit
	if end > len(views) {
		end = len(views)
	}

	return views[offset:end]
}

// paginateSliceWorkloads applies pagination to a slice of workloads.
func paginateSliceWorkloads(workloads []*models.Workload, limit, offset int) []*models.Workload {
	// Handle edge cases
	if offset >= len(workloads) {
		return []*models.Workload{}
	}

	end := offset + limit
	if end > len(workloads) {
		end = len(workloads)
	}

	return workloads[offset:end]
}
