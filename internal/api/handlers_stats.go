package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/portico-hosting/portico/internal/resources"
)

// getStatistics handles GET /api/v1/stats
func (s *Server) getStatistics(c echo.Context) error {
	stats, err := s.storage.GetStatistics()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "failed to get statistics",
			Details: err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"totalNodes":             stats.TotalNodes,
		"onlineNodes":            stats.OnlineNodes,
		"totalAllocations":       stats.TotalAllocations,
		"assignedAllocations":    stats.AssignedAllocations,
		"totalWorkloads":         stats.TotalWorkloads,
		"activeWorkloads":        stats.ActiveWorkloads,
		"nodesWithWorkloads":     len(stats.NodeWorkloadCounts),
		"allocationDistribution": stats.NodeAllocationCounts,
		"workloadDistribution":   stats.NodeWorkloadCounts,
		"appliedPlans":           stats.AppliedPlans,
	})
}

// getNodeCount handles GET /api/v1/stats/nodes/count
func (s *Server) getNodeCount(c echo.Context) error {
	// Parse filters from query params
	filters := make(map[string]string)

	if online := c.QueryParam("online"); online != "" {
		filters["online"] = online
	}
	if datacenter := c.QueryParam("datacenter"); datacenter != "" {
		filters["location"] = datacenter
	}

	nodes, err := s.storage.ListNodes(filters)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "failed to count nodes",
			Details: err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"count":   len(nodes),
		"filters": filters,
	})
}

// getWorkloadCount handles GET /api/v1/stats/workloads/count
func (s *Server) getWorkloadCount(c echo.Context) error {
	// Parse filters from query params
	filters := make(map[string]string)

	if status := c.QueryParam("status"); status != "" {
		filters["status"] = status
	}
	if nodeID := c.QueryParam("node"); nodeID != "" {
		filters["nodeId"] = nodeID
	}

	workloads, err := s.storage.ListWorkloads(filters)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "failed to count workloads",
			Details: err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"count":   len(workloads),
		"filters": filters,
	})
}

// getFleetUsage handles GET /api/v1/stats/usage
func (s *Server) getFleetUsage(c echo.Context) error {
	views := s.registry.List()

	// Sum the per-node aggregations into one fleet total
	fleet := resources.Usage{}
	perNode := make(map[string]*resources.Usage, len(views))
	maxWorkloadsPerNode := 0

	for _, view := range views {
		usage := view.Usage
		if usage == nil {
			continue
		}
		perNode[view.Node.ID] = usage

		fleet.Workloads += usage.Workloads
		fleet.CPUAllocated += usage.CPUAllocated
		fleet.MemoryAllocated += usage.MemoryAllocated
		fleet.DiskAllocated += usage.DiskAllocated
		if usage.Workloads > maxWorkloadsPerNode {
			maxWorkloadsPerNode = usage.Workloads
		}
	}

	avgWorkloadsPerNode := float64(0)
	if len(views) > 0 {
		avgWorkloadsPerNode = float64(fleet.Workloads) / float64(len(views))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"totalNodes":          len(views),
		"totalWorkloads":      fleet.Workloads,
		"cpuAllocated":        fleet.CPUAllocated,
		"memoryAllocated":     fleet.MemoryAllocated,
		"diskAllocated":       fleet.DiskAllocated,
		"maxWorkloadsPerNode": maxWorkloadsPerNode,
		"avgWorkloadsPerNode": avgWorkloadsPerNode,
		"perNode":             perNode,
	})
}
