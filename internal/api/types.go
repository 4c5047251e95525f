package api

import (
	"github.com/portico-hosting/portico/internal/paging"
	"github.com/portico-hosting/portico/internal/registry"
	"github.com/portico-hosting/portico/models"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// MessageResponse represents a simple message response.
type MessageResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

// BlockedResponse reports a node deletion refused because workloads still
// reference the node. The string code keeps it distinguishable from a plain
// conflict; the context carries the live workload count.
type BlockedResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Context map[string]int `json:"context"`
}

// PaginatedNodesResponse represents a page of the node fleet.
type PaginatedNodesResponse struct {
	Count  int                  `json:"count"`
	Total  int                  `json:"total"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
	Nodes  []*registry.NodeView `json:"nodes"`
}

// PaginatedWorkloadsResponse represents a page of workloads.
type PaginatedWorkloadsResponse struct {
	Count     int                `json:"count"`
	Total     int                `json:"total"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
	Workloads []*models.Workload `json:"workloads"`
}

// WorkloadsResponse represents a plain list of workloads.
type WorkloadsResponse struct {
	Count     int                `json:"count"`
	Workloads []*models.Workload `json:"workloads"`
}

// AllocationsResponse represents a list of allocations, as returned by a
// range creation: only the newly created subset.
type AllocationsResponse struct {
	Count       int                  `json:"count"`
	Allocations []*models.Allocation `json:"allocations"`
}

// PoolPageResponse is one rendered page of a node's partitioned pool.
type PoolPageResponse struct {
	*paging.View
	TotalPages int `json:"totalPages"`
}

// NoticesResponse represents the current notice queue.
type NoticesResponse struct {
	Count   int              `json:"count"`
	Notices []*models.Notice `json:"notices"`
}

// PlanRecordsResponse represents applied plan records, most recent first.
type PlanRecordsResponse struct {
	Count int                  `json:"count"`
	Plans []*models.PlanRecord `json:"plans"`
}
