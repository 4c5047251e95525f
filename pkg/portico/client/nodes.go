package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/portico-hosting/portico/models"
)

// ListNodes returns one page of the fleet snapshot. A nil query lists
// everything with the server's default page size.
func (c *Client) ListNodes(ctx context.Context, q *NodeQuery) (*NodePage, error) {
	params := url.Values{}
	if q != nil {
		if q.State != "" {
			params.Set("status", q.State)
		}
		if q.Datacenter != "" {
			params.Set("datacenter", q.Datacenter)
		}
		if q.Limit > 0 {
			params.Set("limit", strconv.Itoa(q.Limit))
		}
		if q.Offset > 0 {
			params.Set("offset", strconv.Itoa(q.Offset))
		}
	}

	path := "/api/v1/nodes"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var page NodePage
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetNode returns one node's view: the node, its pool, and its state.
func (c *Client) GetNode(ctx context.Context, id string) (*NodeView, error) {
	var view NodeView
	if err := c.do(ctx, http.MethodGet, "/api/v1/nodes/"+url.PathEscape(id), nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// CreateNode registers a node and returns it with its assigned ID.
func (c *Client) CreateNode(ctx context.Context, node *models.Node) (*models.Node, error) {
	var created models.Node
	if err := c.do(ctx, http.MethodPost, "/api/v1/nodes", node, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateNode replaces a node's operator-editable fields.
func (c *Client) UpdateNode(ctx context.Context, node *models.Node) (*models.Node, error) {
	if node.ID == "" {
		return nil, fmt.Errorf("node ID is required")
	}

	var updated models.Node
	if err := c.do(ctx, http.MethodPut, "/api/v1/nodes/"+url.PathEscape(node.ID), node, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteNode removes a node and its pool. A node still hosting workloads is
// refused with *BlockedError.
func (c *Client) DeleteNode(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/nodes/"+url.PathEscape(id), nil, nil)
}

// SelectNode marks a node as the operator's working node.
func (c *Client) SelectNode(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/nodes/"+url.PathEscape(id)+"/select", nil, nil)
}

// SelectedNode returns the currently selected node's view.
func (c *Client) SelectedNode(ctx context.Context) (*NodeView, error) {
	var view NodeView
	if err := c.do(ctx, http.MethodGet, "/api/v1/nodes/selected", nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// ClearSelection clears the working node.
func (c *Client) ClearSelection(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/nodes/selected", nil, nil)
}

// ProbeNode checks a node's daemon immediately, outside the sweep schedule.
// An unreachable daemon is a result, not an error.
func (c *Client) ProbeNode(ctx context.Context, id string) (*ProbeResult, error) {
	var result ProbeResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/nodes/"+url.PathEscape(id)+"/probe", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// NodeUsage returns the summed resource commitments of a node's workloads.
func (c *Client) NodeUsage(ctx context.Context, id string) (*NodeUsage, error) {
	var usage NodeUsage
	if err := c.do(ctx, http.MethodGet, "/api/v1/nodes/"+url.PathEscape(id)+"/usage", nil, &usage); err != nil {
		return nil, err
	}
	return &usage, nil
}

// NodeWorkloads lists the workloads hosted on a node.
func (c *Client) NodeWorkloads(ctx context.Context, id string) ([]*models.Workload, error) {
	var listing struct {
		Workloads []*models.Workload `json:"workloads"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/nodes/"+url.PathEscape(id)+"/workloads", nil, &listing); err != nil {
		return nil, err
	}
	return listing.Workloads, nil
}

// Pool returns one page of a node's allocation pool. Pages are 1-based;
// limit 0 uses the server default.
func (c *Client) Pool(ctx context.Context, nodeID string, page, limit int) (*PoolPage, error) {
	params := url.Values{}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	path := "/api/v1/nodes/" + url.PathEscape(nodeID) + "/allocations"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var pool PoolPage
	if err := c.do(ctx, http.MethodGet, path, nil, &pool); err != nil {
		return nil, err
	}
	return &pool, nil
}

type allocationRequest struct {
	BindAddress string `json:"bindAddress"`
	Port        int    `json:"port,omitempty"`
	RangeStart  int    `json:"rangeStart,omitempty"`
	RangeEnd    int    `json:"rangeEnd,omitempty"`
	Alias       string `json:"alias,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// CreateAllocation adds one endpoint to a node's pool.
func (c *Client) CreateAllocation(ctx context.Context, nodeID, bindAddress string, port int, alias, notes string) (*models.Allocation, error) {
	req := allocationRequest{
		BindAddress: bindAddress,
		Port:        port,
		Alias:       alias,
		Notes:       notes,
	}

	var alloc models.Allocation
	if err := c.do(ctx, http.MethodPost, "/api/v1/nodes/"+url.PathEscape(nodeID)+"/allocations", req, &alloc); err != nil {
		return nil, err
	}
	return &alloc, nil
}

// CreateAllocationRange adds every missing port of [start, end] to a node's
// pool and returns only the newly created allocations. Ports already in the
// pool are skipped, so re-applying a range is safe.
func (c *Client) CreateAllocationRange(ctx context.Context, nodeID, bindAddress string, start, end int, alias, notes string) ([]*models.Allocation, error) {
	req := allocationRequest{
		BindAddress: bindAddress,
		RangeStart:  start,
		RangeEnd:    end,
		Alias:       alias,
		Notes:       notes,
	}

	var created struct {
		Count       int                  `json:"count"`
		Allocations []*models.Allocation `json:"allocations"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/nodes/"+url.PathEscape(nodeID)+"/allocations", req, &created); err != nil {
		return nil, err
	}
	return created.Allocations, nil
}

// DeleteAllocation removes one unassigned allocation from a node's pool.
func (c *Client) DeleteAllocation(ctx context.Context, nodeID, allocationID string) error {
	path := "/api/v1/nodes/" + url.PathEscape(nodeID) + "/allocations/" + url.PathEscape(allocationID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}
