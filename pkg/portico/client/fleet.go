package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/portico-hosting/portico/models"
)

// ListWorkloads returns one page of workloads across the fleet. A nil query
// lists everything with the server's default page size.
func (c *Client) ListWorkloads(ctx context.Context, q *WorkloadQuery) (*WorkloadPage, error) {
	params := url.Values{}
	if q != nil {
		if q.Status != "" {
			params.Set("status", q.Status)
		}
		if q.NodeID != "" {
			params.Set("node", q.NodeID)
		}
		if q.Limit > 0 {
			params.Set("limit", strconv.Itoa(q.Limit))
		}
		if q.Offset > 0 {
			params.Set("offset", strconv.Itoa(q.Offset))
		}
	}

	path := "/api/v1/workloads"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var page WorkloadPage
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetWorkload returns one workload.
func (c *Client) GetWorkload(ctx context.Context, id string) (*models.Workload, error) {
	var workload models.Workload
	if err := c.do(ctx, http.MethodGet, "/api/v1/workloads/"+url.PathEscape(id), nil, &workload); err != nil {
		return nil, err
	}
	return &workload, nil
}

// SyncWorkload upserts a workload's state. This is the agent push path and
// requires an agent credential.
func (c *Client) SyncWorkload(ctx context.Context, workload *models.Workload) (*models.Workload, error) {
	if workload.ID == "" {
		return nil, fmt.Errorf("workload ID is required")
	}

	var synced models.Workload
	if err := c.do(ctx, http.MethodPut, "/api/v1/workloads/"+url.PathEscape(workload.ID), workload, &synced); err != nil {
		return nil, err
	}
	return &synced, nil
}

// DeleteWorkload removes a workload record.
func (c *Client) DeleteWorkload(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/workloads/"+url.PathEscape(id), nil, nil)
}

// Statistics returns the fleet-wide dashboard summary.
func (c *Client) Statistics(ctx context.Context) (*Statistics, error) {
	var stats Statistics
	if err := c.do(ctx, http.MethodGet, "/api/v1/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Notices returns the current notice queue, newest first.
func (c *Client) Notices(ctx context.Context) ([]*models.Notice, error) {
	var listing struct {
		Notices []*models.Notice `json:"notices"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/notices", nil, &listing); err != nil {
		return nil, err
	}
	return listing.Notices, nil
}

// PushNotice queues an operator notice. Requires an admin credential.
func (c *Client) PushNotice(ctx context.Context, level, message string) (*models.Notice, error) {
	req := map[string]string{
		"level":   level,
		"message": message,
	}

	var notice models.Notice
	if err := c.do(ctx, http.MethodPost, "/api/v1/notices", req, &notice); err != nil {
		return nil, err
	}
	return &notice, nil
}

// ListPlans returns the applied plan records, most recent first.
func (c *Client) ListPlans(ctx context.Context) ([]*models.PlanRecord, error) {
	var listing struct {
		Plans []*models.PlanRecord `json:"plans"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/plans", nil, &listing); err != nil {
		return nil, err
	}
	return listing.Plans, nil
}

// GetPlan returns one applied plan record with its per-step results.
func (c *Client) GetPlan(ctx context.Context, id string) (*models.PlanRecord, error) {
	var record models.PlanRecord
	if err := c.do(ctx, http.MethodGet, "/api/v1/plans/"+url.PathEscape(id), nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// ParsePlan validates a plan source without touching the fleet. An invalid
// plan is a result, not an error; the findings sit in the result's Errors.
func (c *Client) ParsePlan(ctx context.Context, source []byte) (*PlanParseResult, error) {
	req := map[string]string{"source": string(source)}

	resp, err := c.send(ctx, http.MethodPost, "/api/v1/plans/parse", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// The server answers 200 for a clean plan and 400 with the same result
	// shape when the findings include errors.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusBadRequest {
		return nil, c.decodeError(resp)
	}

	var result PlanParseResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

// ApplyPlan applies a plan source to the fleet and returns the record of
// what happened per step. A plan that fails validation is refused with
// *PlanInvalidError before anything is applied.
func (c *Client) ApplyPlan(ctx context.Context, source []byte) (*models.PlanRecord, error) {
	req := map[string]string{"source": string(source)}

	resp, err := c.send(ctx, http.MethodPost, "/api/v1/plans/apply", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		var findings PlanParseResult
		if json.NewDecoder(resp.Body).Decode(&findings) == nil && len(findings.Errors) > 0 {
			return nil, &PlanInvalidError{Findings: &findings}
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: "invalid plan"}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.decodeError(resp)
	}

	var record models.PlanRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &record, nil
}

// Validate checks a document against the schema for its kind: node,
// allocation, or workload. An invalid document is a result, not an error;
// the findings sit in the result's Errors.
func (c *Client) Validate(ctx context.Context, kind string, document interface{}) (*ValidationResult, error) {
	resp, err := c.send(ctx, http.MethodPost, "/api/v1/validate/"+url.PathEscape(kind), document)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// The server answers 200 for a valid document and 400 with the same
	// result shape for an invalid one.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusBadRequest {
		return nil, c.decodeError(resp)
	}

	var result ValidationResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

// AuditIntegrity runs a full audit pass and returns the report.
func (c *Client) AuditIntegrity(ctx context.Context) (*IntegrityReport, error) {
	var report IntegrityReport
	if err := c.do(ctx, http.MethodGet, "/api/v1/integrity/audit", nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// RepairIntegrity runs a repair pass. With dryRun the pass reports what it
// would fix without writing; maxRisk caps which fixes are attempted (low,
// medium, or high). Requires an admin credential.
func (c *Client) RepairIntegrity(ctx context.Context, dryRun bool, maxRisk string) (*RepairResult, error) {
	req := map[string]interface{}{
		"dryRun": dryRun,
	}
	if maxRisk != "" {
		req["maxRisk"] = maxRisk
	}

	var result RepairResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/integrity/repair", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
