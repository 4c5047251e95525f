// Package plan parses declarative provisioning plans and applies them through
// the registry. A plan names nodes and the allocation ranges each node's pool
// must contain; application is idempotent, so the same file can be re-applied
// after an edit and only the missing pieces are created.
package plan

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/portico-hosting/portico/internal/notify"
	"github.com/portico-hosting/portico/internal/registry"
	"github.com/portico-hosting/portico/internal/storage"
	"github.com/portico-hosting/portico/models"
)

// DefaultNodePort is assumed when a plan node omits the daemon port.
const DefaultNodePort = 8443

// Step status values recorded per plan entry.
const (
	StatusCreated = "created"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// Service parses and applies provisioning plans.
type Service struct {
	registry *registry.Registry
	store    *storage.Storage
	notices  *notify.Queue
	validate *validator.Validate
	logger   *log.Logger
}

// NewService creates a plan service. The notices queue is optional.
func NewService(reg *registry.Registry, store *storage.Storage, notices *notify.Queue, logger *log.Logger) (*Service, error) {
	if reg == nil || store == nil {
		return nil, fmt.Errorf("registry and storage are required")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		registry: reg,
		store:    store,
		notices:  notices,
		validate: validator.New(),
		logger:   logger,
	}, nil
}

// Apply executes a validated plan best effort: every step runs even when an
// earlier one failed, and each outcome is recorded. The record is persisted
// so applications stay auditable after the fact.
func (s *Service) Apply(ctx context.Context, def *models.PlanDefinition) (*models.PlanRecord, error) {
	record := &models.PlanRecord{
		ID:        models.GenerateID("plan"),
		Name:      def.Name,
		AppliedAt: time.Now(),
		Results:   []models.PlanResult{},
	}

	for i := range def.Nodes {
		planNode := &def.Nodes[i]
		nodeID := s.ensureNode(ctx, planNode, record)

		for _, planPool := range planNode.Pools {
			s.ensureRange(ctx, nodeID, planNode.Name, planPool, record)
		}
	}

	record.Total = len(record.Results)
	for _, res := range record.Results {
		switch res.Status {
		case StatusCreated:
			record.Succeeded++
		case StatusSkipped:
			record.Skipped++
		case StatusFailed:
			record.Failed++
		}
	}

	s.logger.Printf("plan %s applied: %d created, %d skipped, %d failed",
		def.Name, record.Succeeded, record.Skipped, record.Failed)
	if s.notices != nil {
		if record.Failed > 0 {
			s.notices.Error(fmt.Sprintf("plan %s applied with %d failure(s)", def.Name, record.Failed))
		} else {
			s.notices.Info(fmt.Sprintf("plan %s applied", def.Name))
		}
	}

	if err := s.store.SavePlanRecord(record); err != nil {
		return record, fmt.Errorf("failed to save plan record: %w", err)
	}
	return record, nil
}

// ensureNode creates the plan node unless one with the same name already
// exists. It returns the node ID pool steps hang on, or "" when the node is
// unavailable.
func (s *Service) ensureNode(ctx context.Context, planNode *models.PlanNode, record *models.PlanRecord) string {
	existing, err := s.findNode(planNode.Name)
	if err != nil {
		record.Results = append(record.Results, models.PlanResult{
			Action: "node",
			Target: planNode.Name,
			Status: StatusFailed,
			Error:  err.Error(),
		})
		return ""
	}
	if existing != nil {
		record.Results = append(record.Results, models.PlanResult{
			Action: "node",
			Target: planNode.Name,
			Status: StatusSkipped,
		})
		return existing.ID
	}

	port := planNode.Port
	if port == 0 {
		port = DefaultNodePort
	}
	node := &models.Node{
		Name:       planNode.Name,
		FQDN:       planNode.FQDN,
		Port:       port,
		Datacenter: planNode.Datacenter,
	}
	if err := s.registry.CreateNode(ctx, node); err != nil {
		record.Results = append(record.Results, models.PlanResult{
			Action: "node",
			Target: planNode.Name,
			Status: StatusFailed,
			Error:  err.Error(),
		})
		return ""
	}

	record.Results = append(record.Results, models.PlanResult{
		Action: "node",
		Target: planNode.Name,
		Status: StatusCreated,
	})
	return node.ID
}

// ensureRange adds the missing part of one allocation range. A range whose
// node step failed is recorded as failed without touching the pool.
func (s *Service) ensureRange(ctx context.Context, nodeID, nodeName string, planPool models.PlanPool, record *models.PlanRecord) {
	target := fmt.Sprintf("%s %s:%d-%d", nodeName, planPool.BindAddress, planPool.Start, planPool.End)

	if nodeID == "" {
		record.Results = append(record.Results, models.PlanResult{
			Action: "range",
			Target: target,
			Status: StatusFailed,
			Error:  "node unavailable",
		})
		return
	}

	created, err := s.registry.CreateAllocationRange(ctx, nodeID, planPool.BindAddress, planPool.Start, planPool.End, planPool.Alias, planPool.Notes)
	if err != nil {
		record.Results = append(record.Results, models.PlanResult{
			Action: "range",
			Target: target,
			Status: StatusFailed,
			Error:  err.Error(),
		})
		return
	}

	status := StatusCreated
	if len(created) == 0 {
		status = StatusSkipped
	}
	record.Results = append(record.Results, models.PlanResult{
		Action:  "range",
		Target:  target,
		Status:  status,
		Created: len(created),
	})
}

// findNode looks a node up by name straight from storage, so apply stays
// correct even when the registry snapshot is stale. The name index is
// case-insensitive, matching the uniqueness rule.
func (s *Service) findNode(name string) (*models.Node, error) {
	node, err := s.store.GetNodeByName(name)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up node %s: %w", name, err)
	}
	return node, nil
}
