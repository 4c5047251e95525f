package integrity

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/portico-hosting/portico/internal/notify"
	"github.com/portico-hosting/portico/internal/pool"
	"github.com/portico-hosting/portico/internal/storage"
	"github.com/portico-hosting/portico/models"
)

// Service audits and repairs the allocation database.
type Service struct {
	store   *storage.Storage
	notices *notify.Queue
	logger  *log.Logger
}

// NewService creates an integrity service. The notices queue is optional.
func NewService(store *storage.Storage, notices *notify.Queue, logger *log.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if logger == nil {
		logger = log.Default()
	}

	return &Service{
		store:   store,
		notices: notices,
		logger:  logger,
	}, nil
}

// Audit walks every node, allocation, and workload and reports invariant
// violations. The duplicate and range checks verify invariants the write path
// already enforces; they only fire on databases modified outside the process.
func (s *Service) Audit(ctx context.Context) (*Report, error) {
	start := time.Now()

	nodes, err := s.store.ListNodes(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	allocations, err := s.store.ListAllocations()
	if err != nil {
		return nil, fmt.Errorf("failed to list allocations: %w", err)
	}
	workloads, err := s.store.ListWorkloads(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list workloads: %w", err)
	}

	report := &Report{
		ID:                 models.GenerateID("audit"),
		Timestamp:          start,
		NodesScanned:       len(nodes),
		AllocationsScanned: len(allocations),
		WorkloadsScanned:   len(workloads),
		Issues:             []Issue{},
		Summary: Summary{
			ByType:     make(map[IssueType]int),
			BySeverity: make(map[Severity]int),
		},
	}

	nodeSet := make(map[string]bool, len(nodes))
	for _, node := range nodes {
		nodeSet[node.ID] = true
	}

	report.Issues = append(report.Issues, s.scanAllocations(allocations, nodeSet)...)
	report.Issues = append(report.Issues, s.scanWorkloads(workloads, allocations, nodeSet)...)

	report.Summary.TotalIssues = len(report.Issues)
	for _, issue := range report.Issues {
		report.Summary.ByType[issue.Type]++
		report.Summary.BySeverity[issue.Severity]++
	}
	report.Summary.HealthScore = healthScore(report.Summary.BySeverity)
	report.Duration = time.Since(start)

	s.logger.Printf("integrity audit: %d issues in %v (score %d)",
		report.Summary.TotalIssues, report.Duration, report.Summary.HealthScore)
	return report, nil
}

// scanAllocations detects duplicate endpoints, orphaned rows, and range
// violations in one pass over the allocation table.
func (s *Service) scanAllocations(allocations []*models.Allocation, nodeSet map[string]bool) []Issue {
	issues := []Issue{}

	// Group rows by endpoint; more than one per key is a duplicate.
	byEndpoint := make(map[string][]*models.Allocation)
	for _, alloc := range allocations {
		key := fmt.Sprintf("%s\x00%s\x00%d", alloc.NodeID, alloc.BindAddress, alloc.Port)
		byEndpoint[key] = append(byEndpoint[key], alloc)
	}
	for _, group := range byEndpoint {
		if len(group) < 2 {
			continue
		}
		// Keep the oldest row, flag the rest.
		keep := group[0]
		for _, alloc := range group[1:] {
			if alloc.Seq < keep.Seq {
				keep = alloc
			}
		}
		for _, alloc := range group {
			if alloc.ID == keep.ID {
				continue
			}
			issues = append(issues, Issue{
				ID:          models.GenerateID("issue"),
				Type:        IssueTypeDuplicateEndpoint,
				Severity:    SeverityHigh,
				SubjectID:   alloc.ID,
				NodeID:      alloc.NodeID,
				Description: fmt.Sprintf("allocation %s duplicates endpoint %s held by %s", alloc.ID, alloc.Endpoint(), keep.ID),
				Details: map[string]interface{}{
					"endpoint": alloc.Endpoint(),
					"keeps":    keep.ID,
				},
				Repair: &Fix{Action: "purge duplicate allocation", Risk: RiskMedium},
			})
		}
	}

	for _, alloc := range allocations {
		if !nodeSet[alloc.NodeID] {
			issues = append(issues, Issue{
				ID:          models.GenerateID("issue"),
				Type:        IssueTypeOrphanedAllocation,
				Severity:    SeverityMedium,
				SubjectID:   alloc.ID,
				NodeID:      alloc.NodeID,
				Description: fmt.Sprintf("allocation %s references missing node %s", alloc.ID, alloc.NodeID),
				Repair:      &Fix{Action: "purge orphaned allocation", Risk: RiskLow},
			})
		}
		if alloc.Port < pool.MinPort || alloc.Port > pool.MaxPort || strings.TrimSpace(alloc.BindAddress) == "" {
			issues = append(issues, Issue{
				ID:          models.GenerateID("issue"),
				Type:        IssueTypeRangeViolation,
				Severity:    SeverityMedium,
				SubjectID:   alloc.ID,
				NodeID:      alloc.NodeID,
				Description: fmt.Sprintf("allocation %s has invalid endpoint %q", alloc.ID, alloc.Endpoint()),
				Repair:      &Fix{Action: "purge invalid allocation", Risk: RiskMedium},
			})
		}
	}

	return issues
}

// scanWorkloads detects orphaned workloads and active bindings with no
// backing allocation row.
func (s *Service) scanWorkloads(workloads []*models.Workload, allocations []*models.Allocation, nodeSet map[string]bool) []Issue {
	issues := []Issue{}

	backed := make(map[string]bool, len(allocations))
	for _, alloc := range allocations {
		backed[fmt.Sprintf("%s\x00%s\x00%d", alloc.NodeID, alloc.BindAddress, alloc.Port)] = true
	}

	for _, workload := range workloads {
		if !nodeSet[workload.NodeID] {
			issues = append(issues, Issue{
				ID:          models.GenerateID("issue"),
				Type:        IssueTypeOrphanedWorkload,
				Severity:    SeverityMedium,
				SubjectID:   workload.ID,
				NodeID:      workload.NodeID,
				Description: fmt.Sprintf("workload %s references missing node %s", workload.Name, workload.NodeID),
				Repair:      &Fix{Action: "delete orphaned workload", Risk: RiskMedium},
			})
			continue
		}
		if !workload.Active() {
			continue
		}
		for _, binding := range workload.Bindings {
			// Out-of-range bindings cannot be backed by any legal
			// allocation; the workload boundary validation owns those.
			if binding.Port < pool.MinPort || binding.Port > pool.MaxPort {
				continue
			}
			key := fmt.Sprintf("%s\x00%s\x00%d", workload.NodeID, binding.BindAddress, binding.Port)
			if backed[key] {
				continue
			}
			issues = append(issues, Issue{
				ID:        models.GenerateID("issue"),
				Type:      IssueTypeUnbackedBinding,
				Severity:  SeverityLow,
				SubjectID: workload.ID,
				NodeID:    workload.NodeID,
				Description: fmt.Sprintf("workload %s binds %s:%d with no allocation",
					workload.Name, binding.BindAddress, binding.Port),
				Details: map[string]interface{}{
					"bindAddress": binding.BindAddress,
					"port":        binding.Port,
				},
				Repair: &Fix{Action: "create missing allocation", Risk: RiskLow},
			})
		}
	}

	return issues
}

// healthScore computes a 0-100 score from the severity breakdown.
func healthScore(bySeverity map[Severity]int) int {
	score := 100
	score -= bySeverity[SeverityHigh] * 10
	score -= bySeverity[SeverityMedium] * 3
	score -= bySeverity[SeverityLow] * 1

	if score < 0 {
		score = 0
	}
	return score
}
