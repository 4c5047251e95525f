package integrity

import (
	"context"
	"fmt"
	"time"

	"github.com/portico-hosting/portico/models"
)

// Repair runs a fresh audit and applies the fix for every issue at or below
// the configured risk level. Fixes are sequential and best-effort: a failed
// fix is recorded and the pass continues. Under DryRun nothing is written and
// the result reports what would have been applied.
func (s *Service) Repair(ctx context.Context, opts RepairOptions) (*RepairResult, error) {
	report, err := s.Audit(ctx)
	if err != nil {
		return nil, err
	}

	maxRisk := opts.MaxRisk
	if maxRisk == "" {
		maxRisk = RiskLow
	}

	start := time.Now()
	result := &RepairResult{
		ReportID:  report.ID,
		Timestamp: start,
		DryRun:    opts.DryRun,
		Fixes:     make([]FixResult, 0, len(report.Issues)),
	}

	for _, issue := range report.Issues {
		fix := FixResult{Issue: issue}

		switch {
		case issue.Repair == nil:
			fix.Skipped = true
		case riskRank(issue.Repair.Risk) > riskRank(maxRisk):
			fix.Skipped = true
		case opts.DryRun:
			fix.Applied = true
		default:
			if err := s.applyFix(issue); err != nil {
				fix.Error = err.Error()
				s.logger.Printf("Warning: repair of %s failed: %v", issue.SubjectID, err)
			} else {
				fix.Applied = true
			}
		}

		switch {
		case fix.Applied:
			result.Fixed++
		case fix.Skipped:
			result.Skipped++
		default:
			result.Failed++
		}
		result.Fixes = append(result.Fixes, fix)
	}

	result.Duration = time.Since(start)

	if !opts.DryRun && result.Fixed > 0 && s.notices != nil {
		s.notices.Info(fmt.Sprintf("integrity repair fixed %d issue(s)", result.Fixed))
	}
	s.logger.Printf("integrity repair: %d fixed, %d skipped, %d failed (dry-run: %v)",
		result.Fixed, result.Skipped, result.Failed, opts.DryRun)
	return result, nil
}

// applyFix performs the repair for one issue.
func (s *Service) applyFix(issue Issue) error {
	switch issue.Type {
	case IssueTypeDuplicateEndpoint, IssueTypeOrphanedAllocation, IssueTypeRangeViolation:
		return s.store.PurgeAllocation(issue.SubjectID)

	case IssueTypeOrphanedWorkload:
		return s.store.DeleteWorkload(issue.SubjectID)

	case IssueTypeUnbackedBinding:
		bindAddress, _ := issue.Details["bindAddress"].(string)
		port, _ := issue.Details["port"].(int)
		return s.store.CreateAllocation(&models.Allocation{
			ID:          models.GenerateID("allocation"),
			NodeID:      issue.NodeID,
			BindAddress: bindAddress,
			Port:        port,
			Notes:       "recovered by integrity repair",
		})
	}

	return fmt.Errorf("no automated repair for issue type %s", issue.Type)
}
