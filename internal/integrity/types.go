// Package integrity audits the allocation database for invariant violations
// and repairs them. The audit walks every node, allocation, and workload and
// reports duplicate endpoints, orphaned rows, out-of-range ports, and active
// bindings with no backing allocation. Repair applies best-effort fixes up to
// a configured risk level, with dry-run support.
package integrity

import (
	"time"
)

// IssueType represents the type of integrity issue detected.
type IssueType string

const (
	// IssueTypeDuplicateEndpoint indicates two allocations on the same node
	// claiming the same (bindAddress, port) pair
	IssueTypeDuplicateEndpoint IssueType = "duplicate_endpoint"

	// IssueTypeOrphanedAllocation indicates an allocation whose node no
	// longer exists
	IssueTypeOrphanedAllocation IssueType = "orphaned_allocation"

	// IssueTypeOrphanedWorkload indicates a workload whose node no longer
	// exists
	IssueTypeOrphanedWorkload IssueType = "orphaned_workload"

	// IssueTypeRangeViolation indicates an allocation with a port outside
	// 1-65535 or a blank bind address
	IssueTypeRangeViolation IssueType = "range_violation"

	// IssueTypeUnbackedBinding indicates an active workload binding an
	// endpoint that has no allocation row
	IssueTypeUnbackedBinding IssueType = "unbacked_binding"
)

// Severity represents how critical an issue is.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// RiskLevel indicates the risk of a repair operation.
type RiskLevel string

const (
	// RiskLow covers safe operations with no data loss risk, such as
	// creating a missing allocation row
	RiskLow RiskLevel = "low"

	// RiskMedium covers operations that destroy rows no live object
	// references
	RiskMedium RiskLevel = "medium"

	// RiskHigh covers operations that could discard operator data
	RiskHigh RiskLevel = "high"
)

// riskRank orders risk levels for MaxRisk filtering.
func riskRank(r RiskLevel) int {
	switch r {
	case RiskLow:
		return 1
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	}
	return 0
}

// Issue represents a single integrity problem.
type Issue struct {
	// ID uniquely identifies this issue within its report
	ID string `json:"id"`

	// Type categorizes the issue
	Type IssueType `json:"type"`

	// Severity indicates how critical this issue is
	Severity Severity `json:"severity"`

	// SubjectID is the ID of the affected document
	SubjectID string `json:"subjectId"`

	// NodeID is the node the issue belongs to, when one is known
	NodeID string `json:"nodeId,omitempty"`

	// Description provides human-readable details
	Description string `json:"description"`

	// Details contains additional structured information
	Details map[string]interface{} `json:"details,omitempty"`

	// Repair describes the fix the repair pass would apply
	Repair *Fix `json:"repair,omitempty"`
}

// Fix describes the repair for one issue.
type Fix struct {
	// Action is what the repair will do, e.g. "purge allocation"
	Action string `json:"action"`

	// Risk gates whether the repair pass may apply this fix
	Risk RiskLevel `json:"risk"`
}

// Report contains the results of an integrity audit.
type Report struct {
	// ID uniquely identifies this audit
	ID string `json:"id"`

	// Timestamp when the audit was performed
	Timestamp time.Time `json:"timestamp"`

	// Duration of the audit
	Duration time.Duration `json:"duration"`

	// NodesScanned, AllocationsScanned, and WorkloadsScanned count the
	// documents checked
	NodesScanned       int `json:"nodesScanned"`
	AllocationsScanned int `json:"allocationsScanned"`
	WorkloadsScanned   int `json:"workloadsScanned"`

	// Issues contains all detected problems
	Issues []Issue `json:"issues"`

	// Summary provides aggregated statistics
	Summary Summary `json:"summary"`
}

// Summary provides aggregated audit statistics.
type Summary struct {
	// TotalIssues is the count of all issues found
	TotalIssues int `json:"totalIssues"`

	// ByType breaks down issues by type
	ByType map[IssueType]int `json:"byType"`

	// BySeverity breaks down issues by severity
	BySeverity map[Severity]int `json:"bySeverity"`

	// HealthScore is a 0-100 score for the database as a whole
	HealthScore int `json:"healthScore"`
}

// RepairOptions configures a repair pass.
type RepairOptions struct {
	// DryRun reports what would be fixed without touching the database
	DryRun bool `json:"dryRun"`

	// MaxRisk is the highest risk level the pass may apply. Defaults to
	// RiskLow when empty.
	MaxRisk RiskLevel `json:"maxRisk,omitempty"`
}

// RepairResult contains the outcome of a repair pass.
type RepairResult struct {
	// ReportID references the audit the pass repaired
	ReportID string `json:"reportId"`

	// Timestamp when the pass ran
	Timestamp time.Time `json:"timestamp"`

	// Duration of the pass
	Duration time.Duration `json:"duration"`

	// DryRun indicates if this was a simulation
	DryRun bool `json:"dryRun"`

	// Fixes contains the per-issue outcomes, in the order applied
	Fixes []FixResult `json:"fixes"`

	// Fixed, Skipped, and Failed summarize the outcomes
	Fixed   int `json:"fixed"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// FixResult records the outcome of one fix.
type FixResult struct {
	// Issue is the problem this fix addressed
	Issue Issue `json:"issue"`

	// Applied is true when the fix ran (or would run, under dry-run)
	Applied bool `json:"applied"`

	// Skipped is true when the fix exceeded MaxRisk or has no automated
	// repair
	Skipped bool `json:"skipped"`

	// Error contains any failure applying the fix; a failed fix never
	// aborts the rest of the pass
	Error string `json:"error,omitempty"`
}
