package client

import (
	"time"

	"github.com/portico-hosting/portico/models"
)

// NodeView is one node of the fleet snapshot: the stored node, its
// partitioned allocation pool, and the probe-derived state.
type NodeView struct {
	Node       *models.Node           `json:"node"`
	Assigned   []*models.Allocation   `json:"assigned"`
	Unassigned []*models.Allocation   `json:"unassigned"`
	Usage      *NodeUsage             `json:"usage"`
	State      string                 `json:"state"`
	Snapshot   *models.SystemSnapshot `json:"snapshot,omitempty"`
}

// NodeUsage sums the resource commitments of a node's workloads. Memory and
// disk are in bytes.
type NodeUsage struct {
	NodeID          string `json:"nodeId"`
	Workloads       int    `json:"workloads"`
	CPUAllocated    int    `json:"cpuAllocated"`
	MemoryAllocated int64  `json:"memoryAllocated"`
	DiskAllocated   int64  `json:"diskAllocated"`
}

// NodeQuery filters and pages a node listing. State is the probe-derived
// value: online, offline, or unknown.
type NodeQuery struct {
	State      string
	Datacenter string
	Limit      int
	Offset     int
}

// NodePage is one page of the node fleet.
type NodePage struct {
	Count  int         `json:"count"`
	Total  int         `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
	Nodes  []*NodeView `json:"nodes"`
}

// ProbeResult is the outcome of one reachability check.
type ProbeResult struct {
	NodeID    string                 `json:"nodeId"`
	Online    bool                   `json:"online"`
	CheckedAt time.Time              `json:"checkedAt"`
	Latency   time.Duration          `json:"latency"`
	Snapshot  *models.SystemSnapshot `json:"snapshot,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// PoolPage is one rendered page of a node's allocation pool: the assigned
// group first, then the unassigned group, under one continuous page window.
type PoolPage struct {
	Page           int                  `json:"page"`
	Limit          int                  `json:"limit"`
	Total          int                  `json:"total"`
	Assigned       []*models.Allocation `json:"assigned"`
	Unassigned     []*models.Allocation `json:"unassigned"`
	ShowAssigned   bool                 `json:"showAssigned"`
	ShowUnassigned bool                 `json:"showUnassigned"`
	Pages          []int                `json:"pages"`
	TotalPages     int                  `json:"totalPages"`
}

// WorkloadQuery filters and pages a workload listing.
type WorkloadQuery struct {
	Status string
	NodeID string
	Limit  int
	Offset int
}

// WorkloadPage is one page of workloads.
type WorkloadPage struct {
	Count     int                `json:"count"`
	Total     int                `json:"total"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
	Workloads []*models.Workload `json:"workloads"`
}

// Statistics is the fleet-wide dashboard summary.
type Statistics struct {
	TotalNodes             int            `json:"totalNodes"`
	OnlineNodes            int            `json:"onlineNodes"`
	TotalAllocations       int            `json:"totalAllocations"`
	AssignedAllocations    int            `json:"assignedAllocations"`
	TotalWorkloads         int            `json:"totalWorkloads"`
	ActiveWorkloads        int            `json:"activeWorkloads"`
	NodesWithWorkloads     int            `json:"nodesWithWorkloads"`
	AllocationDistribution map[string]int `json:"allocationDistribution"`
	WorkloadDistribution   map[string]int `json:"workloadDistribution"`
	AppliedPlans           int            `json:"appliedPlans"`
}

// PlanParseResult reports every validation finding of a plan source.
// Warnings are non-fatal; a plan with errors cannot be applied.
type PlanParseResult struct {
	Definition *models.PlanDefinition `json:"definition,omitempty"`
	Warnings   []string               `json:"warnings"`
	Errors     []string               `json:"errors"`
}

// ValidationResult reports whether a document passed validation.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ValidationError is one field-level validation failure.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// IntegrityIssue is one invariant violation found by an audit.
type IntegrityIssue struct {
	ID          string                 `json:"id"`
	Type        string                 `json:"type"`
	Severity    string                 `json:"severity"`
	SubjectID   string                 `json:"subjectId"`
	NodeID      string                 `json:"nodeId,omitempty"`
	Description string                 `json:"description"`
	Details     map[string]interface{} `json:"details,omitempty"`
	Repair      *IntegrityFix          `json:"repair,omitempty"`
}

// IntegrityFix describes the repair an audit proposes for an issue.
type IntegrityFix struct {
	Action string `json:"action"`
	Risk   string `json:"risk"`
}

// IntegrityReport is the result of one full audit pass.
type IntegrityReport struct {
	ID                 string           `json:"id"`
	Timestamp          time.Time        `json:"timestamp"`
	Duration           time.Duration    `json:"duration"`
	NodesScanned       int              `json:"nodesScanned"`
	AllocationsScanned int              `json:"allocationsScanned"`
	WorkloadsScanned   int              `json:"workloadsScanned"`
	Issues             []IntegrityIssue `json:"issues"`
	Summary            IntegritySummary `json:"summary"`
}

// IntegritySummary aggregates a report's issues.
type IntegritySummary struct {
	TotalIssues int            `json:"totalIssues"`
	ByType      map[string]int `json:"byType"`
	BySeverity  map[string]int `json:"bySeverity"`
	HealthScore int            `json:"healthScore"`
}

// RepairResult is the outcome of one repair pass.
type RepairResult struct {
	ReportID  string        `json:"reportId"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
	DryRun    bool          `json:"dryRun"`
	Fixes     []FixResult   `json:"fixes"`
	Fixed     int           `json:"fixed"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
}

// FixResult is the outcome of one attempted fix.
type FixResult struct {
	Issue   IntegrityIssue `json:"issue"`
	Applied bool           `json:"applied"`
	Skipped bool           `json:"skipped"`
	Error   string         `json:"error,omitempty"`
}
