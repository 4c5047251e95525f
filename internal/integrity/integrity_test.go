package integrity

import (
	"context"
	"log"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portico-hosting/portico/internal/config"
	"github.com/portico-hosting/portico/internal/notify"
	"github.com/portico-hosting/portico/internal/storage"
	"github.com/portico-hosting/portico/models"
)

func newTestService(t *testing.T) (*Service, *storage.Storage) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Storage.Path = filepath.Join(t.TempDir(), "portico.db")

	store, err := storage.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	svc, err := NewService(store, notify.NewQueue(time.Minute, 20), log.Default())
	require.NoError(t, err)
	return svc, store
}

func createTestNode(t *testing.T, store *storage.Storage, name string) *models.Node {
	t.Helper()

	node := &models.Node{
		ID:   models.GenerateID("node"),
		Name: name,
		FQDN: name + ".example.com",
		Port: 8443,
	}
	require.NoError(t, store.SaveNode(node))
	return node
}

func issuesOfType(report *Report, issueType IssueType) []Issue {
	var out []Issue
	for _, issue := range report.Issues {
		if issue.Type == issueType {
			out = append(out, issue)
		}
	}
	return out
}

func TestAuditCleanDatabase(t *testing.T) {
	svc, store := newTestService(t)

	node := createTestNode(t, store, "node-01")
	_, err := store.CreateAllocationRange(node.ID, "0.0.0.0", 25565, 25569, "", "")
	require.NoError(t, err)
	require.NoError(t, store.SaveWorkload(&models.Workload{
		ID:       models.GenerateID("workload"),
		Name:     "mc-lobby",
		Status:   models.WorkloadStatusActive,
		NodeID:   node.ID,
		Bindings: []models.PortBinding{{BindAddress: "0.0.0.0", Port: 25565}},
	}))

	report, err := svc.Audit(context.Background())
	require.NoError(t, err)

	assert.Empty(t, report.Issues)
	assert.Equal(t, 100, report.Summary.HealthScore)
	assert.Equal(t, 1, report.NodesScanned)
	assert.Equal(t, 5, report.AllocationsScanned)
	assert.Equal(t, 1, report.WorkloadsScanned)
}

func TestAuditDetectsOrphanedWorkload(t *testing.T) {
	svc, store := newTestService(t)

	// Agents push workload state without a node existence check, so a push
	// landing after node deletion leaves an orphan behind.
	require.NoError(t, store.SaveWorkload(&models.Workload{
		ID:     models.GenerateID("workload"),
		Name:   "stray",
		Status: models.WorkloadStatusActive,
		NodeID: "node:gone",
	}))

	report, err := svc.Audit(context.Background())
	require.NoError(t, err)

	orphans := issuesOfType(report, IssueTypeOrphanedWorkload)
	require.Len(t, orphans, 1)
	assert.Equal(t, SeverityMedium, orphans[0].Severity)
	assert.Equal(t, "node:gone", orphans[0].NodeID)
	assert.Less(t, report.Summary.HealthScore, 100)
}

func TestAuditDetectsRangeViolation(t *testing.T) {
	svc, store := newTestService(t)

	node := createTestNode(t, store, "node-01")
	// The storage layer stores what it is given; port range checks live in
	// the pool manager, which this write path bypasses.
	require.NoError(t, store.CreateAllocation(&models.Allocation{
		ID:          models.GenerateID("allocation"),
		NodeID:      node.ID,
		BindAddress: "0.0.0.0",
		Port:        70000,
	}))

	report, err := svc.Audit(context.Background())
	require.NoError(t, err)

	violations := issuesOfType(report, IssueTypeRangeViolation)
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0].Description, "70000")
}

func TestAuditDetectsUnbackedBinding(t *testing.T) {
	svc, store := newTestService(t)

	node := createTestNode(t, store, "node-01")
	require.NoError(t, store.SaveWorkload(&models.Workload{
		ID:       models.GenerateID("workload"),
		Name:     "mc-lobby",
		Status:   models.WorkloadStatusActive,
		NodeID:   node.ID,
		Bindings: []models.PortBinding{{BindAddress: "0.0.0.0", Port: 25565}},
	}))

	report, err := svc.Audit(context.Background())
	require.NoError(t, err)

	unbacked := issuesOfType(report, IssueTypeUnbackedBinding)
	require.Len(t, unbacked, 1)
	assert.Equal(t, "create missing allocation", unbacked[0].Repair.Action)
	assert.Equal(t, RiskLow, unbacked[0].Repair.Risk)
}

func TestAuditIgnoresInactiveBindings(t *testing.T) {
	svc, store := newTestService(t)

	node := createTestNode(t, store, "node-01")
	require.NoError(t, store.SaveWorkload(&models.Workload{
		ID:       models.GenerateID("workload"),
		Name:     "parked",
		Status:   models.WorkloadStatusInactive,
		NodeID:   node.ID,
		Bindings: []models.PortBinding{{BindAddress: "0.0.0.0", Port: 25565}},
	}))

	report, err := svc.Audit(context.Background())
	require.NoError(t, err)
	assert.Empty(t, issuesOfType(report, IssueTypeUnbackedBinding))
}

func TestRepairDryRunChangesNothing(t *testing.T) {
	svc, store := newTestService(t)

	node := createTestNode(t, store, "node-01")
	require.NoError(t, store.SaveWorkload(&models.Workload{
		ID:       models.GenerateID("workload"),
		Name:     "mc-lobby",
		Status:   models.WorkloadStatusActive,
		NodeID:   node.ID,
		Bindings: []models.PortBinding{{BindAddress: "0.0.0.0", Port: 25565}},
	}))

	result, err := svc.Repair(context.Background(), RepairOptions{DryRun: true})
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.Equal(t, 1, result.Fixed)

	allocations, err := store.ListAllocationsByNode(node.ID)
	require.NoError(t, err)
	assert.Empty(t, allocations, "dry-run must not create the allocation")
}

func TestRepairCreatesMissingAllocation(t *testing.T) {
	svc, store := newTestService(t)

	node := createTestNode(t, store, "node-01")
	require.NoError(t, store.SaveWorkload(&models.Workload{
		ID:       models.GenerateID("workload"),
		Name:     "mc-lobby",
		Status:   models.WorkloadStatusActive,
		NodeID:   node.ID,
		Bindings: []models.PortBinding{{BindAddress: "0.0.0.0", Port: 25565}},
	}))

	result, err := svc.Repair(context.Background(), RepairOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Fixed)
	assert.Zero(t, result.Failed)

	allocations, err := store.ListAllocationsByNode(node.ID)
	require.NoError(t, err)
	require.Len(t, allocations, 1)
	assert.Equal(t, "0.0.0.0", allocations[0].BindAddress)
	assert.Equal(t, 25565, allocations[0].Port)

	// The audit is clean after the repair.
	report, err := svc.Audit(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Issues)
}

func TestRepairHonorsMaxRisk(t *testing.T) {
	svc, store := newTestService(t)

	require.NoError(t, store.SaveWorkload(&models.Workload{
		ID:     models.GenerateID("workload"),
		Name:   "stray",
		Status: models.WorkloadStatusActive,
		NodeID: "node:gone",
	}))

	// Deleting an orphaned workload is a medium-risk fix; the default pass
	// only applies low-risk ones.
	result, err := svc.Repair(context.Background(), RepairOptions{})
	require.NoError(t, err)
	assert.Zero(t, result.Fixed)
	assert.Equal(t, 1, result.Skipped)

	workloads, err := store.ListWorkloads(nil)
	require.NoError(t, err)
	assert.Len(t, workloads, 1)

	result, err = svc.Repair(context.Background(), RepairOptions{MaxRisk: RiskMedium})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Fixed)

	workloads, err = store.ListWorkloads(nil)
	require.NoError(t, err)
	assert.Empty(t, workloads)
}
