package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portico-hosting/portico/internal/config"
	"github.com/portico-hosting/portico/models"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	cfg := &config.Config{}
	cfg.Storage.Path = filepath.Join(t.TempDir(), "portico.db")

	s, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestNode(t *testing.T, s *Storage, name string) *models.Node {
	t.Helper()

	node := &models.Node{
		ID:   models.GenerateID("node"),
		Name: name,
		FQDN: name + ".example.com",
		Port: 8443,
	}
	require.NoError(t, s.SaveNode(node))
	return node
}

func createTestWorkload(t *testing.T, s *Storage, nodeID string, bindings ...models.PortBinding) *models.Workload {
	t.Helper()

	workload := &models.Workload{
		ID:         models.GenerateID("workload"),
		Name:       "wl",
		Status:     models.WorkloadStatusActive,
		NodeID:     nodeID,
		CPUPercent: 100,
		MemoryMiB:  1024,
		DiskMiB:    2048,
		Bindings:   bindings,
	}
	require.NoError(t, s.SaveWorkload(workload))
	return workload
}

func TestSaveAndGetNode(t *testing.T) {
	s := newTestStorage(t)

	node := createTestNode(t, s, "node-01")

	got, err := s.GetNode(node.ID)
	require.NoError(t, err)
	assert.Equal(t, node.Name, got.Name)
	assert.Equal(t, models.NodeType, got.Type)
	assert.Equal(t, models.DefaultContext, got.Context)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestGetNodeNotFound(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.GetNode("node:missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNodeNameUniqueness(t *testing.T) {
	s := newTestStorage(t)

	createTestNode(t, s, "node-01")

	dup := &models.Node{
		ID:   models.GenerateID("node"),
		Name: "NODE-01", // names are unique case-insensitively
		FQDN: "other.example.com",
		Port: 8443,
	}
	err := s.SaveNode(dup)
	assert.ErrorIs(t, err, ErrNameTaken)
}

func TestNodeRenameReleasesName(t *testing.T) {
	s := newTestStorage(t)

	node := createTestNode(t, s, "node-01")
	node.Name = "node-01-renamed"
	require.NoError(t, s.SaveNode(node))

	// Old name is free again.
	other := &models.Node{
		ID:   models.GenerateID("node"),
		Name: "node-01",
		FQDN: "other.example.com",
		Port: 8443,
	}
	require.NoError(t, s.SaveNode(other))

	byName, err := s.GetNodeByName("node-01-renamed")
	require.NoError(t, err)
	assert.Equal(t, node.ID, byName.ID)
}

func TestDeleteNodeBlockedByWorkloads(t *testing.T) {
	s := newTestStorage(t)

	node := createTestNode(t, s, "node-01")
	createTestWorkload(t, s, node.ID)
	createTestWorkload(t, s, node.ID)

	err := s.DeleteNode(node.ID)
	require.Error(t, err)

	var inUse *NodeInUseError
	require.True(t, errors.As(err, &inUse))
	assert.Equal(t, 2, inUse.Workloads)

	// Node is untouched.
	_, err = s.GetNode(node.ID)
	assert.NoError(t, err)
}

func TestDeleteNodeCascadesPool(t *testing.T) {
	s := newTestStorage(t)

	node := createTestNode(t, s, "node-01")
	_, err := s.CreateAllocationRange(node.ID, "0.0.0.0", 25565, 25570, "", "")
	require.NoError(t, err)

	require.NoError(t, s.DeleteNode(node.ID))

	count, err := s.CountAllocationsByNode(node.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// Name is released, so it can be reused with a fresh pool.
	fresh := createTestNode(t, s, "node-01")
	created, err := s.CreateAllocationRange(fresh.ID, "0.0.0.0", 25565, 25565, "", "")
	require.NoError(t, err)
	assert.Len(t, created, 1)
}

func TestCreateAllocationConflict(t *testing.T) {
	s := newTestStorage(t)

	node := createTestNode(t, s, "node-01")
	alloc := &models.Allocation{
		ID:          models.GenerateID("allocation"),
		NodeID:      node.ID,
		BindAddress: "0.0.0.0",
		Port:        25565,
	}
	require.NoError(t, s.CreateAllocation(alloc))

	dup := &models.Allocation{
		ID:          models.GenerateID("allocation"),
		NodeID:      node.ID,
		BindAddress: "0.0.0.0",
		Port:        25565,
	}
	assert.ErrorIs(t, s.CreateAllocation(dup), ErrConflict)

	// Same port on another bind address is a different endpoint.
	other := &models.Allocation{
		ID:          models.GenerateID("allocation"),
		NodeID:      node.ID,
		BindAddress: "10.0.0.1",
		Port:        25565,
	}
	assert.NoError(t, s.CreateAllocation(other))
}

func TestCreateAllocationUnknownNode(t *testing.T) {
	s := newTestStorage(t)

	alloc := &models.Allocation{
		ID:          models.GenerateID("allocation"),
		NodeID:      "node:missing",
		BindAddress: "0.0.0.0",
		Port:        25565,
	}
	assert.ErrorIs(t, s.CreateAllocation(alloc), ErrNotFound)
}

func TestCreateAllocationRangeIdempotent(t *testing.T) {
	s := newTestStorage(t)

	node := createTestNode(t, s, "node-01")

	created, err := s.CreateAllocationRange(node.ID, "0.0.0.0", 25565, 25567, "", "")
	require.NoError(t, err)
	require.Len(t, created, 3)

	// A second identical call creates nothing.
	again, err := s.CreateAllocationRange(node.ID, "0.0.0.0", 25565, 25567, "", "")
	require.NoError(t, err)
	assert.Empty(t, again)

	count, err := s.CountAllocationsByNode(node.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestCreateAllocationRangeSkipsExisting(t *testing.T) {
	s := newTestStorage(t)

	node := createTestNode(t, s, "node-01")
	seed := &models.Allocation{
		ID:          models.GenerateID("allocation"),
		NodeID:      node.ID,
		BindAddress: "0.0.0.0",
		Port:        25566,
	}
	require.NoError(t, s.CreateAllocation(seed))

	created, err := s.CreateAllocationRange(node.ID, "0.0.0.0", 25565, 25567, "game", "")
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, 25565, created[0].Port)
	assert.Equal(t, 25567, created[1].Port)
	for _, alloc := range created {
		assert.Equal(t, "game", alloc.Alias)
	}
}

func TestListAllocationsByNodeCreationOrder(t *testing.T) {
	s := newTestStorage(t)

	node := createTestNode(t, s, "node-01")

	// Create out of port order; listing must follow creation order.
	first := &models.Allocation{ID: models.GenerateID("allocation"), NodeID: node.ID, BindAddress: "0.0.0.0", Port: 30000}
	require.NoError(t, s.CreateAllocation(first))
	_, err := s.CreateAllocationRange(node.ID, "0.0.0.0", 25565, 25566, "", "")
	require.NoError(t, err)

	pool, err := s.ListAllocationsByNode(node.ID)
	require.NoError(t, err)
	require.Len(t, pool, 3)
	assert.Equal(t, 30000, pool[0].Port)
	assert.Equal(t, 25565, pool[1].Port)
	assert.Equal(t, 25566, pool[2].Port)
}

func TestDeleteAllocationAssigned(t *testing.T) {
	s := newTestStorage(t)

	node := createTestNode(t, s, "node-01")
	created, err := s.CreateAllocationRange(node.ID, "0.0.0.0", 25565, 25565, "", "")
	require.NoError(t, err)
	alloc := created[0]

	createTestWorkload(t, s, node.ID, models.PortBinding{BindAddress: "0.0.0.0", Port: 25565})

	err = s.DeleteAllocation(alloc.ID)
	assert.ErrorIs(t, err, ErrAllocationAssigned)

	// No state change.
	_, err = s.GetAllocation(alloc.ID)
	assert.NoError(t, err)
}

func TestDeleteAllocationInactiveBinderDoesNotBlock(t *testing.T) {
	s := newTestStorage(t)

	node := createTestNode(t, s, "node-01")
	created, err := s.CreateAllocationRange(node.ID, "0.0.0.0", 25565, 25565, "", "")
	require.NoError(t, err)

	workload := createTestWorkload(t, s, node.ID, models.PortBinding{BindAddress: "0.0.0.0", Port: 25565})
	workload.Status = models.WorkloadStatusInactive
	require.NoError(t, s.SaveWorkload(workload))

	assert.NoError(t, s.DeleteAllocation(created[0].ID))
}

func TestDeleteAllocationNotFound(t *testing.T) {
	s := newTestStorage(t)

	err := s.DeleteAllocation("allocation:missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWorkloadMoveUpdatesNodeIndex(t *testing.T) {
	s := newTestStorage(t)

	nodeA := createTestNode(t, s, "node-a")
	nodeB := createTestNode(t, s, "node-b")
	workload := createTestWorkload(t, s, nodeA.ID)

	workload.NodeID = nodeB.ID
	require.NoError(t, s.SaveWorkload(workload))

	countA, err := s.CountWorkloadsByNode(nodeA.ID)
	require.NoError(t, err)
	countB, err := s.CountWorkloadsByNode(nodeB.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, countA)
	assert.Equal(t, 1, countB)
}

func TestDeleteWorkload(t *testing.T) {
	s := newTestStorage(t)

	node := createTestNode(t, s, "node-01")
	workload := createTestWorkload(t, s, node.ID)

	require.NoError(t, s.DeleteWorkload(workload.ID))

	count, err := s.CountWorkloadsByNode(node.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// Node is now deletable.
	assert.NoError(t, s.DeleteNode(node.ID))
}

func TestGetStatistics(t *testing.T) {
	s := newTestStorage(t)

	node := createTestNode(t, s, "node-01")
	node.Online = true
	require.NoError(t, s.SaveNode(node))

	_, err := s.CreateAllocationRange(node.ID, "0.0.0.0", 25565, 25567, "", "")
	require.NoError(t, err)
	createTestWorkload(t, s, node.ID, models.PortBinding{BindAddress: "0.0.0.0", Port: 25565})

	stats, err := s.GetStatistics()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalNodes)
	assert.Equal(t, 1, stats.OnlineNodes)
	assert.Equal(t, 3, stats.TotalAllocations)
	assert.Equal(t, 1, stats.AssignedAllocations)
	assert.Equal(t, 1, stats.TotalWorkloads)
	assert.Equal(t, 1, stats.ActiveWorkloads)
	assert.Equal(t, 3, stats.NodeAllocationCounts[node.ID])
	assert.Equal(t, 1, stats.NodeWorkloadCounts[node.ID])
}
