package registry

import (
	"context"
	"fmt"
	"log"

	"github.com/portico-hosting/portico/models"
)

// Commands mutate storage and then issue one authoritative refresh, so every
// read after a successful command sees the new state. A failed command
// changes nothing and triggers no refresh.

// CreateNode persists a new node and refreshes the snapshot.
func (r *Registry) CreateNode(ctx context.Context, node *models.Node) error {
	if node.ID == "" {
		node.ID = models.GenerateID("node")
	}
	if err := r.store.SaveNode(node); err != nil {
		return err
	}
	r.notices.Info(fmt.Sprintf("node %s created", node.Name))
	r.refreshAfter(ctx, "node create")
	return nil
}

// UpdateNode persists node changes and refreshes the snapshot.
func (r *Registry) UpdateNode(ctx context.Context, node *models.Node) error {
	if err := r.store.UpdateNode(node); err != nil {
		return err
	}
	r.refreshAfter(ctx, "node update")
	return nil
}

// DeleteNode removes a node and its pool. When workloads still reference the
// node the storage layer refuses with a NodeInUseError carrying the count;
// that error passes through untouched so callers can present the blocked
// outcome distinctly.
func (r *Registry) DeleteNode(ctx context.Context, nodeID string) error {
	view, ok := r.View(nodeID)
	name := nodeID
	if ok {
		name = view.Node.Name
	}

	if err := r.store.DeleteNode(nodeID); err != nil {
		return err
	}
	r.notices.Info(fmt.Sprintf("node %s deleted", name))
	r.refreshAfter(ctx, "node delete")
	return nil
}

// CreateAllocation adds a single allocation to a node's pool.
func (r *Registry) CreateAllocation(ctx context.Context, nodeID, bindAddress string, port int, alias, notes string) (*models.Allocation, error) {
	alloc, err := r.pools.CreateSingle(nodeID, bindAddress, port, alias, notes)
	if err != nil {
		return nil, err
	}
	r.refreshAfter(ctx, "allocation create")
	return alloc, nil
}

// CreateAllocationRange adds every missing port in [start, end] to a node's
// pool and returns only the newly created allocations.
func (r *Registry) CreateAllocationRange(ctx context.Context, nodeID, bindAddress string, start, end int, alias, notes string) ([]*models.Allocation, error) {
	created, err := r.pools.CreateRange(nodeID, bindAddress, start, end, alias, notes)
	if err != nil {
		return nil, err
	}
	if len(created) > 0 {
		r.notices.Info(fmt.Sprintf("%d allocations added on %s", len(created), bindAddress))
	}
	r.refreshAfter(ctx, "allocation range create")
	return created, nil
}

// DeleteAllocation removes one unassigned allocation from a node's pool.
func (r *Registry) DeleteAllocation(ctx context.Context, nodeID, allocationID string) error {
	if err := r.pools.Delete(nodeID, allocationID); err != nil {
		return err
	}
	r.refreshAfter(ctx, "allocation delete")
	return nil
}

// SaveWorkload upserts an externally managed workload and refreshes, since
// workload bindings drive the assigned projection.
func (r *Registry) SaveWorkload(ctx context.Context, workload *models.Workload) error {
	if err := r.store.SaveWorkload(workload); err != nil {
		return err
	}
	r.refreshAfter(ctx, "workload sync")
	return nil
}

// DeleteWorkload removes a workload record and refreshes.
func (r *Registry) DeleteWorkload(ctx context.Context, workloadID string) error {
	if err := r.store.DeleteWorkload(workloadID); err != nil {
		return err
	}
	r.refreshAfter(ctx, "workload delete")
	return nil
}

func (r *Registry) refreshAfter(ctx context.Context, op string) {
	if err := r.Refresh(ctx); err != nil {
		log.Printf("Warning: refresh after %s failed: %v", op, err)
		r.notices.Error(fmt.Sprintf("refresh after %s failed", op))
	}
}
