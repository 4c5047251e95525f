package pool

import "github.com/portico-hosting/portico/models"

// Partition is a node's pool split into its assigned and unassigned groups.
// Both groups preserve creation order, and the assigned group always comes
// first when the partition is rendered as one list.
type Partition struct {
	Assigned   []*models.Allocation
	Unassigned []*models.Allocation
}

// Total returns the size of the whole pool.
func (p *Partition) Total() int {
	return len(p.Assigned) + len(p.Unassigned)
}

// Project recomputes the Assigned flag of every allocation from the node's
// workloads: an allocation is assigned iff exactly one active workload binds
// its endpoint. Zero binders means free; more than one means the endpoint is
// contended and the projection reports it as unassigned rather than guessing
// an owner.
func Project(allocations []*models.Allocation, workloads []*models.Workload) {
	for _, alloc := range allocations {
		binders := 0
		for _, workload := range workloads {
			if workload.Active() && workload.Binds(alloc.BindAddress, alloc.Port) {
				binders++
			}
		}
		alloc.Assigned = binders == 1
	}
}

// Split divides allocations into assigned and unassigned groups, keeping the
// input (creation) order within each group. The split is stable: the same
// pool always yields the same partition.
func Split(allocations []*models.Allocation) *Partition {
	p := &Partition{}
	for _, alloc := range allocations {
		if alloc.Assigned {
			p.Assigned = append(p.Assigned, alloc)
		} else {
			p.Unassigned = append(p.Unassigned, alloc)
		}
	}
	return p
}
