package storage

import "github.com/portico-hosting/portico/models"

// Statistics contains overview statistics for the dashboard
type Statistics struct {
	TotalNodes           int
	OnlineNodes          int
	TotalAllocations     int
	AssignedAllocations  int
	TotalWorkloads       int
	ActiveWorkloads      int
	NodeAllocationCounts map[string]int // node ID -> pool size
	NodeWorkloadCounts   map[string]int // node ID -> workload count
	AppliedPlans         int
}

// GetStatistics calculates and returns infrastructure statistics.
// Everything is recomputed wholesale from the live data; there are no
// incremental counters to drift.
func (s *Storage) GetStatistics() (*Statistics, error) {
	stats := &Statistics{
		NodeAllocationCounts: make(map[string]int),
		NodeWorkloadCounts:   make(map[string]int),
	}

	nodes, err := s.ListNodes(nil)
	if err != nil {
		return nil, err
	}
	stats.TotalNodes = len(nodes)
	for _, node := range nodes {
		if node.Online {
			stats.OnlineNodes++
		}
	}

	workloads, err := s.ListWorkloads(nil)
	if err != nil {
		return nil, err
	}
	stats.TotalWorkloads = len(workloads)
	workloadsByNode := make(map[string][]*models.Workload)
	for _, workload := range workloads {
		if workload.Active() {
			stats.ActiveWorkloads++
		}
		if workload.NodeID != "" {
			stats.NodeWorkloadCounts[workload.NodeID]++
			workloadsByNode[workload.NodeID] = append(workloadsByNode[workload.NodeID], workload)
		}
	}

	for _, node := range nodes {
		allocations, err := s.ListAllocationsByNode(node.ID)
		if err != nil {
			return nil, err
		}
		stats.TotalAllocations += len(allocations)
		stats.NodeAllocationCounts[node.ID] = len(allocations)

		for _, alloc := range allocations {
			binders := 0
			for _, workload := range workloadsByNode[node.ID] {
				if workload.Active() && workload.Binds(alloc.BindAddress, alloc.Port) {
					binders++
				}
			}
			if binders == 1 {
				stats.AssignedAllocations++
			}
		}
	}

	plans, err := s.ListPlanRecords()
	if err != nil {
		return nil, err
	}
	stats.AppliedPlans = len(plans)

	return stats, nil
}
