// Package resources computes per-node resource commitments. The numbers are
// a pure function of the current workload list and are recomputed wholesale
// on every refresh, since workload placement is sourced externally and may
// change between refreshes.
package resources

import "github.com/portico-hosting/portico/models"

const bytesPerMiB = 1 << 20

// Usage is the resource total committed to one node by its workloads.
// CPU is in percent points (100 = one full core), memory and disk in bytes.
type Usage struct {
	NodeID          string `json:"nodeId"`
	Workloads       int    `json:"workloads"`
	CPUAllocated    int    `json:"cpuAllocated"`
	MemoryAllocated int64  `json:"memoryAllocated"`
	DiskAllocated   int64  `json:"diskAllocated"`
}

// Aggregate sums the commitments of the workloads bound to nodeID. Workloads
// belonging to other nodes are skipped; a workload without a disk reservation
// contributes zero disk.
func Aggregate(nodeID string, workloads []*models.Workload) *Usage {
	usage := &Usage{NodeID: nodeID}
	for _, w := range workloads {
		if w.NodeID != nodeID {
			continue
		}
		usage.Workloads++
		usage.CPUAllocated += w.CPUPercent
		usage.MemoryAllocated += w.MemoryMiB * bytesPerMiB
		usage.DiskAllocated += w.DiskMiB * bytesPerMiB
	}
	return usage
}

// AggregateAll computes usage for every node in one pass over the workload
// list. Every node gets an entry, committed or not.
func AggregateAll(nodes []*models.Node, workloads []*models.Workload) map[string]*Usage {
	byNode := make(map[string]*Usage, len(nodes))
	for _, n := range nodes {
		byNode[n.ID] = &Usage{NodeID: n.ID}
	}
	for _, w := range workloads {
		usage, ok := byNode[w.NodeID]
		if !ok {
			// Workload points at a node we no longer track; integrity
			// audit reports these separately.
			continue
		}
		usage.Workloads++
		usage.CPUAllocated += w.CPUPercent
		usage.MemoryAllocated += w.MemoryMiB * bytesPerMiB
		usage.DiskAllocated += w.DiskMiB * bytesPerMiB
	}
	return byNode
}
