// Package registry holds the authoritative in-memory view of the node fleet.
// Every mutation goes through the registry, which applies it to storage and
// then performs one full refresh, re-attaching to each node its allocation
// pool partition, its resource aggregation, and its last known reachability.
// Handlers read derived views from the refreshed snapshot instead of keeping
// their own cached copies.
//
// Probes fired during a refresh are advisory: they run in the background
// against every node believed online, and a failure downgrades the node to
// "unknown" without failing anything. Definitive online/offline transitions
// come only from explicit probes and the periodic sweep.
package registry

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/portico-hosting/portico/internal/notify"
	"github.com/portico-hosting/portico/internal/paging"
	"github.com/portico-hosting/portico/internal/pool"
	"github.com/portico-hosting/portico/internal/probe"
	"github.com/portico-hosting/portico/internal/resources"
	"github.com/portico-hosting/portico/internal/storage"
	"github.com/portico-hosting/portico/models"
)

// State classifies a node's last observed reachability.
type State string

const (
	StateOnline  State = "online"
	StateOffline State = "offline"
	StateUnknown State = "unknown"
)

// NodeView is one node with everything the refresh re-attached: the pool
// partition, the resource aggregation, and the reachability snapshot. Views
// are immutable once published; a later probe or refresh replaces the whole
// view rather than mutating it.
type NodeView struct {
	Node       *models.Node           `json:"node"`
	Assigned   []*models.Allocation   `json:"assigned"`
	Unassigned []*models.Allocation   `json:"unassigned"`
	Usage      *resources.Usage       `json:"usage"`
	State      State                  `json:"state"`
	Snapshot   *models.SystemSnapshot `json:"snapshot,omitempty"`
}

// PoolSize returns the total number of allocations in the node's pool.
func (v *NodeView) PoolSize() int {
	return len(v.Assigned) + len(v.Unassigned)
}

// Registry is the in-memory node registry.
type Registry struct {
	store   *storage.Storage
	pools   *pool.Manager
	prober  *probe.Prober
	notices *notify.Queue

	mu       sync.RWMutex
	views    map[string]*NodeView
	order    []string
	selected string
}

// New creates a registry. Call Refresh before serving reads.
func New(store *storage.Storage, pools *pool.Manager, prober *probe.Prober, notices *notify.Queue) *Registry {
	return &Registry{
		store:   store,
		pools:   pools,
		prober:  prober,
		notices: notices,
		views:   make(map[string]*NodeView),
	}
}

// Refresh rebuilds the whole snapshot from storage and fires advisory probes
// at every node believed online. It is called once on startup and once after
// every command; reads between refreshes see a consistent snapshot.
func (r *Registry) Refresh(ctx context.Context) error {
	nodes, err := r.store.ListNodes(nil)
	if err != nil {
		return fmt.Errorf("failed to list nodes: %w", err)
	}
	workloads, err := r.store.ListWorkloads(nil)
	if err != nil {
		return fmt.Errorf("failed to list workloads: %w", err)
	}

	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Name < nodes[j].Name })

	usage := resources.AggregateAll(nodes, workloads)
	workloadsByNode := make(map[string][]*models.Workload)
	for _, w := range workloads {
		workloadsByNode[w.NodeID] = append(workloadsByNode[w.NodeID], w)
	}

	r.mu.RLock()
	prev := r.views
	r.mu.RUnlock()

	views := make(map[string]*NodeView, len(nodes))
	order := make([]string, 0, len(nodes))
	var targets []*models.Node

	for _, node := range nodes {
		allocations, err := r.store.ListAllocationsByNode(node.ID)
		if err != nil {
			return fmt.Errorf("failed to list allocations for %s: %w", node.ID, err)
		}
		pool.Project(allocations, workloadsByNode[node.ID])
		part := pool.Split(allocations)

		view := &NodeView{
			Node:       node,
			Assigned:   part.Assigned,
			Unassigned: part.Unassigned,
			Usage:      usage[node.ID],
			State:      StateUnknown,
		}
		if old, ok := prev[node.ID]; ok {
			view.State = old.State
			view.Snapshot = old.Snapshot
		} else if node.Online {
			view.State = StateOnline
		}

		views[node.ID] = view
		order = append(order, node.ID)
		if view.State == StateOnline {
			targets = append(targets, node)
		}
	}

	r.mu.Lock()
	r.views = views
	r.order = order
	if r.selected != "" {
		if _, ok := views[r.selected]; !ok {
			r.selected = ""
		}
	}
	r.mu.Unlock()

	// Fire-and-forget: results land whenever they land, each downgrading
	// to unknown on failure. Background context so the probes outlive the
	// request that triggered the refresh.
	for _, node := range targets {
		go func(n *models.Node) {
			probeCtx, cancel := context.WithTimeout(context.Background(), probe.DefaultTimeout)
			defer cancel()
			r.applyProbe(r.prober.Check(probeCtx, n), false)
		}(node)
	}

	return nil
}

// List returns all node views in name order.
func (r *Registry) List() []*NodeView {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*NodeView, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.views[id])
	}
	return out
}

// View returns the current view of one node.
func (r *Registry) View(nodeID string) (*NodeView, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	view, ok := r.views[nodeID]
	return view, ok
}

// Page renders one page of a node's partitioned pool. The requested page is
// clamped against the live pool size first, so a view can never point past
// the end after deletions.
func (r *Registry) Page(nodeID string, page, limit int) (*paging.View, error) {
	view, ok := r.View(nodeID)
	if !ok {
		return nil, fmt.Errorf("node %s: %w", nodeID, storage.ErrNotFound)
	}

	w := paging.NewWindow(page, limit).Clamp(view.PoolSize())
	return paging.Slice(view.Assigned, view.Unassigned, w), nil
}

// Select marks a node as the currently selected one. Selection survives
// refreshes as long as the node does; deleting the node clears it.
func (r *Registry) Select(nodeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.views[nodeID]; !ok {
		return fmt.Errorf("node %s: %w", nodeID, storage.ErrNotFound)
	}
	r.selected = nodeID
	return nil
}

// Selected returns the currently selected node's view, or nil when nothing
// is selected.
func (r *Registry) Selected() *NodeView {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.selected == "" {
		return nil
	}
	return r.views[r.selected]
}

// ClearSelection drops the current selection.
func (r *Registry) ClearSelection() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selected = ""
}

// applyProbe folds one probe result into the snapshot. definitive results
// flip the persisted online flag both ways; advisory results only confirm
// online or downgrade to unknown.
func (r *Registry) applyProbe(result probe.Result, definitive bool) {
	r.mu.Lock()
	old, ok := r.views[result.NodeID]
	if !ok {
		// Node was deleted while the probe was in flight.
		r.mu.Unlock()
		return
	}

	view := *old
	node := *old.Node
	view.Node = &node
	node.LastChecked = result.CheckedAt

	persist := false
	switch {
	case result.Online:
		view.State = StateOnline
		if result.Snapshot != nil {
			view.Snapshot = result.Snapshot
		}
		persist = !node.Online || definitive
		node.Online = true
	case definitive:
		view.State = StateOffline
		node.Online = false
		persist = true
	default:
		view.State = StateUnknown
	}

	r.views[result.NodeID] = &view
	r.mu.Unlock()

	if persist {
		if err := r.store.TouchNodeStatus(result.NodeID, node.Online, result.CheckedAt); err != nil {
			log.Printf("Warning: failed to persist status of %s: %v", result.NodeID, err)
		}
	}
	if definitive && !result.Online {
		r.notices.Warning(fmt.Sprintf("node %s is unreachable: %s", node.Name, result.Error))
	}
}

// ProbeNode probes one node synchronously and applies the result as a
// definitive transition. The result itself is returned so callers can show
// it; probe failure is state, not an error.
func (r *Registry) ProbeNode(ctx context.Context, nodeID string) (probe.Result, error) {
	view, ok := r.View(nodeID)
	if !ok {
		return probe.Result{}, fmt.Errorf("node %s: %w", nodeID, storage.ErrNotFound)
	}

	result := r.prober.Check(ctx, view.Node)
	r.applyProbe(result, true)
	return result, nil
}

// ProbeSweep probes every node in parallel and applies all results as
// definitive transitions. Used by the periodic sweep, it is also the path
// on which offline nodes are discovered to be back.
func (r *Registry) ProbeSweep(ctx context.Context) map[string]probe.Result {
	r.mu.RLock()
	nodes := make([]*models.Node, 0, len(r.order))
	for _, id := range r.order {
		nodes = append(nodes, r.views[id].Node)
	}
	r.mu.RUnlock()

	results := r.prober.CheckAll(ctx, nodes)
	for _, result := range results {
		r.applyProbe(result, true)
	}
	return results
}
