// Package pool implements allocation pool operations for a node: single and
// range creation, deletion, and the assigned/unassigned partition. The pool
// owns bindAddress:port endpoints; whether an endpoint is assigned is a read
// projection over the node's active workloads and is recomputed on demand,
// never stored authoritatively.
//
// Mutations are synchronous and effectively single-writer per pool: every
// multi-step rule runs inside one storage transaction, and the storage engine
// serializes write transactions.
package pool

import (
	"errors"
	"fmt"
	"strings"

	"github.com/portico-hosting/portico/internal/storage"
	"github.com/portico-hosting/portico/models"
)

// Valid port bounds for allocations.
const (
	MinPort = 1
	MaxPort = 65535
)

// ErrInvalidArgument is returned when an operation is rejected before
// touching storage: out-of-range ports, inverted ranges, empty bind
// addresses. Callers map it onto a 400 response.
var ErrInvalidArgument = errors.New("invalid argument")

// Manager performs allocation pool operations against storage.
type Manager struct {
	store *storage.Storage
}

// NewManager creates a pool manager on top of the given storage.
func NewManager(store *storage.Storage) *Manager {
	return &Manager{store: store}
}

// CreateSingle creates one allocation on the node. It returns
// storage.ErrConflict when the endpoint already exists and ErrInvalidArgument
// when the port or bind address is invalid.
func (m *Manager) CreateSingle(nodeID, bindAddress string, port int, alias, notes string) (*models.Allocation, error) {
	if err := validateBindAddress(bindAddress); err != nil {
		return nil, err
	}
	if port < MinPort || port > MaxPort {
		return nil, fmt.Errorf("port %d out of range %d-%d: %w", port, MinPort, MaxPort, ErrInvalidArgument)
	}

	alloc := &models.Allocation{
		ID:          models.GenerateID("allocation"),
		NodeID:      nodeID,
		BindAddress: bindAddress,
		Port:        port,
		Alias:       alias,
		Notes:       notes,
	}
	if err := m.store.CreateAllocation(alloc); err != nil {
		return nil, err
	}
	return alloc, nil
}

// CreateRange creates every missing allocation in the inclusive port range
// [start, end] on one (node, bindAddress) pair and returns only the newly
// created subset, in ascending port order. Existing ports are silently
// skipped, so the operation is idempotent: a second identical call returns
// an empty slice.
func (m *Manager) CreateRange(nodeID, bindAddress string, start, end int, alias, notes string) ([]*models.Allocation, error) {
	if err := validateBindAddress(bindAddress); err != nil {
		return nil, err
	}
	if start < MinPort || start > MaxPort || end < MinPort || end > MaxPort {
		return nil, fmt.Errorf("range %d-%d out of bounds %d-%d: %w", start, end, MinPort, MaxPort, ErrInvalidArgument)
	}
	if start > end {
		return nil, fmt.Errorf("range start %d after end %d: %w", start, end, ErrInvalidArgument)
	}

	return m.store.CreateAllocationRange(nodeID, bindAddress, start, end, alias, notes)
}

// Delete removes one allocation from the node's pool. It returns
// storage.ErrNotFound when the allocation does not exist on this node and
// storage.ErrAllocationAssigned when an active workload binds the endpoint.
// The assigned check runs inside the delete transaction, so no state changes
// on refusal.
func (m *Manager) Delete(nodeID, allocationID string) error {
	alloc, err := m.store.GetAllocation(allocationID)
	if err != nil {
		return err
	}
	if alloc.NodeID != nodeID {
		return fmt.Errorf("allocation %s on node %s: %w", allocationID, nodeID, storage.ErrNotFound)
	}
	return m.store.DeleteAllocation(allocationID)
}

// List returns the node's pool in creation order with the assigned
// projection applied.
func (m *Manager) List(nodeID string) ([]*models.Allocation, error) {
	allocations, err := m.store.ListAllocationsByNode(nodeID)
	if err != nil {
		return nil, err
	}
	workloads, err := m.store.ListWorkloadsByNode(nodeID)
	if err != nil {
		return nil, err
	}
	Project(allocations, workloads)
	return allocations, nil
}

// Partition splits the node's pool into its assigned and unassigned groups.
func (m *Manager) Partition(nodeID string) (*Partition, error) {
	allocations, err := m.List(nodeID)
	if err != nil {
		return nil, err
	}
	return Split(allocations), nil
}

func validateBindAddress(bindAddress string) error {
	if strings.TrimSpace(bindAddress) == "" {
		return fmt.Errorf("bind address must not be empty: %w", ErrInvalidArgument)
	}
	return nil
}
