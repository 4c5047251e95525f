package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/portico-hosting/portico/models"
)

// CreateAllocation creates a single allocation. It returns ErrConflict when
// the (node, bindAddress, port) endpoint already exists and ErrNotFound when
// the node does not. The endpoint index and the per-node ordering index are
// written in the same transaction as the document.
func (s *Storage) CreateAllocation(alloc *models.Allocation) error {
	if alloc.Context == "" {
		alloc.Context = models.DefaultContext
	}
	if alloc.Type == "" {
		alloc.Type = models.AllocationType
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(bucketNodes)).Get([]byte(alloc.NodeID)) == nil {
			return fmt.Errorf("node %s: %w", alloc.NodeID, ErrNotFound)
		}

		endpoints := tx.Bucket([]byte(idxAllocationsByEndpoint))
		epKey := endpointKey(alloc.NodeID, alloc.BindAddress, alloc.Port)
		if endpoints.Get(epKey) != nil {
			return fmt.Errorf("allocation %s on node %s: %w", alloc.Endpoint(), alloc.NodeID, ErrConflict)
		}

		return putAllocation(tx, alloc)
	})
}

// CreateAllocationRange creates every missing allocation in the inclusive
// port range [start, end] for one (node, bindAddress) pair. Ports that
// already exist are silently skipped, which makes the operation idempotent:
// a second identical call returns an empty slice. The whole range is written
// in a single transaction, so two racing identical ranges cannot create
// duplicate ports.
func (s *Storage) CreateAllocationRange(nodeID, bindAddress string, start, end int, alias, notes string) ([]*models.Allocation, error) {
	var created []*models.Allocation

	err := s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(bucketNodes)).Get([]byte(nodeID)) == nil {
			return fmt.Errorf("node %s: %w", nodeID, ErrNotFound)
		}

		endpoints := tx.Bucket([]byte(idxAllocationsByEndpoint))
		for port := start; port <= end; port++ {
			if endpoints.Get(endpointKey(nodeID, bindAddress, port)) != nil {
				continue
			}
			alloc := &models.Allocation{
				Context:     models.DefaultContext,
				Type:        models.AllocationType,
				ID:          models.GenerateID("allocation"),
				NodeID:      nodeID,
				BindAddress: bindAddress,
				Port:        port,
				Alias:       alias,
				Notes:       notes,
			}
			if err := putAllocation(tx, alloc); err != nil {
				return err
			}
			created = append(created, alloc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.debugLog("created %d allocation(s) on %s for %s:%d-%d", len(created), nodeID, bindAddress, start, end)
	return created, nil
}

// putAllocation writes the document plus both indexes. Seq comes from the
// allocations bucket sequence, so pool order follows creation order.
func putAllocation(tx *bolt.Tx, alloc *models.Allocation) error {
	allocations := tx.Bucket([]byte(bucketAllocations))

	seq, err := allocations.NextSequence()
	if err != nil {
		return err
	}
	alloc.Seq = seq
	if alloc.CreatedAt.IsZero() {
		alloc.CreatedAt = time.Now()
	}

	data, err := json.Marshal(alloc)
	if err != nil {
		return err
	}
	if err := allocations.Put([]byte(alloc.ID), data); err != nil {
		return err
	}
	epKey := endpointKey(alloc.NodeID, alloc.BindAddress, alloc.Port)
	if err := tx.Bucket([]byte(idxAllocationsByEndpoint)).Put(epKey, []byte(alloc.ID)); err != nil {
		return err
	}
	return tx.Bucket([]byte(idxAllocationsByNode)).Put(nodeSeqKey(alloc.NodeID, alloc.Seq), []byte(alloc.ID))
}

// GetAllocation retrieves an allocation by ID.
func (s *Storage) GetAllocation(id string) (*models.Allocation, error) {
	var alloc models.Allocation
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucketAllocations)).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("allocation %s: %w", id, ErrNotFound)
		}
		return json.Unmarshal(data, &alloc)
	})
	if err != nil {
		return nil, err
	}
	return &alloc, nil
}

// ListAllocations returns every allocation in the database, including rows
// whose node no longer exists. Used by the integrity audit; pool reads go
// through ListAllocationsByNode.
func (s *Storage) ListAllocations() ([]*models.Allocation, error) {
	var allocations []*models.Allocation

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketAllocations)).ForEach(func(k, v []byte) error {
			var alloc models.Allocation
			if err := json.Unmarshal(v, &alloc); err != nil {
				return nil
			}
			allocations = append(allocations, &alloc)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return allocations, nil
}

// ListAllocationsByNode returns the node's pool in creation order.
func (s *Storage) ListAllocationsByNode(nodeID string) ([]*models.Allocation, error) {
	var allocations []*models.Allocation

	err := s.db.View(func(tx *bolt.Tx) error {
		docs := tx.Bucket([]byte(bucketAllocations))
		cursor := tx.Bucket([]byte(idxAllocationsByNode)).Cursor()
		prefix := nodePrefix(nodeID)

		for k, v := cursor.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = cursor.Next() {
			data := docs.Get(v)
			if data == nil {
				continue
			}
			var alloc models.Allocation
			if err := json.Unmarshal(data, &alloc); err != nil {
				continue
			}
			allocations = append(allocations, &alloc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return allocations, nil
}

// DeleteAllocation removes an allocation unless an active workload binds its
// endpoint. The assigned check runs against the workloads bucket inside the
// same transaction, so a concurrent workload update cannot slip between the
// check and the delete.
func (s *Storage) DeleteAllocation(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		allocations := tx.Bucket([]byte(bucketAllocations))
		data := allocations.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("allocation %s: %w", id, ErrNotFound)
		}

		var alloc models.Allocation
		if err := json.Unmarshal(data, &alloc); err != nil {
			return err
		}

		if binders := countActiveBinders(tx, alloc.NodeID, alloc.BindAddress, alloc.Port); binders == 1 {
			return fmt.Errorf("allocation %s: %w", alloc.Endpoint(), ErrAllocationAssigned)
		}

		if err := tx.Bucket([]byte(idxAllocationsByEndpoint)).Delete(endpointKey(alloc.NodeID, alloc.BindAddress, alloc.Port)); err != nil {
			return err
		}
		if err := tx.Bucket([]byte(idxAllocationsByNode)).Delete(nodeSeqKey(alloc.NodeID, alloc.Seq)); err != nil {
			return err
		}
		return allocations.Delete([]byte(id))
	})
}

// PurgeAllocation removes an allocation document and the index entries that
// point at it, skipping the assigned-endpoint check. Integrity repair uses it
// to excise rows the normal delete path refuses, such as orphans of a deleted
// node. The endpoint index entry is only removed when it references this row,
// so purging a stray duplicate cannot unlink the surviving one.
func (s *Storage) PurgeAllocation(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		allocations := tx.Bucket([]byte(bucketAllocations))
		data := allocations.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("allocation %s: %w", id, ErrNotFound)
		}

		var alloc models.Allocation
		if err := json.Unmarshal(data, &alloc); err != nil {
			return err
		}

		endpoints := tx.Bucket([]byte(idxAllocationsByEndpoint))
		epKey := endpointKey(alloc.NodeID, alloc.BindAddress, alloc.Port)
		if bytes.Equal(endpoints.Get(epKey), []byte(id)) {
			if err := endpoints.Delete(epKey); err != nil {
				return err
			}
		}
		if err := tx.Bucket([]byte(idxAllocationsByNode)).Delete(nodeSeqKey(alloc.NodeID, alloc.Seq)); err != nil {
			return err
		}
		return allocations.Delete([]byte(id))
	})
}

// CountAllocationsByNode returns the size of the node's pool.
func (s *Storage) CountAllocationsByNode(nodeID string) (int, error) {
	count := 0
	err := s.db.View(func(tx *bolt.Tx) error {
		cursor := tx.Bucket([]byte(idxAllocationsByNode)).Cursor()
		prefix := nodePrefix(nodeID)
		for k, _ := cursor.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = cursor.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// countActiveBinders counts the active workloads on the node that bind the
// given endpoint. An allocation is assigned iff this count is exactly one.
func countActiveBinders(tx *bolt.Tx, nodeID, bindAddress string, port int) int {
	workloads := tx.Bucket([]byte(bucketWorkloads))
	cursor := tx.Bucket([]byte(idxWorkloadsByNode)).Cursor()
	prefix := nodePrefix(nodeID)

	binders := 0
	for k, v := cursor.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = cursor.Next() {
		data := workloads.Get(v)
		if data == nil {
			continue
		}
		var workload models.Workload
		if err := json.Unmarshal(data, &workload); err != nil {
			continue
		}
		if workload.Active() && workload.Binds(bindAddress, port) {
			binders++
		}
	}
	return binders
}
