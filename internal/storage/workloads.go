package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/portico-hosting/portico/models"
)

// SaveWorkload stores the pushed view of a workload. Workload lifecycle is
// owned elsewhere (the panel's application layer and the node agents push
// state here); storage only keeps the latest copy and the per-node index.
func (s *Storage) SaveWorkload(workload *models.Workload) error {
	if workload.Context == "" {
		workload.Context = models.DefaultContext
	}
	if workload.Type == "" {
		workload.Type = models.WorkloadType
	}
	now := time.Now()
	if workload.CreatedAt.IsZero() {
		workload.CreatedAt = now
	}
	workload.UpdatedAt = now

	return s.db.Update(func(tx *bolt.Tx) error {
		workloads := tx.Bucket([]byte(bucketWorkloads))
		byNode := tx.Bucket([]byte(idxWorkloadsByNode))

		// A workload moving between nodes must leave the old node's index.
		if existing := workloads.Get([]byte(workload.ID)); existing != nil {
			var prev models.Workload
			if err := json.Unmarshal(existing, &prev); err == nil {
				if !prev.CreatedAt.IsZero() {
					workload.CreatedAt = prev.CreatedAt
				}
				if prev.NodeID != workload.NodeID {
					byNode.Delete(workloadNodeKey(prev.NodeID, prev.ID))
				}
			}
		}

		data, err := json.Marshal(workload)
		if err != nil {
			return err
		}
		if err := workloads.Put([]byte(workload.ID), data); err != nil {
			return err
		}
		return byNode.Put(workloadNodeKey(workload.NodeID, workload.ID), []byte(workload.ID))
	})
}

func workloadNodeKey(nodeID, workloadID string) []byte {
	return []byte(fmt.Sprintf("%s\x00%s", nodeID, workloadID))
}

// GetWorkload retrieves a workload by ID.
func (s *Storage) GetWorkload(id string) (*models.Workload, error) {
	var workload models.Workload
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucketWorkloads)).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("workload %s: %w", id, ErrNotFound)
		}
		return json.Unmarshal(data, &workload)
	})
	if err != nil {
		return nil, err
	}
	return &workload, nil
}

// ListWorkloads retrieves all workloads matching the given filters.
// Supported filter keys: "nodeId", "status".
func (s *Storage) ListWorkloads(filters map[string]string) ([]*models.Workload, error) {
	var workloads []*models.Workload

	err := s.db.View(func(tx *bolt.Tx) error {
		cursor := tx.Bucket([]byte(bucketWorkloads)).Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			var workload models.Workload
			if err := json.Unmarshal(v, &workload); err != nil {
				continue
			}
			if !matchWorkloadFilters(&workload, filters) {
				continue
			}
			workloads = append(workloads, &workload)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return workloads, nil
}

func matchWorkloadFilters(workload *models.Workload, filters map[string]string) bool {
	for field, value := range filters {
		switch field {
		case "nodeId":
			if workload.NodeID != value {
				return false
			}
		case "status":
			if workload.Status != value {
				return false
			}
		}
	}
	return true
}

// ListWorkloadsByNode retrieves all workloads hosted on a specific node.
func (s *Storage) ListWorkloadsByNode(nodeID string) ([]*models.Workload, error) {
	var workloads []*models.Workload

	err := s.db.View(func(tx *bolt.Tx) error {
		docs := tx.Bucket([]byte(bucketWorkloads))
		cursor := tx.Bucket([]byte(idxWorkloadsByNode)).Cursor()
		prefix := nodePrefix(nodeID)

		for k, v := cursor.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = cursor.Next() {
			data := docs.Get(v)
			if data == nil {
				continue
			}
			var workload models.Workload
			if err := json.Unmarshal(data, &workload); err != nil {
				continue
			}
			workloads = append(workloads, &workload)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return workloads, nil
}

// CountWorkloadsByNode returns the number of workloads referencing the node.
func (s *Storage) CountWorkloadsByNode(nodeID string) (int, error) {
	count := 0
	err := s.db.View(func(tx *bolt.Tx) error {
		cursor := tx.Bucket([]byte(idxWorkloadsByNode)).Cursor()
		prefix := nodePrefix(nodeID)
		for k, _ := cursor.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = cursor.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// DeleteWorkload removes a workload and its node index entry.
func (s *Storage) DeleteWorkload(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		workloads := tx.Bucket([]byte(bucketWorkloads))
		data := workloads.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("workload %s: %w", id, ErrNotFound)
		}

		var workload models.Workload
		if err := json.Unmarshal(data, &workload); err != nil {
			return err
		}
		if err := tx.Bucket([]byte(idxWorkloadsByNode)).Delete(workloadNodeKey(workload.NodeID, workload.ID)); err != nil {
			return err
		}
		return workloads.Delete([]byte(id))
	})
}
