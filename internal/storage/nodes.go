package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/portico-hosting/portico/models"
)

// SaveNode saves a node to the database. It handles both create and update
// and keeps the name index consistent: names are unique case-insensitively,
// and a rename releases the old name in the same transaction.
func (s *Storage) SaveNode(node *models.Node) error {
	if node.Context == "" {
		node.Context = models.DefaultContext
	}
	if node.Type == "" {
		node.Type = models.NodeType
	}
	now := time.Now()
	if node.CreatedAt.IsZero() {
		node.CreatedAt = now
	}
	node.UpdatedAt = now

	return s.db.Update(func(tx *bolt.Tx) error {
		nodes := tx.Bucket([]byte(bucketNodes))
		names := tx.Bucket([]byte(idxNodesByName))

		nameKey := []byte(strings.ToLower(node.Name))
		if owner := names.Get(nameKey); owner != nil && string(owner) != node.ID {
			return ErrNameTaken
		}

		// On update, preserve the original creation time and release the
		// previous name if the node was renamed.
		if existing := nodes.Get([]byte(node.ID)); existing != nil {
			var prev models.Node
			if err := json.Unmarshal(existing, &prev); err == nil {
				if prev.Name != node.Name {
					names.Delete([]byte(strings.ToLower(prev.Name)))
				}
				if !prev.CreatedAt.IsZero() {
					node.CreatedAt = prev.CreatedAt
				}
			}
		}

		data, err := json.Marshal(node)
		if err != nil {
			return err
		}
		if err := nodes.Put([]byte(node.ID), data); err != nil {
			return err
		}
		return names.Put(nameKey, []byte(node.ID))
	})
}

// UpdateNode updates an existing node in the database.
// This is an alias for SaveNode which handles both create and update operations.
func (s *Storage) UpdateNode(node *models.Node) error {
	return s.SaveNode(node)
}

// TouchNodeStatus updates only a node's reachability fields, leaving the
// rest of the document and its indexes untouched.
func (s *Storage) TouchNodeStatus(id string, online bool, checkedAt time.Time) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		nodes := tx.Bucket([]byte(bucketNodes))
		data := nodes.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("node %s: %w", id, ErrNotFound)
		}

		var node models.Node
		if err := json.Unmarshal(data, &node); err != nil {
			return fmt.Errorf("failed to unmarshal node %s: %w", id, err)
		}
		node.Online = online
		node.LastChecked = checkedAt

		updated, err := json.Marshal(&node)
		if err != nil {
			return err
		}
		return nodes.Put([]byte(id), updated)
	})
}

// GetNode retrieves a node by ID.
func (s *Storage) GetNode(id string) (*models.Node, error) {
	var node models.Node
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucketNodes)).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("node %s: %w", id, ErrNotFound)
		}
		return json.Unmarshal(data, &node)
	})
	if err != nil {
		return nil, err
	}
	return &node, nil
}

// GetNodeByName retrieves a node by its unique name (case-insensitive).
func (s *Storage) GetNodeByName(name string) (*models.Node, error) {
	var node models.Node
	err := s.db.View(func(tx *bolt.Tx) error {
		id := tx.Bucket([]byte(idxNodesByName)).Get([]byte(strings.ToLower(name)))
		if id == nil {
			return fmt.Errorf("node %q: %w", name, ErrNotFound)
		}
		data := tx.Bucket([]byte(bucketNodes)).Get(id)
		if data == nil {
			return fmt.Errorf("node %q: %w", name, ErrNotFound)
		}
		return json.Unmarshal(data, &node)
	})
	if err != nil {
		return nil, err
	}
	return &node, nil
}

// ListNodes retrieves all nodes matching the given filters.
// Supported filter keys: "location" (datacenter), "online" ("true"/"false").
func (s *Storage) ListNodes(filters map[string]string) ([]*models.Node, error) {
	var nodes []*models.Node

	err := s.db.View(func(tx *bolt.Tx) error {
		cursor := tx.Bucket([]byte(bucketNodes)).Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			var node models.Node
			if err := json.Unmarshal(v, &node); err != nil {
				continue
			}
			if !matchNodeFilters(&node, filters) {
				continue
			}
			nodes = append(nodes, &node)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.debugLog("ListNodes returned %d nodes (filters: %v)", len(nodes), filters)
	return nodes, nil
}

func matchNodeFilters(node *models.Node, filters map[string]string) bool {
	for field, value := range filters {
		switch field {
		case "location":
			if node.Datacenter != value {
				return false
			}
		case "online":
			if fmt.Sprintf("%t", node.Online) != value {
				return false
			}
		}
	}
	return true
}

// DeleteNode deletes a node and cascades its allocation pool. The deletion
// is refused with a NodeInUseError while any workload still references the
// node; the error carries the live workload count.
func (s *Storage) DeleteNode(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		nodes := tx.Bucket([]byte(bucketNodes))
		data := nodes.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("node %s: %w", id, ErrNotFound)
		}

		// Workload references block the deletion outright.
		count := 0
		wlIdx := tx.Bucket([]byte(idxWorkloadsByNode)).Cursor()
		prefix := nodePrefix(id)
		for k, _ := wlIdx.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = wlIdx.Next() {
			count++
		}
		if count > 0 {
			return &NodeInUseError{NodeID: id, Workloads: count}
		}

		// Cascade the allocation pool.
		allocations := tx.Bucket([]byte(bucketAllocations))
		endpoints := tx.Bucket([]byte(idxAllocationsByEndpoint))
		byNode := tx.Bucket([]byte(idxAllocationsByNode))

		var seqKeys [][]byte
		cursor := byNode.Cursor()
		for k, v := cursor.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = cursor.Next() {
			seqKeys = append(seqKeys, append([]byte(nil), k...))
			if raw := allocations.Get(v); raw != nil {
				var alloc models.Allocation
				if err := json.Unmarshal(raw, &alloc); err == nil {
					endpoints.Delete(endpointKey(alloc.NodeID, alloc.BindAddress, alloc.Port))
				}
			}
			allocations.Delete(v)
		}
		for _, k := range seqKeys {
			byNode.Delete(k)
		}

		var node models.Node
		if err := json.Unmarshal(data, &node); err == nil {
			tx.Bucket([]byte(idxNodesByName)).Delete([]byte(strings.ToLower(node.Name)))
		}
		return nodes.Delete([]byte(id))
	})
}

// CountNodes returns the number of stored nodes.
func (s *Storage) CountNodes() (int, error) {
	count := 0
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket([]byte(bucketNodes)).Stats().KeyN
		return nil
	})
	return count, err
}
