package storage

import (
	"encoding/json"
	"fmt"
	"sort"

	bolt "go.etcd.io/bbolt"

	"github.com/portico-hosting/portico/models"
)

// SavePlanRecord stores the outcome of a plan application.
func (s *Storage) SavePlanRecord(record *models.PlanRecord) error {
	if record.Context == "" {
		record.Context = models.DefaultContext
	}
	if record.Type == "" {
		record.Type = models.PlanType
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		return tx.Bucket([]byte(bucketPlans)).Put([]byte(record.ID), data)
	})
}

// GetPlanRecord retrieves an applied plan record by ID.
func (s *Storage) GetPlanRecord(id string) (*models.PlanRecord, error) {
	var record models.PlanRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucketPlans)).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("plan %s: %w", id, ErrNotFound)
		}
		return json.Unmarshal(data, &record)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListPlanRecords returns all applied plan records, most recent first.
func (s *Storage) ListPlanRecords() ([]*models.PlanRecord, error) {
	var records []*models.PlanRecord

	err := s.db.View(func(tx *bolt.Tx) error {
		cursor := tx.Bucket([]byte(bucketPlans)).Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			var record models.PlanRecord
			if err := json.Unmarshal(v, &record); err != nil {
				continue
			}
			records = append(records, &record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].AppliedAt.After(records[j].AppliedAt)
	})
	return records, nil
}
