// Package storage provides the storage layer for Portico using bbolt.
// Entities are stored as JSON documents in per-type buckets, with index
// buckets for lookups that must stay consistent with the primary record
// (node names, allocation endpoints, per-node orderings). All multi-step
// rules run inside a single bbolt transaction so invariant failures never
// partially mutate state.
package storage

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/portico-hosting/portico/internal/config"
)

// Bucket names. The idx_ buckets are derived data maintained in the same
// transaction as their primary bucket.
const (
	bucketNodes              = "nodes"
	bucketAllocations        = "allocations"
	bucketWorkloads          = "workloads"
	bucketPlans              = "plans"
	bucketMeta               = "meta"
	idxNodesByName           = "idx_nodes_by_name"
	idxAllocationsByNode     = "idx_allocations_by_node"
	idxAllocationsByEndpoint = "idx_allocations_by_endpoint"
	idxWorkloadsByNode       = "idx_workloads_by_node"
)

// CurrentSchemaVersion is bumped whenever a migration is added.
const CurrentSchemaVersion = 1

// Sentinel errors returned by storage operations. Callers match them with
// errors.Is to map onto the API error taxonomy.
var (
	// ErrNotFound is returned when the requested document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrConflict is returned when a create collides with an existing
	// document (duplicate allocation endpoint).
	ErrConflict = errors.New("document already exists")

	// ErrNameTaken is returned when a node name is already in use by
	// another node.
	ErrNameTaken = errors.New("node name already in use")

	// ErrAllocationAssigned is returned when deleting an allocation that
	// an active workload currently binds.
	ErrAllocationAssigned = errors.New("allocation is assigned to a workload")
)

// NodeInUseError reports a refused node deletion: the node still hosts
// workloads. It is distinct from ErrConflict so callers can surface the
// workload count to the operator.
type NodeInUseError struct {
	NodeID    string
	Workloads int
}

func (e *NodeInUseError) Error() string {
	return fmt.Sprintf("node %s still hosts %d workload(s)", e.NodeID, e.Workloads)
}

// Storage provides the main storage interface for Portico.
// It wraps a bbolt database file and provides type-safe operations
// for Portico entities.
type Storage struct {
	db     *bolt.DB
	config *config.Config
}

// debugLog logs a message only if debug mode is enabled in config
func (s *Storage) debugLog(format string, args ...interface{}) {
	if s.config.Server.Debug {
		log.Printf(format, args...)
	}
}

// New creates a new Storage instance from the application configuration.
// It opens (or creates) the database file and ensures the schema exists.
func New(cfg *config.Config) (*Storage, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	db, err := bolt.Open(cfg.Storage.Path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	storage := &Storage{
		db:     db,
		config: cfg,
	}

	if err := storage.initializeSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	return storage, nil
}

// initializeSchema creates the buckets and runs pending migrations.
func (s *Storage) initializeSchema() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		buckets := []string{
			bucketNodes, bucketAllocations, bucketWorkloads,
			bucketPlans, bucketMeta,
		}
		for _, bucket := range buckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				return err
			}
		}
		return s.runMigrations(tx)
	})
}

func (s *Storage) runMigrations(tx *bolt.Tx) error {
	meta := tx.Bucket([]byte(bucketMeta))

	currentVersion := 0
	if data := meta.Get([]byte("schema_version")); data != nil {
		fmt.Sscanf(string(data), "%d", &currentVersion)
	}

	for version := currentVersion + 1; version <= CurrentSchemaVersion; version++ {
		if err := s.runMigration(tx, version); err != nil {
			return fmt.Errorf("migration %d failed: %w", version, err)
		}
		s.debugLog("applied storage migration %d", version)
	}

	return meta.Put([]byte("schema_version"), []byte(fmt.Sprintf("%d", CurrentSchemaVersion)))
}

func (s *Storage) runMigration(tx *bolt.Tx, version int) error {
	switch version {
	case 1:
		return s.migration001InitialIndexes(tx)
	default:
		return fmt.Errorf("unknown migration version: %d", version)
	}
}

func (s *Storage) migration001InitialIndexes(tx *bolt.Tx) error {
	indexBuckets := []string{
		idxNodesByName,
		idxAllocationsByNode,
		idxAllocationsByEndpoint,
		idxWorkloadsByNode,
	}
	for _, bucket := range indexBuckets {
		if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database file.
func (s *Storage) Close() error {
	return s.db.Close()
}

// Info reports database file facts for the health endpoint.
type Info struct {
	Path          string `json:"path"`
	SizeBytes     int64  `json:"sizeBytes"`
	Nodes         int    `json:"nodes"`
	Allocations   int    `json:"allocations"`
	Workloads     int    `json:"workloads"`
	Plans         int    `json:"plans"`
	SchemaVersion int    `json:"schemaVersion"`
}

// GetInfo returns counts and file size in one read transaction. It doubles as
// the liveness check: a failure here means the database file is gone or
// corrupt.
func (s *Storage) GetInfo() (*Info, error) {
	info := &Info{Path: s.config.Storage.Path}

	err := s.db.View(func(tx *bolt.Tx) error {
		info.SizeBytes = tx.Size()
		info.Nodes = tx.Bucket([]byte(bucketNodes)).Stats().KeyN
		info.Allocations = tx.Bucket([]byte(bucketAllocations)).Stats().KeyN
		info.Workloads = tx.Bucket([]byte(bucketWorkloads)).Stats().KeyN
		info.Plans = tx.Bucket([]byte(bucketPlans)).Stats().KeyN

		if data := tx.Bucket([]byte(bucketMeta)).Get([]byte("schema_version")); data != nil {
			fmt.Sscanf(string(data), "%d", &info.SchemaVersion)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

// Update executes a function in a read-write transaction.
// This is used by the integrity service to access the database directly.
func (s *Storage) Update(fn func(*bolt.Tx) error) error {
	return s.db.Update(fn)
}

// View executes a function in a read-only transaction.
func (s *Storage) View(fn func(*bolt.Tx) error) error {
	return s.db.View(fn)
}

// Composite index keys. The NUL separator cannot occur in IDs or bind
// addresses; ports and sequence numbers are zero-padded so lexical order
// matches numeric order.

func endpointKey(nodeID, bindAddress string, port int) []byte {
	return []byte(fmt.Sprintf("%s\x00%s\x00%05d", nodeID, bindAddress, port))
}

func nodeSeqKey(nodeID string, seq uint64) []byte {
	return []byte(fmt.Sprintf("%s\x00%020d", nodeID, seq))
}

func nodePrefix(nodeID string) []byte {
	return []byte(nodeID + "\x00")
}
