package models

import (
	"fmt"
	"time"
)

// AllocationType is the JSON-LD @type for allocations.
const AllocationType = "PortMapping"

// Allocation is one entry of a node's allocation pool: a bindAddress:port
// endpoint that a workload may bind.
//
// Assigned is a read projection owned by the workload side: it is true iff
// exactly one active workload on the node binds (BindAddress, Port). The pool
// only creates and destroys unassigned allocations and refuses to destroy
// assigned ones; it never toggles the flag itself.
//
// (NodeID, BindAddress, Port) is unique. Seq orders the pool by creation.
type Allocation struct {
	Context string `json:"@context" jsonld:"@context"`
	Type    string `json:"@type" jsonld:"@type"`
	ID      string `json:"@id" jsonld:"@id"`

	// NodeID references the owning node
	NodeID string `json:"nodeId" jsonld:"isPartOf"`

	// BindAddress is the address workloads bind, an IP literal in practice.
	// Validation only requires it to be non-empty.
	BindAddress string `json:"bindAddress" jsonld:"bindAddress"`

	// Port is the allocated port (1-65535)
	Port int `json:"port" jsonld:"port"`

	// Alias is an optional display name for the endpoint
	Alias string `json:"alias,omitempty" jsonld:"alternateName"`

	// Notes is optional operator free text
	Notes string `json:"notes,omitempty" jsonld:"description"`

	// Assigned reports whether an active workload binds this endpoint
	Assigned bool `json:"assigned" jsonld:"assigned"`

	// Seq is the creation sequence within the node's pool
	Seq uint64 `json:"seq"`

	// CreatedAt is the allocation creation timestamp
	CreatedAt time.Time `json:"dateCreated,omitempty" jsonld:"dateCreated"`
}

// Endpoint returns the bindAddress:port pair as a single string.
func (a *Allocation) Endpoint() string {
	return fmt.Sprintf("%s:%d", a.BindAddress, a.Port)
}
