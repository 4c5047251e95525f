package models

import (
	"fmt"
	"time"
)

// DefaultContext is the JSON-LD @context applied to documents created by the API.
const DefaultContext = "https://schema.org"

// NodeType is the JSON-LD @type for nodes.
const NodeType = "ComputerSystem"

// Node represents a machine that runs hosted workloads and owns a pool of
// port allocations. It follows the Schema.org ComputerSystem type with
// hosting-specific fields.
//
// JSON-LD Context: https://schema.org
// Type: ComputerSystem
//
// The Node model includes:
//   - Basic identification (@id, name)
//   - Daemon endpoint (fqdn, port)
//   - Status snapshot (isOnline, lastChecked), owned by the prober
//   - Daemon credential (connectionKey), minted elsewhere and stored opaquely
//
// Each node owns an allocation pool (Allocation.NodeID) and hosts workloads
// (Workload.NodeID). A node cannot be deleted while workloads reference it.
//
// Example JSON representation:
//
//	{
//	  "@context": "https://schema.org",
//	  "@type": "ComputerSystem",
//	  "@id": "node:3f8a...",
//	  "name": "node-us-01",
//	  "fqdn": "n1.us.example.com",
//	  "port": 8443,
//	  "isOnline": true,
//	  "lastChecked": "2026-08-20T10:00:00Z",
//	  "location": "us-west-2"
//	}
type Node struct {
	// Context is the JSON-LD @context URL (typically https://schema.org)
	Context string `json:"@context" jsonld:"@context"`

	// Type is the JSON-LD @type (ComputerSystem for nodes)
	Type string `json:"@type" jsonld:"@type"`

	// ID is the unique node identifier
	ID string `json:"@id" jsonld:"@id"`

	// Name is the human-readable node name (required, unique, max 100 chars)
	Name string `json:"name" jsonld:"name"`

	// FQDN is the daemon hostname: a fully qualified domain name or an
	// IPv4 literal (required)
	FQDN string `json:"fqdn" jsonld:"fqdn"`

	// Port is the daemon port (1-65535)
	Port int `json:"port" jsonld:"port"`

	// Online is the last observed daemon reachability
	Online bool `json:"isOnline" jsonld:"isOnline"`

	// LastChecked is when the status snapshot was last refreshed
	LastChecked time.Time `json:"lastChecked,omitempty" jsonld:"lastChecked"`

	// ConnectionKey is the daemon credential. Its lifecycle is external:
	// the panel stores it verbatim and never mints or rotates it.
	ConnectionKey string `json:"connectionKey,omitempty" jsonld:"connectionKey"`

	// Datacenter is the physical or logical location of the node
	Datacenter string `json:"location,omitempty" jsonld:"location"`

	// CreatedAt is the node creation timestamp
	CreatedAt time.Time `json:"dateCreated,omitempty" jsonld:"dateCreated"`

	// UpdatedAt is the last update timestamp
	UpdatedAt time.Time `json:"dateModified,omitempty" jsonld:"dateModified"`
}

// Address returns the daemon endpoint as host:port.
func (n *Node) Address() string {
	return fmt.Sprintf("%s:%d", n.FQDN, n.Port)
}
