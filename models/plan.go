package models

import "time"

// PlanType is the JSON-LD @type for applied plan records.
const PlanType = "ItemList"

// PlanDefinition is a declarative provisioning plan: a set of nodes that must
// exist, each with allocation ranges that must be present in its pool.
// Plans are idempotent; applying the same plan twice only reports skips.
//
// Example YAML:
//
//	name: minecraft-eu
//	description: EU game nodes
//	nodes:
//	  - name: node-eu-01
//	    fqdn: n1.eu.example.com
//	    port: 8443
//	    pools:
//	      - bindAddress: "0.0.0.0"
//	        start: 25565
//	        end: 25664
type PlanDefinition struct {
	// Name identifies the plan (required)
	Name string `yaml:"name" json:"name"`

	// Description is optional free text
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Nodes lists the nodes the plan ensures
	Nodes []PlanNode `yaml:"nodes" json:"nodes"`
}

// PlanNode describes one node entry of a provisioning plan.
type PlanNode struct {
	// Name is the node name (required, max 100 chars)
	Name string `yaml:"name" json:"name"`

	// FQDN is the daemon hostname (required)
	FQDN string `yaml:"fqdn" json:"fqdn"`

	// Port is the daemon port (defaults to 8443)
	Port int `yaml:"port,omitempty" json:"port,omitempty"`

	// Datacenter is an optional location label
	Datacenter string `yaml:"datacenter,omitempty" json:"datacenter,omitempty"`

	// Pools lists allocation ranges to ensure on the node
	Pools []PlanPool `yaml:"pools,omitempty" json:"pools,omitempty"`
}

// PlanPool describes one allocation range of a plan node.
type PlanPool struct {
	// BindAddress is the address the range binds (required)
	BindAddress string `yaml:"bindAddress" json:"bindAddress"`

	// Start and End bound the inclusive port range (1-65535, Start <= End)
	Start int `yaml:"start" json:"start"`
	End   int `yaml:"end" json:"end"`

	// Alias is applied to every allocation created from the range
	Alias string `yaml:"alias,omitempty" json:"alias,omitempty"`

	// Notes is applied to every allocation created from the range
	Notes string `yaml:"notes,omitempty" json:"notes,omitempty"`
}

// PlanRecord is the stored outcome of one plan application.
type PlanRecord struct {
	Context string `json:"@context" jsonld:"@context"`
	Type    string `json:"@type" jsonld:"@type"`
	ID      string `json:"@id" jsonld:"@id"`

	// Name is the plan name at apply time
	Name string `json:"name"`

	// AppliedAt is when the application ran
	AppliedAt time.Time `json:"appliedAt"`

	// Summary counts
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`

	// Results holds one entry per plan step, in execution order
	Results []PlanResult `json:"results"`
}

// PlanResult is the outcome of a single plan step.
type PlanResult struct {
	// Action is the step kind: "node" or "range"
	Action string `json:"action"`

	// Target identifies the step subject, e.g. "node-eu-01" or
	// "node-eu-01 0.0.0.0:25565-25664"
	Target string `json:"target"`

	// Status is "created", "skipped" or "failed"
	Status string `json:"status"`

	// Created is the number of allocations a range step created
	Created int `json:"created,omitempty"`

	// Error carries the failure message when Status is "failed"
	Error string `json:"error,omitempty"`
}
