package models

import "time"

//go:generate go run ../tools/generate.go

// Workload status values.
const (
	WorkloadType           = "SoftwareApplication"
	WorkloadStatusActive   = "active"
	WorkloadStatusInactive = "inactive"
)

type Workload struct {
	Context    string        `json:"@context" jsonld:"@context"`
	Type       string        `json:"@type" jsonld:"@type"`
	ID         string        `json:"@id" jsonld:"@id"`
	Name       string        `json:"name" jsonld:"name"`
	Status     string        `json:"status" jsonld:"status"`
	NodeID     string        `json:"nodeId" jsonld:"hostedOn"`
	CPUPercent int           `json:"cpuPercent" jsonld:"cpuPercent"`
	MemoryMiB  int64         `json:"memoryMiB" jsonld:"memoryMiB"`
	DiskMiB    int64         `json:"diskMiB" jsonld:"diskMiB"`
	Bindings   []PortBinding `json:"bindings,omitempty" jsonld:"bindings"`
	CreatedAt  time.Time     `json:"dateCreated,omitempty" jsonld:"dateCreated"`
	UpdatedAt  time.Time     `json:"dateModified,omitempty" jsonld:"dateModified"`
}

type PortBinding struct {
	BindAddress string `json:"bindAddress" jsonld:"bindAddress"`
	Port        int    `json:"port" jsonld:"port"`
}

// Active reports whether the workload counts for the assigned projection.
func (w *Workload) Active() bool {
	return w.Status == WorkloadStatusActive
}

// Binds reports whether the workload binds the given endpoint.
func (w *Workload) Binds(bindAddress string, port int) bool {
	for _, b := range w.Bindings {
		if b.BindAddress == bindAddress && b.Port == port {
			return true
		}
	}
	return false
}
