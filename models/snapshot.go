package models

import "time"

// SystemSnapshot is the credential-less status payload a node daemon reports.
type SystemSnapshot struct {
	CPUUsage           float64   `json:"cpuUsage"`
	MemoryTotal        int64     `json:"memoryTotal"`
	MemoryUsed         int64     `json:"memoryUsed"`
	MemoryUsagePercent float64   `json:"memoryUsagePercent"`
	UptimeSeconds      int64     `json:"uptimeSeconds"`
	Timestamp          time.Time `json:"timestamp"`
}
