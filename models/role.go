package models

// Role is an access role carried in API token claims. Accounts and
// credential storage live outside Portico; tokens arrive already minted.
type Role string

const (
	// RoleAdmin grants full access including node deletion.
	RoleAdmin Role = "admin"
	// RoleOperator grants pool and workload mutations.
	RoleOperator Role = "operator"
	// RoleAgent is held by node agents pushing status and workload state.
	RoleAgent Role = "agent"
)
