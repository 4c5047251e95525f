package models

import "time"

// Notice severity levels.
const (
	NoticeLevelInfo    = "info"
	NoticeLevelWarning = "warning"
	NoticeLevelError   = "error"
)

// Notice is a transient operator message. Notices live in a bounded in-memory
// queue and expire on a background sweep; they are never persisted.
type Notice struct {
	ID        string    `json:"id"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the notice is past its expiry at the given time.
func (n *Notice) Expired(now time.Time) bool {
	return now.After(n.ExpiresAt)
}
