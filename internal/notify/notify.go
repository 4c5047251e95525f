// Package notify keeps a bounded in-memory queue of admin notices. Notices
// expire on a background sweep, not on read: a notice stays listed until the
// timer removes it, so readers see a stable queue between sweeps.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/portico-hosting/portico/models"
)

// Queue is a fixed-capacity notice buffer. When full, the oldest notice is
// dropped to make room.
type Queue struct {
	mu      sync.Mutex
	notices []*models.Notice
	ttl     time.Duration
	max     int
}

// NewQueue creates a queue holding at most max notices, each expiring ttl
// after creation.
func NewQueue(ttl time.Duration, max int) *Queue {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if max < 1 {
		max = 50
	}
	return &Queue{
		notices: make([]*models.Notice, 0, max),
		ttl:     ttl,
		max:     max,
	}
}

// Push appends a notice and returns it.
func (q *Queue) Push(level, message string) *models.Notice {
	now := time.Now()
	notice := &models.Notice{
		ID:        models.GenerateID("notice"),
		Level:     level,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(q.ttl),
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.notices) >= q.max {
		q.notices = q.notices[1:]
	}
	q.notices = append(q.notices, notice)
	return notice
}

// Info pushes an informational notice.
func (q *Queue) Info(message string) *models.Notice {
	return q.Push(models.NoticeLevelInfo, message)
}

// Warning pushes a warning notice.
func (q *Queue) Warning(message string) *models.Notice {
	return q.Push(models.NoticeLevelWarning, message)
}

// Error pushes an error notice.
func (q *Queue) Error(message string) *models.Notice {
	return q.Push(models.NoticeLevelError, message)
}

// List returns the current notices, newest first. Expired notices remain
// until the next sweep.
func (q *Queue) List() []*models.Notice {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]*models.Notice, len(q.notices))
	for i, n := range q.notices {
		out[len(q.notices)-1-i] = n
	}
	return out
}

// Len returns the number of queued notices.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.notices)
}

// Sweep removes notices that expired at or before now and returns how many
// were dropped.
func (q *Queue) Sweep(now time.Time) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.notices[:0]
	for _, n := range q.notices {
		if !n.Expired(now) {
			kept = append(kept, n)
		}
	}
	dropped := len(q.notices) - len(kept)
	q.notices = kept
	return dropped
}

// Run sweeps the queue on the given interval until the context is canceled.
func (q *Queue) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			q.Sweep(now)
		}
	}
}
