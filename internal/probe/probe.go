// Package probe checks whether node agents are reachable. Probes are
// advisory: a failure marks the node unknown and is never an error to the
// caller, so a dead daemon cannot break an admin workflow.
package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/portico-hosting/portico/models"
)

// DefaultTimeout bounds a single probe round trip.
const DefaultTimeout = 3 * time.Second

// Result is the outcome of probing one node.
type Result struct {
	NodeID    string                 `json:"nodeId"`
	Online    bool                   `json:"online"`
	CheckedAt time.Time              `json:"checkedAt"`
	Latency   time.Duration          `json:"latency"`
	Snapshot  *models.SystemSnapshot `json:"snapshot,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// Prober performs health checks against node agents.
type Prober struct {
	client  *http.Client
	timeout time.Duration
}

// New creates a prober with the given per-probe timeout.
func New(timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Prober{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// Check probes a single node's agent system endpoint. The query is
// credential-less: the agent exposes its snapshot read-only on its own
// address. The node counts as online only on a 2xx response; connection
// failures and error statuses are reported in the result, never as an error.
func (p *Prober) Check(ctx context.Context, node *models.Node) Result {
	result := Result{NodeID: node.ID, CheckedAt: time.Now()}
	start := time.Now()

	url := fmt.Sprintf("http://%s/api/system", node.Address())
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		result.Error = fmt.Sprintf("failed to create probe request: %v", err)
		return result
	}

	resp, err := p.client.Do(req)
	if err != nil {
		result.Error = fmt.Sprintf("unreachable: %v", err)
		return result
	}
	defer resp.Body.Close()

	result.Latency = time.Since(start)
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		result.Online = true
		var snapshot models.SystemSnapshot
		if err := json.NewDecoder(resp.Body).Decode(&snapshot); err == nil {
			result.Snapshot = &snapshot
		}
	} else {
		result.Error = fmt.Sprintf("agent returned %s", resp.Status)
	}
	return result
}

// CheckAll probes every node in parallel and returns the results keyed by
// node ID. Each probe gets its own timeout so one slow daemon cannot stall
// the sweep.
func (p *Prober) CheckAll(ctx context.Context, nodes []*models.Node) map[string]Result {
	results := make(map[string]Result, len(nodes))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, node := range nodes {
		wg.Add(1)
		go func(n *models.Node) {
			defer wg.Done()

			probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
			defer cancel()

			result := p.Check(probeCtx, n)
			mu.Lock()
			results[n.ID] = result
			mu.Unlock()
		}(node)
	}

	wg.Wait()
	return results
}
