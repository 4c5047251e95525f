// Package agent provides the reference node agent for Portico.
//
// The agent runs on each game node and performs two tasks:
//   - Serves the node daemon endpoint: a credential-less GET /api/system
//     returning a system snapshot, which the control plane's status probe
//     polls to decide whether the node is online
//   - Reconciles workload state: on every sync interval it fetches the
//     workloads the control plane records for this node, observes which of
//     their bound endpoints are actually listening locally, and pushes the
//     corrected status back
//
// The push path authenticates with a Bearer token when the control plane has
// auth enabled; the daemon endpoint never requires credentials, matching the
// probe contract.
//
// Observation is passive: the agent reads the kernel's listener tables
// instead of connecting to the game servers, so a sync round never shows up
// as a client in their logs.
//
// Example usage:
//
//	a, err := agent.New(
//	    "http://localhost:8095",
//	    "node:0f31a9c4",
//	    "agent-token",
//	    "0.0.0.0",
//	    8443,
//	    30*time.Second,
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := a.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/portico-hosting/portico/models"
)

// DefaultSyncInterval is the period between workload state pushes.
const DefaultSyncInterval = 30 * time.Second

// Agent serves the node daemon endpoint and keeps the control plane's
// workload records in line with what is actually listening on this node.
type Agent struct {
	apiURL       string
	nodeID       string
	authToken    string
	listenHost   string
	listenPort   int
	syncInterval time.Duration
	httpClient   *http.Client

	startTime        time.Time
	syncCount        int64
	failedSyncs      int64
	lastSyncTime     time.Time
	lastSyncDuration time.Duration
}

// New creates a new agent instance.
func New(apiURL, nodeID, authToken, listenHost string, listenPort int, syncInterval time.Duration) (*Agent, error) {
	if apiURL == "" {
		return nil, fmt.Errorf("api URL is required")
	}
	if nodeID == "" {
		return nil, fmt.Errorf("node ID is required")
	}

	if listenHost == "" {
		listenHost = "0.0.0.0"
	}
	if listenPort == 0 {
		listenPort = 8443
	}
	if syncInterval <= 0 {
		syncInterval = DefaultSyncInterval
	}

	return &Agent{
		apiURL:       apiURL,
		nodeID:       nodeID,
		authToken:    authToken,
		listenHost:   listenHost,
		listenPort:   listenPort,
		syncInterval: syncInterval,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		startTime: time.Now(),
	}, nil
}

// Close releases agent resources.
func (a *Agent) Close() error {
	return nil
}

// Start starts the daemon endpoint and the sync loop. It blocks until the
// context is canceled.
func (a *Agent) Start(ctx context.Context) error {
	log.Printf("Agent started for node %s", a.nodeID)
	log.Printf("Daemon endpoint: %s:%d", a.listenHost, a.listenPort)
	log.Printf("API server: %s", a.apiURL)

	// Start the daemon HTTP server
	if err := a.startHTTPServer(ctx); err != nil {
		return fmt.Errorf("failed to start daemon endpoint: %w", err)
	}

	// Verify authentication before proceeding
	if err := a.verifyAuthentication(ctx); err != nil {
		return fmt.Errorf("authentication failed: %w\n\nThe agent cannot push workload state without valid authentication.\nPlease check:\n  1. Agent token is configured in config.yaml\n  2. Token is valid and not expired\n  3. Server security.auth_enabled matches agent configuration", err)
	}

	// Perform initial sync
	if err := a.syncWorkloads(ctx); err != nil {
		log.Printf("Warning: Initial sync failed: %v", err)
	}

	// Periodic sync until shutdown
	ticker := time.NewTicker(a.syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := a.syncWorkloads(ctx); err != nil {
				log.Printf("Warning: Periodic sync failed: %v", err)
			}
		}
	}
}

// verifyAuthentication tests if the agent can reach and authenticate with
// the server. This prevents the agent from running if every push would fail.
func (a *Agent) verifyAuthentication(ctx context.Context) error {
	// Test authentication with a simple API call
	url := fmt.Sprintf("%s/api/v1/stats", a.apiURL)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create auth test request: %w", err)
	}

	if a.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+a.authToken)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to API server: %w", err)
	}
	defer resp.Body.Close()

	// Check for authentication errors
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		if a.authToken == "" {
			return fmt.Errorf("server requires authentication but no agent_token is configured")
		}
		return fmt.Errorf("authentication rejected (HTTP %d) - token may be invalid or expired", resp.StatusCode)
	}

	// Any 2xx response means we're authenticated
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		log.Printf("✓ Authentication successful")
		return nil
	}

	// Other errors (5xx, etc.) - warn but don't fail
	log.Printf("Warning: API returned HTTP %d during auth check, but continuing anyway", resp.StatusCode)
	return nil
}

// syncWorkloads fetches this node's workloads from the control plane,
// observes their bound endpoints locally, and pushes every status that
// disagrees with what is actually listening.
func (a *Agent) syncWorkloads(ctx context.Context) error {
	start := time.Now()

	workloads, err := a.fetchWorkloads(ctx)
	if err != nil {
		a.failedSyncs++
		return err
	}

	// Read the kernel listener tables once per round. When observation is
	// unavailable the round is skipped rather than flipping every workload
	// inactive on no evidence.
	table, err := readListenerTable()
	if err != nil {
		log.Printf("Warning: cannot observe local listeners, skipping reconcile: %v", err)
		return nil
	}

	updated := 0
	for _, workload := range workloads {
		if len(workload.Bindings) == 0 {
			// Nothing observable
			continue
		}

		status := models.WorkloadStatusInactive
		for _, binding := range workload.Bindings {
			if table.covers(binding.BindAddress, binding.Port) {
				status = models.WorkloadStatusActive
				break
			}
		}

		if status == workload.Status {
			continue
		}

		workload.Status = status
		if err := a.pushWorkload(ctx, workload); err != nil {
			a.failedSyncs++
			log.Printf("Warning: Failed to push workload %s: %v", workload.ID, err)
			continue
		}
		updated++
	}

	a.syncCount++
	a.lastSyncTime = time.Now()
	a.lastSyncDuration = time.Since(start)

	log.Printf("Sync complete: %d workloads, %d status change(s)", len(workloads), updated)
	return nil
}

// fetchWorkloads lists the workloads the control plane records for this node.
func (a *Agent) fetchWorkloads(ctx context.Context) ([]*models.Workload, error) {
	url := fmt.Sprintf("%s/api/v1/workloads?node=%s", a.apiURL, a.nodeID)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if a.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+a.authToken)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list workloads: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to list workloads: %s - %s", resp.Status, string(body))
	}

	var listing struct {
		Workloads []*models.Workload `json:"workloads"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("failed to decode workload listing: %w", err)
	}
	return listing.Workloads, nil
}

// pushWorkload upserts one workload's state on the control plane.
func (a *Agent) pushWorkload(ctx context.Context, workload *models.Workload) error {
	data, err := json.Marshal(workload)
	if err != nil {
		return fmt.Errorf("failed to marshal workload: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/workloads/%s", a.apiURL, workload.ID)
	req, err := http.NewRequestWithContext(ctx, "PUT", url, bytes.NewBuffer(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+a.authToken)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to push workload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("push rejected: %s - %s", resp.Status, string(body))
	}
	return nil
}
