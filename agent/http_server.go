package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// startHTTPServer starts the node daemon endpoint. The control plane's
// status probe polls GET /api/system on this server; a node whose daemon
// does not answer shows up as offline.
func (a *Agent) startHTTPServer(ctx context.Context) error {
	router := mux.NewRouter()

	// Health check endpoint
	router.HandleFunc("/health", a.handleHealth).Methods("GET")

	// System snapshot endpoint. Credential-less: the status probe carries
	// no token, so this handler must not require one.
	router.HandleFunc("/api/system", a.handleSystem).Methods("GET")

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", a.listenHost, a.listenPort),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("Starting daemon endpoint on %s", server.Addr)

	// Start server in background
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Daemon endpoint error: %v", err)
		}
	}()

	// Shutdown handler
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Daemon endpoint shutdown error: %v", err)
		}
	}()

	return nil
}

// handleHealth returns agent health status
func (a *Agent) handleHealth(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(a.startTime)

	response := map[string]interface{}{
		"status":           "healthy",
		"nodeId":           a.nodeID,
		"uptime":           uptime.Seconds(),
		"syncCount":        a.syncCount,
		"failedSyncs":      a.failedSyncs,
		"lastSync":         a.lastSyncTime,
		"lastSyncDuration": a.lastSyncDuration.Milliseconds(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleSystem returns the current system snapshot
func (a *Agent) handleSystem(w http.ResponseWriter, r *http.Request) {
	snapshot, err := ReadSystemSnapshot()
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to read system snapshot: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshot)
}
