// Package api provides the HTTP API server for Portico.
// It uses Echo framework to serve REST endpoints and WebSocket connections
// for real-time node, allocation, and workload monitoring.
package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/portico-hosting/portico/docs" // Import generated docs
	"github.com/portico-hosting/portico/internal/auth"
	"github.com/portico-hosting/portico/internal/config"
	"github.com/portico-hosting/portico/internal/integrity"
	"github.com/portico-hosting/portico/internal/notify"
	"github.com/portico-hosting/portico/internal/plan"
	"github.com/portico-hosting/portico/internal/registry"
	"github.com/portico-hosting/portico/internal/storage"
	"github.com/portico-hosting/portico/internal/validation"
	"github.com/portico-hosting/portico/internal/version"
)

// Server represents the Portico API server.
type Server struct {
	echo       *echo.Echo
	storage    *storage.Storage
	registry   *registry.Registry
	notices    *notify.Queue
	config     *config.Config
	wsHub      *Hub // WebSocket hub for real-time updates
	authMiddle *auth.Middleware
	validator  *validation.Validator
	integrity  *integrity.Service
	plans      *plan.Service
}

// debugLog logs a message only if debug mode is enabled in config
func (s *Server) debugLog(format string, args ...interface{}) {
	if s.config.Server.Debug {
		log.Printf(format, args...)
	}
}

// New creates a new API server instance.
//
// @title Portico API
// @version 1.0
// @description Allocation pool management for game server fleets.
// @BasePath /api/v1
func New(cfg *config.Config, store *storage.Storage, reg *registry.Registry, notices *notify.Queue) *Server {
	e := echo.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.Server.Debug

	// Set custom error handler
	e.HTTPErrorHandler = HTTPErrorHandler

	// Create WebSocket hub
	hub := NewHub()

	// Create auth middleware
	authMiddle := auth.NewMiddleware(cfg)

	integritySvc, err := integrity.NewService(store, notices, nil)
	if err != nil {
		log.Printf("Warning: integrity service unavailable: %v", err)
	}
	planSvc, err := plan.NewService(reg, store, notices, nil)
	if err != nil {
		log.Printf("Warning: plan service unavailable: %v", err)
	}

	// Create server instance
	server := &Server{
		echo:       e,
		storage:    store,
		registry:   reg,
		notices:    notices,
		config:     cfg,
		wsHub:      hub,
		authMiddle: authMiddle,
		validator:  validation.New(),
		integrity:  integritySvc,
		plans:      planSvc,
	}

	// Start WebSocket hub in background
	go hub.Run()

	// Setup middleware
	server.setupMiddleware()

	// Setup routes
	server.setupRoutes()

	return server
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	// Logger middleware
	s.echo.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "[${time_rfc3339}] ${status} ${method} ${uri} (${latency_human})\n",
	}))

	// Recover middleware
	s.echo.Use(middleware.Recover())

	// Security headers middleware
	s.echo.Use(SecurityHeaders)

	// CORS middleware
	if len(s.config.Security.AllowedOrigins) > 0 {
		s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: s.config.Security.AllowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}))
	}

	// Request ID middleware
	s.echo.Use(middleware.RequestID())

	// Rate limiting
	if s.config.Security.RateLimit > 0 {
		s.echo.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(
			rate.Limit(s.config.Security.RateLimit),
		)))
	}

	// Content-Type validation middleware for API routes
	s.echo.Use(ValidateContentType)

	// Accept header validation middleware
	s.echo.Use(ValidateAcceptHeader)

	// Request timeouts are enforced at the HTTP server level (see Start);
	// the timeout middleware does not play well with WebSocket upgrades.
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/", s.healthCheck)

	// Swagger UI documentation (public - but API endpoints are still protected)
	s.echo.GET("/docs/*", echoSwagger.WrapHandler)

	// API v1 group
	v1 := s.echo.Group("/api/v1")

	// Node routes. The selection routes are static and echo matches them
	// before /:id, so "selected" can never be read as a node ID.
	nodes := v1.Group("/nodes")
	nodes.Use(ValidateQueryParams) // Validate query parameters for list operations
	nodes.GET("", s.listNodes, s.authMiddle.RequireRead)
	nodes.GET("/selected", s.getSelectedNode, s.authMiddle.RequireRead)
	nodes.DELETE("/selected", s.clearSelectedNode, s.authMiddle.RequireWrite)
	nodes.GET("/:id", s.getNode, ValidateIDFormat, s.authMiddle.RequireRead)
	nodes.POST("", s.createNode, s.authMiddle.RequireWrite)
	nodes.PUT("/:id", s.updateNode, ValidateIDFormat, s.authMiddle.RequireWrite)
	nodes.DELETE("/:id", s.deleteNode, ValidateIDFormat, s.authMiddle.RequireWrite)
	nodes.POST("/:id/select", s.selectNode, ValidateIDFormat, s.authMiddle.RequireWrite)
	nodes.POST("/:id/probe", s.probeNode, ValidateIDFormat, s.authMiddle.RequireWrite)
	nodes.GET("/:id/usage", s.getNodeUsage, ValidateIDFormat, s.authMiddle.RequireRead)
	nodes.GET("/:id/workloads", s.listNodeWorkloads, ValidateIDFormat, s.authMiddle.RequireRead)

	// Allocation pool routes
	nodes.GET("/:id/allocations", s.getNodePool, ValidateIDFormat, s.authMiddle.RequireRead)
	nodes.POST("/:id/allocations", s.createAllocations, ValidateIDFormat, s.authMiddle.RequireWrite)
	nodes.DELETE("/:id/allocations/:allocationId", s.deleteAllocation, ValidateIDFormat, s.authMiddle.RequireWrite)

	// Workload routes (the application layer and node agents push state here)
	workloads := v1.Group("/workloads")
	workloads.Use(ValidateQueryParams) // Validate query parameters for list operations
	workloads.GET("", s.listWorkloads, s.authMiddle.RequireRead)
	workloads.GET("/:id", s.getWorkload, ValidateIDFormat, s.authMiddle.RequireRead)
	workloads.PUT("/:id", s.syncWorkload, ValidateIDFormat, ValidateJSONLD, s.authMiddle.RequireAgent)
	workloads.DELETE("/:id", s.deleteWorkload, ValidateIDFormat, s.authMiddle.RequireAgent)

	// Validation routes
	validate := v1.Group("/validate")
	validate.POST("/node", s.validateNode, s.authMiddle.RequireRead)
	validate.POST("/allocation", s.validateAllocation, s.authMiddle.RequireRead)
	validate.POST("/workload", s.validateWorkload, s.authMiddle.RequireRead)
	validate.POST("/:type", s.validateGeneric, s.authMiddle.RequireRead)

	// Statistics routes
	stats := v1.Group("/stats")
	stats.GET("", s.getStatistics, s.authMiddle.RequireRead)
	stats.GET("/nodes/count", s.getNodeCount, s.authMiddle.RequireRead)
	stats.GET("/workloads/count", s.getWorkloadCount, s.authMiddle.RequireRead)
	stats.GET("/usage", s.getFleetUsage, s.authMiddle.RequireRead)

	// Notice routes: list for every operator, push for admins. There is no
	// delete; notices leave the queue only through the expiry sweep.
	notices := v1.Group("/notices")
	notices.GET("", s.listNotices, s.authMiddle.RequireRead)
	notices.POST("", s.pushNotice, s.authMiddle.RequireAdmin)

	// Plan routes
	plans := v1.Group("/plans")
	plans.GET("", s.listPlans, s.authMiddle.RequireRead)
	plans.GET("/:id", s.getPlan, ValidateIDFormat, s.authMiddle.RequireRead)
	plans.POST("/parse", s.parsePlan, s.authMiddle.RequireRead)
	plans.POST("/apply", s.applyPlan, s.authMiddle.RequireWrite)

	// Integrity routes
	integrityRoutes := v1.Group("/integrity")
	integrityRoutes.GET("/audit", s.auditIntegrity, s.authMiddle.RequireRead)
	integrityRoutes.POST("/repair", s.repairIntegrity, s.authMiddle.RequireAdmin)

	// Manual snapshot refresh
	v1.POST("/refresh", s.refreshFleet, s.authMiddle.RequireWrite)

	// WebSocket routes
	ws := v1.Group("/ws")
	ws.GET("/events", s.HandleWebSocket, s.authMiddle.RequireRead)  // WebSocket connection for fleet updates
	ws.GET("/stats", s.GetWebSocketStats, s.authMiddle.RequireRead) // WebSocket stats
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	fmt.Printf("🚀 Starting Portico API Server\n")
	fmt.Printf("   Address: http://%s\n", addr)
	fmt.Printf("   Database: %s\n", s.config.Storage.Path)
	fmt.Printf("   Debug: %v\n", s.config.Server.Debug)
	fmt.Println()

	// Configure server timeouts
	s.echo.Server.ReadTimeout = s.config.Server.ReadTimeout
	s.echo.Server.WriteTimeout = s.config.Server.WriteTimeout

	// Start server
	if s.config.Server.TLSEnabled {
		return s.echo.StartTLS(addr, s.config.Server.TLSCert, s.config.Server.TLSKey)
	}

	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	fmt.Println("\n🛑 Shutting down Portico API Server...")

	// Shutdown Echo server
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	// Close storage
	if err := s.storage.Close(); err != nil {
		return fmt.Errorf("error closing storage: %w", err)
	}

	fmt.Println("✓ Server shutdown complete")
	return nil
}

// healthCheck handles health check requests.
func (s *Server) healthCheck(c echo.Context) error {
	// Get database info to verify the file is still readable
	info, err := s.storage.GetInfo()
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
			"status":  "unhealthy",
			"error":   "database unavailable",
			"details": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "healthy",
		"service":  "portico",
		"version":  version.Version,
		"database": info.Path,
		"documents": map[string]interface{}{
			"nodes":       info.Nodes,
			"allocations": info.Allocations,
			"workloads":   info.Workloads,
		},
		"schemaVersion": info.SchemaVersion,
	})
}

// refreshFleet handles POST /api/v1/refresh. Commands refresh on their own;
// this exists for operators who changed the database out of band.
func (s *Server) refreshFleet(c echo.Context) error {
	if err := s.registry.Refresh(c.Request().Context()); err != nil {
		return InternalError("Refresh failed", err.Error())
	}

	s.BroadcastEvent(EventFleetRefresh, nil)

	return c.JSON(http.StatusOK, MessageResponse{
		Message: "fleet snapshot refreshed",
	})
}

// BroadcastEvent broadcasts a fleet event to all WebSocket clients
func (s *Server) BroadcastEvent(eventType EventType, data interface{}) {
	s.debugLog("broadcasting %s to %d WebSocket clients", eventType, s.wsHub.ClientCount())
	event := Event{
		Type: eventType,
		Data: data,
	}
	if err := s.wsHub.BroadcastEvent(event); err != nil {
		log.Printf("ERROR: Failed to broadcast event: %v", err)
	}
}

// ServeHTTP allows Server to implement http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
