// Package portico is an allocation pool manager for game server fleets.
//
// # Overview
//
// Portico tracks the nodes a hosting panel schedules game servers onto and
// manages each node's pool of connectable endpoints (bind address and port
// pairs). Workloads report which endpoints they bind, and Portico projects
// that state onto the pool so operators always see which allocations are
// free, which are taken, and where capacity is running out.
//
// The platform consists of three main components:
//   - API Server: REST API for fleet, pool, and workload state
//   - Node Agent: Reports workload liveness from each node
//   - Storage Layer: Embedded bbolt database with JSON-LD documents
//
// # Architecture
//
//	┌─────────────────┐
//	│  Hosting Panel  │
//	│   (Consumer)    │
//	└────────┬────────┘
//	         │
//	┌────────▼────────┐       ┌─────────────────┐
//	│  API Server     │◄──────┤  Node Agent     │
//	│  (Echo REST)    │       │  (Liveness)     │
//	└────────┬────────┘       └─────────────────┘
//	         │
//	┌────────▼────────┐
//	│  Storage Layer  │
//	│  (bbolt)        │
//	└─────────────────┘
//
// # Core Features
//
// JSON-LD/Schema.org Models:
//   - Type-safe node, allocation, and workload models
//   - Endpoint uniqueness enforced at the storage layer
//   - Standards-based vocabulary
//
// REST API:
//   - Full CRUD operations for nodes and allocation pools
//   - Paged pool views partitioned into assigned and unassigned
//   - WebSocket support for real-time fleet updates
//   - Comprehensive validation and error handling
//
// Node Agent:
//   - Workload liveness observation via listening sockets
//   - Periodic state synchronization
//   - Per-node health endpoint
//
// Provisioning Plans:
//   - Declarative YAML plans for nodes and port ranges
//   - Idempotent application with per-step outcomes
//   - Audit records for every application
//
// # Usage
//
// Start the API server:
//
//	portico server --config configs/config.yaml
//
// Run the node agent on a host:
//
//	portico agent --config configs/config.yaml
//
// Apply a provisioning plan:
//
//	portico plan apply fleet.yaml
//
// # Configuration
//
// Configuration can be provided via:
//   - YAML file (configs/config.yaml)
//   - Environment variables (PORTICO_ prefix)
//   - .env file
//
// Example configuration:
//
//	server:
//	  host: localhost
//	  port: 8095
//	storage:
//	  path: /var/lib/portico/portico.db
//	probe:
//	  timeout: 5s
//	  interval: 60s
//	agent:
//	  enabled: true
//	  api_url: http://localhost:8095
//	  node_id: node:fra1-01
//
// # API Endpoints
//
// Node Management:
//   - GET    /api/v1/nodes               - List nodes (filterable)
//   - GET    /api/v1/nodes/:id           - Get node with pool and usage
//   - POST   /api/v1/nodes               - Register node
//   - PUT    /api/v1/nodes/:id           - Update node
//   - DELETE /api/v1/nodes/:id           - Delete node (refused while in use)
//   - POST   /api/v1/nodes/:id/probe     - Probe node reachability
//   - GET    /api/v1/nodes/:id/usage     - Aggregated resource usage
//
// Allocation Pools:
//   - GET    /api/v1/nodes/:id/allocations                - Paged pool view
//   - POST   /api/v1/nodes/:id/allocations                - Create one allocation or a range
//   - DELETE /api/v1/nodes/:id/allocations/:allocationId  - Delete unassigned allocation
//
// Workload State:
//   - GET    /api/v1/workloads      - List workloads (filterable)
//   - GET    /api/v1/workloads/:id  - Get workload
//   - PUT    /api/v1/workloads/:id  - Sync pushed workload state
//   - DELETE /api/v1/workloads/:id  - Drop workload state
//
// Provisioning Plans:
//   - GET  /api/v1/plans        - List applied plan records
//   - GET  /api/v1/plans/:id    - Get one plan record
//   - POST /api/v1/plans/parse  - Validate a plan without applying
//   - POST /api/v1/plans/apply  - Apply a plan
//
// Statistics:
//   - GET /api/v1/stats                  - Overall statistics
//   - GET /api/v1/stats/nodes/count      - Node count
//   - GET /api/v1/stats/workloads/count  - Workload count
//   - GET /api/v1/stats/usage            - Fleet-wide usage
//
// WebSocket:
//   - GET /api/v1/ws/events  - Real-time fleet updates
//   - GET /api/v1/ws/stats   - WebSocket statistics
//
// # JSON-LD Models
//
// Node (Schema.org ComputerSystem):
//
//	{
//	  "@context": "https://schema.org",
//	  "@type": "ComputerSystem",
//	  "@id": "node:fra1-01",
//	  "name": "fra1-01",
//	  "fqdn": "fra1-01.example.com",
//	  "port": 8443,
//	  "isOnline": true,
//	  "location": "fra1"
//	}
//
// Allocation (PortMapping):
//
//	{
//	  "@context": "https://schema.org",
//	  "@type": "PortMapping",
//	  "@id": "allocation:abc123",
//	  "nodeId": "node:fra1-01",
//	  "bindAddress": "0.0.0.0",
//	  "port": 25565,
//	  "assigned": false
//	}
//
// Workload (Schema.org SoftwareApplication):
//
//	{
//	  "@context": "https://schema.org",
//	  "@type": "SoftwareApplication",
//	  "@id": "workload:survival-main",
//	  "name": "survival-main",
//	  "status": "active",
//	  "nodeId": "node:fra1-01",
//	  "bindings": [{"bindAddress": "0.0.0.0", "port": 25565}]
//	}
//
// # Development
//
// Run tests:
//
//	go test ./...
//
// Run unit tests:
//
//	go test ./internal/api/...
//
// Run integration tests:
//
//	go test -v -tags=integration ./tests/integration/...
//
// Build the binary:
//
//	go build -o portico ./cmd/portico
//
// # Technology Stack
//
//   - Go 1.25+
//   - Echo v4 (Web framework)
//   - bbolt (Embedded database)
//   - Cobra/Viper (CLI and configuration)
//   - JSON-LD (Document vocabulary)
//
// # License
//
// Portico is open source software.
package portico
