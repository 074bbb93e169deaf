// Package app wires CarPulse together and manages its lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration (defaults, YAML, .env, environment)
//	2. Initialize logging and telemetry
//	3. Build the pricing engine from the pricing section
//	4. Create the pricing, health and live websocket services
//	5. Set up middleware and routes
//	6. Create the HTTP server
//
// # Routes
//
//	GET  /health, /health/live, /health/ready, /version
//	GET  /metrics                      Prometheus, when metrics are enabled
//	GET  /ws/kilometraje               live kilometraje session
//	POST /api/v1/market/snapshot
//	POST /api/v1/market/kilometraje
//	GET  /api/v1/market/params
//
// # Graceful Shutdown
//
// Run stops on SIGINT or SIGTERM. Live sessions get a going-away close frame
// first, then in-flight HTTP requests drain and telemetry is flushed.
// Initialization errors are returned to the caller; the package never calls
// os.Exit.
package app
