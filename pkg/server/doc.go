// Package server provides the HTTP front end of the case workflow
// service.
//
// This package ties together the workflow, decision intelligence,
// audit export, health, and metrics components and provides server
// lifecycle management including start, shutdown, and health checks.
//
// # Architecture
//
// The server package is the top-level orchestrator that:
//   - Sets up HTTP routes and handlers
//   - Chains middleware for cross-cutting concerns
//   - Manages graceful shutdown
//
// # Basic Usage
//
// Creating and starting a server:
//
//	import (
//	    "context"
//	    "github.com/autocomply/casework/pkg/config"
//	    "github.com/autocomply/casework/pkg/server"
//	)
//
//	cfg := config.GetConfig()
//
//	srv := server.NewServer(cfg, server.Deps{
//	    Workflow: wf,
//	    Hook:     hook,
//	    Chain:    chain,
//	    Exporter: exporter,
//	    Health:   checker,
//	    Metrics:  collector,
//	})
//	if err := srv.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// The shutdown process:
//  1. Stops accepting new connections
//  2. Waits for active connections to complete (up to shutdown timeout)
//  3. Returns the context's error if the timeout is exceeded; connections
//     still active at that point are not force-closed
//
// # Routes
//
// The server exposes the submission, case, evidence, attachment,
// decision intelligence, and audit export endpoints of spec.md §6.1,
// plus:
//
//   - GET /healthz - Liveness probe (never touches storage)
//   - GET /health/details - Readiness probe and environment warnings
//   - GET /version - Build version information
//   - GET /metrics - Prometheus exposition (if enabled)
//
// # Middleware Chain
//
// Requests pass through the following middleware (innermost to
// outermost):
//  1. withActor: parses X-AutoComply-Role into the request context
//     (business routes only; health/version/metrics skip this)
//  2. CORS: adds Cross-Origin Resource Sharing headers
//  3. Logging: logs request/response details
//  4. RequestID: generates a unique request ID for tracing
//  5. Recovery: recovers from panics and returns a 500 error
//
// # Thread Safety
//
// All server operations are thread-safe and can be called concurrently
// from multiple goroutines.
package server
