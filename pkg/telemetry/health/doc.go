// Package health provides health check endpoints for the casework
// service.
//
// # Overview
//
// The health package implements liveness and readiness probes for
// orchestration systems (spec.md §5, §6.1, §6.3), along with a version
// information endpoint. It provides a framework for checking the health
// of components such as the case store and the intelligence chain
// store.
//
// # Endpoints
//
//   - /healthz: Liveness probe - indicates if the process is running.
//     Never touches storage and must respond within 5ms.
//   - /health/details: Readiness probe plus environment validation -
//     indicates if the system can serve traffic, and surfaces
//     config.Warnings.
//   - /version: Build information - version, commit, build time
//
// # Usage
//
//	checker := health.New(5 * time.Second)
//
//	checker.RegisterCheck("store", func(ctx context.Context) error {
//	    return store.Ping(ctx)
//	})
//	checker.RegisterCheck("chain_store", func(ctx context.Context) error {
//	    return chainStore.Ping(ctx)
//	})
//
//	http.HandleFunc("/healthz", checker.LivenessHandler())
//	http.HandleFunc("/health/details", checker.DetailsHandler(func() []string {
//	    return config.Warnings(cfg)
//	}))
//	http.HandleFunc("/version", health.VersionHandler("1.0.0", "abc123", "2025-11-20"))
//
// # Liveness vs Readiness
//
// **Liveness Probe** (/healthz):
//   - Indicates if the process is alive and running
//   - Returns 200 OK if process is alive
//   - Never touches storage; fast check (<5ms, spec.md §5)
//
// **Readiness/details Probe** (/health/details):
//   - Indicates if the system can serve traffic
//   - Checks all registered component health checks
//   - Returns 200 OK if all components are healthy, 503 otherwise
//   - Also reports non-fatal config.Warnings (spec.md §6.3)
//
// # Example Response
//
// Liveness response (/healthz):
//
//	{
//	    "status": "ok",
//	    "timestamp": "2025-11-20T10:30:00Z"
//	}
//
// Details response (/health/details):
//
//	{
//	    "status": "ready",
//	    "checks": {
//	        "store": {"status": "ok"},
//	        "chain_store": {"status": "ok"}
//	    },
//	    "warnings": ["cors allows all origins in a non-dev environment"],
//	    "timestamp": "2025-11-20T10:30:00Z"
//	}
package health
