// Package observability provides logging, metrics, and health checks for the
// wildlife catalogue service.
//
// # Components
//
// Logger: structured JSON logging built on stdlib slog, with context
// propagation of request IDs and the logged-in user.
//
// Metrics: Prometheus metric families for the HTTP surface
// (wildlife_http_*), the record store (wildlife_store_*), and the search
// engine (wildlife_search_*, wildlife_suggestions_*), plus catalogue-level
// gauges refreshed on a schedule.
//
// HealthChecker: liveness and readiness probes. The record store is a hard
// dependency; Redis (sessions) only degrades the service when down.
//
// # Usage Example
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//
//	checker := observability.NewHealthChecker(db, redisClient)
//	mux.HandleFunc("/healthz", checker.Liveness)
//	mux.HandleFunc("/readyz", checker.Readiness)
//	mux.Handle("/metrics", metrics.Handler())
package observability
