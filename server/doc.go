// Package server runs the Gin HTTP server behind an h2c handler so REST,
// websocket upgrades and HTTP/2 cleartext share one port.
//
// The net/http middleware chain (server/middleware) wraps every request:
// recovery, request id, CORS, body size limit and request logging. Gin-level
// Prometheus instrumentation is added with middleware.Metrics so series are
// labelled by route template. Built-in endpoints live in server/endpoint:
//
//   - /health: aggregated component health
//   - /ready: readiness probe
//   - /info: build information
//   - /metrics: Prometheus exposition
package server
