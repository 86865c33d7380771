// Package httpserver serves the redif operations endpoints.
//
// Routes:
//
//   - GET /metrics: Prometheus exposition
//   - GET /healthz: liveness, plus the optional health check
//   - GET /version: build information as JSON
//
// The RESP listener is separate; this server never touches client data.
package httpserver
