// Package server provides the MCP server context, health checking and
// the HTTP transport for the gmail-mcp application.
//
// # Key Components
//
// ServerContext carries the shutdown context, the OAuth credential
// manager and a lazily created Gmail client shared by all tool
// handlers. Metrics and audit logging hooks are attached here so tool
// instrumentation can reach them without global state.
//
// HTTPServer serves the MCP protocol over the streamable HTTP transport
// at /mcp, together with health endpoints and per-request metrics.
//
// HealthChecker exposes /healthz and /readyz endpoints for liveness and
// readiness probes plus a detailed status endpoint.
//
// MetricsServer serves Prometheus metrics on a dedicated port, keeping
// operational metrics off the main application listener.
package server
