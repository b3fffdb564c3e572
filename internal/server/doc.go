// Package server provides the MCP server context, HTTP transport, and
// operational endpoints for the zotero-mcp application.
//
// # Key Components
//
// ServerContext holds the active Zotero credentials and builds the API
// client lazily. Credentials can be supplied at startup (environment or
// config file) or at runtime via the configure_zotero tool; replacing
// them invalidates the cached client.
//
// HTTPServer exposes the MCP server over the streamable HTTP transport
// on /mcp, with liveness and readiness probes and per-request metrics.
//
// MetricsServer serves Prometheus metrics on a dedicated port, keeping
// operational metrics off the main application listener.
//
// HealthChecker implements the /healthz, /readyz, and /healthz/detailed
// endpoints used by Kubernetes probes.
package server
