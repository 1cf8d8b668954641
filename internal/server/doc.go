// Package server holds the process-wide ServerContext and the HTTP surfaces
// of the gasmail gateway.
//
// ServerContext is built once from a validated config.Config and carries the
// Apps Script client, download directory, tool name prefix, metrics recorder
// and audit logger. Tool handlers receive it explicitly; it is never mutated
// after construction apart from the shutdown flag.
//
// HTTPServer serves the MCP streamable-http transport at /mcp with optional
// static bearer token authentication, plus /healthz, /readyz and
// /healthz/detailed probes. MetricsServer exposes Prometheus metrics on a
// separate port.
package server
