// Package instrumentation provides OpenTelemetry instrumentation for the
// gasmail MCP gateway.
//
// # Metrics
//
// Server/HTTP Metrics (streamable-http transport only):
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of tool execution durations
//
// Apps Script Metrics:
//   - gas_remote_calls_total: Counter of endpoint calls by action and status
//   - gas_remote_call_duration_seconds: Histogram of endpoint call durations
//   - gas_attachment_bytes_written_total: Counter of attachment bytes saved to disk
//
// # Tracing
//
// Spans are created for tool invocations (tool.<name>, server kind) and for
// endpoint calls (gas.<action>, client kind). The HTTP client transport adds
// otelhttp spans below gas.<action>.
//
// # Configuration
//
// Instrumentation is configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp or stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout or none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_EXPORTER_OTLP_INSECURE: Use plain HTTP for OTLP (default: false)
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: gasmail)
//   - AUDIT_LOGGING_ENABLED: Emit tool_executed/tool_failed lines (default: true)
//   - AUDIT_LOGGING_INCLUDE_ARGUMENTS: Add tool arguments to audit lines (default: false)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	recorder := provider.Metrics()
//	recorder.RecordRemoteCall(ctx, "search", instrumentation.StatusSuccess, time.Since(start))
package instrumentation
