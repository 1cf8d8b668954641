package instrumentation

import (
	"context"
	"log/slog"
	"time"
)

// ToolInvocation captures one MCP tool call for the audit log.
type ToolInvocation struct {
	Tool   string
	Action string

	// Arguments are the validated tool arguments. They are only logged when
	// AuditLoggingConfig.IncludeArguments is set.
	Arguments map[string]string

	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	TraceID string
	SpanID  string
}

// NewToolInvocation creates a new ToolInvocation with timing started.
// Call Complete() when the tool finishes.
func NewToolInvocation(tool, action string) *ToolInvocation {
	return &ToolInvocation{
		Tool:      tool,
		Action:    action,
		StartTime: time.Now(),
	}
}

// WithArguments records the validated arguments.
func (ti *ToolInvocation) WithArguments(args map[string]string) *ToolInvocation {
	ti.Arguments = args
	return ti
}

// WithSpanContext copies trace and span IDs from the span in ctx.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	ti.TraceID = GetTraceID(ctx)
	ti.SpanID = GetSpanID(ctx)
	return ti
}

// Complete marks the invocation as finished and computes its duration.
func (ti *ToolInvocation) Complete(success bool, err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = success
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

// Status returns "success" or "error" based on the Success field.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns the structured attributes of the invocation.
func (ti *ToolInvocation) LogAttrs(includeArguments bool) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("tool", ti.Tool),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	}

	if ti.Action != "" {
		attrs = append(attrs, slog.String("action", ti.Action))
	}
	if includeArguments && len(ti.Arguments) > 0 {
		args := make([]any, 0, len(ti.Arguments))
		for k, v := range ti.Arguments {
			args = append(args, slog.String(k, v))
		}
		attrs = append(attrs, slog.Group("arguments", args...))
	}
	if ti.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ti.TraceID))
	}
	if ti.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", ti.SpanID))
	}
	if ti.Error != "" {
		attrs = append(attrs, slog.String("error", ti.Error))
	}

	return attrs
}

// AuditLogger writes one structured line per tool invocation.
type AuditLogger struct {
	logger           *slog.Logger
	includeArguments bool
	enabled          bool
}

// NewAuditLogger creates an enabled AuditLogger that omits arguments.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: true})
}

// NewAuditLoggerWithConfig creates a new AuditLogger with the given configuration.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:           logger,
		includeArguments: config.IncludeArguments,
		enabled:          config.Enabled,
	}
}

// SetEnabled sets whether audit logging is enabled.
func (al *AuditLogger) SetEnabled(enabled bool) {
	al.enabled = enabled
}

// LogToolInvocation logs tool_executed at info level or tool_failed at warn level.
func (al *AuditLogger) LogToolInvocation(ti *ToolInvocation) {
	if al == nil || !al.enabled {
		return
	}

	attrs := ti.LogAttrs(al.includeArguments)
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}

	if ti.Success {
		al.logger.Info("tool_executed", args...)
	} else {
		al.logger.Warn("tool_failed", args...)
	}
}
