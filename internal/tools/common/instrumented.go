package common

import (
	"context"
	"errors"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/gasmail/internal/instrumentation"
	"github.com/teemow/gasmail/internal/server"
)

// ToolHandler is the mcp-go tool handler signature.
type ToolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// InstrumentedToolHandler wraps a tool handler with a tool.<name> span,
// invocation metrics and an audit log line. action is the remote action the
// tool maps to.
//
// Usage:
//
//	s.AddTool(tool, common.InstrumentedToolHandler("get_message", "getMessage", sc, handler))
func InstrumentedToolHandler(toolName, action string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, span := instrumentation.StartToolSpan(ctx, toolName,
			attribute.String(instrumentation.SpanAttrAction, action),
		)
		defer span.End()

		start := time.Now()
		invocation := instrumentation.NewToolInvocation(toolName, action).
			WithSpanContext(ctx).
			WithArguments(StringArguments(request.GetArguments()))

		result, err := handler(ctx, request)
		duration := time.Since(start)

		// Error results carry their message as text; surface it in the
		// span and audit line.
		failure := err
		if failure == nil && result != nil && result.IsError {
			failure = errors.New(ResultText(result))
		}

		status := instrumentation.StatusSuccess
		if failure != nil {
			status = instrumentation.StatusError
			instrumentation.SetSpanError(span, failure)
			invocation.Complete(false, failure)
		} else {
			instrumentation.SetSpanSuccess(span)
			invocation.Complete(true, nil)
		}
		span.SetAttributes(attribute.String(instrumentation.SpanAttrStatus, status))

		if sc != nil {
			sc.Metrics().RecordToolInvocation(ctx, toolName, status, duration)
			sc.AuditLogger().LogToolInvocation(invocation)
		}

		return result, err
	}
}
