package common

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/gmail-mcp/internal/instrumentation"
	"github.com/teemow/gmail-mcp/internal/server"
)

// ToolHandler is the mcp-go handler signature every tool uses. It is an
// alias so values are assignable to mcp-go's server.ToolHandlerFunc.
type ToolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// InstrumentedToolHandler wraps a tool handler with metrics and audit
// logging. The operation string names the underlying Gmail action for
// the audit trail (send, search, modify, ...).
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", "send", sc, handler))
func InstrumentedToolHandler(
	toolName string,
	operation string,
	sc *server.ServerContext,
	handler ToolHandler,
) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		// Metrics and audit logger may be nil when instrumentation is
		// disabled; the handler runs the same either way.
		metrics := sc.Metrics()
		auditLogger := sc.AuditLogger()

		if metrics == nil && auditLogger == nil {
			return handler(ctx, request)
		}

		start := time.Now()
		invocation := instrumentation.NewToolInvocation(toolName).
			WithSpanContext(ctx).
			WithOperation(operation)

		if auditLogger != nil && auditLogger.IncludeArguments() {
			invocation.WithArguments(request.GetArguments())
		}

		result, err := handler(ctx, request)
		duration := time.Since(start)

		// A tool error is reported in result.IsError, not err.
		status := instrumentation.StatusSuccess
		if err != nil || (result != nil && result.IsError) {
			status = instrumentation.StatusError
			if err != nil {
				invocation.CompleteWithError(err)
			} else {
				invocation.Complete(false, nil)
			}
		} else {
			invocation.CompleteSuccess()
		}

		if metrics != nil {
			metrics.RecordToolInvocation(ctx, toolName, status, duration)
		}

		if auditLogger != nil {
			auditLogger.LogToolInvocation(invocation)
		}

		return result, err
	}
}
