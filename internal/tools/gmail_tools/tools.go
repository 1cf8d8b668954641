package gmail_tools

import (
	"context"
	"fmt"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gasmail/internal/server"
	"github.com/teemow/gasmail/internal/tools/common"
)

// NewDispatcherFromContext builds a dispatcher from the server context.
func NewDispatcherFromContext(sc *server.ServerContext) *Dispatcher {
	return NewDispatcher(sc.Remote(), sc.DownloadDir(),
		WithToolPrefix(sc.ToolPrefix()),
		WithMetrics(sc.Metrics()),
		WithLogger(sc.Logger()),
	)
}

// RegisterGmailTools registers every catalog operation with the MCP server.
func RegisterGmailTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if sc == nil {
		return fmt.Errorf("server context is required")
	}

	d := NewDispatcherFromContext(sc)
	for _, op := range d.Operations() {
		name := op.Name
		handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return d.Call(ctx, name, request.GetArguments()), nil
		}
		s.AddTool(op.Tool(), common.InstrumentedToolHandler(name, op.Action, sc, handler))
	}
	return nil
}

// CatalogOrder is a tool filter that lists tools in catalog order rather
// than the alphabetical order mcp-go produces. Tools outside the catalog
// keep their relative order after the catalog entries.
func CatalogOrder(prefix string) mcpserver.ToolFilterFunc {
	rank := make(map[string]int)
	for i, op := range Catalog(prefix) {
		rank[op.Name] = i
	}
	return func(_ context.Context, tools []mcp.Tool) []mcp.Tool {
		ordered := make([]mcp.Tool, len(tools))
		copy(ordered, tools)
		sort.SliceStable(ordered, func(i, j int) bool {
			ri, iok := rank[ordered[i].Name]
			rj, jok := rank[ordered[j].Name]
			if iok && jok {
				return ri < rj
			}
			return iok && !jok
		})
		return ordered
	}
}
