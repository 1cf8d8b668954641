package common

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// StringArguments returns the string-valued entries of args. Values of any
// other JSON type are dropped.
func StringArguments(args map[string]any) map[string]string {
	out := make(map[string]string, len(args))
	for k, v := range args {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

// ResultText concatenates the text blocks of a tool result.
func ResultText(result *mcp.CallToolResult) string {
	if result == nil {
		return ""
	}
	var b strings.Builder
	for _, c := range result.Content {
		if tc, ok := mcp.AsTextContent(c); ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}
