package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"

	"github.com/teemow/gasmail/internal/tools/gmail_tools"
)

func newGenerateDocsCmd() *cobra.Command {
	var (
		outputFile string
		toolPrefix string
	)

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Generate markdown documentation for all available MCP tools.
The documentation is built from the same tool definitions the server
registers, so it always matches the running catalog.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateDocs(outputFile, toolPrefix)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&toolPrefix, "tool-prefix", "", "Tool name prefix to document (as passed to serve)")

	return cmd
}

func runGenerateDocs(outputFile, toolPrefix string) error {
	ops := gmail_tools.Catalog(toolPrefix)
	tools := make([]mcp.Tool, 0, len(ops))
	for _, op := range ops {
		tools = append(tools, op.Tool())
	}

	markdown := generateToolsMarkdown(tools)

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(markdown), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Documentation written to: %s\n", outputFile)
	} else {
		fmt.Print(markdown)
	}

	return nil
}

// generateToolsMarkdown renders tools in catalog order.
func generateToolsMarkdown(tools []mcp.Tool) string {
	var sb strings.Builder

	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("This document provides a complete reference of all tools available when running gasmail as an MCP server.\n\n")
	sb.WriteString("**Note:** This documentation is automatically generated from the tool definitions.\n\n")

	sb.WriteString("## Table of Contents\n\n")
	for _, tool := range tools {
		sb.WriteString(fmt.Sprintf("- [%s](#%s)\n", tool.Name, strings.ToLower(tool.Name)))
	}
	sb.WriteString("\n")

	sb.WriteString("## Gmail Tools\n\n")
	for _, tool := range tools {
		sb.WriteString(generateToolMarkdown(tool))
		sb.WriteString("\n")
	}

	return sb.String()
}

func generateToolMarkdown(tool mcp.Tool) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("### %s\n\n", tool.Name))

	if tool.Description != "" {
		sb.WriteString(fmt.Sprintf("%s\n\n", strings.TrimSpace(tool.Description)))
	}

	if hints := annotationHints(tool.Annotations); hints != "" {
		sb.WriteString(fmt.Sprintf("**Hints:** %s\n\n", hints))
	}

	if len(tool.InputSchema.Properties) > 0 {
		sb.WriteString("**Arguments:**\n")

		// Required arguments first, in declaration order.
		names := append([]string(nil), tool.InputSchema.Required...)
		for name := range tool.InputSchema.Properties {
			if !contains(names, name) {
				names = append(names, name)
			}
		}

		for _, name := range names {
			propMap, ok := tool.InputSchema.Properties[name].(map[string]any)
			if !ok {
				continue
			}

			requiredStr := "optional"
			if contains(tool.InputSchema.Required, name) {
				requiredStr = "required"
			}

			sb.WriteString(fmt.Sprintf("- `%s` (%s, %s): ", name, getPropertyType(propMap), requiredStr))
			if desc, ok := propMap["description"].(string); ok {
				sb.WriteString(desc)
			} else {
				sb.WriteString(fmt.Sprintf("%s parameter", getPropertyType(propMap)))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func annotationHints(a mcp.ToolAnnotation) string {
	var hints []string
	if a.ReadOnlyHint != nil && *a.ReadOnlyHint {
		hints = append(hints, "read-only")
	}
	if a.DestructiveHint != nil && *a.DestructiveHint {
		hints = append(hints, "destructive")
	}
	if a.IdempotentHint != nil && *a.IdempotentHint {
		hints = append(hints, "idempotent")
	}
	return strings.Join(hints, ", ")
}

func getPropertyType(prop map[string]any) string {
	if t, ok := prop["type"].(string); ok {
		return t
	}
	return "any"
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
