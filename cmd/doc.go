// Package cmd implements the command-line interface for gasmail.
//
// This package provides the following commands:
//   - serve: Start the MCP server (stdio or streamable-http transport)
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified.
package cmd
