// Package logging provides structured logging utilities for gasmail.
//
// All logging goes through log/slog. In stdio mode stdout carries the MCP
// protocol, so the default handler always writes to stderr.
//
// # Usage Patterns
//
//	logger := logging.WithTool(slog.Default(), "search_messages")
//	logger.Info("remote call finished",
//	    logging.Action("search"),
//	    logging.Status(logging.StatusSuccess))
//
// # Secrets
//
// The Apps Script API key travels as a query parameter. Never log a request URL
// directly; pass it through RedactURL first.
package logging
