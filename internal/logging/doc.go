// Package logging provides structured logging utilities for the zotero-mcp
// server.
//
// This package centralizes logging patterns to ensure consistent, structured
// logging throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - API key sanitization (length-only token display)
//   - Consistent attribute naming across the codebase
//   - Logger adapter interface for flexibility
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "items.list")
//	logger.Info("listing items",
//	    logging.Status("success"))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("credentials updated",
//	    slog.String("api_key", logging.SanitizeToken(key)))
//
// The default logger should write to stderr: on the stdio transport,
// stdout carries the MCP protocol stream.
package logging
