// Package logging provides structured logging utilities for the gmail-mcp application.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - Token sanitization so credentials never reach log output
//   - Consistent attribute naming across the codebase
//
// All log output goes to stderr. With the stdio MCP transport stdout
// carries the protocol stream and must stay clean.
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "gmail.search")
//	logger.Info("searching messages", logging.Status(logging.StatusSuccess))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("token refreshed",
//	    logging.KeyToken, logging.SanitizeToken(cred.AccessToken))
package logging
