// Package cmd implements the command-line interface for gmail-mcp.
//
// This package provides the following commands:
//   - auth: Run the Google OAuth authorization flow and store the credential
//   - serve: Start the MCP server to provide Gmail tools for AI assistants
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified.
package cmd
