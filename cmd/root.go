package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the gmail-mcp application
var rootCmd = &cobra.Command{
	Use:   "gmail-mcp",
	Short: "MCP server exposing Gmail tools for AI assistants",
	Long: `gmail-mcp is a Model Context Protocol (MCP) server that gives AI
assistants access to Gmail: sending and searching email, managing labels
and filters, and working with attachments.

It authenticates against Google with the OAuth2 authorization-code flow
and keeps the stored token fresh across restarts.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "gmail-mcp version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
}
