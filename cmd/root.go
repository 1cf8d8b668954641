package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the gasmail application
var rootCmd = &cobra.Command{
	Use:   "gasmail",
	Short: "MCP server for Gmail backed by a Google Apps Script endpoint",
	Long: `gasmail exposes Gmail operations (search, read, label, attachments) to
AI assistants over the Model Context Protocol. Every operation is forwarded
to a deployed Google Apps Script web app that talks to Gmail.

It can run over:
  - stdio (default), for desktop MCP clients
  - streamable HTTP, for remote clients`,
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
	rootCmd.SetVersionTemplate(`{{printf "gasmail version %s\n" .Version}}`)

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
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}
