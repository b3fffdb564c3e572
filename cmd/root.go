package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the zotero-mcp application
var rootCmd = &cobra.Command{
	Use:   "zotero-mcp",
	Short: "MCP server for managing a Zotero reference library",
	Long: `zotero-mcp exposes a Zotero library to AI assistants over the
Model Context Protocol (MCP): listing, searching, inspecting, and
deleting items, plus a criteria-based retention filter.

It can run as:
  - An MCP server over stdio or streamable HTTP (default)
  - A standalone CLI for one-off library cleanup`,
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
	rootCmd.SetVersionTemplate(`{{printf "zotero-mcp version %s\n" .Version}}`)

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
	rootCmd.AddCommand(newCleanupCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
