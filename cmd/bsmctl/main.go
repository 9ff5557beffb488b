// Bsmctl is a command line and terminal UI client for Bedrock Server
// Manager instances.
//
// It discovers managers on the local network, keeps a registry of known
// managers, and drives the manager's HTTP API for server lifecycle,
// console commands, backups, allowlists, properties, and permissions.
// Passwords are prompted for interactively and never written to disk.
//
// Usage:
//
//	bsmctl [command] [flags]
//
// Running without arguments launches the interactive dashboard.
// See 'bsmctl --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bedrockmgr/bsmctl/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bsmctl",
	Short: "Bedrock Server Manager Control",
	Long: `A command line client for Bedrock Server Manager instances.

Manages the servers hosted on one or more manager instances: lifecycle,
console commands, backups, allowlists, server properties, and player
permissions. Known managers are kept in a local registry; passwords are
always prompted for and never stored.

If no command is specified, the interactive dashboard will launch
automatically.`,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run the dashboard when no subcommand provided
		return runDashboard(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bsmctl %s (commit: %s)\n", version.Version, version.Commit)
	},
}
