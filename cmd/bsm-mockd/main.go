// Bsm-mockd is an in-memory fake Bedrock Server Manager.
//
// It serves the manager's HTTP API with seeded example servers so that
// bsmctl can be developed and demonstrated without a real manager or a
// real Bedrock server install. State lives in memory and resets on
// restart.
//
// Usage:
//
//	bsm-mockd serve [flags]
//
// See 'bsm-mockd serve --help' for available options.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bedrockmgr/bsmctl/internal/config"
	"github.com/bedrockmgr/bsmctl/internal/mockserver"
	"github.com/bedrockmgr/bsmctl/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bsm-mockd",
	Short: "Fake Bedrock Server Manager",
	Long: `An in-memory fake of the Bedrock Server Manager HTTP API.

Serves seeded example servers for developing and demonstrating bsmctl.
All state is in memory and resets on restart. Not for production use.`,
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Serve command and flags
var (
	host     string
	port     int
	user     string
	password string
	logLevel string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the fake manager",
	Example: `  # Start on the standard manager port
  bsm-mockd serve

  # Custom port and credentials
  bsm-mockd serve --port 8080 --username dev --password dev`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&host, "host", "", "Listen address (empty = all interfaces)")
	serveCmd.Flags().IntVar(&port, "port", config.DefaultPort, "Listen port")
	serveCmd.Flags().StringVar(&user, "username", "admin", "Login username")
	serveCmd.Flags().StringVar(&password, "password", "admin", "Login password")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func runServe(cmd *cobra.Command, args []string) error {
	srv, err := mockserver.New(&mockserver.Config{
		Host:     host,
		Port:     port,
		Username: user,
		Password: password,
		LogLevel: logLevel,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Start()
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bsm-mockd %s (commit: %s)\n", version.Version, version.Commit)
	},
}
