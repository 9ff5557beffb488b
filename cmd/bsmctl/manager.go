package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bedrockmgr/bsmctl/internal/config"
	"github.com/bedrockmgr/bsmctl/internal/discovery"
	"github.com/bedrockmgr/bsmctl/internal/urls"
)

var (
	scanTimeout int
	addPort     int
	setDefault  bool
)

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(managerCmd)

	managerCmd.AddCommand(managerAddCmd)
	managerCmd.AddCommand(managerListCmd)
	managerCmd.AddCommand(managerRemoveCmd)
	managerCmd.AddCommand(managerDefaultCmd)
}

// scanCmd discovers manager instances on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for Bedrock Server Manager instances on the network",
	Long: `Scan for manager instances using mDNS/DNS-SD discovery.

This command listens for mDNS broadcasts from manager instances and
displays all discovered managers with their addresses and metadata.`,
	Example: `  # Scan for 10 seconds (default)
  bsmctl scan

  # Quick 3-second scan
  bsmctl scan --timeout 3`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 10, "Scan timeout in seconds")
}

func runScan(cmd *cobra.Command, args []string) error {
	fmt.Printf("Scanning for managers (timeout: %ds)...\n\n", scanTimeout)

	managers, err := discovery.ScanForManagers(time.Duration(scanTimeout) * time.Second)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(managers) == 0 {
		fmt.Println("No managers found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the manager is running and on the same network")
		fmt.Println("  - Check that mDNS traffic is not blocked by a firewall")
		fmt.Println("  - Try increasing --timeout for slower networks")
		fmt.Println("  - Use --host to specify the address manually")
		fmt.Println("  - Discovery guide: " + urls.Discovery)
		return nil
	}

	fmt.Printf("Found %d manager(s):\n\n", len(managers))

	for i, manager := range managers {
		fmt.Printf("%d. %s\n", i+1, manager.Name)
		fmt.Printf("   Address: %s:%d\n", manager.IP, manager.Port)
		if version := manager.Version(); version != "" {
			fmt.Printf("   Version: %s\n", version)
		}
		fmt.Println()
	}

	fmt.Println("Use 'bsmctl manager add <name> <host>' to save a manager")
	fmt.Println("Use 'bsmctl servers --host <ip>' to list its servers directly")

	return nil
}

// managerCmd groups the registry subcommands
var managerCmd = &cobra.Command{
	Use:   "manager",
	Short: "Manage the registry of known managers",
	Long: `Manage the local registry of Bedrock Server Manager instances.

The registry lives in the user config directory and stores names,
addresses, and usernames for known managers. Passwords are never
stored; they are prompted for on each session.`,
}

var managerAddCmd = &cobra.Command{
	Use:   "add <name> <host>",
	Short: "Add or update a manager entry",
	Example: `  # Add a manager on the default port
  bsmctl manager add home 192.168.1.10 --username admin

  # Add on a custom port and make it the default
  bsmctl manager add lab bsm.lab.lan --port 8080 --default`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, host := args[0], args[1]

		registry, err := config.GetGlobalRegistry()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		registry.SetManager(name, host, addPort, username)
		if setDefault {
			registry.Preferences.DefaultManager = name
		}
		if err := config.SaveGlobal(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Printf("Saved manager %q (%s:%d)\n", name, host, addPort)
		if setDefault {
			fmt.Printf("Set %q as the default manager\n", name)
		}
		return nil
	},
}

func init() {
	managerAddCmd.Flags().IntVar(&addPort, "port", config.DefaultPort, "Manager HTTP port")
	managerAddCmd.Flags().BoolVar(&setDefault, "default", false, "Make this the default manager")
}

var managerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered managers",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := config.GetGlobalRegistry()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if len(registry.Managers) == 0 {
			fmt.Println("No managers registered. Add one with 'bsmctl manager add <name> <host>'.")
			return nil
		}

		defaultName := ""
		if registry.Preferences != nil {
			defaultName = registry.Preferences.DefaultManager
		}

		for name, manager := range registry.Managers {
			host, port := manager.Address()
			marker := "  "
			if name == defaultName {
				marker = "* "
			}
			fmt.Printf("%s%s\n", marker, name)
			fmt.Printf("    Address:  %s:%d\n", host, port)
			if manager.Username != "" {
				fmt.Printf("    Username: %s\n", manager.Username)
			}
			if !manager.LastSeen.IsZero() {
				fmt.Printf("    Last seen: %s\n", manager.LastSeen.Format(time.RFC822))
			}
		}
		return nil
	},
}

var managerRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a manager entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := config.GetGlobalRegistry()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if registry.GetManager(args[0]) == nil {
			return fmt.Errorf("no manager named %q in config", args[0])
		}
		registry.RemoveManager(args[0])
		if err := config.SaveGlobal(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Printf("Removed manager %q\n", args[0])
		return nil
	},
}

var managerDefaultCmd = &cobra.Command{
	Use:   "default <name>",
	Short: "Set the default manager",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := config.GetGlobalRegistry()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if registry.GetManager(args[0]) == nil {
			return fmt.Errorf("no manager named %q in config", args[0])
		}
		registry.Preferences.DefaultManager = args[0]
		if err := config.SaveGlobal(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Printf("Set %q as the default manager\n", args[0])
		return nil
	},
}
