package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bedrockmgr/bsmctl/internal/api"
	"github.com/bedrockmgr/bsmctl/internal/card"
	"github.com/bedrockmgr/bsmctl/internal/observe"
)

// Admin command flags
var (
	cacheDir   string
	cacheKeep  int
	autoupdate bool
	autostart  bool
)

func init() {
	rootCmd.AddCommand(installWorldCmd)
	rootCmd.AddCommand(installAddonCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(pruneCacheCmd)
	rootCmd.AddCommand(serviceCmd)

	playersCmd.AddCommand(playersAddCmd)
	playersCmd.AddCommand(playersScanCmd)
}

var installWorldCmd = &cobra.Command{
	Use:   "install-world <server> <file.mcworld>",
	Short: "Install a world file from the manager's content directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		client, err := connect(ctx)
		if err != nil {
			return err
		}
		content, err := contentCardFor(ctx, client, args[0])
		if err != nil {
			return err
		}
		if err := content.InstallWorld(ctx, args[1]); err != nil {
			return fmt.Errorf("world install failed: %w", err)
		}
		fmt.Printf("✓ Install of %s started on %s (replaces the current world)\n", args[1], args[0])
		return nil
	},
}

var installAddonCmd = &cobra.Command{
	Use:   "install-addon <server> <file.mcaddon|file.mcpack>",
	Short: "Install an addon from the manager's content directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		client, err := connect(ctx)
		if err != nil {
			return err
		}
		content, err := contentCardFor(ctx, client, args[0])
		if err != nil {
			return err
		}
		if err := content.InstallAddon(ctx, args[1]); err != nil {
			return fmt.Errorf("addon install failed: %w", err)
		}
		fmt.Printf("✓ Install of %s started on %s\n", args[1], args[0])
		return nil
	},
}

// contentCardFor fetches the manager's content catalogs and builds a
// card around them, so installs are checked against what is actually
// available before any action fires.
func contentCardFor(ctx context.Context, client *api.Client, server string) (*card.ContentCard, error) {
	worlds, err := client.ListContentWorlds(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list available worlds: %w", err)
	}
	addons, err := client.ListContentAddons(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list available addons: %w", err)
	}

	content := card.NewContentCard(client, observe.NewMapRegistry(), server)
	content.Observe(observe.NewSnapshot(server, map[string]any{
		observe.AttributeTargetKey: server,
		"available_worlds":         worlds,
		"available_addons":         addons,
	}))
	return content, nil
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "Manage the manager's global player database",
}

var playersAddCmd = &cobra.Command{
	Use:   "add <gamertag:xuid...>",
	Short: "Add players to the global database",
	Example: `  bsmctl players add "Steve:2535460000000001"
  bsmctl players add "Steve:2535460000000001" "Alex:2535460000000002"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, entry := range args {
			if !strings.Contains(entry, ":") {
				return fmt.Errorf("expected gamertag:xuid, got %q", entry)
			}
		}

		ctx, cancel := commandContext()
		defer cancel()

		client, err := connect(ctx)
		if err != nil {
			return err
		}
		if err := client.AddGlobalPlayers(ctx, args); err != nil {
			return fmt.Errorf("failed to add players: %w", err)
		}
		fmt.Printf("✓ Added %d player(s) to the global database\n", len(args))
		return nil
	},
}

var playersScanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan server logs for new players",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		client, err := connect(ctx)
		if err != nil {
			return err
		}
		if err := client.ScanPlayerLogs(ctx); err != nil {
			return fmt.Errorf("player log scan failed: %w", err)
		}
		fmt.Println("✓ Player log scan started")
		return nil
	},
}

var pruneCacheCmd = &cobra.Command{
	Use:   "prune-cache",
	Short: "Prune the manager's download cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		client, err := connect(ctx)
		if err != nil {
			return err
		}
		var keep *int
		if cmd.Flags().Changed("keep") {
			keep = &cacheKeep
		}
		if err := client.PruneDownloadCache(ctx, cacheDir, keep); err != nil {
			return fmt.Errorf("cache prune failed: %w", err)
		}
		fmt.Println("✓ Download cache pruned")
		return nil
	},
}

func init() {
	pruneCacheCmd.Flags().StringVar(&cacheDir, "dir", "", "Cache directory (manager default when omitted)")
	pruneCacheCmd.Flags().IntVar(&cacheKeep, "keep", 0, "Number of downloads to keep")
}

var serviceCmd = &cobra.Command{
	Use:   "service <server>",
	Short: "Configure the server's OS service settings",
	Example: `  # Enable auto-update on service start
  bsmctl service alpha --autoupdate

  # Enable both auto-update and boot autostart
  bsmctl service alpha --autoupdate --autostart`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		client, err := connect(ctx)
		if err != nil {
			return err
		}
		var start *bool
		if cmd.Flags().Changed("autostart") {
			start = &autostart
		}
		if err := client.ConfigureOSService(ctx, args[0], autoupdate, start); err != nil {
			return fmt.Errorf("service update failed: %w", err)
		}
		fmt.Printf("✓ Service settings updated for %s\n", args[0])
		return nil
	},
}

func init() {
	serviceCmd.Flags().BoolVar(&autoupdate, "autoupdate", false, "Update the server when the service starts")
	serviceCmd.Flags().BoolVar(&autostart, "autostart", false, "Start the server at boot (where supported)")
}
