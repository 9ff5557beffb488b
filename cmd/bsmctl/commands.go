package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bedrockmgr/bsmctl/internal/api"
	"github.com/bedrockmgr/bsmctl/internal/config"
	"github.com/bedrockmgr/bsmctl/internal/coordinator"
	"github.com/bedrockmgr/bsmctl/internal/logging"
	"github.com/bedrockmgr/bsmctl/internal/tui"
	"github.com/bedrockmgr/bsmctl/internal/urls"
)

// Command flags
var (
	backupType   string
	backupFile   string
	restoreAll   bool
	keepBackups  int
	installVer   string
	overwrite    bool
	ignoresLimit bool
	yes          bool
)

func init() {
	rootCmd.AddCommand(serversCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(restartCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(commandCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(backupsCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(allowlistCmd)
	rootCmd.AddCommand(propertiesCmd)
	rootCmd.AddCommand(permissionsCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(dashboardCmd)

	allowlistCmd.AddCommand(allowlistAddCmd)
	allowlistCmd.AddCommand(allowlistRemoveCmd)

	propertiesCmd.AddCommand(propertiesSetCmd)

	permissionsCmd.AddCommand(permissionsSetCmd)
}

// commandContext applies a sensible upper bound to one-shot commands
func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 2*time.Minute)
}

var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "List servers on the manager",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		client, err := connect(ctx)
		if err != nil {
			return err
		}

		servers, err := client.GetServerList(ctx)
		if err != nil {
			return fmt.Errorf("failed to list servers: %w", err)
		}
		if len(servers) == 0 {
			fmt.Println("No servers configured. Install one with 'bsmctl install <name>'.")
			return nil
		}
		for _, server := range servers {
			fmt.Println(server)
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <server>",
	Short: "Show runtime status for a server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		client, err := connect(ctx)
		if err != nil {
			return err
		}
		server := args[0]

		status, err := client.GetStatusInfo(ctx, server)
		if err != nil {
			return fmt.Errorf("failed to get status: %w", err)
		}

		fmt.Printf("Server: %s\n", server)
		if status.ProcessInfo == nil {
			fmt.Println("Status: stopped")
		} else {
			fmt.Println("Status: running")
			fmt.Printf("  PID:       %d\n", status.ProcessInfo.PID)
			fmt.Printf("  CPU:       %.1f%%\n", status.ProcessInfo.CPUPercent)
			fmt.Printf("  Memory:    %.1f MB\n", status.ProcessInfo.MemoryMB)
			fmt.Printf("  Uptime:    %s\n", status.ProcessInfo.Uptime)
		}

		if version, err := client.GetVersion(ctx, server); err == nil {
			fmt.Printf("  Version:   %s\n", version)
		}
		if world, err := client.GetWorldName(ctx, server); err == nil {
			fmt.Printf("  World:     %s\n", world)
		}
		return nil
	},
}

// lifecycleCommand builds start/stop/restart/update, which only differ
// in the verb and the client call.
func lifecycleCommand(use, short string, action func(*api.Client, context.Context, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <server>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext()
			defer cancel()

			client, err := connect(ctx)
			if err != nil {
				return err
			}
			if err := action(client, ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("✓ %s: %s\n", short, args[0])
			return nil
		},
	}
}

var startCmd = lifecycleCommand("start", "Start a server", func(c *api.Client, ctx context.Context, s string) error {
	return c.StartServer(ctx, s)
})

var stopCmd = lifecycleCommand("stop", "Stop a server", func(c *api.Client, ctx context.Context, s string) error {
	return c.StopServer(ctx, s)
})

var restartCmd = lifecycleCommand("restart", "Restart a server", func(c *api.Client, ctx context.Context, s string) error {
	return c.RestartServer(ctx, s)
})

var updateCmd = lifecycleCommand("update", "Update a server to the target version", func(c *api.Client, ctx context.Context, s string) error {
	return c.UpdateServer(ctx, s)
})

var commandCmd = &cobra.Command{
	Use:   "command <server> <command...>",
	Short: "Send a console command to a running server",
	Example: `  bsmctl command alpha list
  bsmctl command alpha say Maintenance in 5 minutes`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		client, err := connect(ctx)
		if err != nil {
			return err
		}
		server := args[0]
		command := strings.TrimPrefix(strings.Join(args[1:], " "), "/")

		if err := client.SendCommand(ctx, server, command); err != nil {
			if api.IsNotRunningError(err) {
				return fmt.Errorf("server %q is not running; start it first", server)
			}
			return fmt.Errorf("failed to send command: %w", err)
		}
		fmt.Printf("✓ Sent to %s: %s\n", server, command)
		return nil
	},
}

var backupCmd = &cobra.Command{
	Use:   "backup <server>",
	Short: "Trigger a backup",
	Example: `  # Back up everything
  bsmctl backup alpha

  # Back up just the world
  bsmctl backup alpha --type world

  # Back up one config file
  bsmctl backup alpha --type config --file server.properties`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		client, err := connect(ctx)
		if err != nil {
			return err
		}
		if err := client.TriggerBackup(ctx, args[0], backupType, backupFile); err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}
		fmt.Printf("✓ Backup (%s) started for %s\n", backupType, args[0])
		return nil
	},
}

func init() {
	backupCmd.Flags().StringVar(&backupType, "type", "all", "Backup type (all, world, config)")
	backupCmd.Flags().StringVar(&backupFile, "file", "", "Specific config file to back up")
}

var backupsCmd = &cobra.Command{
	Use:   "backups <server>",
	Short: "List backups for a server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		client, err := connect(ctx)
		if err != nil {
			return err
		}
		backups, err := client.ListBackups(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to list backups: %w", err)
		}

		printGroup := func(title string, files []string) {
			if len(files) == 0 {
				return
			}
			fmt.Printf("%s:\n", title)
			for _, file := range files {
				fmt.Printf("  %s\n", file)
			}
		}
		printGroup("World", backups.WorldBackups)
		printGroup("Properties", backups.PropertiesBackups)
		printGroup("Allowlist", backups.AllowlistBackups)
		printGroup("Permissions", backups.PermissionsBackups)

		total := len(backups.WorldBackups) + len(backups.PropertiesBackups) +
			len(backups.AllowlistBackups) + len(backups.PermissionsBackups)
		if total == 0 {
			fmt.Println("No backups recorded.")
		}
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <server> [backup-file]",
	Short: "Restore a backup",
	Long: `Restore a server from a backup file, or restore the latest backup of
everything with --all. The restore type (world, properties, allowlist,
permissions) is taken from the --type flag.

Backup semantics are documented at ` + urls.BackupsGuide + `.`,
	Example: `  # Restore a specific world backup
  bsmctl restore alpha world_2024.mcworld --type world

  # Restore the latest backup of everything
  bsmctl restore alpha --all`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		client, err := connect(ctx)
		if err != nil {
			return err
		}
		server := args[0]

		if restoreAll {
			if err := client.RestoreLatestAll(ctx, server); err != nil {
				return fmt.Errorf("restore failed: %w", err)
			}
			fmt.Printf("✓ Restore of all latest backups started for %s\n", server)
			return nil
		}

		if len(args) < 2 {
			return fmt.Errorf("a backup file is required unless --all is given")
		}
		restoreType, err := restoreTypeFor(backupType)
		if err != nil {
			return err
		}
		if err := client.RestoreBackup(ctx, server, restoreType, args[1]); err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}
		fmt.Printf("✓ Restore of %s started for %s\n", args[1], server)
		return nil
	},
}

func init() {
	restoreCmd.Flags().BoolVar(&restoreAll, "all", false, "Restore the latest backup of everything")
	restoreCmd.Flags().StringVar(&backupType, "type", "all", "Restore type (world, properties, allowlist, permissions)")
}

// restoreTypeFor maps the user-facing backup kind to the restore_type
// the manager accepts. The manager only distinguishes "world" and
// "config"; properties, allowlist, and permissions backups all restore
// as config.
func restoreTypeFor(kind string) (string, error) {
	switch kind {
	case "world":
		return "world", nil
	case "config", "properties", "allowlist", "permissions":
		return "config", nil
	case "all":
		return "", fmt.Errorf("--type must name what to restore (world, properties, allowlist, permissions)")
	default:
		return "", fmt.Errorf("unknown restore type %q; use world, properties, allowlist, or permissions", kind)
	}
}

var pruneCmd = &cobra.Command{
	Use:   "prune <server>",
	Short: "Prune old backups",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		client, err := connect(ctx)
		if err != nil {
			return err
		}
		var keep *int
		if cmd.Flags().Changed("keep") {
			keep = &keepBackups
		}
		if err := client.PruneBackups(ctx, args[0], keep); err != nil {
			return fmt.Errorf("prune failed: %w", err)
		}
		fmt.Printf("✓ Pruned old backups for %s\n", args[0])
		return nil
	},
}

func init() {
	pruneCmd.Flags().IntVar(&keepBackups, "keep", 0, "Number of backups to keep (manager default when omitted)")
}

var exportCmd = &cobra.Command{
	Use:   "export <server>",
	Short: "Export the server's world to a .mcworld file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		client, err := connect(ctx)
		if err != nil {
			return err
		}
		if err := client.ExportWorld(ctx, args[0]); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		fmt.Printf("✓ World export started for %s\n", args[0])
		return nil
	},
}

var allowlistCmd = &cobra.Command{
	Use:   "allowlist <server>",
	Short: "Show or edit the server allowlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		client, err := connect(ctx)
		if err != nil {
			return err
		}
		players, err := client.GetAllowlist(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get allowlist: %w", err)
		}
		if len(players) == 0 {
			fmt.Println("Allowlist is empty.")
			return nil
		}
		for _, player := range players {
			suffix := ""
			if player.IgnoresPlayerLimit {
				suffix = " (ignores player limit)"
			}
			fmt.Printf("%s%s\n", player.Name, suffix)
		}
		return nil
	},
}

var allowlistAddCmd = &cobra.Command{
	Use:   "add <server> <player...>",
	Short: "Add players to the allowlist",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		client, err := connect(ctx)
		if err != nil {
			return err
		}
		if err := client.AddToAllowlist(ctx, args[0], args[1:], ignoresLimit); err != nil {
			return fmt.Errorf("failed to add players: %w", err)
		}
		fmt.Printf("✓ Added %d player(s) to %s\n", len(args)-1, args[0])
		return nil
	},
}

func init() {
	allowlistAddCmd.Flags().BoolVar(&ignoresLimit, "ignores-player-limit", false, "Let these players join past the player limit")
}

var allowlistRemoveCmd = &cobra.Command{
	Use:   "remove <server> <player...>",
	Short: "Remove players from the allowlist",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		client, err := connect(ctx)
		if err != nil {
			return err
		}
		for _, player := range args[1:] {
			if err := client.RemoveFromAllowlist(ctx, args[0], player); err != nil {
				return fmt.Errorf("failed to remove %s: %w", player, err)
			}
			fmt.Printf("✓ Removed %s\n", player)
		}
		return nil
	},
}

var propertiesCmd = &cobra.Command{
	Use:   "properties <server>",
	Short: "Show or edit server properties",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		client, err := connect(ctx)
		if err != nil {
			return err
		}
		properties, err := client.GetProperties(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get properties: %w", err)
		}
		for _, key := range sortedKeys(properties) {
			fmt.Printf("%s=%s\n", key, properties[key])
		}
		return nil
	},
}

var propertiesSetCmd = &cobra.Command{
	Use:   "set <server> <key=value...>",
	Short: "Update server properties",
	Example: `  bsmctl properties set alpha max-players=20
  bsmctl properties set alpha difficulty=hard allow-cheats=false`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		client, err := connect(ctx)
		if err != nil {
			return err
		}
		updates := make(map[string]string, len(args)-1)
		for _, pair := range args[1:] {
			key, value, found := strings.Cut(pair, "=")
			if !found || key == "" {
				return fmt.Errorf("expected key=value, got %q", pair)
			}
			updates[key] = value
		}
		if err := client.UpdateProperties(ctx, args[0], updates); err != nil {
			return fmt.Errorf("failed to update properties: %w", err)
		}
		fmt.Printf("✓ Updated %d propert%s on %s\n", len(updates), plural(len(updates), "y", "ies"), args[0])
		fmt.Println("Restart the server for the changes to take effect.")
		return nil
	},
}

var permissionsCmd = &cobra.Command{
	Use:   "permissions <server>",
	Short: "Show or edit player permission levels",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		client, err := connect(ctx)
		if err != nil {
			return err
		}
		permissions, err := client.GetPermissions(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get permissions: %w", err)
		}
		if len(permissions) == 0 {
			fmt.Println("No per-player permissions configured.")
			return nil
		}
		for _, entry := range permissions {
			name := entry.Name
			if name == "" {
				name = entry.XUID
			}
			fmt.Printf("%-24s %-10s (xuid %s)\n", name, entry.Permission, entry.XUID)
		}
		return nil
	},
}

var permissionsSetCmd = &cobra.Command{
	Use:   "set <server> <xuid> <level>",
	Short: "Set a player's permission level (visitor, member, operator)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		client, err := connect(ctx)
		if err != nil {
			return err
		}
		level := strings.ToLower(args[2])
		switch level {
		case "visitor", "member", "operator":
		default:
			return fmt.Errorf("level must be visitor, member, or operator, got %q", args[2])
		}
		if err := client.SetPermissions(ctx, args[0], map[string]string{args[1]: level}); err != nil {
			return fmt.Errorf("failed to set permission: %w", err)
		}
		fmt.Printf("✓ Set %s to %s on %s\n", args[1], level, args[0])
		return nil
	},
}

var installCmd = &cobra.Command{
	Use:   "install <name>",
	Short: "Install a new server on the manager",
	Example: `  # Install the latest release
  bsmctl install delta

  # Install a specific version, replacing any existing install
  bsmctl install delta --target-version 1.21.0.3 --overwrite`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		client, err := connect(ctx)
		if err != nil {
			return err
		}
		if err := client.InstallServer(ctx, args[0], installVer, overwrite); err != nil {
			return fmt.Errorf("install failed: %w", err)
		}
		fmt.Printf("✓ Install of %s (%s) started\n", args[0], installVer)
		return nil
	},
}

func init() {
	installCmd.Flags().StringVar(&installVer, "target-version", "LATEST", "Version to install (LATEST, PREVIEW, or a version number)")
	installCmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing server with the same name")
}

var deleteCmd = &cobra.Command{
	Use:   "delete <server>",
	Short: "Delete a server and all its data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !yes {
			return fmt.Errorf("deleting %q removes its world and config; pass --yes to confirm", args[0])
		}

		ctx, cancel := commandContext()
		defer cancel()

		client, err := connect(ctx)
		if err != nil {
			return err
		}
		if err := client.DeleteServer(ctx, args[0]); err != nil {
			return fmt.Errorf("delete failed: %w", err)
		}
		fmt.Printf("✓ Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	deleteCmd.Flags().BoolVar(&yes, "yes", false, "Confirm the deletion")
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Launch the interactive dashboard",
	Long: `Launch the full-screen dashboard.

The dashboard polls the manager in the background and shows each
server's live status. Selecting a server opens panels for properties,
allowlist, permissions, backups, and the console. Edits are staged
locally and applied per panel.`,
	Example: `  # Launch against the default manager
  bsmctl dashboard
  # Or simply (dashboard is default):
  bsmctl

  # Launch against a specific host
  bsmctl dashboard --host 192.168.1.10 --username admin`,
	RunE: runDashboard,
}

func runDashboard(cmd *cobra.Command, args []string) error {
	if logLevel != "" {
		if err := logging.Initialize(logLevel); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := connect(ctx)
	if err != nil {
		return err
	}

	interval := coordinator.DefaultInterval
	if registry, err := config.GetGlobalRegistry(); err == nil && registry.Preferences.PollInterval > 0 {
		interval = time.Duration(registry.Preferences.PollInterval) * time.Second
	}

	coord := coordinator.New(client, interval)
	go func() {
		if err := coord.Run(ctx); err != nil {
			logging.Error("Background refresh stopped", zap.Error(err))
		}
	}()

	model := tui.NewAppModel(client, coord)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("dashboard error: %w", err)
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func plural(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
