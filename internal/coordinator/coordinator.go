package coordinator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bedrockmgr/bsmctl/internal/api"
	"github.com/bedrockmgr/bsmctl/internal/logging"
	"github.com/bedrockmgr/bsmctl/internal/observe"
)

// DefaultInterval matches the manager's own cache horizon; polling
// faster just re-reads unchanged state.
const DefaultInterval = 30 * time.Second

// Fetcher is the slice of the manager API the coordinator polls.
// *api.Client satisfies it.
type Fetcher interface {
	GetServerList(ctx context.Context) ([]string, error)
	GetStatusInfo(ctx context.Context, serverName string) (*api.StatusInfo, error)
	GetVersion(ctx context.Context, serverName string) (string, error)
	GetWorldName(ctx context.Context, serverName string) (string, error)
	GetAllowlist(ctx context.Context, serverName string) ([]api.AllowlistPlayer, error)
	GetProperties(ctx context.Context, serverName string) (map[string]string, error)
	GetPermissions(ctx context.Context, serverName string) ([]api.PermissionEntry, error)
	ListBackups(ctx context.Context, serverName string) (*api.BackupList, error)
}

// Update announces a published snapshot. Snapshot is nil when the
// server disappeared from the manager's list.
type Update struct {
	SourceID string
	Snapshot *observe.Snapshot
}

// Coordinator owns the snapshot store and the source-to-server
// registry for one manager connection.
type Coordinator struct {
	fetcher  Fetcher
	store    *observe.Store
	registry *observe.MapRegistry
	interval time.Duration
	updates  chan Update
}

// New builds a coordinator polling at the given interval; zero means
// DefaultInterval.
func New(fetcher Fetcher, interval time.Duration) *Coordinator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Coordinator{
		fetcher:  fetcher,
		store:    observe.NewStore(),
		registry: observe.NewMapRegistry(),
		interval: interval,
		updates:  make(chan Update, 64),
	}
}

// Store exposes the snapshot store for cards and direct reads.
func (c *Coordinator) Store() *observe.Store {
	return c.store
}

// Registry exposes the source-to-server lookup for resolvers.
func (c *Coordinator) Registry() *observe.MapRegistry {
	return c.registry
}

// Updates delivers published snapshots. The channel is buffered; a
// slow consumer loses updates rather than stalling the poll loop.
func (c *Coordinator) Updates() <-chan Update {
	return c.updates
}

// SourceID names the snapshot source for a server, mirroring the
// status sensor naming convention.
func SourceID(serverName string) string {
	slug := strings.ToLower(serverName)
	slug = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, slug)
	return fmt.Sprintf("sensor.%s_status", slug)
}

// Run polls until the context is cancelled. The first refresh happens
// immediately.
func (c *Coordinator) Run(ctx context.Context) error {
	if err := c.RefreshOnce(ctx); err != nil {
		logging.Warn("Initial refresh failed", zap.Error(err))
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.RefreshOnce(ctx); err != nil {
				logging.Warn("Refresh failed", zap.Error(err))
			}
		}
	}
}

// RefreshOnce fetches the server list and republishes every server's
// snapshot. Servers gone from the list are removed and announced with
// a nil snapshot so cards can transition to their unresolved states.
func (c *Coordinator) RefreshOnce(ctx context.Context) error {
	servers, err := c.fetcher.GetServerList(ctx)
	if err != nil {
		return fmt.Errorf("fetching server list: %w", err)
	}

	current := make(map[string]struct{}, len(servers))
	for _, server := range servers {
		current[SourceID(server)] = struct{}{}
	}
	for _, sourceID := range c.store.SourceIDs() {
		if _, live := current[sourceID]; !live {
			c.store.Remove(sourceID)
			c.registry.Delete(sourceID)
			c.publish(Update{SourceID: sourceID, Snapshot: nil})
		}
	}

	for _, server := range servers {
		c.refreshServer(ctx, server)
	}
	return nil
}

func (c *Coordinator) refreshServer(ctx context.Context, serverName string) {
	attrs, degraded := c.collect(ctx, serverName)

	sourceID := SourceID(serverName)
	c.registry.Set(sourceID, serverName)
	snap := c.store.Replace(sourceID, attrs)

	logging.LogSnapshot(serverName, len(attrs), degraded)
	c.publish(Update{SourceID: sourceID, Snapshot: snap})
}

// collect merges the per-server fetches into one attribute map. Each
// fetch fails independently; its attributes are just absent from a
// degraded snapshot.
func (c *Coordinator) collect(ctx context.Context, serverName string) (map[string]any, bool) {
	attrs := map[string]any{
		observe.AttributeTargetKey: serverName,
	}
	degraded := false

	status, err := c.fetcher.GetStatusInfo(ctx, serverName)
	switch {
	case api.IsNotRunningError(err):
		attrs["status"] = "stopped"
	case err != nil:
		degraded = true
		logging.Warn("Status fetch failed",
			zap.String("server", serverName), zap.Error(err))
	case status.ProcessInfo == nil:
		attrs["status"] = "stopped"
	default:
		attrs["status"] = "running"
		attrs["pid"] = status.ProcessInfo.PID
		attrs["cpu_percent"] = status.ProcessInfo.CPUPercent
		attrs["memory_mb"] = status.ProcessInfo.MemoryMB
		attrs["uptime"] = status.ProcessInfo.Uptime
	}

	if version, err := c.fetcher.GetVersion(ctx, serverName); err != nil {
		degraded = true
	} else {
		attrs["installed_version"] = version
	}

	if world, err := c.fetcher.GetWorldName(ctx, serverName); err != nil {
		degraded = true
	} else {
		attrs["world_name"] = world
	}

	if players, err := c.fetcher.GetAllowlist(ctx, serverName); err != nil {
		degraded = true
		logging.Warn("Allowlist fetch failed",
			zap.String("server", serverName), zap.Error(err))
	} else {
		records := make([]any, 0, len(players))
		for _, p := range players {
			records = append(records, map[string]any{
				"name":               p.Name,
				"ignoresPlayerLimit": p.IgnoresPlayerLimit,
			})
		}
		attrs["allowed_players"] = records
	}

	if props, err := c.fetcher.GetProperties(ctx, serverName); err != nil {
		degraded = true
		logging.Warn("Properties fetch failed",
			zap.String("server", serverName), zap.Error(err))
	} else {
		values := make(map[string]any, len(props))
		for key, value := range props {
			values[key] = value
		}
		attrs["server_properties"] = values
	}

	if perms, err := c.fetcher.GetPermissions(ctx, serverName); err != nil {
		degraded = true
	} else {
		records := make([]any, 0, len(perms))
		for _, p := range perms {
			records = append(records, map[string]any{
				"xuid":             p.XUID,
				"name":             p.Name,
				"permission_level": p.Permission,
			})
		}
		attrs["permissions"] = records
	}

	if backups, err := c.fetcher.ListBackups(ctx, serverName); err != nil {
		degraded = true
	} else {
		attrs["backups"] = map[string]any{
			"world_backups":       backups.WorldBackups,
			"properties_backups":  backups.PropertiesBackups,
			"allowlist_backups":   backups.AllowlistBackups,
			"permissions_backups": backups.PermissionsBackups,
		}
	}

	if degraded {
		attrs["degraded"] = true
	}
	return attrs, degraded
}

func (c *Coordinator) publish(update Update) {
	select {
	case c.updates <- update:
	default:
		logging.Debug("Dropping update for slow consumer",
			zap.String("source", update.SourceID))
	}
}
