package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"

	"github.com/bedrockmgr/bsmctl/internal/logging"
	"go.uber.org/zap"
)

// GetServerList fetches the sorted list of server names known to the manager.
// Invalid entries are skipped rather than failing the whole list.
func (c *Client) GetServerList(ctx context.Context) ([]string, error) {
	var resp serversResponse
	if err := c.doRequest(ctx, http.MethodGet, "/servers", nil, &resp); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(resp.Servers))
	for _, item := range resp.Servers {
		// Items are either bare strings or {"name": ...} records
		var name string
		if err := json.Unmarshal(item, &name); err == nil && name != "" {
			names = append(names, name)
			continue
		}
		var record struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(item, &record); err == nil && record.Name != "" {
			names = append(names, record.Name)
			continue
		}
		logging.Warn("Skipping invalid item in server list", zap.ByteString("item", item))
	}

	sort.Strings(names)
	return names, nil
}

// ValidateServerExists checks that a server configuration exists on the manager
func (c *Client) ValidateServerExists(ctx context.Context, serverName string) error {
	return c.doRequest(ctx, http.MethodGet, serverPath(serverName, "/validate"), nil, nil)
}

// GetStatusInfo gets runtime status (process details) for a server.
// ProcessInfo is nil in the result when the server is stopped.
func (c *Client) GetStatusInfo(ctx context.Context, serverName string) (*StatusInfo, error) {
	var resp StatusInfo
	if err := c.doRequest(ctx, http.MethodGet, serverPath(serverName, "/status_info"), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetVersion gets the installed version configured for a server
func (c *Client) GetVersion(ctx context.Context, serverName string) (string, error) {
	var resp versionResponse
	if err := c.doRequest(ctx, http.MethodGet, serverPath(serverName, "/version"), nil, &resp); err != nil {
		return "", err
	}
	return resp.InstalledVersion, nil
}

// GetWorldName gets the configured world name for a server
func (c *Client) GetWorldName(ctx context.Context, serverName string) (string, error) {
	var resp worldNameResponse
	if err := c.doRequest(ctx, http.MethodGet, serverPath(serverName, "/world_name"), nil, &resp); err != nil {
		return "", err
	}
	return resp.WorldName, nil
}

// StartServer starts the server process
func (c *Client) StartServer(ctx context.Context, serverName string) error {
	return c.doRequest(ctx, http.MethodPost, serverPath(serverName, "/start"), nil, nil)
}

// StopServer stops the server process
func (c *Client) StopServer(ctx context.Context, serverName string) error {
	return c.doRequest(ctx, http.MethodPost, serverPath(serverName, "/stop"), nil, nil)
}

// RestartServer restarts the server process
func (c *Client) RestartServer(ctx context.Context, serverName string) error {
	return c.doRequest(ctx, http.MethodPost, serverPath(serverName, "/restart"), nil, nil)
}

// UpdateServer triggers the server update process
func (c *Client) UpdateServer(ctx context.Context, serverName string) error {
	return c.doRequest(ctx, http.MethodPost, serverPath(serverName, "/update"), nil, nil)
}

// SendCommand sends a console command to a running server.
// Returns a NotRunning error when the server process is down.
func (c *Client) SendCommand(ctx context.Context, serverName, command string) error {
	if command == "" {
		return NewValidationError("command cannot be empty")
	}
	payload := sendCommandRequest{Command: command}
	return c.doRequest(ctx, http.MethodPost, serverPath(serverName, "/send_command"), payload, nil)
}

// TriggerBackup triggers a backup operation.
// backupType must be "all", "world", or "config"; fileToBackup is required
// when backupType is "config".
func (c *Client) TriggerBackup(ctx context.Context, serverName, backupType, fileToBackup string) error {
	switch backupType {
	case "all", "world", "config":
	default:
		return NewValidationError(fmt.Sprintf("backup_type must be all, world, or config, got %q", backupType))
	}
	if backupType == "config" && fileToBackup == "" {
		return NewValidationError("file_to_backup is required when backup_type is config")
	}
	payload := backupRequest{BackupType: backupType, FileToBackup: fileToBackup}
	return c.doRequest(ctx, http.MethodPost, serverPath(serverName, "/backup/action"), payload, nil)
}

// ListBackups fetches the server's backup files grouped by kind
func (c *Client) ListBackups(ctx context.Context, serverName string) (*BackupList, error) {
	var resp BackupList
	if err := c.doRequest(ctx, http.MethodGet, serverPath(serverName, "/backups/list"), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RestoreBackup restores a specific backup file.
// restoreType must be "world" or "config".
func (c *Client) RestoreBackup(ctx context.Context, serverName, restoreType, backupFile string) error {
	switch restoreType {
	case "world", "config":
	default:
		return NewValidationError(fmt.Sprintf("restore_type must be world or config, got %q", restoreType))
	}
	if backupFile == "" {
		return NewValidationError("backup_file cannot be empty")
	}
	payload := restoreRequest{RestoreType: restoreType, BackupFile: backupFile}
	return c.doRequest(ctx, http.MethodPost, serverPath(serverName, "/restore/action"), payload, nil)
}

// RestoreLatestAll restores the latest "all" backup
func (c *Client) RestoreLatestAll(ctx context.Context, serverName string) error {
	return c.doRequest(ctx, http.MethodPost, serverPath(serverName, "/restore/all"), nil, nil)
}

// PruneBackups prunes a server's backups, keeping the newest `keep` files.
// A nil keep uses the manager's default.
func (c *Client) PruneBackups(ctx context.Context, serverName string, keep *int) error {
	var payload any
	if keep != nil {
		payload = pruneRequest{Keep: keep}
	}
	return c.doRequest(ctx, http.MethodPost, serverPath(serverName, "/backups/prune"), payload, nil)
}

// ExportWorld triggers a world export for a server
func (c *Client) ExportWorld(ctx context.Context, serverName string) error {
	return c.doRequest(ctx, http.MethodPost, serverPath(serverName, "/world/export"), nil, nil)
}

// GetAllowlist gets the current allowlist for a server
func (c *Client) GetAllowlist(ctx context.Context, serverName string) ([]AllowlistPlayer, error) {
	var resp allowlistResponse
	if err := c.doRequest(ctx, http.MethodGet, serverPath(serverName, "/allowlist"), nil, &resp); err != nil {
		return nil, err
	}
	return resp.ExistingPlayers, nil
}

// AddToAllowlist adds players to the server's allowlist
func (c *Client) AddToAllowlist(ctx context.Context, serverName string, players []string, ignoresPlayerLimit bool) error {
	if len(players) == 0 {
		return NewValidationError("players list cannot be empty")
	}
	payload := addAllowlistRequest{Players: players, IgnoresPlayerLimit: ignoresPlayerLimit}
	return c.doRequest(ctx, http.MethodPost, serverPath(serverName, "/allowlist/add"), payload, nil)
}

// RemoveFromAllowlist removes a single player from the server's allowlist.
// The player name is carried in the URL path.
func (c *Client) RemoveFromAllowlist(ctx context.Context, serverName, playerName string) error {
	if playerName == "" {
		return NewValidationError("player_name cannot be empty")
	}
	path := serverPath(serverName, "/allowlist/player/"+url.PathEscape(playerName))
	return c.doRequest(ctx, http.MethodDelete, path, nil, nil)
}

// GetProperties gets the server.properties map for a server
func (c *Client) GetProperties(ctx context.Context, serverName string) (map[string]string, error) {
	var resp propertiesResponse
	if err := c.doRequest(ctx, http.MethodGet, serverPath(serverName, "/properties"), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Properties, nil
}

// UpdateProperties sends a partial server.properties update.
// Only the keys present in properties are changed.
func (c *Client) UpdateProperties(ctx context.Context, serverName string, properties map[string]string) error {
	if len(properties) == 0 {
		return NewValidationError("properties map cannot be empty")
	}
	payload := updatePropertiesRequest{Properties: properties}
	return c.doRequest(ctx, http.MethodPost, serverPath(serverName, "/properties"), payload, nil)
}

// GetPermissions gets the permission entries for a server
func (c *Client) GetPermissions(ctx context.Context, serverName string) ([]PermissionEntry, error) {
	var resp permissionsResponse
	if err := c.doRequest(ctx, http.MethodGet, serverPath(serverName, "/permissions"), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Permissions, nil
}

// SetPermissions replaces permission levels for the given XUIDs.
// permissions maps XUID to "visitor", "member", or "operator".
func (c *Client) SetPermissions(ctx context.Context, serverName string, permissions map[string]string) error {
	if len(permissions) == 0 {
		return NewValidationError("permissions map cannot be empty")
	}
	for xuid, level := range permissions {
		switch level {
		case "visitor", "member", "operator":
		default:
			return NewValidationError(fmt.Sprintf("invalid permission level %q for xuid %s", level, xuid))
		}
	}
	payload := setPermissionsRequest{Permissions: permissions}
	return c.doRequest(ctx, http.MethodPut, serverPath(serverName, "/permissions"), payload, nil)
}

// InstallServer requests installation of a new server instance
func (c *Client) InstallServer(ctx context.Context, serverName, serverVersion string, overwrite bool) error {
	if serverName == "" || serverVersion == "" {
		return NewValidationError("server_name and server_version are required")
	}
	logging.Info("Requesting server install",
		zap.String("server", serverName),
		zap.String("version", serverVersion),
		zap.Bool("overwrite", overwrite),
	)
	payload := installServerRequest{ServerName: serverName, ServerVersion: serverVersion, Overwrite: overwrite}
	return c.doRequest(ctx, http.MethodPost, "/server/install", payload, nil)
}

// DeleteServer deletes a server instance. This is irreversible; callers must
// have already collected an explicit confirmation from the user.
func (c *Client) DeleteServer(ctx context.Context, serverName string) error {
	logging.Warn("Requesting server deletion", zap.String("server", serverName))
	return c.doRequest(ctx, http.MethodDelete, serverPath(serverName, "/delete"), nil, nil)
}

// ListContentWorlds lists the .mcworld files in the manager's content
// directory, available for InstallWorld.
func (c *Client) ListContentWorlds(ctx context.Context) ([]string, error) {
	var resp ContentList
	if err := c.doRequest(ctx, http.MethodGet, "/content/worlds", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Files, nil
}

// ListContentAddons lists the .mcaddon and .mcpack files in the
// manager's content directory, available for InstallAddon.
func (c *Client) ListContentAddons(ctx context.Context) ([]string, error) {
	var resp ContentList
	if err := c.doRequest(ctx, http.MethodGet, "/content/addons", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Files, nil
}

// InstallWorld installs a world file from the manager's content directory
func (c *Client) InstallWorld(ctx context.Context, serverName, filename string) error {
	if filename == "" {
		return NewValidationError("filename cannot be empty")
	}
	payload := installContentRequest{Filename: filename}
	return c.doRequest(ctx, http.MethodPost, serverPath(serverName, "/world/install"), payload, nil)
}

// InstallAddon installs an addon file from the manager's content directory
func (c *Client) InstallAddon(ctx context.Context, serverName, filename string) error {
	if filename == "" {
		return NewValidationError("filename cannot be empty")
	}
	payload := installContentRequest{Filename: filename}
	return c.doRequest(ctx, http.MethodPost, serverPath(serverName, "/addon/install"), payload, nil)
}

// AddGlobalPlayers adds players to the manager's global player list.
// Entries use the manager's "name:xuid" form.
func (c *Client) AddGlobalPlayers(ctx context.Context, players []string) error {
	if len(players) == 0 {
		return NewValidationError("players list cannot be empty")
	}
	payload := addGlobalPlayersRequest{Players: players}
	return c.doRequest(ctx, http.MethodPost, "/players/add", payload, nil)
}

// ScanPlayerLogs triggers scanning of player logs on the manager
func (c *Client) ScanPlayerLogs(ctx context.Context) error {
	return c.doRequest(ctx, http.MethodPost, "/players/scan", nil, nil)
}

// PruneDownloadCache prunes the manager's global download cache for a
// directory. A nil keep uses the manager's default.
func (c *Client) PruneDownloadCache(ctx context.Context, directory string, keep *int) error {
	if directory == "" {
		return NewValidationError("directory cannot be empty")
	}
	payload := pruneRequest{Directory: directory, Keep: keep}
	return c.doRequest(ctx, http.MethodPost, "/downloads/prune", payload, nil)
}

// ConfigureOSService updates the server's OS service flags.
// autostart is optional; nil leaves it unchanged.
func (c *Client) ConfigureOSService(ctx context.Context, serverName string, autoupdate bool, autostart *bool) error {
	payload := osServiceRequest{Autoupdate: autoupdate, Autostart: autostart}
	return c.doRequest(ctx, http.MethodPost, serverPath(serverName, "/service/update"), payload, nil)
}
