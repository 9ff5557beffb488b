package api

import "encoding/json"

// APIResponse is the generic envelope the manager wraps most responses in.
// Successful calls carry "status": "success"; some error paths return a 2xx
// with "status": "error" and a message, which the client treats as failure.
type APIResponse struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
	// Error is an alternate failure field some endpoints use instead of Message
	Error string `json:"error,omitempty"`
}

// loginRequest is the payload for POST /login
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse carries the JWT returned by a successful login
type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// serversResponse is the payload of GET /servers.
// Items are either bare name strings or {"name": ...} records depending on
// the manager version, so they are decoded leniently.
type serversResponse struct {
	APIResponse
	Servers []json.RawMessage `json:"servers"`
}

// ProcessInfo describes the runtime process of a running server
type ProcessInfo struct {
	PID        int     `json:"pid"`
	CPUPercent float64 `json:"cpu_percent"`
	MemoryMB   float64 `json:"memory_mb"`
	Uptime     string  `json:"uptime"`
}

// StatusInfo is the payload of GET /server/{name}/status_info.
// ProcessInfo is nil when the server is stopped.
type StatusInfo struct {
	APIResponse
	ProcessInfo *ProcessInfo `json:"process_info"`
}

// versionResponse is the payload of GET /server/{name}/version
type versionResponse struct {
	APIResponse
	InstalledVersion string `json:"installed_version"`
}

// worldNameResponse is the payload of GET /server/{name}/world_name
type worldNameResponse struct {
	APIResponse
	WorldName string `json:"world_name"`
}

// AllowlistPlayer is one entry of a server's allowlist
type AllowlistPlayer struct {
	Name               string `json:"name"`
	IgnoresPlayerLimit bool   `json:"ignoresPlayerLimit"`
}

// allowlistResponse is the payload of GET /server/{name}/allowlist
type allowlistResponse struct {
	APIResponse
	ExistingPlayers []AllowlistPlayer `json:"existing_players"`
}

// addAllowlistRequest is the payload of POST /server/{name}/allowlist/add
type addAllowlistRequest struct {
	Players            []string `json:"players"`
	IgnoresPlayerLimit bool     `json:"ignoresPlayerLimit"`
}

// propertiesResponse is the payload of GET /server/{name}/properties
type propertiesResponse struct {
	APIResponse
	Properties map[string]string `json:"properties"`
}

// updatePropertiesRequest is the payload of POST /server/{name}/properties
type updatePropertiesRequest struct {
	Properties map[string]string `json:"properties"`
}

// PermissionEntry is one entry of a server's permissions file
type PermissionEntry struct {
	XUID       string `json:"xuid"`
	Name       string `json:"name,omitempty"`
	Permission string `json:"permission_level"`
}

// permissionsResponse is the payload of GET /server/{name}/permissions
type permissionsResponse struct {
	APIResponse
	Permissions []PermissionEntry `json:"permissions"`
}

// setPermissionsRequest is the payload of PUT /server/{name}/permissions.
// Permissions maps XUID to permission level (visitor/member/operator).
type setPermissionsRequest struct {
	Permissions map[string]string `json:"permissions"`
}

// backupRequest is the payload of POST /server/{name}/backup/action
type backupRequest struct {
	BackupType   string `json:"backup_type"`
	FileToBackup string `json:"file_to_backup,omitempty"`
}

// restoreRequest is the payload of POST /server/{name}/restore/action
type restoreRequest struct {
	RestoreType string `json:"restore_type"`
	BackupFile  string `json:"backup_file"`
}

// BackupList groups a server's backup files by kind, as returned by
// GET /server/{name}/backups/list
type BackupList struct {
	APIResponse
	WorldBackups       []string `json:"world_backups"`
	PropertiesBackups  []string `json:"properties_backups"`
	AllowlistBackups   []string `json:"allowlist_backups"`
	PermissionsBackups []string `json:"permissions_backups"`
}

// ContentList is the response of GET /content/worlds and
// GET /content/addons
type ContentList struct {
	APIResponse
	Files []string `json:"files"`
}

// pruneRequest is the payload of POST /server/{name}/backups/prune and
// POST /downloads/prune
type pruneRequest struct {
	Directory string `json:"directory,omitempty"`
	Keep      *int   `json:"keep,omitempty"`
}

// installServerRequest is the payload of POST /server/install
type installServerRequest struct {
	ServerName    string `json:"server_name"`
	ServerVersion string `json:"server_version"`
	Overwrite     bool   `json:"overwrite"`
}

// sendCommandRequest is the payload of POST /server/{name}/send_command
type sendCommandRequest struct {
	Command string `json:"command"`
}

// installContentRequest is the payload of POST /server/{name}/world/install
// and POST /server/{name}/addon/install
type installContentRequest struct {
	Filename string `json:"filename"`
}

// addGlobalPlayersRequest is the payload of POST /players/add
type addGlobalPlayersRequest struct {
	Players []string `json:"players"`
}

// osServiceRequest is the payload of POST /server/{name}/service/update
type osServiceRequest struct {
	Autoupdate bool  `json:"autoupdate"`
	Autostart  *bool `json:"autostart,omitempty"`
}
