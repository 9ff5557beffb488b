package mockserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/bedrockmgr/bsmctl/internal/logging"
)

// Handler builds the REST routes over the shared state. The console
// hub carries the websocket streams.
func Handler(state *State, hub *ConsoleHub) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		var creds struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			writeError(w, http.StatusBadRequest, "invalid login payload")
			return
		}
		token, err := state.Authenticate(creds.Username, creds.Password)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Bad username or password")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"access_token": token})
	})

	auth := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || !state.ValidToken(token) {
				writeError(w, http.StatusUnauthorized, "Not authenticated")
				return
			}
			logging.LogAPIRequest(r.Method, r.URL.Path)
			next(w, r)
		}
	}

	// withServer resolves the {name} path segment, emitting the 404
	// shape the client maps to its not-found error.
	withServer := func(fn func(w http.ResponseWriter, r *http.Request, name string)) http.HandlerFunc {
		return auth(func(w http.ResponseWriter, r *http.Request) {
			name := r.PathValue("name")
			exists := state.WithServer(name, func(*ServerState) {})
			if !exists {
				writeError(w, http.StatusNotFound, fmt.Sprintf("Server '%s' not found", name))
				return
			}
			fn(w, r, name)
		})
	}

	mux.HandleFunc("GET /api/servers", auth(func(w http.ResponseWriter, r *http.Request) {
		servers := make([]map[string]any, 0)
		for _, name := range state.ServerNames() {
			state.WithServer(name, func(srv *ServerState) {
				status := "STOPPED"
				if srv.Running {
					status = "RUNNING"
				}
				servers = append(servers, map[string]any{
					"name":    name,
					"status":  status,
					"version": srv.Version,
				})
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "success", "servers": servers})
	}))

	mux.HandleFunc("GET /api/server/{name}/validate", withServer(func(w http.ResponseWriter, r *http.Request, name string) {
		writeSuccess(w, fmt.Sprintf("Server '%s' exists", name))
	}))

	mux.HandleFunc("GET /api/server/{name}/status_info", withServer(func(w http.ResponseWriter, r *http.Request, name string) {
		var body map[string]any
		state.WithServer(name, func(srv *ServerState) {
			if srv.Running {
				body = map[string]any{
					"status": "success",
					"process_info": map[string]any{
						"pid":         srv.PID,
						"cpu_percent": 1.5,
						"memory_mb":   512.0,
						"uptime":      "1:02:03",
					},
				}
			} else {
				body = map[string]any{"status": "success", "process_info": nil}
			}
		})
		writeJSON(w, http.StatusOK, body)
	}))

	mux.HandleFunc("GET /api/server/{name}/version", withServer(func(w http.ResponseWriter, r *http.Request, name string) {
		var version string
		state.WithServer(name, func(srv *ServerState) { version = srv.Version })
		writeJSON(w, http.StatusOK, map[string]any{"status": "success", "installed_version": version})
	}))

	mux.HandleFunc("GET /api/server/{name}/world_name", withServer(func(w http.ResponseWriter, r *http.Request, name string) {
		var world string
		state.WithServer(name, func(srv *ServerState) { world = srv.WorldName })
		writeJSON(w, http.StatusOK, map[string]any{"status": "success", "world_name": world})
	}))

	mux.HandleFunc("POST /api/server/{name}/start", withServer(func(w http.ResponseWriter, r *http.Request, name string) {
		state.WithServer(name, func(srv *ServerState) {
			srv.Running = true
			srv.PID = 4242
		})
		hub.Broadcast(name, "Server started.")
		writeSuccess(w, fmt.Sprintf("Server '%s' started", name))
	}))

	mux.HandleFunc("POST /api/server/{name}/stop", withServer(func(w http.ResponseWriter, r *http.Request, name string) {
		state.WithServer(name, func(srv *ServerState) {
			srv.Running = false
			srv.PID = 0
		})
		hub.Broadcast(name, "Server stopped.")
		writeSuccess(w, fmt.Sprintf("Server '%s' stopped", name))
	}))

	mux.HandleFunc("POST /api/server/{name}/restart", withServer(func(w http.ResponseWriter, r *http.Request, name string) {
		state.WithServer(name, func(srv *ServerState) {
			srv.Running = true
			srv.PID = 4242
		})
		hub.Broadcast(name, "Server restarted.")
		writeSuccess(w, fmt.Sprintf("Server '%s' restarted", name))
	}))

	mux.HandleFunc("POST /api/server/{name}/update", withServer(func(w http.ResponseWriter, r *http.Request, name string) {
		writeSuccess(w, fmt.Sprintf("Update started for '%s'", name))
	}))

	mux.HandleFunc("POST /api/server/{name}/send_command", withServer(func(w http.ResponseWriter, r *http.Request, name string) {
		var payload struct {
			Command string `json:"command"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Command == "" {
			writeError(w, http.StatusBadRequest, "command is required")
			return
		}
		var running bool
		state.WithServer(name, func(srv *ServerState) { running = srv.Running })
		if !running {
			// Same 500 shape the real manager produces for a dead pipe
			writeError(w, http.StatusInternalServerError,
				fmt.Sprintf("Server '%s' is not running", name))
			return
		}
		hub.Broadcast(name, "> "+payload.Command)
		writeSuccess(w, "Command sent")
	}))

	mux.HandleFunc("POST /api/server/{name}/backup/action", withServer(func(w http.ResponseWriter, r *http.Request, name string) {
		var payload struct {
			BackupType   string `json:"backup_type"`
			FileToBackup string `json:"file_to_backup"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid backup payload")
			return
		}
		state.WithServer(name, func(srv *ServerState) {
			switch payload.BackupType {
			case "world", "all":
				srv.WorldBackups = append(srv.WorldBackups, fmt.Sprintf("%s_world_new.mcworld", name))
			}
			if payload.BackupType == "all" || payload.BackupType == "config" {
				srv.PropertiesBackups = append(srv.PropertiesBackups, fmt.Sprintf("%s_properties_new.properties", name))
			}
		})
		writeSuccess(w, "Backup started")
	}))

	mux.HandleFunc("GET /api/server/{name}/backups/list", withServer(func(w http.ResponseWriter, r *http.Request, name string) {
		var body map[string]any
		state.WithServer(name, func(srv *ServerState) {
			body = map[string]any{
				"status":              "success",
				"world_backups":       srv.WorldBackups,
				"properties_backups":  srv.PropertiesBackups,
				"allowlist_backups":   srv.AllowlistBackups,
				"permissions_backups": srv.PermissionsBackups,
			}
		})
		writeJSON(w, http.StatusOK, body)
	}))

	mux.HandleFunc("POST /api/server/{name}/restore/action", withServer(func(w http.ResponseWriter, r *http.Request, name string) {
		var payload struct {
			RestoreType string `json:"restore_type"`
			BackupFile  string `json:"backup_file"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.BackupFile == "" {
			writeError(w, http.StatusBadRequest, "restore_type and backup_file are required")
			return
		}
		writeSuccess(w, fmt.Sprintf("Restore of %s started", payload.BackupFile))
	}))

	mux.HandleFunc("POST /api/server/{name}/restore/all", withServer(func(w http.ResponseWriter, r *http.Request, name string) {
		writeSuccess(w, "Restore of all latest backups started")
	}))

	mux.HandleFunc("POST /api/server/{name}/backups/prune", withServer(func(w http.ResponseWriter, r *http.Request, name string) {
		writeSuccess(w, "Backups pruned")
	}))

	mux.HandleFunc("POST /api/server/{name}/world/export", withServer(func(w http.ResponseWriter, r *http.Request, name string) {
		writeSuccess(w, "World export started")
	}))

	mux.HandleFunc("GET /api/server/{name}/allowlist", withServer(func(w http.ResponseWriter, r *http.Request, name string) {
		var players []Player
		state.WithServer(name, func(srv *ServerState) {
			players = append([]Player(nil), srv.Allowlist...)
		})
		if players == nil {
			players = []Player{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "success", "existing_players": players})
	}))

	mux.HandleFunc("POST /api/server/{name}/allowlist/add", withServer(func(w http.ResponseWriter, r *http.Request, name string) {
		var payload struct {
			Players            []string `json:"players"`
			IgnoresPlayerLimit bool     `json:"ignoresPlayerLimit"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || len(payload.Players) == 0 {
			writeError(w, http.StatusBadRequest, "players list is required")
			return
		}
		state.WithServer(name, func(srv *ServerState) {
			for _, player := range payload.Players {
				srv.Allowlist = append(srv.Allowlist, Player{
					Name:               player,
					IgnoresPlayerLimit: payload.IgnoresPlayerLimit,
				})
			}
		})
		writeSuccess(w, fmt.Sprintf("Added %d players", len(payload.Players)))
	}))

	mux.HandleFunc("DELETE /api/server/{name}/allowlist/player/{player}", withServer(func(w http.ResponseWriter, r *http.Request, name string) {
		player := r.PathValue("player")
		removed := false
		state.WithServer(name, func(srv *ServerState) {
			kept := srv.Allowlist[:0]
			for _, entry := range srv.Allowlist {
				if strings.EqualFold(entry.Name, player) {
					removed = true
					continue
				}
				kept = append(kept, entry)
			}
			srv.Allowlist = kept
		})
		if !removed {
			writeError(w, http.StatusNotFound, fmt.Sprintf("Player '%s' not found in allowlist", player))
			return
		}
		writeSuccess(w, fmt.Sprintf("Removed %s", player))
	}))

	mux.HandleFunc("GET /api/server/{name}/properties", withServer(func(w http.ResponseWriter, r *http.Request, name string) {
		props := map[string]string{}
		state.WithServer(name, func(srv *ServerState) {
			for key, value := range srv.Properties {
				props[key] = value
			}
		})
		writeJSON(w, http.StatusOK, map[string]any{"status": "success", "properties": props})
	}))

	mux.HandleFunc("POST /api/server/{name}/properties", withServer(func(w http.ResponseWriter, r *http.Request, name string) {
		var payload struct {
			Properties map[string]string `json:"properties"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || len(payload.Properties) == 0 {
			writeError(w, http.StatusBadRequest, "properties map is required")
			return
		}
		state.WithServer(name, func(srv *ServerState) {
			if srv.Properties == nil {
				srv.Properties = make(map[string]string)
			}
			for key, value := range payload.Properties {
				srv.Properties[key] = value
			}
		})
		writeSuccess(w, fmt.Sprintf("Updated %d properties", len(payload.Properties)))
	}))

	mux.HandleFunc("GET /api/server/{name}/permissions", withServer(func(w http.ResponseWriter, r *http.Request, name string) {
		var perms []PermissionRecord
		state.WithServer(name, func(srv *ServerState) {
			perms = append([]PermissionRecord(nil), srv.Permissions...)
		})
		if perms == nil {
			perms = []PermissionRecord{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "success", "permissions": perms})
	}))

	mux.HandleFunc("PUT /api/server/{name}/permissions", withServer(func(w http.ResponseWriter, r *http.Request, name string) {
		var payload struct {
			Permissions map[string]string `json:"permissions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || len(payload.Permissions) == 0 {
			writeError(w, http.StatusBadRequest, "permissions map is required")
			return
		}
		for _, level := range payload.Permissions {
			switch level {
			case "visitor", "member", "operator":
			default:
				writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid permission level %q", level))
				return
			}
		}
		state.WithServer(name, func(srv *ServerState) {
			for xuid, level := range payload.Permissions {
				updated := false
				for i := range srv.Permissions {
					if srv.Permissions[i].XUID == xuid {
						srv.Permissions[i].Level = level
						updated = true
						break
					}
				}
				if !updated {
					srv.Permissions = append(srv.Permissions, PermissionRecord{XUID: xuid, Level: level})
				}
			}
		})
		writeSuccess(w, fmt.Sprintf("Updated %d permissions", len(payload.Permissions)))
	}))

	mux.HandleFunc("POST /api/server/install", auth(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			ServerName    string `json:"server_name"`
			ServerVersion string `json:"server_version"`
			Overwrite     bool   `json:"overwrite"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.ServerName == "" {
			writeError(w, http.StatusBadRequest, "server_name is required")
			return
		}
		if payload.ServerVersion == "" {
			payload.ServerVersion = "LATEST"
		}
		if err := state.AddServer(payload.ServerName, payload.ServerVersion, payload.Overwrite); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeSuccess(w, fmt.Sprintf("Install of '%s' started", payload.ServerName))
	}))

	mux.HandleFunc("DELETE /api/server/{name}/delete", withServer(func(w http.ResponseWriter, r *http.Request, name string) {
		state.RemoveServer(name)
		writeSuccess(w, fmt.Sprintf("Server '%s' deleted", name))
	}))

	mux.HandleFunc("POST /api/server/{name}/world/install", withServer(func(w http.ResponseWriter, r *http.Request, name string) {
		installContent(w, r, "world")
	}))

	mux.HandleFunc("POST /api/server/{name}/addon/install", withServer(func(w http.ResponseWriter, r *http.Request, name string) {
		installContent(w, r, "addon")
	}))

	mux.HandleFunc("GET /api/content/worlds", auth(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "success",
			"files":  state.ContentWorlds(),
		})
	}))

	mux.HandleFunc("GET /api/content/addons", auth(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "success",
			"files":  state.ContentAddons(),
		})
	}))

	mux.HandleFunc("POST /api/players/add", auth(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Players []string `json:"players"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || len(payload.Players) == 0 {
			writeError(w, http.StatusBadRequest, "players list is required")
			return
		}
		writeSuccess(w, fmt.Sprintf("Added %d global players", len(payload.Players)))
	}))

	mux.HandleFunc("POST /api/players/scan", auth(func(w http.ResponseWriter, r *http.Request) {
		writeSuccess(w, "Player log scan started")
	}))

	mux.HandleFunc("POST /api/downloads/prune", auth(func(w http.ResponseWriter, r *http.Request) {
		writeSuccess(w, "Download cache pruned")
	}))

	mux.HandleFunc("POST /api/server/{name}/service/update", withServer(func(w http.ResponseWriter, r *http.Request, name string) {
		writeSuccess(w, "Service settings updated")
	}))

	mux.HandleFunc("GET /api/server/{name}/console", withServer(func(w http.ResponseWriter, r *http.Request, name string) {
		hub.Serve(w, r, name)
	}))

	return mux
}

func installContent(w http.ResponseWriter, r *http.Request, kind string) {
	var payload struct {
		Filename string `json:"filename"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Filename == "" {
		writeError(w, http.StatusBadRequest, "filename is required")
		return
	}
	writeSuccess(w, fmt.Sprintf("Install of %s %s started", kind, payload.Filename))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error("Failed to encode response", zap.Error(err))
	}
}

func writeSuccess(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "message": message})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"status": "error", "message": message})
}
