package mockserver

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
)

// Player is one allowlist entry.
type Player struct {
	Name               string `json:"name"`
	IgnoresPlayerLimit bool   `json:"ignoresPlayerLimit"`
}

// PermissionRecord is one player permission entry.
type PermissionRecord struct {
	XUID  string `json:"xuid"`
	Name  string `json:"name,omitempty"`
	Level string `json:"permission_level"`
}

// ServerState holds the mutable state of one fake server.
type ServerState struct {
	Running     bool
	PID         int
	Version     string
	WorldName   string
	Allowlist   []Player
	Properties  map[string]string
	Permissions []PermissionRecord

	WorldBackups       []string
	PropertiesBackups  []string
	AllowlistBackups   []string
	PermissionsBackups []string
}

// State is the in-memory manager state shared by all handlers.
type State struct {
	mu       sync.Mutex
	username string
	password string
	tokens   map[string]struct{}
	servers  map[string]*ServerState

	contentWorlds []string
	contentAddons []string
}

// NewState builds a state with the given credentials and two seeded
// sample servers, one running and one stopped.
func NewState(username, password string) *State {
	return &State{
		username: username,
		password: password,
		tokens:   make(map[string]struct{}),
		servers: map[string]*ServerState{
			"alpha": {
				Running:   true,
				PID:       4242,
				Version:   "1.21.0.3",
				WorldName: "Bedrock level",
				Allowlist: []Player{{Name: "Steve"}, {Name: "Alex"}},
				Properties: map[string]string{
					"server-name":   "alpha",
					"level-name":    "Bedrock level",
					"gamemode":      "survival",
					"difficulty":    "normal",
					"max-players":   "10",
					"view-distance": "12",
					"pvp":           "true",
				},
				Permissions: []PermissionRecord{
					{XUID: "2535460000000001", Name: "Steve", Level: "operator"},
					{XUID: "2535460000000002", Name: "Alex", Level: "member"},
				},
				WorldBackups:      []string{"alpha_world_20260829.mcworld"},
				PropertiesBackups: []string{"alpha_properties_20260829.properties"},
			},
			"beta": {
				Running:   false,
				Version:   "1.21.0.3",
				WorldName: "beta world",
				Properties: map[string]string{
					"server-name": "beta",
					"level-name":  "beta world",
					"max-players": "5",
				},
			},
		},
		contentWorlds: []string{"skyblock.mcworld", "survival_games.mcworld"},
		contentAddons: []string{"shaders.mcpack", "more_mobs.mcaddon"},
	}
}

// ContentWorlds returns the installable world files in the content
// directory.
func (s *State) ContentWorlds() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.contentWorlds...)
}

// ContentAddons returns the installable addon files in the content
// directory.
func (s *State) ContentAddons() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.contentAddons...)
}

// Authenticate checks credentials and mints a bearer token.
func (s *State) Authenticate(username, password string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if username != s.username || password != s.password {
		return "", fmt.Errorf("bad username or password")
	}
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	token := hex.EncodeToString(raw)
	s.tokens[token] = struct{}{}
	return token, nil
}

// ValidToken reports whether a bearer token was minted by Authenticate.
func (s *State) ValidToken(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tokens[token]
	return ok
}

// ServerNames returns the known server names, sorted.
func (s *State) ServerNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.servers))
	for name := range s.servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithServer runs fn with the named server's state under lock.
// Returns false when the server does not exist.
func (s *State) WithServer(name string, fn func(*ServerState)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	server, ok := s.servers[name]
	if !ok {
		return false
	}
	fn(server)
	return true
}

// AddServer installs a new server entry. Fails when the name is taken
// and overwrite is false.
func (s *State) AddServer(name, version string, overwrite bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.servers[name]; exists && !overwrite {
		return fmt.Errorf("server %q already exists", name)
	}
	s.servers[name] = &ServerState{
		Version:   version,
		WorldName: "Bedrock level",
		Properties: map[string]string{
			"server-name": name,
			"level-name":  "Bedrock level",
		},
	}
	return nil
}

// RemoveServer deletes a server entry.
func (s *State) RemoveServer(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.servers[name]; !ok {
		return false
	}
	delete(s.servers, name)
	return true
}
