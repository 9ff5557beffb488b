package config

import (
	"fmt"
	"time"
)

// DefaultPort is the port a Bedrock Server Manager listens on unless
// configured otherwise.
const DefaultPort = 11325

// Registry represents the entire user configuration file.
// This stores named manager connections and application preferences.
type Registry struct {
	Version     int                 `yaml:"version"`
	Managers    map[string]*Manager `yaml:"managers,omitempty"` // Keyed by user-chosen name
	Preferences *Preferences        `yaml:"preferences,omitempty"`
}

// Manager represents one Bedrock Server Manager connection.
// Passwords are NEVER stored - they are always prompted when needed.
type Manager struct {
	Host          string    `yaml:"host"`
	Port          int       `yaml:"port,omitempty"`           // Defaults to DefaultPort when zero
	Username      string    `yaml:"username,omitempty"`       // Login username
	Nickname      string    `yaml:"nickname,omitempty"`       // User-friendly display name
	LastSeen      time.Time `yaml:"last_seen,omitempty"`      // Last successful connection or discovery
	DefaultServer string    `yaml:"default_server,omitempty"` // Server preselected in the dashboard
}

// Address returns host and port with the default port applied.
func (m *Manager) Address() (string, int) {
	port := m.Port
	if port == 0 {
		port = DefaultPort
	}
	return m.Host, port
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	AutoDiscover    bool   `yaml:"auto_discover"`             // Enable mDNS discovery on startup
	DiscoverTimeout int    `yaml:"discover_timeout"`          // mDNS discovery timeout in seconds
	PollInterval    int    `yaml:"poll_interval"`             // Dashboard poll interval in seconds
	DefaultManager  string `yaml:"default_manager,omitempty"` // Manager used when none is named
}

func defaultPreferences() *Preferences {
	return &Preferences{
		AutoDiscover:    true,
		DiscoverTimeout: 10,
		PollInterval:    30,
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     1,
		Managers:    make(map[string]*Manager),
		Preferences: defaultPreferences(),
	}
}

// GetManager retrieves a manager by name.
// Returns nil if the manager doesn't exist in the registry.
func (r *Registry) GetManager(name string) *Manager {
	return r.Managers[name]
}

// EnsureManager ensures a manager entry exists in the registry.
// Returns the entry (existing or newly created).
func (r *Registry) EnsureManager(name string) *Manager {
	if r.Managers == nil {
		r.Managers = make(map[string]*Manager)
	}
	if manager, exists := r.Managers[name]; exists {
		return manager
	}
	manager := &Manager{}
	r.Managers[name] = manager
	return manager
}

// SetManager creates or updates a named manager connection.
func (r *Registry) SetManager(name, host string, port int, username string) *Manager {
	manager := r.EnsureManager(name)
	manager.Host = host
	manager.Port = port
	manager.Username = username
	return manager
}

// RemoveManager deletes a manager entry. The default-manager
// preference is cleared when it pointed at the removed entry.
func (r *Registry) RemoveManager(name string) {
	delete(r.Managers, name)
	if r.Preferences != nil && r.Preferences.DefaultManager == name {
		r.Preferences.DefaultManager = ""
	}
}

// UpdateManagerLastSeen updates the last seen timestamp for a manager.
func (r *Registry) UpdateManagerLastSeen(name string) {
	r.EnsureManager(name).LastSeen = time.Now()
}

// ResolveManager returns the manager to use: the named one when name
// is non-empty, otherwise the configured default, otherwise the sole
// entry when exactly one exists.
func (r *Registry) ResolveManager(name string) (string, *Manager, error) {
	if name != "" {
		manager := r.GetManager(name)
		if manager == nil {
			return "", nil, fmt.Errorf("no manager named %q in config", name)
		}
		return name, manager, nil
	}
	if r.Preferences != nil && r.Preferences.DefaultManager != "" {
		if manager := r.GetManager(r.Preferences.DefaultManager); manager != nil {
			return r.Preferences.DefaultManager, manager, nil
		}
	}
	if len(r.Managers) == 1 {
		for soleName, manager := range r.Managers {
			return soleName, manager, nil
		}
	}
	return "", nil, fmt.Errorf("no manager selected; add one with 'bsmctl manager add' or pass --manager")
}
