package discovery

import (
	"fmt"
	"time"
)

// Manager represents a discovered Bedrock Server Manager on the network
type Manager struct {
	// Name is the advertised instance name (e.g., "bsm-homelab")
	Name string

	// Hostname is the mDNS hostname (e.g., "homelab.local.")
	Hostname string

	// IP is the IPv4 address (e.g., "192.168.1.50")
	IP string

	// Port is the API port (typically 11325)
	Port int

	// Metadata contains additional mDNS TXT record data
	// Common fields: "version=3.5.0", "servers=2"
	Metadata map[string]string

	// DiscoveredAt is when the manager was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the manager
func (m *Manager) String() string {
	return fmt.Sprintf("Bedrock Server Manager %s (%s) at %s:%d", m.Name, m.Hostname, m.IP, m.Port)
}

// BaseURL returns the HTTP base URL for the manager API
func (m *Manager) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", m.IP, m.Port)
}

// Version returns the advertised manager version, if any
func (m *Manager) Version() string {
	return m.GetMetadata("version")
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (m *Manager) GetMetadata(key string) string {
	if m.Metadata == nil {
		return ""
	}
	return m.Metadata[key]
}
