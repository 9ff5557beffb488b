package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the mDNS service type Bedrock Server Manager
	// instances advertise under
	ServiceType = "_bedrock-manager._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for manager discovery
	DefaultScanTimeout = 10 * time.Second

	// DefaultPort is the default API port for a manager
	DefaultPort = 11325
)

// Scanner handles mDNS manager discovery
type Scanner struct {
	// Timeout is the maximum time to wait for discovery
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// ScanForManagers discovers all managers on the local network
func (s *Scanner) ScanForManagers() ([]*Manager, error) {
	return s.ScanForManagersWithContext(context.Background())
}

// ScanForManagersWithContext discovers managers with a custom context
func (s *Scanner) ScanForManagersWithContext(ctx context.Context) ([]*Manager, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	managers := make([]*Manager, 0)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	go func() {
		for entry := range entries {
			manager := s.parseServiceEntry(entry)
			if manager != nil {
				managers = append(managers, manager)
			}
		}
	}()

	err = resolver.Browse(ctx, ServiceType, ServiceDomain, entries)
	if err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	// Wait for context to complete (timeout or cancellation)
	<-ctx.Done()

	return managers, nil
}

// WaitForManager waits for a specific manager by instance name
// Returns the manager or an error if not found within timeout
func (s *Scanner) WaitForManager(name string) (*Manager, error) {
	return s.WaitForManagerWithContext(context.Background(), name)
}

// WaitForManagerWithContext waits for a specific manager with a custom context
func (s *Scanner) WaitForManagerWithContext(ctx context.Context, name string) (*Manager, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	managerChan := make(chan *Manager, 1)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	go func() {
		for entry := range entries {
			manager := s.parseServiceEntry(entry)
			if manager != nil && manager.Name == name {
				managerChan <- manager
				cancel() // Found it, cancel context
				return
			}
		}
	}()

	err = resolver.Browse(ctx, ServiceType, ServiceDomain, entries)
	if err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	select {
	case manager := <-managerChan:
		return manager, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("manager named %s not found within timeout", name)
	}
}

// parseServiceEntry converts a zeroconf service entry to a Manager.
// Returns nil when the entry is unusable.
func (s *Scanner) parseServiceEntry(entry *zeroconf.ServiceEntry) *Manager {
	name := entry.Instance
	if name == "" {
		return nil
	}

	// Get IP address (prefer IPv4)
	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	// TXT records are in "key=value" format
	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			metadata[parts[0]] = ""
		}
	}

	return &Manager{
		Name:         name,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// ScanForManagers is a convenience function with a custom timeout
func ScanForManagers(timeout time.Duration) ([]*Manager, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.ScanForManagers()
}

// QuickScan performs a fast scan with a 3-second timeout
func QuickScan() ([]*Manager, error) {
	scanner := NewScanner()
	scanner.Timeout = 3 * time.Second
	return scanner.ScanForManagers()
}

// FindManager searches for a specific manager by name with default timeout
func FindManager(name string) (*Manager, error) {
	scanner := NewScanner()
	return scanner.WaitForManager(name)
}
