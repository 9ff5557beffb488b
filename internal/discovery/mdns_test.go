package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func TestScanner_parseServiceEntry(t *testing.T) {
	scanner := NewScanner()

	tests := []struct {
		name     string
		entry    *zeroconf.ServiceEntry
		wantNil  bool
		wantName string
		wantIP   string
		wantPort int
	}{
		{
			name: "valid manager with IPv4",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "bsm-homelab"},
				HostName:      "homelab.local.",
				Port:          11325,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.1.50")},
				Text:          []string{"version=3.5.0", "servers=2"},
			},
			wantNil:  false,
			wantName: "bsm-homelab",
			wantIP:   "192.168.1.50",
			wantPort: 11325,
		},
		{
			name: "manager with custom port",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "bsm-lab"},
				HostName:      "lab.local",
				Port:          8080,
				AddrIPv4:      []net.IP{net.ParseIP("10.0.0.5")},
			},
			wantNil:  false,
			wantName: "bsm-lab",
			wantIP:   "10.0.0.5",
			wantPort: 8080,
		},
		{
			name: "no port specified (should default to 11325)",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "bsm-default"},
				HostName:      "default.local",
				Port:          0,
				AddrIPv4:      []net.IP{net.ParseIP("172.16.0.1")},
			},
			wantNil:  false,
			wantName: "bsm-default",
			wantIP:   "172.16.0.1",
			wantPort: DefaultPort,
		},
		{
			name: "empty instance name",
			entry: &zeroconf.ServiceEntry{
				HostName: "nameless.local",
				Port:     11325,
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.1")},
			},
			wantNil: true,
		},
		{
			name: "no IP address",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "bsm-ghost"},
				HostName:      "ghost.local",
				Port:          11325,
				AddrIPv4:      []net.IP{},
				AddrIPv6:      []net.IP{},
			},
			wantNil: true,
		},
		{
			name: "IPv6 only manager",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "bsm-v6"},
				HostName:      "v6.local",
				Port:          11325,
				AddrIPv6:      []net.IP{net.ParseIP("fe80::1")},
			},
			wantNil:  false,
			wantName: "bsm-v6",
			wantIP:   "fe80::1",
			wantPort: 11325,
		},
		{
			name: "both IPv4 and IPv6 (should prefer IPv4)",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "bsm-dual"},
				HostName:      "dual.local",
				Port:          11325,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.1.60")},
				AddrIPv6:      []net.IP{net.ParseIP("fe80::2")},
			},
			wantNil:  false,
			wantName: "bsm-dual",
			wantIP:   "192.168.1.60",
			wantPort: 11325,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager := scanner.parseServiceEntry(tt.entry)

			if tt.wantNil {
				if manager != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", manager)
				}
				return
			}

			if manager == nil {
				t.Fatal("parseServiceEntry() = nil, want non-nil manager")
			}

			if manager.Name != tt.wantName {
				t.Errorf("manager.Name = %v, want %v", manager.Name, tt.wantName)
			}

			if manager.IP != tt.wantIP {
				t.Errorf("manager.IP = %v, want %v", manager.IP, tt.wantIP)
			}

			if manager.Port != tt.wantPort {
				t.Errorf("manager.Port = %v, want %v", manager.Port, tt.wantPort)
			}

			if manager.Hostname != tt.entry.HostName {
				t.Errorf("manager.Hostname = %v, want %v", manager.Hostname, tt.entry.HostName)
			}

			// Check that DiscoveredAt is recent (within last second)
			if time.Since(manager.DiscoveredAt) > time.Second {
				t.Errorf("manager.DiscoveredAt is not recent: %v", manager.DiscoveredAt)
			}
		})
	}
}

func TestScanner_parseServiceEntry_Metadata(t *testing.T) {
	scanner := NewScanner()

	entry := &zeroconf.ServiceEntry{
		ServiceRecord: zeroconf.ServiceRecord{Instance: "bsm-homelab"},
		HostName:      "homelab.local",
		Port:          11325,
		AddrIPv4:      []net.IP{net.ParseIP("192.168.1.50")},
		Text:          []string{"version=3.5.0", "servers=2", "flag", "api=v1"},
	}

	manager := scanner.parseServiceEntry(entry)
	if manager == nil {
		t.Fatal("parseServiceEntry() = nil, want manager")
	}

	expectedMetadata := map[string]string{
		"version": "3.5.0",
		"servers": "2",
		"flag":    "", // Key without value
		"api":     "v1",
	}

	if len(manager.Metadata) != len(expectedMetadata) {
		t.Errorf("manager.Metadata has %d entries, want %d", len(manager.Metadata), len(expectedMetadata))
	}

	for key, expectedValue := range expectedMetadata {
		if actualValue, ok := manager.Metadata[key]; !ok {
			t.Errorf("manager.Metadata missing key %q", key)
		} else if actualValue != expectedValue {
			t.Errorf("manager.Metadata[%q] = %q, want %q", key, actualValue, expectedValue)
		}
	}

	if manager.Version() != "3.5.0" {
		t.Errorf("manager.Version() = %q, want 3.5.0", manager.Version())
	}
}

func TestNewScanner(t *testing.T) {
	scanner := NewScanner()

	if scanner == nil {
		t.Fatal("NewScanner() = nil, want scanner")
	}

	if scanner.Timeout != DefaultScanTimeout {
		t.Errorf("scanner.Timeout = %v, want %v", scanner.Timeout, DefaultScanTimeout)
	}
}

// Note: Integration tests with live mDNS discovery require network access
// and should be run manually.
