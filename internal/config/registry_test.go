package config

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}

	if !strings.Contains(configDir, "bsmctl") {
		t.Errorf("GetConfigDir() = %v, should contain 'bsmctl'", configDir)
	}

	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(configDir, "AppData") && !strings.Contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	case "darwin", "linux":
		if !strings.Contains(configDir, ".config") {
			t.Errorf("Unix config dir should contain '.config', got: %v", configDir)
		}
	}

	t.Logf("Config directory: %s", configDir)
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}

	if reg.Managers == nil {
		t.Error("NewRegistry().Managers should not be nil")
	}

	if reg.Preferences == nil {
		t.Fatal("NewRegistry().Preferences should not be nil")
	}

	if reg.Preferences.AutoDiscover != true {
		t.Error("NewRegistry().Preferences.AutoDiscover should be true by default")
	}

	if reg.Preferences.PollInterval != 30 {
		t.Errorf("NewRegistry().Preferences.PollInterval = %v, want 30", reg.Preferences.PollInterval)
	}
}

func TestRegistryEnsureManager(t *testing.T) {
	reg := NewRegistry()

	manager1 := reg.EnsureManager("home")
	if manager1 == nil {
		t.Fatal("EnsureManager() returned nil")
	}

	manager2 := reg.EnsureManager("home")
	if manager1 != manager2 {
		t.Error("EnsureManager() should return same instance for same name")
	}

	manager3 := reg.EnsureManager("lab")
	if manager1 == manager3 {
		t.Error("EnsureManager() should create new instance for different name")
	}
}

func TestRegistrySetManager(t *testing.T) {
	reg := NewRegistry()

	reg.SetManager("home", "192.168.1.50", 11325, "admin")

	manager := reg.GetManager("home")
	if manager == nil {
		t.Fatal("Manager should exist after SetManager()")
	}
	if manager.Host != "192.168.1.50" || manager.Port != 11325 || manager.Username != "admin" {
		t.Errorf("Manager = %+v", manager)
	}
}

func TestManagerAddress_DefaultPort(t *testing.T) {
	manager := &Manager{Host: "bsm.local"}
	host, port := manager.Address()
	if host != "bsm.local" || port != DefaultPort {
		t.Errorf("Address() = %s:%d, want bsm.local:%d", host, port, DefaultPort)
	}

	manager.Port = 8080
	if _, port := manager.Address(); port != 8080 {
		t.Errorf("Address() port = %d, want explicit 8080", port)
	}
}

func TestRegistryUpdateManagerLastSeen(t *testing.T) {
	reg := NewRegistry()

	before := time.Now()
	reg.UpdateManagerLastSeen("home")
	after := time.Now()

	manager := reg.GetManager("home")
	if manager == nil {
		t.Fatal("Manager should exist after UpdateManagerLastSeen()")
	}

	if manager.LastSeen.Before(before) || manager.LastSeen.After(after) {
		t.Errorf("LastSeen = %v, should be between %v and %v", manager.LastSeen, before, after)
	}
}

func TestRegistryRemoveManager_ClearsDefault(t *testing.T) {
	reg := NewRegistry()
	reg.SetManager("home", "localhost", 0, "admin")
	reg.Preferences.DefaultManager = "home"

	reg.RemoveManager("home")

	if reg.GetManager("home") != nil {
		t.Error("Manager should be gone after RemoveManager()")
	}
	if reg.Preferences.DefaultManager != "" {
		t.Error("DefaultManager preference should be cleared with the entry")
	}
}

func TestRegistryResolveManager(t *testing.T) {
	reg := NewRegistry()
	reg.SetManager("home", "192.168.1.50", 0, "admin")
	reg.SetManager("lab", "192.168.1.60", 0, "admin")

	t.Run("by name", func(t *testing.T) {
		name, manager, err := reg.ResolveManager("lab")
		if err != nil {
			t.Fatalf("ResolveManager() error = %v", err)
		}
		if name != "lab" || manager.Host != "192.168.1.60" {
			t.Errorf("got %s, %+v", name, manager)
		}
	})

	t.Run("unknown name", func(t *testing.T) {
		if _, _, err := reg.ResolveManager("nope"); err == nil {
			t.Error("expected error for unknown manager name")
		}
	})

	t.Run("ambiguous without default", func(t *testing.T) {
		if _, _, err := reg.ResolveManager(""); err == nil {
			t.Error("expected error with two managers and no default")
		}
	})

	t.Run("configured default", func(t *testing.T) {
		reg.Preferences.DefaultManager = "home"
		name, _, err := reg.ResolveManager("")
		if err != nil {
			t.Fatalf("ResolveManager() error = %v", err)
		}
		if name != "home" {
			t.Errorf("name = %s, want home", name)
		}
	})

	t.Run("sole entry", func(t *testing.T) {
		sole := NewRegistry()
		sole.SetManager("only", "localhost", 0, "admin")
		name, _, err := sole.ResolveManager("")
		if err != nil {
			t.Fatalf("ResolveManager() error = %v", err)
		}
		if name != "only" {
			t.Errorf("name = %s, want only", name)
		}
	})
}

func TestRegistryYAMLRoundTrip(t *testing.T) {
	reg := NewRegistry()
	reg.SetManager("home", "192.168.1.50", 11325, "admin").Nickname = "Home Lab"
	reg.Preferences.DefaultManager = "home"

	data, err := yaml.Marshal(reg)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if strings.Contains(string(data), "password") {
		t.Error("serialized config must never mention passwords")
	}

	var loaded Registry
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	manager := loaded.GetManager("home")
	if manager == nil {
		t.Fatal("manager missing after round trip")
	}
	if manager.Host != "192.168.1.50" || manager.Nickname != "Home Lab" {
		t.Errorf("loaded manager = %+v", manager)
	}
	if loaded.Preferences.DefaultManager != "home" {
		t.Errorf("DefaultManager = %q", loaded.Preferences.DefaultManager)
	}
}

func BenchmarkGetConfigDir(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = GetConfigDir()
	}
}

func BenchmarkEnsureManager(b *testing.B) {
	reg := NewRegistry()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		reg.EnsureManager("home")
	}
}
