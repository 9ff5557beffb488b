// Package config provides user configuration management for bsmctl.
//
// This package manages a YAML-based configuration file that stores named
// Bedrock Server Manager connections (host, port, username) and application
// preferences. The configuration follows OS-specific conventions for storage
// location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/bsmctl/config.yaml or $HOME/.config/bsmctl/config.yaml
//   - macOS: $HOME/.config/bsmctl/config.yaml
//   - Windows: %LOCALAPPDATA%\bsmctl\config.yaml
//
// # Security
//
// IMPORTANT: This package NEVER stores passwords or authentication tokens.
// These are always prompted from the user when needed.
//
// # Usage Example
//
//	// Load the global registry
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Add or update a manager connection
//	registry.SetManager("home", "192.168.1.50", 11325, "admin")
//	registry.Preferences.DefaultManager = "home"
//
//	// Save changes atomically
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
