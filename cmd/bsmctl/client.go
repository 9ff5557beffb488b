package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/bedrockmgr/bsmctl/internal/api"
	"github.com/bedrockmgr/bsmctl/internal/config"
)

// Global connection flags
var (
	managerName  string
	overrideHost string
	overridePort int
	username     string
	logLevel     string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&managerName, "manager", "m", "", "Named manager from the config registry")
	rootCmd.PersistentFlags().StringVar(&overrideHost, "host", "", "Manager host (bypasses the registry)")
	rootCmd.PersistentFlags().IntVar(&overridePort, "port", config.DefaultPort, "Manager HTTP port")
	rootCmd.PersistentFlags().StringVarP(&username, "username", "u", "", "Login username")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// promptPassword reads a password from the terminal without echo.
// The BSMCTL_PASSWORD environment variable short-circuits the prompt
// for scripted use; passwords are never read from the config file.
func promptPassword(user string) (string, error) {
	if password := os.Getenv("BSMCTL_PASSWORD"); password != "" {
		return password, nil
	}
	fmt.Fprintf(os.Stderr, "Password for %s: ", user)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// connect resolves the target manager, prompts for credentials, and
// returns an authenticated client.
func connect(ctx context.Context) (*api.Client, error) {
	host := overrideHost
	port := overridePort
	user := username
	resolvedName := ""

	if host == "" {
		registry, err := config.GetGlobalRegistry()
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		name, manager, err := registry.ResolveManager(managerName)
		if err != nil {
			return nil, err
		}
		resolvedName = name
		host, port = manager.Address()
		if user == "" {
			user = manager.Username
		}
	}

	if user == "" {
		return nil, fmt.Errorf("no username configured; pass --username or set one with 'bsmctl manager add'")
	}

	password, err := promptPassword(user)
	if err != nil {
		return nil, err
	}

	client := api.NewClient(host, port, user, password)
	if err := client.Authenticate(ctx); err != nil {
		return nil, fmt.Errorf("login to %s:%d failed: %w", host, port, err)
	}

	if resolvedName != "" {
		if registry, err := config.GetGlobalRegistry(); err == nil {
			registry.UpdateManagerLastSeen(resolvedName)
			if err := config.SaveGlobal(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save config: %v\n", err)
			}
		}
	}

	return client, nil
}
