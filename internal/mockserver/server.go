package mockserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/bedrockmgr/bsmctl/internal/logging"
)

// Config holds the mock manager configuration
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	LogLevel string
}

// Server is a standalone fake Bedrock Server Manager instance
type Server struct {
	config *Config
	state  *State
	hub    *ConsoleHub
	http   *http.Server
}

// New creates a new Server instance
func New(config *Config) (*Server, error) {
	if err := logging.Initialize(config.LogLevel); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	if config.Username == "" || config.Password == "" {
		return nil, fmt.Errorf("username and password are required")
	}

	state := NewState(config.Username, config.Password)
	hub := NewConsoleHub()

	return &Server{
		config: config,
		state:  state,
		hub:    hub,
		http: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", config.Host, config.Port),
			Handler:           Handler(state, hub),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// State exposes the in-memory store, mostly for tests.
func (s *Server) State() *State {
	return s.state
}

// Start starts the server and blocks until shutdown
func (s *Server) Start() error {
	logging.Info("Starting mock Bedrock Server Manager",
		zap.String("addr", s.http.Addr),
		zap.String("username", s.config.Username),
		zap.String("log_level", s.config.LogLevel),
	)

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
			return
		}
		errChan <- nil
	}()

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping server...")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		logging.Warn("HTTP shutdown did not complete cleanly", zap.Error(err))
		return err
	}
	logging.Info("Server stopped")
	logging.Sync()
	return nil
}
