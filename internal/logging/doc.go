// Package logging provides structured logging for bsmctl.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the tool. Logging is silent by default so the TUI
// and CLI output stay clean; set BSMCTL_LOG_LEVEL to enable it.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (API request/response traces, snapshots)
//   - Info: Normal operations (logins, polling cycles, state changes)
//   - Warn: Non-fatal issues (degraded snapshots, retries)
//   - Error: Fatal issues (startup failures, critical errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Server action invoked",
//	    zap.String("server", "survival-world"),
//	    zap.String("action", "trigger_backup"),
//	)
//
// # Specialized Logging
//
// The package provides domain-specific logging functions:
//
//	logging.LogAPIRequest("POST", "/server/my-server/send_command")
//	logging.LogAPIResponse("POST", "/server/my-server/send_command", 200, elapsed)
//	logging.LogSnapshot("my-server", 12, false)
//
// # Configuration
//
// Initialize logging at startup:
//
//	if err := logging.InitializeFromEnv(); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap logger
// handles synchronization automatically.
package logging
