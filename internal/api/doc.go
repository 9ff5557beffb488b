// Package api provides an HTTP client for the Bedrock Server Manager API.
//
// This package implements a JWT-authenticated client for the manager's REST
// API, covering server lifecycle (start/stop/restart/update), console
// commands, backups and restore, allowlist, permissions, server.properties,
// content install, and global manager actions.
//
// # Authentication
//
// The manager issues a JWT from POST /api/login. The client logs in lazily
// on the first authenticated request and caches the token. When a request
// comes back 401 the token is invalidated, the client re-authenticates, and
// the request is retried exactly once.
//
// # Usage Example
//
//	client := api.NewClient("192.168.1.10", 11325, "admin", password)
//
//	servers, err := client.GetServerList(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := client.SendCommand(ctx, servers[0], "say hello"); err != nil {
//	    log.Printf("command failed: %v", api.GetShortErrorMessage(err))
//	}
//
// # Error Handling
//
// All failures return a typed *APIError categorized by ErrorType. The
// manager is inconsistent about failure shapes (HTTP errors with "message"
// or "error" fields, and occasionally "status": "error" inside a 2xx body);
// the client normalizes all of them. Predicates such as IsAuthError,
// IsNotFoundError, and IsNotRunningError allow callers to branch without
// string matching.
//
// # Thread Safety
//
// Client instances are safe for concurrent use. The cached token is guarded
// by an internal mutex.
package api
