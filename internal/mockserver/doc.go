// Package mockserver implements a local fake Bedrock Server Manager
// for development and demos. It serves the REST API surface bsmctl
// talks to, backed by in-memory state, plus a websocket console stream
// per server.
//
// The mock mirrors the real manager's error behavior: JWT login,
// bearer auth, "status": "error" bodies, and 500s with "is not
// running" messages for console operations against stopped servers.
package mockserver
