package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bedrockmgr/bsmctl/internal/logging"
	"github.com/bedrockmgr/bsmctl/internal/version"
	"go.uber.org/zap"
)

const (
	// DefaultPort is the default HTTP port for a Bedrock Server Manager
	DefaultPort = 11325

	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 10 * time.Second

	// basePath is the manager's API prefix
	basePath = "/api"
)

// Client is an HTTP client for a Bedrock Server Manager instance.
//
// Authentication is JWT based: the first authenticated request logs in with
// the configured credentials and caches the token. A 401 on a later request
// invalidates the token and retries exactly once after re-login.
type Client struct {
	// BaseURL is the manager base URL including the API prefix
	// (e.g. "http://192.168.1.10:11325/api")
	BaseURL string

	// Username and Password are the manager login credentials
	Username string
	Password string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// token is the cached JWT; guarded by tokenMutex
	token      string
	tokenMutex sync.Mutex
}

// NewClient creates a new manager API client.
// host: manager hostname or IP, without scheme
// port: manager HTTP port (typically 11325)
func NewClient(host string, port int, username, password string) *Client {
	host = strings.TrimPrefix(strings.TrimPrefix(host, "https://"), "http://")
	return &Client{
		BaseURL:    fmt.Sprintf("http://%s:%d%s", host, port, basePath),
		Username:   username,
		Password:   password,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// NewClientWithURL creates a new client with a full base URL
// (e.g. "http://192.168.1.10:11325/api"). Used by tests and the mock server.
func NewClientWithURL(baseURL, username, password string) *Client {
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		Username:   username,
		Password:   password,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// Authenticate logs into the manager and caches the JWT.
// It is called automatically by authenticated requests; calling it directly
// is useful to verify credentials up front.
func (c *Client) Authenticate(ctx context.Context) error {
	logging.Debug("Authenticating with manager", zap.String("username", c.Username))

	body, err := json.Marshal(loginRequest{Username: c.Username, Password: c.Password})
	if err != nil {
		return NewParseError("failed to encode login request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return NewNetworkError("failed to create login request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return NewNetworkError("login request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewNetworkError("failed to read login response", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		msg := extractErrorMessage(raw)
		if strings.Contains(strings.ToLower(msg), "bad username or password") {
			return NewAuthError("Bad username or password")
		}
		return NewAuthError(fmt.Sprintf("Authentication failed (401): %s", msg))
	}
	if resp.StatusCode >= 400 {
		return NewHTTPError(resp.StatusCode, extractErrorMessage(raw))
	}

	var login loginResponse
	if err := json.Unmarshal(raw, &login); err != nil {
		return NewParseError("failed to parse login response", err)
	}
	if login.AccessToken == "" {
		return NewAuthError("Login response missing access_token")
	}

	c.tokenMutex.Lock()
	c.token = login.AccessToken
	c.tokenMutex.Unlock()

	logging.Debug("Authentication successful, token cached")
	return nil
}

// invalidateToken drops the cached JWT so the next request re-authenticates
func (c *Client) invalidateToken() {
	c.tokenMutex.Lock()
	c.token = ""
	c.tokenMutex.Unlock()
}

func (c *Client) currentToken() string {
	c.tokenMutex.Lock()
	defer c.tokenMutex.Unlock()
	return c.token
}

// doRequest performs an authenticated API request and decodes the response
// into out (which may be nil when the caller only cares about success).
func (c *Client) doRequest(ctx context.Context, method, path string, payload any, out any) error {
	return c.doRequestInner(ctx, method, path, payload, out, false)
}

func (c *Client) doRequestInner(ctx context.Context, method, path string, payload any, out any, isRetry bool) error {
	if c.currentToken() == "" {
		if err := c.Authenticate(ctx); err != nil {
			return err
		}
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return NewParseError("failed to encode request payload", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return NewNetworkError("failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("Authorization", "Bearer "+c.currentToken())

	logging.LogAPIRequest(method, path)
	start := time.Now()

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return NewNetworkError("request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewNetworkError("failed to read response body", err)
	}

	logging.LogAPIResponse(method, path, resp.StatusCode, time.Since(start))

	// Token expired or revoked: re-login and retry exactly once
	if resp.StatusCode == http.StatusUnauthorized {
		if !isRetry {
			logging.Warn("Received 401, refreshing token and retrying once",
				zap.String("path", path))
			c.invalidateToken()
			return c.doRequestInner(ctx, method, path, payload, out, true)
		}
		return NewAuthError(fmt.Sprintf("Authentication failed (401): %s", extractErrorMessage(raw)))
	}

	if resp.StatusCode == http.StatusNotFound && strings.HasPrefix(path, "/server/") {
		return NewNotFoundError(fmt.Sprintf("Server Not Found (404): %s", extractErrorMessage(raw)))
	}

	if resp.StatusCode >= 400 {
		msg := extractErrorMessage(raw)
		if resp.StatusCode >= 500 && IsNotRunningMessage(msg) {
			return NewNotRunningError(fmt.Sprintf("Operation failed: %s", msg))
		}
		return NewHTTPError(resp.StatusCode, fmt.Sprintf("API Error %d: %s", resp.StatusCode, msg))
	}

	// 204 and empty bodies are success with nothing to decode
	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	// Some manager endpoints report failure inside a 2xx body
	var envelope APIResponse
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Status == "error" {
		msg := envelope.Message
		if msg == "" {
			msg = envelope.Error
		}
		if msg == "" {
			msg = "Unknown error structure in success response"
		}
		if IsNotRunningMessage(msg) {
			return NewNotRunningError(msg)
		}
		return NewHTTPError(resp.StatusCode, msg)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return NewParseError("failed to parse response body", err)
		}
	}
	return nil
}

// extractErrorMessage pulls the best available human-readable message out of
// an error response body. The manager is inconsistent about the field name,
// so "message", then "error", then the raw body are tried in order.
func extractErrorMessage(raw []byte) string {
	var envelope APIResponse
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	return strings.TrimSpace(string(raw))
}

// serverPath builds the URL path for a server-scoped endpoint, escaping the
// server name so names with spaces or slashes route correctly.
func serverPath(serverName, suffix string) string {
	return "/server/" + url.PathEscape(serverName) + suffix
}
