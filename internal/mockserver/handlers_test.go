package mockserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bedrockmgr/bsmctl/internal/api"
)

func newTestServer(t *testing.T) (*httptest.Server, *State) {
	t.Helper()
	state := NewState("admin", "hunter2")
	srv := httptest.NewServer(Handler(state, NewConsoleHub()))
	t.Cleanup(srv.Close)
	return srv, state
}

func login(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "hunter2"})
	resp, err := http.Post(srv.URL+"/api/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, want 200", resp.StatusCode)
	}
	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if payload.AccessToken == "" {
		t.Fatal("login returned empty access_token")
	}
	return payload.AccessToken
}

func doAuthed(t *testing.T, srv *httptest.Server, token, method, path string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return resp
}

func TestLoginRejectsBadPassword(t *testing.T) {
	srv, _ := newTestServer(t)
	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "wrong"})
	resp, err := http.Post(srv.URL+"/api/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestUnauthenticatedRequestRejected(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/servers")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestUnknownServerReturns404(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv)
	resp := doAuthed(t, srv, token, http.MethodGet, "/api/server/ghost/status_info", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestSendCommandOnStoppedServerReturnsNotRunning(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv)
	resp := doAuthed(t, srv, token, http.MethodPost, "/api/server/beta/send_command",
		map[string]string{"command": "list"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	var payload struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Status != "error" {
		t.Errorf("status field = %q, want error", payload.Status)
	}
	if !strings.Contains(payload.Message, "is not running") {
		t.Errorf("message = %q, want not-running phrase", payload.Message)
	}
}

func TestAllowlistRoundTrip(t *testing.T) {
	srv, state := newTestServer(t)
	token := login(t, srv)

	resp := doAuthed(t, srv, token, http.MethodPost, "/api/server/alpha/allowlist/add",
		map[string]any{"players": []string{"Notch"}, "ignoresPlayerLimit": true})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add status = %d, want 200", resp.StatusCode)
	}

	var found bool
	state.WithServer("alpha", func(s *ServerState) {
		for _, p := range s.Allowlist {
			if p.Name == "Notch" && p.IgnoresPlayerLimit {
				found = true
			}
		}
	})
	if !found {
		t.Fatal("Notch not present in allowlist after add")
	}

	resp = doAuthed(t, srv, token, http.MethodDelete, "/api/server/alpha/allowlist/player/Notch", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("remove status = %d, want 200", resp.StatusCode)
	}

	resp = doAuthed(t, srv, token, http.MethodDelete, "/api/server/alpha/allowlist/player/Notch", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("second remove status = %d, want 404", resp.StatusCode)
	}
}

func TestStartStopUpdatesProcessState(t *testing.T) {
	srv, state := newTestServer(t)
	token := login(t, srv)

	resp := doAuthed(t, srv, token, http.MethodPost, "/api/server/beta/start", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start status = %d, want 200", resp.StatusCode)
	}

	var running bool
	state.WithServer("beta", func(s *ServerState) { running = s.Running })
	if !running {
		t.Error("beta should be running after start")
	}

	resp = doAuthed(t, srv, token, http.MethodPost, "/api/server/beta/stop", nil)
	resp.Body.Close()
	state.WithServer("beta", func(s *ServerState) { running = s.Running })
	if running {
		t.Error("beta should be stopped after stop")
	}
}

func TestPermissionsRejectInvalidLevel(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv)
	resp := doAuthed(t, srv, token, http.MethodPut, "/api/server/alpha/permissions",
		map[string]any{"permissions": map[string]string{"123": "admin"}})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestInstallAndDeleteServer(t *testing.T) {
	srv, state := newTestServer(t)
	token := login(t, srv)

	resp := doAuthed(t, srv, token, http.MethodPost, "/api/server/install",
		map[string]any{"server_name": "gamma", "server_version": "LATEST"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("install status = %d, want 200", resp.StatusCode)
	}
	if !state.WithServer("gamma", func(*ServerState) {}) {
		t.Fatal("gamma missing after install")
	}

	resp = doAuthed(t, srv, token, http.MethodPost, "/api/server/install",
		map[string]any{"server_name": "gamma"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("duplicate install status = %d, want 400", resp.StatusCode)
	}

	resp = doAuthed(t, srv, token, http.MethodDelete, "/api/server/gamma/delete", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d, want 200", resp.StatusCode)
	}
	if state.WithServer("gamma", func(*ServerState) {}) {
		t.Error("gamma still present after delete")
	}
}

// The mock has to stay wire-compatible with the real client.
func TestClientAgainstMock(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()

	client := api.NewClientWithURL(srv.URL+"/api", "admin", "hunter2")

	if err := client.Authenticate(ctx); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	servers, err := client.GetServerList(ctx)
	if err != nil {
		t.Fatalf("GetServerList: %v", err)
	}
	if len(servers) != 2 {
		t.Fatalf("server count = %d, want 2", len(servers))
	}

	status, err := client.GetStatusInfo(ctx, "alpha")
	if err != nil {
		t.Fatalf("GetStatusInfo: %v", err)
	}
	if status.ProcessInfo == nil || status.ProcessInfo.PID != 4242 {
		t.Errorf("alpha process info = %+v, want PID 4242", status.ProcessInfo)
	}

	props, err := client.GetProperties(ctx, "alpha")
	if err != nil {
		t.Fatalf("GetProperties: %v", err)
	}
	if props["level-name"] == "" {
		t.Error("properties missing level-name")
	}

	if err := client.UpdateProperties(ctx, "alpha", map[string]string{"max-players": "20"}); err != nil {
		t.Fatalf("UpdateProperties: %v", err)
	}
	props, err = client.GetProperties(ctx, "alpha")
	if err != nil {
		t.Fatalf("GetProperties after update: %v", err)
	}
	if props["max-players"] != "20" {
		t.Errorf("max-players = %q, want 20", props["max-players"])
	}

	if _, err := client.GetStatusInfo(ctx, "ghost"); !api.IsNotFoundError(err) {
		t.Errorf("ghost status error = %v, want not-found", err)
	}

	if err := client.SendCommand(ctx, "beta", "list"); !api.IsNotRunningError(err) {
		t.Errorf("beta command error = %v, want not-running", err)
	}

	backups, err := client.ListBackups(ctx, "alpha")
	if err != nil {
		t.Fatalf("ListBackups: %v", err)
	}
	if len(backups.WorldBackups) == 0 {
		t.Error("alpha has no world backups")
	}
}
