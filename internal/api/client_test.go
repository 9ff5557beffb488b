package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const (
	testUser = "admin"
	testPass = "hunter2"
)

// newTestManager builds an httptest server that implements the login endpoint
// and delegates everything else to handler. Requests without a valid bearer
// token get a 401.
func newTestManager(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.Username != testUser || req.Password != testPass {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message": "Bad username or password"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token": "test-token"}`))
	})
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		handler(w, r)
	})
	return httptest.NewServer(mux)
}

func newTestClient(server *httptest.Server) *Client {
	return NewClientWithURL(server.URL+"/api", testUser, testPass)
}

func TestNewClient(t *testing.T) {
	client := NewClient("192.168.1.10", 11325, testUser, testPass)

	if client.BaseURL != "http://192.168.1.10:11325/api" {
		t.Errorf("BaseURL = %s, want http://192.168.1.10:11325/api", client.BaseURL)
	}
	if client.HTTPClient == nil {
		t.Error("HTTPClient should not be nil")
	}
}

func TestNewClient_StripsScheme(t *testing.T) {
	client := NewClient("http://192.168.1.10", 11325, testUser, testPass)

	if client.BaseURL != "http://192.168.1.10:11325/api" {
		t.Errorf("BaseURL = %s, scheme should have been stripped from host", client.BaseURL)
	}
}

func TestSetTimeout(t *testing.T) {
	client := NewClient("192.168.1.10", 11325, testUser, testPass)
	client.SetTimeout(5 * time.Second)

	if client.HTTPClient.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", client.HTTPClient.Timeout)
	}
}

func TestAuthenticate_Success(t *testing.T) {
	server := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {})
	defer server.Close()

	client := newTestClient(server)
	if err := client.Authenticate(context.Background()); err != nil {
		t.Fatalf("Authenticate() error = %v, want nil", err)
	}
	if client.currentToken() != "test-token" {
		t.Errorf("token = %q, want test-token", client.currentToken())
	}
}

func TestAuthenticate_BadCredentials(t *testing.T) {
	server := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {})
	defer server.Close()

	client := NewClientWithURL(server.URL+"/api", testUser, "wrong")
	err := client.Authenticate(context.Background())

	if err == nil {
		t.Fatal("Authenticate() should fail with wrong password")
	}
	if !IsAuthError(err) {
		t.Errorf("expected auth error, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), "Bad username or password") {
		t.Errorf("error should name bad credentials, got: %v", err)
	}
}

func TestAuthenticate_MissingToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "success"}`))
	}))
	defer server.Close()

	client := NewClientWithURL(server.URL, testUser, testPass)
	err := client.Authenticate(context.Background())

	if !IsAuthError(err) {
		t.Errorf("expected auth error for missing access_token, got %v", err)
	}
}

func TestGetServerList(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "record items",
			body: `{"servers": [{"name": "beta"}, {"name": "alpha"}]}`,
			want: []string{"alpha", "beta"},
		},
		{
			name: "bare string items",
			body: `{"servers": ["beta", "alpha"]}`,
			want: []string{"alpha", "beta"},
		},
		{
			name: "invalid items skipped",
			body: `{"servers": [{"name": "alpha"}, 42, {"label": "nope"}]}`,
			want: []string{"alpha"},
		},
		{
			name: "empty list",
			body: `{"servers": []}`,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/servers" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				_, _ = w.Write([]byte(tt.body))
			})
			defer server.Close()

			got, err := newTestClient(server).GetServerList(context.Background())
			if err != nil {
				t.Fatalf("GetServerList() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("GetServerList() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("server[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDoRequest_RefreshesTokenOn401(t *testing.T) {
	var loginCount, callCount atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		loginCount.Add(1)
		_, _ = w.Write([]byte(`{"access_token": "test-token"}`))
	})
	mux.HandleFunc("/api/servers", func(w http.ResponseWriter, r *http.Request) {
		// First call rejects the token to simulate expiry, second accepts
		if callCount.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"servers": ["alpha"]}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClientWithURL(server.URL+"/api", testUser, testPass)
	got, err := client.GetServerList(context.Background())
	if err != nil {
		t.Fatalf("GetServerList() error = %v", err)
	}
	if len(got) != 1 || got[0] != "alpha" {
		t.Errorf("GetServerList() = %v, want [alpha]", got)
	}
	if loginCount.Load() != 2 {
		t.Errorf("login count = %d, want 2 (initial + refresh)", loginCount.Load())
	}
}

func TestDoRequest_401AfterRetryIsAuthError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token": "test-token"}`))
	})
	mux.HandleFunc("/api/servers", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message": "token revoked"}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClientWithURL(server.URL+"/api", testUser, testPass)
	_, err := client.GetServerList(context.Background())

	if !IsAuthError(err) {
		t.Errorf("expected auth error after failed retry, got %v", err)
	}
}

func TestDoRequest_ServerNotFound(t *testing.T) {
	server := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "no such server"}`))
	})
	defer server.Close()

	err := newTestClient(server).ValidateServerExists(context.Background(), "ghost")
	if !IsNotFoundError(err) {
		t.Errorf("expected-not-found error, got %v", err)
	}
	if !strings.Contains(err.Error(), "no such server") {
		t.Errorf("error should carry manager message, got: %v", err)
	}
}

func TestDoRequest_NotRunningDetection(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
	}{
		{"500 with message", http.StatusInternalServerError, `{"message": "Server 'alpha' is not running"}`},
		{"500 with pipe error", http.StatusInternalServerError, `{"message": "pipe does not exist"}`},
		{"2xx with error status", http.StatusOK, `{"status": "error", "message": "server likely not running"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			})
			defer server.Close()

			err := newTestClient(server).SendCommand(context.Background(), "alpha", "list")
			if !IsNotRunningError(err) {
				t.Errorf("expected not-running error, got %v", err)
			}
		})
	}
}

func TestDoRequest_ErrorFieldFallback(t *testing.T) {
	// Some endpoints use "error" instead of "message"
	server := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "bad payload shape"}`))
	})
	defer server.Close()

	err := newTestClient(server).SendCommand(context.Background(), "alpha", "list")
	if !IsHTTPError(err) {
		t.Fatalf("expected HTTP error, got %v", err)
	}
	if !strings.Contains(err.Error(), "bad payload shape") {
		t.Errorf("error should carry the 'error' field message, got: %v", err)
	}
}

func TestDoRequest_NoContentSuccess(t *testing.T) {
	server := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	defer server.Close()

	if err := newTestClient(server).StartServer(context.Background(), "alpha"); err != nil {
		t.Errorf("StartServer() error = %v, want nil for 204", err)
	}
}

func TestGetStatusInfo_StoppedServer(t *testing.T) {
	server := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "success", "process_info": null}`))
	})
	defer server.Close()

	info, err := newTestClient(server).GetStatusInfo(context.Background(), "alpha")
	if err != nil {
		t.Fatalf("GetStatusInfo() error = %v", err)
	}
	if info.ProcessInfo != nil {
		t.Errorf("ProcessInfo = %+v, want nil for stopped server", info.ProcessInfo)
	}
}

func TestGetStatusInfo_RunningServer(t *testing.T) {
	server := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"process_info": {"pid": 4242, "cpu_percent": 12.5, "memory_mb": 812.3, "uptime": "2:03:11"}}`))
	})
	defer server.Close()

	info, err := newTestClient(server).GetStatusInfo(context.Background(), "alpha")
	if err != nil {
		t.Fatalf("GetStatusInfo() error = %v", err)
	}
	if info.ProcessInfo == nil {
		t.Fatal("ProcessInfo should not be nil")
	}
	if info.ProcessInfo.PID != 4242 {
		t.Errorf("PID = %d, want 4242", info.ProcessInfo.PID)
	}
}

func TestGetAllowlist(t *testing.T) {
	server := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"existing_players": [{"name": "Steve", "ignoresPlayerLimit": false}, {"name": "Alex", "ignoresPlayerLimit": true}]}`))
	})
	defer server.Close()

	players, err := newTestClient(server).GetAllowlist(context.Background(), "alpha")
	if err != nil {
		t.Fatalf("GetAllowlist() error = %v", err)
	}
	if len(players) != 2 {
		t.Fatalf("got %d players, want 2", len(players))
	}
	if players[0].Name != "Steve" || players[1].Name != "Alex" {
		t.Errorf("players = %+v", players)
	}
	if !players[1].IgnoresPlayerLimit {
		t.Error("Alex should ignore player limit")
	}
}

func TestRemoveFromAllowlist_EscapesPlayerName(t *testing.T) {
	var gotPath string
	server := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{"status": "success"}`))
	})
	defer server.Close()

	err := newTestClient(server).RemoveFromAllowlist(context.Background(), "alpha", "Player One")
	if err != nil {
		t.Fatalf("RemoveFromAllowlist() error = %v", err)
	}
	if !strings.HasSuffix(gotPath, "/allowlist/player/Player%20One") {
		t.Errorf("path = %s, player name should be escaped", gotPath)
	}
}

func TestTriggerBackup_Validation(t *testing.T) {
	client := NewClient("192.168.1.10", 11325, testUser, testPass)

	tests := []struct {
		name       string
		backupType string
		file       string
		wantErr    bool
	}{
		{"all ok", "all", "", false},
		{"world ok", "world", "", false},
		{"config needs file", "config", "", true},
		{"config with file ok", "config", "server.properties", false},
		{"bogus type", "incremental", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.TriggerBackup(context.Background(), "alpha", tt.backupType, tt.file)
			// Local validation errors short-circuit before any network call;
			// valid payloads fail on network (no server listening) instead.
			if tt.wantErr && !IsValidationError(err) {
				t.Errorf("expected validation error, got %v", err)
			}
			if !tt.wantErr && IsValidationError(err) {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestSetPermissions_RejectsInvalidLevel(t *testing.T) {
	client := NewClient("192.168.1.10", 11325, testUser, testPass)

	err := client.SetPermissions(context.Background(), "alpha", map[string]string{
		"2535460987654321": "admin",
	})
	if !IsValidationError(err) {
		t.Errorf("expected validation error for bogus level, got %v", err)
	}
}

func TestSetPermissions_SendsMap(t *testing.T) {
	var gotBody map[string]map[string]string
	server := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"status": "success"}`))
	})
	defer server.Close()

	err := newTestClient(server).SetPermissions(context.Background(), "alpha", map[string]string{
		"2535460987654321": "operator",
	})
	if err != nil {
		t.Fatalf("SetPermissions() error = %v", err)
	}
	if gotBody["permissions"]["2535460987654321"] != "operator" {
		t.Errorf("payload = %v", gotBody)
	}
}

func TestPruneDownloadCache_OmitsKeepWhenNil(t *testing.T) {
	var gotBody map[string]any
	server := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"status": "success"}`))
	})
	defer server.Close()

	err := newTestClient(server).PruneDownloadCache(context.Background(), "stable", nil)
	if err != nil {
		t.Fatalf("PruneDownloadCache() error = %v", err)
	}
	if gotBody["directory"] != "stable" {
		t.Errorf("directory = %v, want stable", gotBody["directory"])
	}
	if _, present := gotBody["keep"]; present {
		t.Error("keep should be omitted when nil")
	}
}

func TestExtractErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"message field", `{"message": "boom"}`, "boom"},
		{"error field", `{"error": "bang"}`, "bang"},
		{"message preferred over error", `{"message": "boom", "error": "bang"}`, "boom"},
		{"plain text", `  everything is on fire  `, "everything is on fire"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractErrorMessage([]byte(tt.raw)); got != tt.want {
				t.Errorf("extractErrorMessage(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
