package invoke

import (
	"errors"
	"fmt"
	"testing"

	"github.com/bedrockmgr/bsmctl/internal/api"
)

func TestInvoker_Lifecycle(t *testing.T) {
	inv := New(nil)

	if inv.State().Phase != PhaseIdle {
		t.Fatalf("initial phase = %v, want idle", inv.State().Phase)
	}

	completion := inv.Begin("Restarting server")
	state := inv.State()
	if state.Phase != PhaseInFlight || state.Message != "Restarting server" {
		t.Errorf("state after Begin = %v", state)
	}
	if !inv.Busy() {
		t.Error("Busy() = false while in flight")
	}

	completion.Succeed("Restart requested")
	state = inv.State()
	if state.Phase != PhaseSucceeded || state.Message != "Restart requested" {
		t.Errorf("state after Succeed = %v", state)
	}
	if inv.Busy() {
		t.Error("Busy() = true after completion")
	}
}

func TestInvoker_BeginClearsPriorCompletion(t *testing.T) {
	inv := New(nil)
	inv.Begin("first").Fail("boom")

	inv.Begin("second")
	state := inv.State()
	if state.Phase != PhaseInFlight || state.Message != "second" {
		t.Errorf("state = %v, want in_flight(second)", state)
	}
}

func TestInvoker_StaleCompletionIgnored(t *testing.T) {
	// Two sequential actions for different selections: the first's
	// slow completion must not overwrite the second's state.
	inv := New(nil)

	first := inv.Begin("action for server alpha")
	second := inv.Begin("action for server beta")

	second.Succeed("Beta done")
	first.Fail("Alpha timed out")

	state := inv.State()
	if state.Phase != PhaseSucceeded || state.Message != "Beta done" {
		t.Errorf("state = %v, stale completion overwrote it", state)
	}
}

func TestInvoker_ResetInvalidatesOutstanding(t *testing.T) {
	inv := New(nil)
	completion := inv.Begin("slow action")

	inv.Reset()
	completion.Succeed("too late")

	if got := inv.State().Phase; got != PhaseIdle {
		t.Errorf("phase = %v, want idle after reset", got)
	}
}

func TestInvoker_ObserverSeesTransitions(t *testing.T) {
	var phases []Phase
	inv := New(func(s OperationState) {
		phases = append(phases, s.Phase)
	})

	inv.Begin("work").Succeed("done")

	want := []Phase{PhaseInFlight, PhaseSucceeded}
	if len(phases) != len(want) {
		t.Fatalf("observed %v, want %v", phases, want)
	}
	for i := range want {
		if phases[i] != want[i] {
			t.Errorf("transition %d = %v, want %v", i, phases[i], want[i])
		}
	}
}

func TestFailureMessage(t *testing.T) {
	tests := []struct {
		name    string
		failure any
		want    string
	}{
		{"nil", nil, "unknown error"},
		{"plain string", "connection reset", "connection reset"},
		{"empty string", "", "unknown error"},
		{"plain error", errors.New("dial tcp: refused"), "dial tcp: refused"},
		{
			"typed api error",
			api.NewNotRunningError("server is not running"),
			api.GetShortErrorMessage(api.NewNotRunningError("server is not running")),
		},
		{
			"wrapped api error",
			fmt.Errorf("restore: %w", api.NewAuthError("token expired")),
			api.GetShortErrorMessage(api.NewAuthError("token expired")),
		},
		{"fielded error body", map[string]any{"error": "invalid level"}, "invalid level"},
		{"fielded message body", map[string]any{"message": "queued"}, "queued"},
		{
			"error field preferred over message",
			map[string]any{"message": "ok", "error": "nope"},
			"nope",
		},
		{"body without usable field", map[string]any{"status": "error"}, "unknown error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FailureMessage(tt.failure); got != tt.want {
				t.Errorf("FailureMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
