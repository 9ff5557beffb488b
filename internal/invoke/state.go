package invoke

import "fmt"

// Phase is the lifecycle position of an operation.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseInFlight
	PhaseSucceeded
	PhaseFailed
)

// String returns a lowercase name for logging and test output
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseInFlight:
		return "in_flight"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// OperationState is an immutable snapshot of an operation's lifecycle.
// Message carries the in-flight description or the completion text;
// it is empty when idle.
type OperationState struct {
	Phase   Phase
	Message string
}

// Idle is the state before any action has been triggered.
func Idle() OperationState {
	return OperationState{Phase: PhaseIdle}
}

// InFlight describes an action currently awaiting a response.
func InFlight(description string) OperationState {
	return OperationState{Phase: PhaseInFlight, Message: description}
}

// Succeeded carries a human-readable confirmation.
func Succeeded(message string) OperationState {
	return OperationState{Phase: PhaseSucceeded, Message: message}
}

// Failed carries the normalized failure message.
func Failed(message string) OperationState {
	return OperationState{Phase: PhaseFailed, Message: message}
}

// Busy reports whether controls bound to this operation should be
// disabled.
func (s OperationState) Busy() bool {
	return s.Phase == PhaseInFlight
}

func (s OperationState) String() string {
	if s.Message == "" {
		return s.Phase.String()
	}
	return fmt.Sprintf("%s(%s)", s.Phase, s.Message)
}
