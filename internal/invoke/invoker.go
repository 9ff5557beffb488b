package invoke

import (
	"sync"

	"go.uber.org/zap"

	"github.com/bedrockmgr/bsmctl/internal/logging"
)

// Invoker serializes state transitions for one card's remote actions.
// Completions are bound to the invocation that produced them by a
// generation counter, so a slow response from an earlier invocation
// can never overwrite the state of a later one.
type Invoker struct {
	mu         sync.Mutex
	state      OperationState
	generation uint64
	onChange   func(OperationState)
}

// New returns an idle invoker. onChange, when non-nil, is called with
// every new state while holding no internal locks relevant to the
// caller; it must not call back into the invoker.
func New(onChange func(OperationState)) *Invoker {
	return &Invoker{state: Idle(), onChange: onChange}
}

// State returns the current state.
func (inv *Invoker) State() OperationState {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.state
}

// Busy reports whether an invocation is in flight.
func (inv *Invoker) Busy() bool {
	return inv.State().Busy()
}

// Begin transitions to InFlight and returns the completion handle for
// this invocation. Entering InFlight clears any prior Succeeded or
// Failed state.
func (inv *Invoker) Begin(description string) *Completion {
	inv.mu.Lock()
	inv.generation++
	gen := inv.generation
	inv.setLocked(InFlight(description))
	inv.mu.Unlock()
	return &Completion{inv: inv, generation: gen}
}

// Reset returns the invoker to Idle and invalidates any outstanding
// completion handles. Used when the card switches selection.
func (inv *Invoker) Reset() {
	inv.mu.Lock()
	inv.generation++
	inv.setLocked(Idle())
	inv.mu.Unlock()
}

func (inv *Invoker) setLocked(state OperationState) {
	inv.state = state
	if inv.onChange != nil {
		inv.onChange(state)
	}
}

func (inv *Invoker) complete(generation uint64, state OperationState) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if generation != inv.generation {
		logging.Debug("Ignoring stale operation completion",
			zap.Uint64("completion_generation", generation),
			zap.Uint64("current_generation", inv.generation),
			zap.String("state", state.String()),
		)
		return
	}
	inv.setLocked(state)
}

// Completion finishes the invocation that created it. If a newer
// invocation or a Reset happened in the meantime, both Succeed and
// Fail are silently dropped.
type Completion struct {
	inv        *Invoker
	generation uint64
}

// Succeed transitions to Succeeded with a caller-supplied confirmation.
func (c *Completion) Succeed(message string) {
	c.inv.complete(c.generation, Succeeded(message))
}

// Fail transitions to Failed, normalizing whatever failure shape the
// transport produced into a single message.
func (c *Completion) Fail(failure any) {
	c.inv.complete(c.generation, Failed(FailureMessage(failure)))
}
