package card

import (
	"context"
	"fmt"

	"github.com/bedrockmgr/bsmctl/internal/invoke"
	"github.com/bedrockmgr/bsmctl/internal/observe"
)

// ActionClient is the slice of the manager API that cards invoke.
// *api.Client satisfies it; tests substitute a recording fake.
type ActionClient interface {
	SendCommand(ctx context.Context, serverName, command string) error
	AddToAllowlist(ctx context.Context, serverName string, players []string, ignoresPlayerLimit bool) error
	RemoveFromAllowlist(ctx context.Context, serverName, playerName string) error
	UpdateProperties(ctx context.Context, serverName string, properties map[string]string) error
	SetPermissions(ctx context.Context, serverName string, permissions map[string]string) error
	RestoreBackup(ctx context.Context, serverName, restoreType, backupFile string) error
	RestoreLatestAll(ctx context.Context, serverName string) error
	InstallWorld(ctx context.Context, serverName, filename string) error
	InstallAddon(ctx context.Context, serverName, filename string) error
}

// base carries the pieces every card shares. The registry is an
// injected read-only lookup, never ambient state.
type base struct {
	client   ActionClient
	registry observe.TargetLookup
	sourceID string
	snapshot *observe.Snapshot
	target   observe.ResolvedTarget
	invoker  *invoke.Invoker
}

func newBase(client ActionClient, registry observe.TargetLookup, sourceID string) base {
	return base{
		client:   client,
		registry: registry,
		sourceID: sourceID,
		invoker:  invoke.New(nil),
	}
}

// observe stores the snapshot and re-resolves the routing target.
// A nil snapshot (source vanished) resolves to unresolved.
func (b *base) observe(snap *observe.Snapshot) {
	b.snapshot = snap
	b.target = observe.Resolve(snap, b.registry)
}

// Target returns the current routing target.
func (b *base) Target() observe.ResolvedTarget {
	return b.target
}

// State returns the card's operation state for rendering.
func (b *base) State() invoke.OperationState {
	return b.invoker.State()
}

// ResetState returns the operation state to idle, invalidating any
// in-flight completion. Called when the user switches selection.
func (b *base) ResetState() {
	b.invoker.Reset()
}

// guard rejects an invocation when no target resolved or another
// action is still in flight.
func (b *base) guard() error {
	if !b.target.Resolved() {
		return fmt.Errorf("no server resolved for %s; action disabled", b.sourceID)
	}
	if b.invoker.Busy() {
		return fmt.Errorf("another action is still in progress")
	}
	return nil
}

// prepare runs the guard and opens the invoker lifecycle on the
// caller's goroutine. The returned func carries only the prebuilt
// action and its completion handle; it reads no card state, so the
// caller may run it on another goroutine while Observe keeps feeding
// the card.
func (b *base) prepare(description, confirmation string, action func() error) (func() error, error) {
	if err := b.guard(); err != nil {
		return nil, err
	}
	completion := b.invoker.Begin(description)
	return func() error {
		if err := action(); err != nil {
			completion.Fail(err)
			return err
		}
		completion.Succeed(confirmation)
		return nil
	}, nil
}

// run executes one remote action through the invoker lifecycle.
func (b *base) run(description, confirmation string, action func() error) error {
	do, err := b.prepare(description, confirmation, action)
	if err != nil {
		return err
	}
	return do()
}
