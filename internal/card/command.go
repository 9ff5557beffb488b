package card

import (
	"context"
	"fmt"
	"strings"

	"github.com/bedrockmgr/bsmctl/internal/observe"
)

// CommandCard sends ad-hoc console commands to a server. It has no
// staged state; each send is an independent action.
type CommandCard struct {
	base
}

// NewCommandCard builds a card for one source sensor.
func NewCommandCard(client ActionClient, registry observe.TargetLookup, sourceID string) *CommandCard {
	return &CommandCard{base: newBase(client, registry, sourceID)}
}

// Observe updates the routing target from a snapshot.
func (c *CommandCard) Observe(snap *observe.Snapshot) {
	c.observe(snap)
}

// PrepareSend validates the command and marks the operation in
// flight, both on the caller's goroutine. The returned func performs
// only the network call; it reads no card state and may run
// elsewhere.
func (c *CommandCard) PrepareSend(ctx context.Context, command string) (func() error, error) {
	command = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(command), "/"))
	if command == "" {
		return nil, fmt.Errorf("command cannot be empty")
	}

	server := c.target.TargetID
	client := c.client
	return c.prepare(
		fmt.Sprintf("Sending command to %s", server),
		fmt.Sprintf("Command sent: %s", command),
		func() error {
			return client.SendCommand(ctx, server, command)
		},
	)
}

// Send submits one console command. Leading slashes are stripped; the
// console does not expect them.
func (c *CommandCard) Send(ctx context.Context, command string) error {
	do, err := c.PrepareSend(ctx, command)
	if err != nil {
		return err
	}
	return do()
}
