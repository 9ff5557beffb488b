package card

import (
	"context"
	"fmt"

	"github.com/bedrockmgr/bsmctl/internal/ingest"
	"github.com/bedrockmgr/bsmctl/internal/observe"
	"github.com/bedrockmgr/bsmctl/internal/staging"
)

// allowlistKeys are tried most-specific first. Older manager versions
// expose the list under a generic "players" attribute.
var allowlistKeys = []string{"allowed_players", "allowlist", "players"}

// AllowlistCard edits a server's player allowlist. Additions and
// removals are staged locally and committed as one batch.
type AllowlistCard struct {
	base
	matchedKey string
	list       *staging.ListStore
	ingestErr  error
}

// NewAllowlistCard builds a card for one source sensor.
func NewAllowlistCard(client ActionClient, registry observe.TargetLookup, sourceID string) *AllowlistCard {
	return &AllowlistCard{base: newBase(client, registry, sourceID)}
}

// Observe ingests a fresh snapshot. When the matched attribute is
// unchanged in serialized form the staged edits are left alone;
// otherwise the baseline is refreshed through the staging store's
// keep-overlay policy.
func (c *AllowlistCard) Observe(snap *observe.Snapshot) {
	unchanged := c.list != nil && c.matchedKey != "" &&
		observe.AttrEqual(c.snapshot, snap, c.matchedKey)
	c.observe(snap)
	if unchanged {
		return
	}

	names, key, err := ingestAllowlist(snap)
	if err != nil {
		c.ingestErr = err
		c.matchedKey = ""
		c.list = nil
		return
	}
	c.ingestErr = nil
	c.matchedKey = key
	if c.list == nil {
		c.list = staging.NewListStore(names)
	} else {
		c.list.Reset(names)
	}
}

// ingestAllowlist accepts either a plain list of names or a list of
// records with a "name" field.
func ingestAllowlist(snap *observe.Snapshot) ([]string, string, error) {
	if result, err := ingest.StringList(snap, allowlistKeys); err == nil {
		return result.Items, result.MatchedKey, nil
	}
	result, err := ingest.RecordList(snap, allowlistKeys, "name")
	if err != nil {
		return nil, "", err
	}
	names := make([]string, 0, len(result.Records))
	for _, record := range result.Records {
		names = append(names, fmt.Sprintf("%v", record["name"]))
	}
	return names, result.MatchedKey, nil
}

// IngestError returns the pending ingestion failure, if any.
func (c *AllowlistCard) IngestError() error {
	return c.ingestErr
}

// Players returns the effective list for rendering.
func (c *AllowlistCard) Players() []string {
	if c.list == nil {
		return nil
	}
	return c.list.Effective()
}

// Add stages a new player. Duplicates are rejected with a descriptive
// error rather than overwritten.
func (c *AllowlistCard) Add(name string) error {
	if c.list == nil {
		return fmt.Errorf("allowlist not loaded: %v", c.ingestErr)
	}
	return c.list.Add(name)
}

// Remove stages removal of an existing player.
func (c *AllowlistCard) Remove(name string) error {
	if c.list == nil {
		return fmt.Errorf("allowlist not loaded: %v", c.ingestErr)
	}
	return c.list.Remove(name)
}

// HasChanges reports whether a commit would do anything.
func (c *AllowlistCard) HasChanges() bool {
	return c.list != nil && c.list.HasChanges()
}

// PrepareCommit snapshots the staged additions and removals and marks
// the operation in flight, both on the caller's goroutine. The
// returned func performs only the network calls; it reads no card
// state and may run elsewhere.
func (c *AllowlistCard) PrepareCommit(ctx context.Context) (func() error, error) {
	if c.list == nil {
		return nil, fmt.Errorf("allowlist not loaded: %v", c.ingestErr)
	}
	if !c.list.HasChanges() {
		return nil, fmt.Errorf("no allowlist changes staged")
	}

	additions := c.list.Additions()
	removals := c.list.Removals()
	server := c.target.TargetID
	client := c.client

	return c.prepare(
		fmt.Sprintf("Updating allowlist for %s", server),
		fmt.Sprintf("Allowlist update sent (%d added, %d removed)", len(additions), len(removals)),
		func() error {
			if len(additions) > 0 {
				if err := client.AddToAllowlist(ctx, server, additions, false); err != nil {
					return err
				}
			}
			for _, name := range removals {
				if err := client.RemoveFromAllowlist(ctx, server, name); err != nil {
					return err
				}
			}
			return nil
		},
	)
}

// Commit sends the staged additions and removals. Additions go out as
// one batch; removals are per-name calls on the manager API.
func (c *AllowlistCard) Commit(ctx context.Context) error {
	do, err := c.PrepareCommit(ctx)
	if err != nil {
		return err
	}
	return do()
}
