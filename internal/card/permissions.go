package card

import (
	"context"
	"fmt"

	"github.com/bedrockmgr/bsmctl/internal/ingest"
	"github.com/bedrockmgr/bsmctl/internal/observe"
	"github.com/bedrockmgr/bsmctl/internal/staging"
)

var permissionsKeys = []string{"permissions", "player_permissions"}

// PermissionLevels are the only values the manager accepts.
var PermissionLevels = []string{"visitor", "member", "operator"}

func validLevel(level string) bool {
	for _, l := range PermissionLevels {
		if level == l {
			return true
		}
	}
	return false
}

// PermissionsCard edits per-player permission levels, keyed by XUID.
type PermissionsCard struct {
	base
	matchedKey string
	store      *staging.Store
	names      map[string]string
	ingestErr  error
}

// NewPermissionsCard builds a card for one source sensor.
func NewPermissionsCard(client ActionClient, registry observe.TargetLookup, sourceID string) *PermissionsCard {
	return &PermissionsCard{base: newBase(client, registry, sourceID)}
}

// Observe ingests the permission records. Records missing an XUID were
// already filtered by the ingestor; gamertags ride along for display.
func (c *PermissionsCard) Observe(snap *observe.Snapshot) {
	unchanged := c.store != nil && c.matchedKey != "" &&
		observe.AttrEqual(c.snapshot, snap, c.matchedKey)
	c.observe(snap)
	if unchanged {
		return
	}

	result, err := ingest.RecordList(snap, permissionsKeys, "xuid")
	if err != nil {
		c.ingestErr = err
		c.matchedKey = ""
		c.store = nil
		c.names = nil
		return
	}

	baseline := make(map[string]string, len(result.Records))
	names := make(map[string]string, len(result.Records))
	for _, record := range result.Records {
		xuid := fmt.Sprintf("%v", record["xuid"])
		baseline[xuid] = staging.Normalize(record["permission_level"])
		if name, ok := record["name"].(string); ok {
			names[xuid] = name
		}
	}

	c.ingestErr = nil
	c.matchedKey = result.MatchedKey
	c.names = names
	if c.store == nil {
		c.store = staging.NewStore(baseline)
	} else {
		c.store.Reset(baseline)
	}
}

// IngestError returns the pending ingestion failure, if any.
func (c *PermissionsCard) IngestError() error {
	return c.ingestErr
}

// XUIDs returns the known player XUIDs, sorted.
func (c *PermissionsCard) XUIDs() []string {
	if c.store == nil {
		return nil
	}
	return c.store.Keys()
}

// Name returns the gamertag for an XUID when the manager supplied one.
func (c *PermissionsCard) Name(xuid string) string {
	return c.names[xuid]
}

// Level returns the effective permission level for an XUID.
func (c *PermissionsCard) Level(xuid string) (string, bool) {
	if c.store == nil {
		return "", false
	}
	return c.store.Effective(xuid)
}

// SetLevel stages a level change for a known player.
func (c *PermissionsCard) SetLevel(xuid, level string) error {
	if c.store == nil {
		return fmt.Errorf("permissions not loaded: %v", c.ingestErr)
	}
	if !validLevel(level) {
		return fmt.Errorf("permission level must be one of %v, got %q", PermissionLevels, level)
	}
	if _, known := c.store.Baseline(xuid); !known {
		return fmt.Errorf("no player with XUID %s; use AddPlayer for new entries", xuid)
	}
	c.store.Stage(xuid, level)
	return nil
}

// AddPlayer stages a permission entry for a player not yet listed.
// Colliding with an existing XUID is rejected.
func (c *PermissionsCard) AddPlayer(xuid, level string) error {
	if c.store == nil {
		return fmt.Errorf("permissions not loaded: %v", c.ingestErr)
	}
	if xuid == "" {
		return fmt.Errorf("XUID cannot be empty")
	}
	if !validLevel(level) {
		return fmt.Errorf("permission level must be one of %v, got %q", PermissionLevels, level)
	}
	return c.store.StageNew(xuid, level)
}

// HasChanges reports whether a commit would send anything.
func (c *PermissionsCard) HasChanges() bool {
	return c.store != nil && c.store.HasChanges()
}

// PrepareCommit snapshots the pending level changes and marks the
// operation in flight, both on the caller's goroutine. The returned
// func performs only the network call; it reads no card state and may
// run elsewhere.
func (c *PermissionsCard) PrepareCommit(ctx context.Context) (func() error, error) {
	if c.store == nil {
		return nil, fmt.Errorf("permissions not loaded: %v", c.ingestErr)
	}
	changes := c.store.ChangeSet()
	if len(changes) == 0 {
		return nil, fmt.Errorf("no permission changes staged")
	}

	server := c.target.TargetID
	client := c.client
	return c.prepare(
		fmt.Sprintf("Updating permissions on %s", server),
		fmt.Sprintf("Sent %d permission changes", len(changes)),
		func() error {
			return client.SetPermissions(ctx, server, changes)
		},
	)
}

// Commit sends the changed levels as one batch.
func (c *PermissionsCard) Commit(ctx context.Context) error {
	do, err := c.PrepareCommit(ctx)
	if err != nil {
		return err
	}
	return do()
}
