package card

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bedrockmgr/bsmctl/internal/ingest"
	"github.com/bedrockmgr/bsmctl/internal/observe"
	"github.com/bedrockmgr/bsmctl/internal/staging"
)

var propertiesKeys = []string{"server_properties", "properties"}

// FieldType selects the input control a property field renders as.
type FieldType int

const (
	FieldText FieldType = iota
	FieldSelect
	FieldBool
	FieldNumber
)

// FieldSpec describes one editable server property: its control type
// and the bounds or options the manager will accept.
type FieldSpec struct {
	Key     string
	Label   string
	Type    FieldType
	Min     int
	Max     int
	Options []string
}

// propertyFields mirrors the fields the manager exposes for editing.
// Numeric bounds match what the Bedrock server itself accepts.
var propertyFields = []FieldSpec{
	{Key: "level-name", Label: "World Name", Type: FieldText},
	{Key: "server-name", Label: "Server Name", Type: FieldText},
	{Key: "gamemode", Label: "Game Mode", Type: FieldSelect, Options: []string{"survival", "creative", "adventure"}},
	{Key: "difficulty", Label: "Difficulty", Type: FieldSelect, Options: []string{"peaceful", "easy", "normal", "hard"}},
	{Key: "default-player-permission-level", Label: "Default Permission", Type: FieldSelect, Options: []string{"visitor", "member", "operator"}},
	{Key: "allow-cheats", Label: "Allow Cheats", Type: FieldBool},
	{Key: "allow-list", Label: "Enforce Allowlist", Type: FieldBool},
	{Key: "online-mode", Label: "Online Mode", Type: FieldBool},
	{Key: "pvp", Label: "PvP", Type: FieldBool},
	{Key: "max-players", Label: "Max Players", Type: FieldNumber, Min: 1, Max: 200},
	{Key: "view-distance", Label: "View Distance", Type: FieldNumber, Min: 3, Max: 32},
	{Key: "tick-distance", Label: "Tick Distance", Type: FieldNumber, Min: 4, Max: 12},
	{Key: "max-threads", Label: "Max Threads", Type: FieldNumber, Min: 0, Max: 64},
	{Key: "player-idle-timeout", Label: "Idle Timeout (min)", Type: FieldNumber, Min: 0, Max: 1440},
	{Key: "server-port", Label: "IPv4 Port", Type: FieldNumber, Min: 1, Max: 65535},
	{Key: "server-portv6", Label: "IPv6 Port", Type: FieldNumber, Min: 1, Max: 65535},
}

// PropertyFields returns the editable field specs in display order.
func PropertyFields() []FieldSpec {
	return propertyFields
}

// FieldSpecFor returns the edit rules for a single property key.
func FieldSpecFor(key string) (FieldSpec, bool) {
	return fieldSpec(key)
}

func fieldSpec(key string) (FieldSpec, bool) {
	for _, spec := range propertyFields {
		if spec.Key == key {
			return spec, true
		}
	}
	return FieldSpec{}, false
}

// ValidateProperty checks a normalized value against the field's spec.
// Unknown keys pass; the manager accepts arbitrary properties and we
// only enforce bounds for the fields we know.
func ValidateProperty(key, value string) error {
	spec, known := fieldSpec(key)
	if !known {
		return nil
	}
	switch spec.Type {
	case FieldBool:
		if value != "true" && value != "false" {
			return fmt.Errorf("%s must be true or false, got %q", spec.Label, value)
		}
	case FieldNumber:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s must be a number, got %q", spec.Label, value)
		}
		if n < spec.Min || n > spec.Max {
			return fmt.Errorf("%s must be between %d and %d, got %d", spec.Label, spec.Min, spec.Max, n)
		}
	case FieldSelect:
		for _, option := range spec.Options {
			if value == option {
				return nil
			}
		}
		return fmt.Errorf("%s must be one of %v, got %q", spec.Label, spec.Options, value)
	}
	return nil
}

// PropertiesCard edits server.properties values. Edits are validated
// locally against the field specs before staging; the commit sends
// only the keys that actually changed.
type PropertiesCard struct {
	base
	matchedKey string
	store      *staging.Store
	ingestErr  error
}

// NewPropertiesCard builds a card for one source sensor.
func NewPropertiesCard(client ActionClient, registry observe.TargetLookup, sourceID string) *PropertiesCard {
	return &PropertiesCard{base: newBase(client, registry, sourceID)}
}

// Observe refreshes the baseline from a snapshot, skipping re-ingest
// when the matched attribute is unchanged in serialized form.
func (c *PropertiesCard) Observe(snap *observe.Snapshot) {
	unchanged := c.store != nil && c.matchedKey != "" &&
		observe.AttrEqual(c.snapshot, snap, c.matchedKey)
	c.observe(snap)
	if unchanged {
		return
	}

	result, err := ingest.StringMap(snap, propertiesKeys)
	if err != nil {
		c.ingestErr = err
		c.matchedKey = ""
		c.store = nil
		return
	}
	c.ingestErr = nil
	c.matchedKey = result.MatchedKey
	if c.store == nil {
		c.store = staging.NewStore(result.Values)
	} else {
		c.store.Reset(result.Values)
	}
}

// IngestError returns the pending ingestion failure, if any.
func (c *PropertiesCard) IngestError() error {
	return c.ingestErr
}

// Value returns the effective value for a property key.
func (c *PropertiesCard) Value(key string) (string, bool) {
	if c.store == nil {
		return "", false
	}
	return c.store.Effective(key)
}

// Keys returns every known property key, sorted.
func (c *PropertiesCard) Keys() []string {
	if c.store == nil {
		return nil
	}
	return c.store.Keys()
}

// Stage validates and stages one edit. Values of any primitive type
// are accepted; comparison against the baseline happens in normalized
// string form.
func (c *PropertiesCard) Stage(key string, value any) error {
	if c.store == nil {
		return fmt.Errorf("properties not loaded: %v", c.ingestErr)
	}
	normalized := staging.Normalize(value)
	if err := ValidateProperty(key, normalized); err != nil {
		return err
	}
	c.store.Stage(key, normalized)
	return nil
}

// Discard drops one staged edit.
func (c *PropertiesCard) Discard(key string) {
	if c.store != nil {
		c.store.Discard(key)
	}
}

// HasChanges reports whether a commit would send anything.
func (c *PropertiesCard) HasChanges() bool {
	return c.store != nil && c.store.HasChanges()
}

// ChangeSet exposes the pending diff for rendering.
func (c *PropertiesCard) ChangeSet() map[string]string {
	if c.store == nil {
		return nil
	}
	return c.store.ChangeSet()
}

// PrepareCommit snapshots the pending diff and marks the operation in
// flight, both on the caller's goroutine. The returned func performs
// only the network call; it reads no card state and may run elsewhere.
func (c *PropertiesCard) PrepareCommit(ctx context.Context) (func() error, error) {
	if c.store == nil {
		return nil, fmt.Errorf("properties not loaded: %v", c.ingestErr)
	}
	changes := c.store.ChangeSet()
	if len(changes) == 0 {
		return nil, fmt.Errorf("no property changes staged")
	}

	server := c.target.TargetID
	client := c.client
	return c.prepare(
		fmt.Sprintf("Updating %d properties on %s", len(changes), server),
		fmt.Sprintf("Sent %d property changes; restart the server to apply", len(changes)),
		func() error {
			return client.UpdateProperties(ctx, server, changes)
		},
	)
}

// Commit sends the changed properties, never the full baseline.
func (c *PropertiesCard) Commit(ctx context.Context) error {
	do, err := c.PrepareCommit(ctx)
	if err != nil {
		return err
	}
	return do()
}
