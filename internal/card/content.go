package card

import (
	"context"
	"fmt"
	"strings"

	"github.com/bedrockmgr/bsmctl/internal/ingest"
	"github.com/bedrockmgr/bsmctl/internal/observe"
)

var (
	worldContentKeys = []string{"available_worlds", "worlds"}
	addonContentKeys = []string{"available_addons", "addons"}
)

// ContentCard installs downloadable content onto a server: .mcworld
// files replace the world, .mcaddon and .mcpack files add packs.
type ContentCard struct {
	base
	worlds    []string
	addons    []string
	worldsErr error
	addonsErr error
}

// NewContentCard builds a card for one source sensor.
func NewContentCard(client ActionClient, registry observe.TargetLookup, sourceID string) *ContentCard {
	return &ContentCard{base: newBase(client, registry, sourceID)}
}

// Observe refreshes both content catalogs. The two lists fail
// independently; a manager without addons still offers worlds.
func (c *ContentCard) Observe(snap *observe.Snapshot) {
	c.observe(snap)

	if result, err := ingest.StringList(snap, worldContentKeys); err != nil {
		c.worlds, c.worldsErr = nil, err
	} else {
		c.worlds, c.worldsErr = result.Items, nil
	}
	if result, err := ingest.StringList(snap, addonContentKeys); err != nil {
		c.addons, c.addonsErr = nil, err
	} else {
		c.addons, c.addonsErr = result.Items, nil
	}
}

// Worlds returns the installable world files.
func (c *ContentCard) Worlds() []string {
	return c.worlds
}

// Addons returns the installable addon files.
func (c *ContentCard) Addons() []string {
	return c.addons
}

// IngestError reports when neither catalog loaded.
func (c *ContentCard) IngestError() error {
	if c.worldsErr != nil && c.addonsErr != nil {
		return c.worldsErr
	}
	return nil
}

func contains(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}

// InstallWorld installs a world file from the catalog. Installing a
// world overwrites the server's current world.
func (c *ContentCard) InstallWorld(ctx context.Context, filename string) error {
	if !contains(c.worlds, filename) {
		return fmt.Errorf("world file %q is not in the available list", filename)
	}
	if !strings.HasSuffix(filename, ".mcworld") {
		return fmt.Errorf("world file %q must be a .mcworld archive", filename)
	}

	server := c.target.TargetID
	return c.run(
		fmt.Sprintf("Installing world %s on %s", filename, server),
		fmt.Sprintf("World install of %s started", filename),
		func() error {
			return c.client.InstallWorld(ctx, server, filename)
		},
	)
}

// InstallAddon installs an addon file from the catalog.
func (c *ContentCard) InstallAddon(ctx context.Context, filename string) error {
	if !contains(c.addons, filename) {
		return fmt.Errorf("addon file %q is not in the available list", filename)
	}
	if !strings.HasSuffix(filename, ".mcaddon") && !strings.HasSuffix(filename, ".mcpack") {
		return fmt.Errorf("addon file %q must be a .mcaddon or .mcpack archive", filename)
	}

	server := c.target.TargetID
	return c.run(
		fmt.Sprintf("Installing addon %s on %s", filename, server),
		fmt.Sprintf("Addon install of %s started", filename),
		func() error {
			return c.client.InstallAddon(ctx, server, filename)
		},
	)
}
