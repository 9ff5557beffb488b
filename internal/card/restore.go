package card

import (
	"context"
	"fmt"

	"github.com/bedrockmgr/bsmctl/internal/ingest"
	"github.com/bedrockmgr/bsmctl/internal/observe"
)

var backupKeys = []string{"backups", "backup_files", "files"}

// RestoreCard restores a server from a backup picked out of the
// ingested catalog. Combined catalogs carry the restore type on each
// entry label; flat catalogs rely on the kind inferred from the source
// display name, and an unknown kind blocks the restore until the user
// states the type explicitly.
type RestoreCard struct {
	base
	displayName string
	catalog     *ingest.BackupCatalog
	ingestErr   error
}

// NewRestoreCard builds a card for one source sensor. displayName is
// the source's human-readable name, used for kind inference on flat
// backup lists.
func NewRestoreCard(client ActionClient, registry observe.TargetLookup, sourceID, displayName string) *RestoreCard {
	return &RestoreCard{base: newBase(client, registry, sourceID), displayName: displayName}
}

// Observe refreshes the backup catalog from a snapshot.
func (c *RestoreCard) Observe(snap *observe.Snapshot) {
	unchanged := c.catalog != nil && c.catalog.MatchedKey != "" &&
		observe.AttrEqual(c.snapshot, snap, c.catalog.MatchedKey)
	c.observe(snap)
	if unchanged {
		return
	}

	catalog, err := ingest.Backups(snap, backupKeys, c.displayName)
	if err != nil {
		c.ingestErr = err
		c.catalog = nil
		return
	}
	c.ingestErr = nil
	c.catalog = catalog
}

// IngestError returns the pending ingestion failure, if any.
func (c *RestoreCard) IngestError() error {
	return c.ingestErr
}

// Entries returns the catalog entries for rendering.
func (c *RestoreCard) Entries() []ingest.BackupEntry {
	if c.catalog == nil {
		return nil
	}
	return c.catalog.Entries
}

// Kind returns the catalog's backup kind.
func (c *RestoreCard) Kind() ingest.BackupKind {
	if c.catalog == nil {
		return ingest.KindUnknown
	}
	return c.catalog.Kind
}

// restoreArgs resolves a selected label to the restore call arguments.
func (c *RestoreCard) restoreArgs(label string) (restoreType, backupFile string, err error) {
	if c.catalog == nil {
		return "", "", fmt.Errorf("backups not loaded: %v", c.ingestErr)
	}
	if c.catalog.Kind == ingest.KindAll {
		return ingest.DecomposeEntry(label)
	}
	for _, entry := range c.catalog.Entries {
		if entry.Label != label {
			continue
		}
		if entry.RestoreType == "" {
			return "", "", fmt.Errorf("backup type for %q is unknown; cannot pick a restore variant", label)
		}
		return entry.RestoreType, entry.File, nil
	}
	return "", "", fmt.Errorf("no backup entry %q in catalog", label)
}

// PrepareRestore resolves the selected label and marks the operation
// in flight, both on the caller's goroutine. The returned func
// performs only the network call; it reads no card state and may run
// elsewhere.
func (c *RestoreCard) PrepareRestore(ctx context.Context, label string) (func() error, error) {
	restoreType, backupFile, err := c.restoreArgs(label)
	if err != nil {
		return nil, err
	}

	server := c.target.TargetID
	client := c.client
	return c.prepare(
		fmt.Sprintf("Restoring %s on %s", backupFile, server),
		fmt.Sprintf("Restore of %s started", backupFile),
		func() error {
			return client.RestoreBackup(ctx, server, restoreType, backupFile)
		},
	)
}

// Restore restores the backup behind a selected catalog label.
func (c *RestoreCard) Restore(ctx context.Context, label string) error {
	do, err := c.PrepareRestore(ctx, label)
	if err != nil {
		return err
	}
	return do()
}

// RestoreLatestAll restores the most recent backup of everything.
func (c *RestoreCard) RestoreLatestAll(ctx context.Context) error {
	server := c.target.TargetID
	return c.run(
		fmt.Sprintf("Restoring latest backups on %s", server),
		"Restore of all latest backups started",
		func() error {
			return c.client.RestoreLatestAll(ctx, server)
		},
	)
}
