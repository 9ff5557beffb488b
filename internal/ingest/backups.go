package ingest

import (
	"fmt"
	"strings"

	"github.com/bedrockmgr/bsmctl/internal/observe"
)

// BackupKind classifies what a backup catalog covers, which gates the
// restore action variant that may be invoked against it.
type BackupKind int

const (
	// KindUnknown means the kind could not be determined; restore actions
	// must stay disabled rather than guessing.
	KindUnknown BackupKind = iota
	// KindAll is a combined catalog spanning world and config backups
	KindAll
	// KindWorld covers world backups only
	KindWorld
	// KindConfig covers configuration-file backups only
	KindConfig
)

// String returns the manager's wire name for the kind
func (k BackupKind) String() string {
	switch k {
	case KindAll:
		return "all"
	case KindWorld:
		return "world"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// BackupEntry is one restorable file in a catalog. Label is what the UI
// shows; RestoreType and File are what the restore action needs.
type BackupEntry struct {
	Label       string
	RestoreType string
	File        string
}

// BackupCatalog is the ingested set of restorable backups for a server
type BackupCatalog struct {
	MatchedKey string
	Kind       BackupKind
	Entries    []BackupEntry
}

// Group labels used when combining a grouped backup attribute into one list
const (
	labelWorld       = "World"
	labelProperties  = "Properties"
	labelAllowlist   = "Allowlist"
	labelPermissions = "Permissions"
)

// backupGroups maps a grouped attribute's sub-keys to display label and
// restore type. Everything except the world group restores as "config".
var backupGroups = []struct {
	key         string
	label       string
	restoreType string
}{
	{"world_backups", labelWorld, "world"},
	{"properties_backups", labelProperties, "config"},
	{"allowlist_backups", labelAllowlist, "config"},
	{"permissions_backups", labelPermissions, "config"},
}

// labelRestoreTypes resolves a combined-entry label prefix back to the
// restore type it decomposes to
var labelRestoreTypes = map[string]string{
	labelWorld:       "world",
	labelProperties:  "config",
	labelAllowlist:   "config",
	labelPermissions: "config",
}

// Backups extracts a backup catalog from the snapshot. Candidate keys are
// tried in order; for each, two shapes are accepted:
//
//   - a grouped object ({"world_backups": [...], "properties_backups":
//     [...]}), combined into one labeled list with Kind KindAll;
//   - a flat list of filenames, in which case the kind is inferred from
//     displayName by naming heuristic and defaults to KindUnknown.
//
// displayName is the source's human-readable name (e.g. a sensor's friendly
// name); it is only consulted for the flat-list fallback.
func Backups(snap *observe.Snapshot, candidateKeys []string, displayName string) (*BackupCatalog, error) {
	for _, key := range candidateKeys {
		value, ok := snap.Attr(key)
		if !ok {
			continue
		}

		if grouped, ok := value.(map[string]any); ok {
			catalog, ok := combineGrouped(key, grouped)
			if ok {
				return catalog, nil
			}
			continue
		}

		if files, ok := asStringSlice(value); ok {
			kind := inferKindFromName(displayName)
			entries := make([]BackupEntry, 0, len(files))
			for _, file := range files {
				entries = append(entries, BackupEntry{
					Label:       file,
					RestoreType: kind.restoreTypeOrEmpty(),
					File:        file,
				})
			}
			return &BackupCatalog{MatchedKey: key, Kind: kind, Entries: entries}, nil
		}
	}
	return nil, &IngestionError{SourceID: sourceID(snap), CheckedKeys: candidateKeys}
}

// combineGrouped flattens a grouped backup object into labeled entries.
// Unrecognized sub-keys are ignored; the shape matches when at least one
// known group is present and list-shaped.
func combineGrouped(matchedKey string, grouped map[string]any) (*BackupCatalog, bool) {
	var entries []BackupEntry
	matchedAny := false
	for _, group := range backupGroups {
		raw, present := grouped[group.key]
		if !present {
			continue
		}
		files, ok := asStringSlice(raw)
		if !ok {
			continue
		}
		matchedAny = true
		for _, file := range files {
			entries = append(entries, BackupEntry{
				Label:       fmt.Sprintf("%s: %s", group.label, file),
				RestoreType: group.restoreType,
				File:        file,
			})
		}
	}
	if !matchedAny {
		return nil, false
	}
	return &BackupCatalog{MatchedKey: matchedKey, Kind: KindAll, Entries: entries}, true
}

// restoreTypeOrEmpty maps a kind to a restore type, or "" for unknown so
// callers cannot accidentally send a guessed restore
func (k BackupKind) restoreTypeOrEmpty() string {
	switch k {
	case KindWorld:
		return "world"
	case KindConfig:
		return "config"
	default:
		return ""
	}
}

// inferKindFromName guesses the backup kind from a source display name.
// Anything ambiguous stays KindUnknown; the restore card then requires the
// user to pick the type explicitly.
func inferKindFromName(displayName string) BackupKind {
	lower := strings.ToLower(displayName)
	switch {
	case strings.Contains(lower, "world"):
		return KindWorld
	case strings.Contains(lower, "config"), strings.Contains(lower, "properties"):
		return KindConfig
	default:
		return KindUnknown
	}
}

// DecomposeEntry turns a combined catalog label back into the restore
// action arguments. Labels produced by a grouped catalog look like
// "World: a.mcworld"; plain labels from a flat catalog carry their restore
// type on the entry itself, so this is only for combined lists.
func DecomposeEntry(label string) (restoreType, backupFile string, err error) {
	prefix, file, found := strings.Cut(label, ": ")
	if !found {
		return "", "", fmt.Errorf("backup entry %q has no group prefix", label)
	}
	rt, ok := labelRestoreTypes[prefix]
	if !ok {
		return "", "", fmt.Errorf("backup entry %q has unknown group %q", label, prefix)
	}
	return rt, file, nil
}
