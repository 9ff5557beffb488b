package ingest

import (
	"strings"
	"testing"

	"github.com/bedrockmgr/bsmctl/internal/observe"
)

func snapshotWith(attrs map[string]any) *observe.Snapshot {
	return observe.NewSnapshot("sensor.alpha_status", attrs)
}

func TestStringList_FirstMatchWins(t *testing.T) {
	snap := snapshotWith(map[string]any{
		"allowed_players": []any{"Steve", "Alex"},
		"players":         []any{"ShouldNotWin"},
	})

	result, err := StringList(snap, []string{"allowed_players", "players"})
	if err != nil {
		t.Fatalf("StringList() error = %v", err)
	}
	if result.MatchedKey != "allowed_players" {
		t.Errorf("MatchedKey = %s, want allowed_players", result.MatchedKey)
	}
	if len(result.Items) != 2 || result.Items[0] != "Steve" {
		t.Errorf("Items = %v", result.Items)
	}
}

func TestStringList_SkipsInvalidShape(t *testing.T) {
	// First candidate exists but holds the wrong shape; second wins
	snap := snapshotWith(map[string]any{
		"allowed_players": "not-a-list",
		"players":         []any{"Steve"},
	})

	result, err := StringList(snap, []string{"allowed_players", "players"})
	if err != nil {
		t.Fatalf("StringList() error = %v", err)
	}
	if result.MatchedKey != "players" {
		t.Errorf("MatchedKey = %s, want players", result.MatchedKey)
	}
}

func TestStringList_NonMatchingOrderIrrelevant(t *testing.T) {
	// Swapping two non-matching keys never changes the result
	snap := snapshotWith(map[string]any{
		"players": []any{"Steve"},
	})

	a, errA := StringList(snap, []string{"missing1", "missing2", "players"})
	b, errB := StringList(snap, []string{"missing2", "missing1", "players"})

	if errA != nil || errB != nil {
		t.Fatalf("errors: %v, %v", errA, errB)
	}
	if a.MatchedKey != b.MatchedKey || len(a.Items) != len(b.Items) {
		t.Errorf("results differ: %+v vs %+v", a, b)
	}
}

func TestStringList_NoMatchNamesCheckedKeys(t *testing.T) {
	snap := snapshotWith(map[string]any{"other": 1})

	_, err := StringList(snap, []string{"allowed_players", "players"})
	if err == nil {
		t.Fatal("expected ingestion error")
	}
	ingErr, ok := err.(*IngestionError)
	if !ok {
		t.Fatalf("expected *IngestionError, got %T", err)
	}
	if len(ingErr.CheckedKeys) != 2 {
		t.Errorf("CheckedKeys = %v", ingErr.CheckedKeys)
	}
	if !strings.Contains(err.Error(), "allowed_players") || !strings.Contains(err.Error(), "players") {
		t.Errorf("error should name checked keys: %v", err)
	}
}

func TestStringList_NilSnapshot(t *testing.T) {
	// A vanished source (nil snapshot) lands in the error state, no panic
	_, err := StringList(nil, []string{"allowed_players"})
	if err == nil {
		t.Fatal("expected ingestion error for nil snapshot")
	}
}

func TestRecordList_FiltersMalformedEntries(t *testing.T) {
	snap := snapshotWith(map[string]any{
		"permissions": []any{
			map[string]any{"xuid": "253546", "permission_level": "operator"},
			map[string]any{"permission_level": "member"}, // missing xuid
			map[string]any{"xuid": "", "permission_level": "visitor"}, // empty xuid
			map[string]any{"xuid": "998877", "permission_level": "member"},
		},
	})

	result, err := RecordList(snap, []string{"permissions"}, "xuid")
	if err != nil {
		t.Fatalf("RecordList() error = %v", err)
	}
	if len(result.Records) != 2 {
		t.Errorf("got %d records, want 2 (malformed filtered)", len(result.Records))
	}
	if result.Dropped != 2 {
		t.Errorf("Dropped = %d, want 2", result.Dropped)
	}
}

func TestRecordList_WrongElementShapeTriesNextKey(t *testing.T) {
	snap := snapshotWith(map[string]any{
		"permissions": []any{"not-a-record"},
		"perm_list": []any{
			map[string]any{"xuid": "253546", "permission_level": "member"},
		},
	})

	result, err := RecordList(snap, []string{"permissions", "perm_list"}, "xuid")
	if err != nil {
		t.Fatalf("RecordList() error = %v", err)
	}
	if result.MatchedKey != "perm_list" {
		t.Errorf("MatchedKey = %s, want perm_list", result.MatchedKey)
	}
}

func TestStringMap_CoercesPrimitives(t *testing.T) {
	snap := snapshotWith(map[string]any{
		"server_properties": map[string]any{
			"max-players":  float64(10),
			"difficulty":   "normal",
			"allow-cheats": false,
		},
	})

	result, err := StringMap(snap, []string{"server_properties"})
	if err != nil {
		t.Fatalf("StringMap() error = %v", err)
	}
	if result.Values["max-players"] != "10" {
		t.Errorf("max-players = %q, want 10 (no trailing zeros)", result.Values["max-players"])
	}
	if result.Values["allow-cheats"] != "false" {
		t.Errorf("allow-cheats = %q, want false", result.Values["allow-cheats"])
	}
	if result.Values["difficulty"] != "normal" {
		t.Errorf("difficulty = %q", result.Values["difficulty"])
	}
}

func TestStringMap_RejectsNestedValues(t *testing.T) {
	snap := snapshotWith(map[string]any{
		"server_properties": map[string]any{
			"nested": map[string]any{"x": 1},
		},
	})

	_, err := StringMap(snap, []string{"server_properties"})
	if err == nil {
		t.Fatal("expected ingestion error for non-primitive values")
	}
}

func TestBackups_GroupedCatalog(t *testing.T) {
	snap := snapshotWith(map[string]any{
		"backups": map[string]any{
			"world_backups":      []any{"a.mcworld"},
			"properties_backups": []any{"b.properties"},
		},
	})

	catalog, err := Backups(snap, []string{"backups", "files"}, "Alpha Status")
	if err != nil {
		t.Fatalf("Backups() error = %v", err)
	}
	if catalog.Kind != KindAll {
		t.Errorf("Kind = %v, want all", catalog.Kind)
	}
	if len(catalog.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(catalog.Entries))
	}
	if catalog.Entries[0].Label != "World: a.mcworld" {
		t.Errorf("entry 0 label = %q", catalog.Entries[0].Label)
	}
	if catalog.Entries[1].Label != "Properties: b.properties" {
		t.Errorf("entry 1 label = %q", catalog.Entries[1].Label)
	}
}

func TestBackups_DecomposeRoundTrip(t *testing.T) {
	tests := []struct {
		label       string
		wantType    string
		wantFile    string
		wantErrPart string
	}{
		{"World: a.mcworld", "world", "a.mcworld", ""},
		{"Properties: b.properties", "config", "b.properties", ""},
		{"Allowlist: allowlist.json", "config", "allowlist.json", ""},
		{"bare-file.mcworld", "", "", "no group prefix"},
		{"Mystery: x.bin", "", "", "unknown group"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			restoreType, file, err := DecomposeEntry(tt.label)
			if tt.wantErrPart != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErrPart) {
					t.Errorf("err = %v, want containing %q", err, tt.wantErrPart)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecomposeEntry(%q) error = %v", tt.label, err)
			}
			if restoreType != tt.wantType || file != tt.wantFile {
				t.Errorf("got (%q, %q), want (%q, %q)", restoreType, file, tt.wantType, tt.wantFile)
			}
		})
	}
}

func TestBackups_FlatListInfersKindFromName(t *testing.T) {
	tests := []struct {
		displayName string
		wantKind    BackupKind
	}{
		{"Alpha World Backups", KindWorld},
		{"Alpha Config Backups", KindConfig},
		{"Alpha Properties Files", KindConfig},
		{"Alpha Backups", KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.displayName, func(t *testing.T) {
			snap := snapshotWith(map[string]any{
				"files": []any{"x.bin"},
			})
			catalog, err := Backups(snap, []string{"backups", "files"}, tt.displayName)
			if err != nil {
				t.Fatalf("Backups() error = %v", err)
			}
			if catalog.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", catalog.Kind, tt.wantKind)
			}
		})
	}
}

func TestBackups_UnknownKindHasNoRestoreType(t *testing.T) {
	snap := snapshotWith(map[string]any{
		"files": []any{"x.bin"},
	})
	catalog, err := Backups(snap, []string{"files"}, "Ambiguous Sensor")
	if err != nil {
		t.Fatalf("Backups() error = %v", err)
	}
	if catalog.Kind != KindUnknown {
		t.Fatalf("Kind = %v, want unknown", catalog.Kind)
	}
	for _, entry := range catalog.Entries {
		if entry.RestoreType != "" {
			t.Errorf("entry %q has restore type %q, must be empty for unknown kind", entry.Label, entry.RestoreType)
		}
	}
}

func TestBackups_NoCandidateMatches(t *testing.T) {
	snap := snapshotWith(map[string]any{"other": true})

	_, err := Backups(snap, []string{"backups", "files"}, "Alpha")
	if err == nil {
		t.Fatal("expected ingestion error")
	}
}
