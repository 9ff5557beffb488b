package observe

import (
	"testing"
)

func TestResolve_RegistryWins(t *testing.T) {
	registry := NewMapRegistry()
	registry.Set("sensor.alpha_status", "alpha")

	snap := NewSnapshot("sensor.alpha_status", map[string]any{
		AttributeTargetKey: "attribute-target",
	})

	target := Resolve(snap, registry)

	if !target.Resolved() {
		t.Fatal("target should be resolved")
	}
	if target.TargetID != "alpha" {
		t.Errorf("TargetID = %q, want alpha (registry must win over attribute)", target.TargetID)
	}
	if target.Method != ResolutionFromRegistry {
		t.Errorf("Method = %v, want registry", target.Method)
	}
}

func TestResolve_AttributeFallback(t *testing.T) {
	snap := NewSnapshot("sensor.alpha_status", map[string]any{
		AttributeTargetKey: "alpha",
	})

	target := Resolve(snap, NewMapRegistry())

	if target.TargetID != "alpha" || target.Method != ResolutionFromAttribute {
		t.Errorf("got %+v, want alpha via attribute", target)
	}
}

func TestResolve_Unresolved(t *testing.T) {
	tests := []struct {
		name     string
		snapshot *Snapshot
		registry TargetLookup
	}{
		{"nil snapshot", nil, NewMapRegistry()},
		{"no lookups match", NewSnapshot("sensor.x", map[string]any{"other": "y"}), NewMapRegistry()},
		{"nil registry and no attribute", NewSnapshot("sensor.x", nil), nil},
		{
			"whitespace-only values",
			NewSnapshot("sensor.x", map[string]any{AttributeTargetKey: "   "}),
			func() TargetLookup {
				r := NewMapRegistry()
				r.Set("sensor.x", "  ")
				return r
			}(),
		},
		{
			"attribute wrong type",
			NewSnapshot("sensor.x", map[string]any{AttributeTargetKey: 42}),
			NewMapRegistry(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := Resolve(tt.snapshot, tt.registry)
			if target.Resolved() {
				t.Errorf("Resolve() = %+v, want unresolved", target)
			}
			if target.TargetID != "" {
				t.Errorf("TargetID = %q, must be empty when unresolved", target.TargetID)
			}
			if target.Method != ResolutionUnresolved {
				t.Errorf("Method = %v, want unresolved", target.Method)
			}
		})
	}
}

func TestResolve_TrimsTarget(t *testing.T) {
	registry := NewMapRegistry()
	registry.Set("sensor.alpha_status", "  alpha  ")

	target := Resolve(NewSnapshot("sensor.alpha_status", nil), registry)
	if target.TargetID != "alpha" {
		t.Errorf("TargetID = %q, want trimmed alpha", target.TargetID)
	}
}

func TestSnapshotStore_ReplaceBumpsRevision(t *testing.T) {
	store := NewStore()

	first := store.Replace("alpha", map[string]any{"pid": 1})
	second := store.Replace("alpha", map[string]any{"pid": 2})

	if second.Revision <= first.Revision {
		t.Errorf("revisions not monotonic: %d then %d", first.Revision, second.Revision)
	}
	if got := store.Get("alpha"); got != second {
		t.Error("Get should return the latest snapshot")
	}
}

func TestSnapshotStore_RemovedSourceResolvesNil(t *testing.T) {
	store := NewStore()
	store.Replace("alpha", map[string]any{"pid": 1})
	store.Remove("alpha")

	snap := store.Get("alpha")
	if snap != nil {
		t.Fatal("snapshot should be nil after removal")
	}

	// A vanished source flows through resolution without panicking
	target := Resolve(snap, NewMapRegistry())
	if target.Resolved() {
		t.Error("vanished source must resolve to unresolved")
	}
}

func TestAttrEqual(t *testing.T) {
	tests := []struct {
		name string
		a    map[string]any
		b    map[string]any
		key  string
		want bool
	}{
		{
			"same list",
			map[string]any{"allowed_players": []any{"Steve", "Alex"}},
			map[string]any{"allowed_players": []any{"Steve", "Alex"}},
			"allowed_players", true,
		},
		{
			"different list",
			map[string]any{"allowed_players": []any{"Steve"}},
			map[string]any{"allowed_players": []any{"Steve", "Alex"}},
			"allowed_players", false,
		},
		{
			"both absent",
			map[string]any{"other": 1},
			map[string]any{},
			"allowed_players", true,
		},
		{
			"present vs absent",
			map[string]any{"allowed_players": []any{}},
			map[string]any{},
			"allowed_players", false,
		},
		{
			"nested map equal regardless of construction",
			map[string]any{"server_properties": map[string]any{"max-players": "10", "difficulty": "normal"}},
			map[string]any{"server_properties": map[string]any{"difficulty": "normal", "max-players": "10"}},
			"server_properties", true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewSnapshot("s", tt.a)
			b := NewSnapshot("s", tt.b)
			if got := AttrEqual(a, b, tt.key); got != tt.want {
				t.Errorf("AttrEqual(%s) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestAttrEqual_NilSnapshots(t *testing.T) {
	snap := NewSnapshot("s", map[string]any{"k": "v"})

	if AttrEqual(nil, snap, "k") {
		t.Error("nil vs present should not be equal")
	}
	if !AttrEqual(nil, nil, "k") {
		t.Error("nil vs nil should be equal (both absent)")
	}
}
