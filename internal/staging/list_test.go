package staging

import (
	"reflect"
	"strings"
	"testing"
)

func TestListStore_AddNewPlayer(t *testing.T) {
	list := NewListStore([]string{"Steve", "Alex"})

	if err := list.Add("Notch"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if got := list.Additions(); !reflect.DeepEqual(got, []string{"Notch"}) {
		t.Errorf("Additions() = %v", got)
	}
	if got := list.Effective(); !reflect.DeepEqual(got, []string{"Steve", "Alex", "Notch"}) {
		t.Errorf("Effective() = %v", got)
	}
}

func TestListStore_DuplicateGuard(t *testing.T) {
	list := NewListStore([]string{"Steve", "Alex"})

	tests := []struct {
		name    string
		add     string
		wantErr string
	}{
		{"baseline collision", "Steve", "already on the allowlist"},
		{"case-insensitive collision", "steve", "already on the allowlist"},
		{"empty name", "  ", "cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := list.Add(tt.add)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Add(%q) error = %v, want containing %q", tt.add, err, tt.wantErr)
			}
		})
	}

	if err := list.Add("Notch"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := list.Add("Notch"); err == nil || !strings.Contains(err.Error(), "staged for addition") {
		t.Errorf("second Add(Notch) error = %v, want staged-for-addition message", err)
	}
}

func TestListStore_RemoveAndReAdd(t *testing.T) {
	list := NewListStore([]string{"Steve", "Alex"})

	if err := list.Remove("Alex"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if got := list.Removals(); !reflect.DeepEqual(got, []string{"Alex"}) {
		t.Errorf("Removals() = %v", got)
	}
	if got := list.Effective(); !reflect.DeepEqual(got, []string{"Steve"}) {
		t.Errorf("Effective() = %v", got)
	}

	// Re-adding a name staged for removal cancels the removal
	if err := list.Add("Alex"); err != nil {
		t.Fatalf("Add() after remove error = %v", err)
	}
	if list.HasChanges() {
		t.Error("HasChanges() = true after removal was cancelled")
	}
}

func TestListStore_RemoveUnknownFails(t *testing.T) {
	list := NewListStore([]string{"Steve"})
	if err := list.Remove("Herobrine"); err == nil {
		t.Error("expected error removing a name not on the allowlist")
	}
}

func TestListStore_RemoveStagedAdditionUnstages(t *testing.T) {
	list := NewListStore([]string{"Steve"})
	if err := list.Add("Notch"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := list.Remove("Notch"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if list.HasChanges() {
		t.Error("HasChanges() = true after unstaging the only addition")
	}
}

func TestListStore_ResetUnstagesLandedAdditions(t *testing.T) {
	list := NewListStore([]string{"Steve"})
	if err := list.Add("Notch"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := list.Add("Jeb"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	// Refresh shows Notch landed remotely; Jeb is still pending
	list.Reset([]string{"Steve", "Notch"})

	if got := list.Additions(); !reflect.DeepEqual(got, []string{"Jeb"}) {
		t.Errorf("Additions() = %v, want [Jeb]", got)
	}
}

func TestListStore_ResetDropsStaleRemovals(t *testing.T) {
	list := NewListStore([]string{"Steve", "Alex"})
	if err := list.Remove("Alex"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	// Alex already gone in the new baseline
	list.Reset([]string{"Steve"})

	if list.HasChanges() {
		t.Errorf("Removals() = %v, want none", list.Removals())
	}
}
