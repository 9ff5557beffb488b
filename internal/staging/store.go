package staging

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/bedrockmgr/bsmctl/internal/logging"
)

// Store is a baseline of key/value pairs plus an overlay of staged
// edits. All values are held in normalized string form.
type Store struct {
	baseline map[string]string
	overlay  map[string]string
}

// NewStore builds a store around a copy of baseline. A nil baseline is
// treated as empty.
func NewStore(baseline map[string]string) *Store {
	s := &Store{
		baseline: make(map[string]string, len(baseline)),
		overlay:  make(map[string]string),
	}
	for key, value := range baseline {
		s.baseline[key] = value
	}
	return s
}

// Stage records value under key unconditionally, even when it equals
// the baseline. ChangeSet decides later whether it counts as a change.
func (s *Store) Stage(key string, value any) {
	s.overlay[key] = Normalize(value)
}

// StageNew stages a value under a key that must not already exist.
// Adding a new item is a distinct path from editing an existing one;
// a collision with the baseline or with a previously staged addition
// is rejected rather than silently overwritten.
func (s *Store) StageNew(key string, value any) error {
	if _, exists := s.baseline[key]; exists {
		return fmt.Errorf("%q already exists; edit the existing entry instead", key)
	}
	if _, staged := s.overlay[key]; staged {
		return fmt.Errorf("%q is already staged for addition", key)
	}
	s.overlay[key] = Normalize(value)
	return nil
}

// Discard removes a single staged edit, reverting the key to its
// baseline value.
func (s *Store) Discard(key string) {
	delete(s.overlay, key)
}

// Baseline returns the baseline value for key.
func (s *Store) Baseline(key string) (string, bool) {
	value, ok := s.baseline[key]
	return value, ok
}

// Effective returns the value the UI should display: the staged edit
// when one exists, the baseline otherwise.
func (s *Store) Effective(key string) (string, bool) {
	if value, ok := s.overlay[key]; ok {
		return value, true
	}
	value, ok := s.baseline[key]
	return value, ok
}

// Keys returns the union of baseline and overlay keys, sorted.
func (s *Store) Keys() []string {
	seen := make(map[string]struct{}, len(s.baseline)+len(s.overlay))
	for key := range s.baseline {
		seen[key] = struct{}{}
	}
	for key := range s.overlay {
		seen[key] = struct{}{}
	}
	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ChangeSet computes the minimal diff to send to the manager: every
// overlay entry whose normalized value differs from the baseline.
// Staged values equal to baseline are no-ops and excluded.
func (s *Store) ChangeSet() map[string]string {
	changes := make(map[string]string)
	for key, staged := range s.overlay {
		if base, ok := s.baseline[key]; ok && base == staged {
			continue
		}
		changes[key] = staged
	}
	return changes
}

// HasChanges reports whether ChangeSet would be non-empty.
func (s *Store) HasChanges() bool {
	for key, staged := range s.overlay {
		base, ok := s.baseline[key]
		if !ok || base != staged {
			return true
		}
	}
	return false
}

// Reset replaces the baseline with a fresh snapshot of values.
// With no pending edits the overlay is simply cleared. With pending
// edits, they survive the refresh: an overlay entry is dropped only
// when its key no longer exists in the new baseline (the item itself
// vanished remotely). Kept entries whose underlying baseline value
// changed are logged so the UI can surface the conflict.
func (s *Store) Reset(newBaseline map[string]string) {
	old := s.baseline
	s.baseline = make(map[string]string, len(newBaseline))
	for key, value := range newBaseline {
		s.baseline[key] = value
	}

	if len(s.overlay) == 0 {
		return
	}

	for key := range s.overlay {
		newValue, exists := s.baseline[key]
		if !exists {
			logging.Warn("Dropping staged edit for key removed by refresh",
				zap.String("key", key))
			delete(s.overlay, key)
			continue
		}
		if oldValue, had := old[key]; had && oldValue != newValue {
			logging.Warn("Baseline changed under a staged edit",
				zap.String("key", key),
				zap.String("old", oldValue),
				zap.String("new", newValue))
		}
	}
}

// PendingCount returns the number of staged entries, including no-ops.
func (s *Store) PendingCount() int {
	return len(s.overlay)
}
