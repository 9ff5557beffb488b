package staging

import (
	"fmt"
	"sort"
	"strings"
)

// ListStore stages additions and removals against a baseline list of
// names (the allowlist shape). Item identity is case-insensitive to
// match how the manager treats gamertags, but staged names keep the
// casing the user typed.
type ListStore struct {
	baseline []string
	added    []string
	removed  map[string]struct{}
}

// NewListStore builds a list store around a copy of baseline.
func NewListStore(baseline []string) *ListStore {
	l := &ListStore{
		baseline: append([]string(nil), baseline...),
		removed:  make(map[string]struct{}),
	}
	return l
}

func fold(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (l *ListStore) inBaseline(name string) bool {
	key := fold(name)
	for _, item := range l.baseline {
		if fold(item) == key {
			return true
		}
	}
	return false
}

func (l *ListStore) addedIndex(name string) int {
	key := fold(name)
	for i, item := range l.added {
		if fold(item) == key {
			return i
		}
	}
	return -1
}

// Add stages a new item. Names colliding with the baseline or with an
// already staged addition are rejected with a descriptive error.
// Adding a name staged for removal cancels the removal instead.
func (l *ListStore) Add(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("player name cannot be empty")
	}
	if _, pending := l.removed[fold(name)]; pending {
		delete(l.removed, fold(name))
		return nil
	}
	if l.inBaseline(name) {
		return fmt.Errorf("%q is already on the allowlist", name)
	}
	if l.addedIndex(name) >= 0 {
		return fmt.Errorf("%q is already staged for addition", name)
	}
	l.added = append(l.added, name)
	return nil
}

// Remove stages removal of a baseline item. Removing a staged addition
// just unstages it.
func (l *ListStore) Remove(name string) error {
	if i := l.addedIndex(name); i >= 0 {
		l.added = append(l.added[:i], l.added[i+1:]...)
		return nil
	}
	if !l.inBaseline(name) {
		return fmt.Errorf("%q is not on the allowlist", name)
	}
	l.removed[fold(name)] = struct{}{}
	return nil
}

// Additions returns the staged new items in the order they were added.
func (l *ListStore) Additions() []string {
	return append([]string(nil), l.added...)
}

// Removals returns the baseline items staged for removal, sorted.
func (l *ListStore) Removals() []string {
	removals := make([]string, 0, len(l.removed))
	for _, item := range l.baseline {
		if _, gone := l.removed[fold(item)]; gone {
			removals = append(removals, item)
		}
	}
	sort.Strings(removals)
	return removals
}

// Effective returns the list as it would look after committing:
// baseline minus removals, plus additions.
func (l *ListStore) Effective() []string {
	effective := make([]string, 0, len(l.baseline)+len(l.added))
	for _, item := range l.baseline {
		if _, gone := l.removed[fold(item)]; gone {
			continue
		}
		effective = append(effective, item)
	}
	return append(effective, l.added...)
}

// HasChanges reports whether any addition or removal is staged.
func (l *ListStore) HasChanges() bool {
	return len(l.added) > 0 || len(l.removed) > 0
}

// Reset replaces the baseline after a refresh. Staged additions that
// now appear in the new baseline have landed remotely and are
// unstaged; the rest survive. Removals of items no longer present are
// likewise dropped.
func (l *ListStore) Reset(newBaseline []string) {
	l.baseline = append([]string(nil), newBaseline...)

	remaining := l.added[:0]
	for _, name := range l.added {
		if !l.inBaseline(name) {
			remaining = append(remaining, name)
		}
	}
	l.added = remaining

	for key := range l.removed {
		if !l.inBaseline(key) {
			delete(l.removed, key)
		}
	}
}
