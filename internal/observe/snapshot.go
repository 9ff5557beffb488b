package observe

import (
	"encoding/json"
	"sync"
	"sync/atomic"
)

// revisionCounter produces monotonic snapshot revisions process-wide.
// Revisions only ever detect "nothing changed"; they carry no other meaning.
var revisionCounter atomic.Int64

// Snapshot is the latest known state of a selected source: an opaque source
// identifier plus an attribute map of arbitrary JSON values. Snapshots are
// immutable once published; a new observation replaces the whole value.
type Snapshot struct {
	SourceID   string
	Attributes map[string]any
	Revision   int64
}

// NewSnapshot builds a snapshot for sourceID with a fresh revision.
// The attribute map is used as-is; callers must not mutate it afterwards.
func NewSnapshot(sourceID string, attributes map[string]any) *Snapshot {
	return &Snapshot{
		SourceID:   sourceID,
		Attributes: attributes,
		Revision:   revisionCounter.Add(1),
	}
}

// Attr returns the named attribute value and whether it is present.
// Safe to call on a nil snapshot.
func (s *Snapshot) Attr(key string) (any, bool) {
	if s == nil || s.Attributes == nil {
		return nil, false
	}
	v, ok := s.Attributes[key]
	return v, ok
}

// StringAttr returns the named attribute as a string, or "" when absent or
// not a string. Safe to call on a nil snapshot.
func (s *Snapshot) StringAttr(key string) string {
	v, ok := s.Attr(key)
	if !ok {
		return ""
	}
	str, _ := v.(string)
	return str
}

// AttrEqual reports whether the named attribute carries the same value in
// both snapshots, compared by serialized form. Used to decide whether a
// fresh snapshot actually changed the domain data a card ingested, so
// in-progress edits are not clobbered by no-op polling ticks.
func AttrEqual(a, b *Snapshot, key string) bool {
	av, aok := a.Attr(key)
	bv, bok := b.Attr(key)
	if aok != bok {
		return false
	}
	if !aok {
		return true
	}
	aj, aerr := json.Marshal(av)
	bj, berr := json.Marshal(bv)
	if aerr != nil || berr != nil {
		// Unserializable values are never considered equal
		return false
	}
	return string(aj) == string(bj)
}

// Store holds the current snapshot per source. It is the single point where
// the polling goroutine and the UI loop meet, so access is synchronized.
type Store struct {
	mu        sync.RWMutex
	snapshots map[string]*Snapshot
}

// NewStore creates an empty snapshot store
func NewStore() *Store {
	return &Store{snapshots: make(map[string]*Snapshot)}
}

// Replace publishes a new snapshot for its source, discarding any previous
// one. Returns the published snapshot.
func (st *Store) Replace(sourceID string, attributes map[string]any) *Snapshot {
	snap := NewSnapshot(sourceID, attributes)
	st.mu.Lock()
	st.snapshots[sourceID] = snap
	st.mu.Unlock()
	return snap
}

// Get returns the current snapshot for a source, or nil when the source is
// not (or no longer) observed.
func (st *Store) Get(sourceID string) *Snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.snapshots[sourceID]
}

// Remove drops a source from the observation set, e.g. when the server
// disappears from the manager.
func (st *Store) Remove(sourceID string) {
	st.mu.Lock()
	delete(st.snapshots, sourceID)
	st.mu.Unlock()
}

// SourceIDs returns the currently observed source identifiers
func (st *Store) SourceIDs() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	ids := make([]string, 0, len(st.snapshots))
	for id := range st.snapshots {
		ids = append(ids, id)
	}
	return ids
}
