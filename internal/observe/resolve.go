package observe

import (
	"strings"
	"sync"
)

// AttributeTargetKey is the conventional snapshot attribute naming the
// routing target when the registry has no entry for the source.
const AttributeTargetKey = "device_id"

// ResolutionMethod records which lookup path produced a routing target
type ResolutionMethod int

const (
	// ResolutionUnresolved means neither lookup path yielded a target
	ResolutionUnresolved ResolutionMethod = iota
	// ResolutionFromRegistry means the injected registry had a mapping
	ResolutionFromRegistry
	// ResolutionFromAttribute means the snapshot's device_id attribute was used
	ResolutionFromAttribute
)

// String returns a human-readable name for the resolution method
func (m ResolutionMethod) String() string {
	switch m {
	case ResolutionFromRegistry:
		return "registry"
	case ResolutionFromAttribute:
		return "attribute"
	default:
		return "unresolved"
	}
}

// ResolvedTarget is the identifier a remote action is addressed to.
// TargetID is empty iff Method is ResolutionUnresolved; it is never
// fabricated from anything but the two lookup paths.
type ResolvedTarget struct {
	TargetID string
	Method   ResolutionMethod
}

// Resolved reports whether a usable routing target was found.
// Mutating actions must be disabled when this is false.
func (t ResolvedTarget) Resolved() bool {
	return t.Method != ResolutionUnresolved && t.TargetID != ""
}

// TargetLookup is the injected read-only view of the host's source-to-target
// registry. Implementations may be stale or incomplete; a missing entry is
// normal, not an error.
type TargetLookup interface {
	// TargetFor returns the routing target mapped to a source, if any
	TargetFor(sourceID string) (string, bool)
}

// Resolve derives the routing target for a snapshot. Lookup order is fixed:
// registry first, then the snapshot's device_id attribute, else unresolved.
// Pure function of its inputs; safe to call with a nil snapshot (the source
// disappeared), which resolves to Unresolved rather than failing.
func Resolve(snapshot *Snapshot, registry TargetLookup) ResolvedTarget {
	if snapshot == nil {
		return ResolvedTarget{Method: ResolutionUnresolved}
	}

	if registry != nil {
		if target, ok := registry.TargetFor(snapshot.SourceID); ok {
			if trimmed := strings.TrimSpace(target); trimmed != "" {
				return ResolvedTarget{TargetID: trimmed, Method: ResolutionFromRegistry}
			}
		}
	}

	if attr := strings.TrimSpace(snapshot.StringAttr(AttributeTargetKey)); attr != "" {
		return ResolvedTarget{TargetID: attr, Method: ResolutionFromAttribute}
	}

	return ResolvedTarget{Method: ResolutionUnresolved}
}

// MapRegistry is a TargetLookup backed by a plain map. The coordinator
// maintains one from the manager's server list; tests build them directly.
type MapRegistry struct {
	mu      sync.RWMutex
	targets map[string]string
}

// NewMapRegistry creates an empty registry
func NewMapRegistry() *MapRegistry {
	return &MapRegistry{targets: make(map[string]string)}
}

// TargetFor implements TargetLookup
func (r *MapRegistry) TargetFor(sourceID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	target, ok := r.targets[sourceID]
	return target, ok
}

// Set maps a source to a routing target
func (r *MapRegistry) Set(sourceID, targetID string) {
	r.mu.Lock()
	r.targets[sourceID] = targetID
	r.mu.Unlock()
}

// Delete removes a source mapping
func (r *MapRegistry) Delete(sourceID string) {
	r.mu.Lock()
	delete(r.targets, sourceID)
	r.mu.Unlock()
}
