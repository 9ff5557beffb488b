// Package observe models the one-way observation stream that feeds the
// cards: point-in-time attribute snapshots of a selected server, and the
// lookup that turns a snapshot into a routing target for remote actions.
//
// Snapshots are whole replacements, never deltas. A card holds at most one
// snapshot for its selected source; when the poller reports a new
// observation the old snapshot is discarded wholesale. Snapshots are input
// only; nothing in this package or its callers ever writes back into the
// observation stream.
//
// Target resolution is a pure function with two ordered lookup paths: the
// injected registry first, then the snapshot's "device_id" attribute. When
// neither yields a target the result is Unresolved, which is a valid
// terminal state (mutating actions are disabled), not an error.
package observe
