// Package coordinator polls a manager on an interval and publishes
// each server's state as a whole-replacement snapshot: status,
// process info, allowlist, properties, permissions and backups merged
// into one attribute map. Consumers receive full snapshots, never
// deltas.
//
// A failed sub-fetch degrades the snapshot rather than discarding it;
// attributes that could not be refreshed are simply absent and the
// snapshot is marked degraded.
package coordinator
