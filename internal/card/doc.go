// Package card composes the resolver, ingestor, staging store and
// invoker into one controller per editing domain: allowlist,
// properties, permissions, restore, content install and ad-hoc
// commands. Each card owns exactly one snapshot, one resolved target,
// one baseline-plus-overlay and one operation state.
//
// Cards are fed whole-replacement snapshots via Observe and never
// fetch data themselves; committing sends only the computed change
// set. They are not safe for concurrent use; the UI event loop owns
// them.
package card
