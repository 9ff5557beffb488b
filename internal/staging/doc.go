// Package staging holds unsaved edits as an overlay on top of an
// ingested baseline. The overlay records every staged value
// unconditionally; ChangeSet is the authoritative diff and excludes
// entries whose normalized form equals the baseline, so the payload
// sent to the manager only carries real changes.
//
// Values are compared in string-normalized form. The UI and the remote
// API represent the same logical value with different native types
// (string "true" vs boolean true, "10" vs the number 10), so raw typed
// comparison would report phantom changes.
package staging
