// Package ingest extracts domain data (allowlist entries, permission
// entries, property maps, backup catalogs) from a source snapshot's
// attribute map.
//
// Upstream attribute names and shapes vary between manager versions, so
// every ingestor takes an ordered list of candidate keys, most specific
// first. The first key that exists and passes shape validation wins;
// candidates are never merged. When no candidate matches, the result is an
// *IngestionError naming every checked key, so a mismatched upstream
// contract can be diagnosed from the error message alone.
//
// Record lists are validated entry by entry: a malformed record (missing
// its required field) is dropped and logged, it does not reject the rest of
// the list.
package ingest
