// Package search implements species lookup for the wildlife catalogue: a
// substring matcher over the searchable record fields, a ranker that prefers
// name prefixes, and an autocomplete suggestion builder. The Service wraps
// the pure engine with store access, tracing, and metrics; every call works
// on a fresh snapshot of the catalogue and degrades to empty output when the
// store is unavailable.
package search
