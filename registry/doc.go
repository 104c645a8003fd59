// Package registry keeps the bidirectional mapping between stable numeric
// content type identifiers and the Go types that describe their typed view.
//
// The registry is read on every content fetch and written only while the
// application is configured, so lookups take a reader-biased lock and never
// block each other. Both directions of a binding change under one write lock:
// a reader sees a binding completely or not at all.
//
// Registering the same pair twice is a no-op. Rebinding an id to a different
// type, or a type to a different id, is rejected with a *ConflictError and
// leaves the registry untouched.
package registry
