// Package cacheinfra provides the default cache.Store: an in-memory sturdyc
// client extended with dependency tracking and per-entry expiration.
//
// sturdyc stores entries with a single store wide TTL. Each entry additionally
// carries its own absolute or sliding expiration, evaluated when it is read,
// and a list of dependency tokens. A reverse index maps every token to the keys
// depending on it, so removing a key (or a token that was never a key, such as
// a file name) evicts its dependents transitively.
package cacheinfra
