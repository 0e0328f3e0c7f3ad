// Package credstore provides durable persistence for the long-lived refresh
// credential and the cached user profile.
//
// The access credential is deliberately outside this package's data model: it
// is short-lived and memory-only, and must never reach durable storage.
//
// Storage is shared between sibling contexts; writes are whole-record
// overwrites with last-writer-wins semantics. No merge logic exists because
// the refresh credential is rotated server-side and the latest stored value
// is authoritative. A record that fails to decode is treated as absent and
// cleared so a corrupt entry is never reused.
//
// # Architecture boundaries
//
// This package owns the [Store] contract and its file, Redis, and in-memory
// implementations. It does NOT perform network authentication calls or decide
// when credentials rotate.
//
// # What this package must NOT do
//
//   - Store or accept access credentials.
//   - Import sessionkit or any sibling package.
//   - Partially clear: profile and refresh credential live and die together.
package credstore
