// Package sessionkit coordinates the lifecycle of an authenticated client
// session: establishing it through a passwordless magic-link flow with an
// optional second factor, persisting and restoring it across restarts,
// refreshing rotating credentials without duplicate in-flight calls, and
// keeping sibling contexts of the same deployment consistent through
// broadcast messages.
//
// The package is designed for concurrent client workloads: Coordinator
// methods are safe to call from multiple goroutines after initialization
// through [Builder.Build].
//
// # Credential model
//
// The access credential is short-lived and memory-only; it never reaches
// durable storage and never leaves the process except as an API bearer or a
// broadcast payload to siblings. The refresh credential is long-lived,
// persisted, and subject to server-side rotation: a refresh response either
// supplies a replacement (adopt it) or omits one (retain the previous value
// unchanged).
//
// # Architecture boundaries
//
// sessionkit is the public surface. It exposes [Coordinator], [Builder],
// [Config], [LoginFlow], and value types. Transport, storage, and device
// identity live in the authapi, credstore, broadcast, and device packages;
// audit dispatch and metrics live under internal/ and are re-exported as
// type aliases only.
//
// # What this package must NOT do
//
//   - Persist the access credential or place the refresh credential in a
//     broadcast message.
//   - Derive device trust locally; the server is the only source of truth.
//   - Retry a rejected refresh credential: any refresh failure fails closed
//     into a full logout, never a silent dead session.
package sessionkit
