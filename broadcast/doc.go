// Package broadcast fans session-changing events out to sibling contexts of
// the same deployment.
//
// Messages are a tagged union over login, logout, and token_refresh. Delivery
// is fire-and-forget and at-most-once per sibling per emission; ordering is
// preserved between emissions from one origin context but not across origins.
// Consumers must treat every message as an idempotent overwrite of local
// state, never as a delta.
//
// The refresh credential is never carried in a message: siblings that need it
// read it from durable storage.
//
// # Degradation
//
// Constructing the Redis transport may fail in restricted environments. The
// decision is made once: callers fall back to [NoopBroadcaster] and lose
// nothing but the cross-context consistency window.
//
// # Architecture boundaries
//
// This package owns the wire [Message] model and the transports. It does NOT
// interpret messages or touch session state — that belongs to the Coordinator.
//
// # What this package must NOT do
//
//   - Import sessionkit or any sibling package.
//   - Carry refresh credentials in any message.
//   - Retry or buffer undeliverable publishes.
package broadcast
