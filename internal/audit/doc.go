// Package audit records the observable lifecycle of a client session: link
// requests, link verification, second-factor exchanges, refreshes, restores,
// logouts, and broadcast activity.
//
// The [Recorder] builds events — stamping the owning context, the current
// device, and the timestamp — and hands them to the [Dispatcher], which
// forwards them to a caller-supplied [Sink] from its own goroutine. Dispatch
// is buffered and never blocks a session operation; when the buffer is full
// and DropIfFull is set, events are counted and discarded.
//
// # Architecture boundaries
//
// This package owns the [Event] model, the event-type names, the [Sink]
// contract, and the dispatch machinery. It does NOT decide when events are
// emitted — that belongs to the Coordinator.
//
// # What this package must NOT do
//
//   - Import sessionkit or any sibling package (no upward imports).
//   - Perform network or storage I/O beyond what a caller-supplied Sink does.
//   - Carry credentials in event payloads.
package audit
