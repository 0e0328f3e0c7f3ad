package sessionkit

import (
	"context"
	"io"

	internalaudit "github.com/daon-network/sessionkit/internal/audit"
)

// AuditEvent is a structured audit record emitted by the coordinator.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the coordinator's audit
// dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// emitAudit records one lifecycle event. metadata is evaluated lazily so call
// sites pay nothing when auditing is disabled.
func (c *Coordinator) emitAudit(ctx context.Context, eventType string, success bool, userID string, failure error, metadata func() map[string]string) {
	if c == nil || c.audit == nil {
		return
	}
	var md map[string]string
	if metadata != nil {
		md = metadata()
	}
	c.audit.Record(ctx, eventType, success, userID, failure, md)
}
