package audit

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Event types recorded over a session's lifecycle.
const (
	EventLinkRequested        = "auth.link.requested"
	EventLinkVerified         = "auth.link.verified"
	EventSecondFactorRequired = "auth.second_factor.required"
	EventSecondFactorFailure  = "auth.second_factor.failure"
	EventLogin                = "session.login"
	EventRestore              = "session.restore"
	EventRefreshSuccess       = "session.refresh.success"
	EventRefreshFailure       = "session.refresh.failure"
	EventLogout               = "session.logout"
	EventRevokeFailed         = "session.revoke_failed"
	EventBroadcastApplied     = "broadcast.applied"
	EventPublishFailed        = "broadcast.publish_failed"
)

// Event is one audit record. Payloads identify users, contexts, and devices,
// never credentials.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	UserID    string            `json:"user_id,omitempty"`
	ContextID string            `json:"context_id,omitempty"`
	DeviceID  string            `json:"device_id,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Sink receives emitted audit events.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// NoOpSink drops audit events.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, Event) {}

// ChannelSink writes audit events into a buffered channel.
type ChannelSink struct {
	events chan Event
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan Event, buffer),
	}
}

func (s *ChannelSink) Emit(ctx context.Context, event Event) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Events() <-chan Event {
	return s.events
}

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	if w == nil {
		return &JSONWriterSink{}
	}
	return &JSONWriterSink{enc: json.NewEncoder(w)}
}

func (s *JSONWriterSink) Emit(ctx context.Context, event Event) {
	if s == nil || s.enc == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.enc.Encode(event)
}
