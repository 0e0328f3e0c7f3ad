package broadcast

import (
	"context"
	"errors"
)

// Kind tags the message union.
type Kind string

const (
	// KindLogin announces a completed login with the user and the fresh
	// access credential.
	KindLogin Kind = "login"
	// KindLogout announces a logout; siblings clear their state.
	KindLogout Kind = "logout"
	// KindTokenRefresh announces a rotated access credential.
	KindTokenRefresh Kind = "token_refresh"
)

// UserInfo is the profile fragment carried by login messages.
type UserInfo struct {
	ID                  string `json:"id"`
	Email               string `json:"email"`
	SecondFactorEnabled bool   `json:"second_factor_enabled"`
}

// Message is the tagged union delivered to sibling contexts. Origin is the
// emitting context's identifier so a publisher can skip its own deliveries on
// transports that echo.
type Message struct {
	Kind        Kind      `json:"kind"`
	Origin      string    `json:"origin"`
	AccessToken string    `json:"access_credential,omitempty"`
	User        *UserInfo `json:"user,omitempty"`
}

// ErrSubscribed is returned when Subscribe is called more than once on a
// broadcaster; one handler per context lifetime is the contract.
var ErrSubscribed = errors.New("broadcast handler already registered")

// Handler receives one delivered message. It must not block for long:
// transports invoke it from their receive loop.
type Handler func(Message)

// Broadcaster is the cross-context fan-out contract.
type Broadcaster interface {
	// Publish sends msg to all sibling contexts, fire-and-forget.
	Publish(ctx context.Context, msg Message) error
	// Subscribe registers the single handler for this context's lifetime.
	Subscribe(handler Handler) error
	// Close releases the channel; further publishes are no-ops.
	Close() error
}

// NoopBroadcaster is the permanent no-op used when no transport is available.
// Absence of cross-context sync only widens the consistency window.
type NoopBroadcaster struct{}

func (NoopBroadcaster) Publish(context.Context, Message) error { return nil }
func (NoopBroadcaster) Subscribe(Handler) error                { return nil }
func (NoopBroadcaster) Close() error                           { return nil }
