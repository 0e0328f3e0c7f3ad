package broadcast

import (
	"context"
	"sync"
)

// Bus is an in-process fan-out for tests and single-process deployments.
// Each [Bus.Endpoint] models one context; a publish reaches every endpoint
// except the publishing one, matching the sibling-only delivery of the
// production transport.
type Bus struct {
	mu        sync.Mutex
	endpoints []*BusEndpoint
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Endpoint attaches a new context to the bus.
func (b *Bus) Endpoint() *BusEndpoint {
	b.mu.Lock()
	defer b.mu.Unlock()
	ep := &BusEndpoint{bus: b}
	b.endpoints = append(b.endpoints, ep)
	return ep
}

func (b *Bus) fanOut(from *BusEndpoint, msg Message) {
	b.mu.Lock()
	targets := make([]*BusEndpoint, 0, len(b.endpoints))
	for _, ep := range b.endpoints {
		if ep != from {
			targets = append(targets, ep)
		}
	}
	b.mu.Unlock()

	for _, ep := range targets {
		ep.deliver(msg)
	}
}

// BusEndpoint is one context's handle on a [Bus].
type BusEndpoint struct {
	bus *Bus

	mu      sync.Mutex
	handler Handler
	closed  bool
}

func (e *BusEndpoint) Publish(ctx context.Context, msg Message) error {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return nil
	}
	e.bus.fanOut(e, msg)
	return nil
}

func (e *BusEndpoint) Subscribe(handler Handler) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.handler != nil {
		return ErrSubscribed
	}
	e.handler = handler
	return nil
}

func (e *BusEndpoint) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.handler = nil
	return nil
}

func (e *BusEndpoint) deliver(msg Message) {
	e.mu.Lock()
	handler := e.handler
	e.mu.Unlock()
	if handler != nil {
		handler(msg)
	}
}

var _ Broadcaster = (*BusEndpoint)(nil)
