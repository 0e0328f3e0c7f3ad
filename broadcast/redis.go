package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisBroadcaster delivers messages over one named Redis Pub/Sub channel per
// deployment. Redis echoes publishes back to the publisher, so deliveries
// carrying the subscriber's own origin must be ignored by the consumer.
type RedisBroadcaster struct {
	redis   redis.UniversalClient
	channel string

	mu      sync.Mutex
	sub     *redis.PubSub
	handler Handler

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewRedisBroadcaster verifies the transport is reachable and returns a
// broadcaster on the given channel. A construction error is the signal to
// degrade to [NoopBroadcaster].
func NewRedisBroadcaster(ctx context.Context, client redis.UniversalClient, channel string) (*RedisBroadcaster, error) {
	if channel == "" {
		channel = "sessionkit:events"
	}
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("broadcast transport unavailable: %w", err)
	}
	return &RedisBroadcaster{redis: client, channel: channel}, nil
}

func (b *RedisBroadcaster) Publish(ctx context.Context, msg Message) error {
	encoded, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode broadcast: %w", err)
	}
	return b.redis.Publish(ctx, b.channel, encoded).Err()
}

func (b *RedisBroadcaster) Subscribe(handler Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handler != nil {
		return ErrSubscribed
	}
	b.handler = handler
	b.sub = b.redis.Subscribe(context.Background(), b.channel)

	b.wg.Add(1)
	go b.receive(b.sub.Channel(), handler)
	return nil
}

func (b *RedisBroadcaster) receive(ch <-chan *redis.Message, handler Handler) {
	defer b.wg.Done()
	for delivery := range ch {
		var msg Message
		if err := json.Unmarshal([]byte(delivery.Payload), &msg); err != nil {
			continue
		}
		handler(msg)
	}
}

// Close unsubscribes and waits for the receive loop to drain. Safe to call
// multiple times and on every teardown path.
func (b *RedisBroadcaster) Close() error {
	var err error
	b.closeOnce.Do(func() {
		b.mu.Lock()
		sub := b.sub
		b.mu.Unlock()
		if sub != nil {
			err = sub.Close()
		}
		b.wg.Wait()
	})
	return err
}

var _ Broadcaster = (*RedisBroadcaster)(nil)
