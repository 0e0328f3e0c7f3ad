package broadcast

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisBroadcaster(t *testing.T) *RedisBroadcaster {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	bc, err := NewRedisBroadcaster(context.Background(), client, "test:events")
	if err != nil {
		t.Fatalf("NewRedisBroadcaster failed: %v", err)
	}
	t.Cleanup(func() { _ = bc.Close() })
	return bc
}

func TestRedisBroadcasterRoundTrip(t *testing.T) {
	bc := newRedisBroadcaster(t)

	received := make(chan Message, 1)
	if err := bc.Subscribe(func(msg Message) { received <- msg }); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	want := Message{
		Kind:        KindLogin,
		Origin:      "ctx-1",
		AccessToken: "A1",
		User:        &UserInfo{ID: "u1", Email: "a@b.com"},
	}
	if err := bc.Publish(context.Background(), want); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case got := <-received:
		if got.Kind != want.Kind || got.Origin != want.Origin || got.AccessToken != want.AccessToken {
			t.Fatalf("delivery mismatch: got %+v want %+v", got, want)
		}
		if got.User == nil || got.User.ID != "u1" {
			t.Fatalf("expected user payload, got %+v", got.User)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
	}
}

func TestRedisBroadcasterDoubleSubscribe(t *testing.T) {
	bc := newRedisBroadcaster(t)
	if err := bc.Subscribe(func(Message) {}); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	if err := bc.Subscribe(func(Message) {}); err != ErrSubscribed {
		t.Fatalf("expected ErrSubscribed, got %v", err)
	}
}

func TestRedisBroadcasterCloseIsIdempotent(t *testing.T) {
	bc := newRedisBroadcaster(t)
	if err := bc.Subscribe(func(Message) {}); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	if err := bc.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := bc.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
}

func TestNewRedisBroadcasterUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { _ = client.Close() })

	if _, err := NewRedisBroadcaster(context.Background(), client, "test:events"); err == nil {
		t.Fatal("expected construction to fail against an unreachable transport")
	}
}
