package sessionkit

import (
	"context"
	"testing"
	"time"

	"github.com/daon-network/sessionkit/credstore"
	"github.com/daon-network/sessionkit/device"
)

func TestAuditEventsFlow(t *testing.T) {
	sink := NewChannelSink(16)
	c, err := New().
		WithAPI(&fakeAPI{}).
		WithStore(credstore.NewMemoryStore()).
		WithBroadcaster(&recordBroadcaster{}).
		WithDeviceProvider(device.StaticProvider{Desc: testDescriptor()}).
		WithAuditSink(sink).
		Build(context.Background())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	defer c.Close()

	if err := c.ApplyLogin(context.Background(), testUser(), "A1", "R1"); err != nil {
		t.Fatalf("ApplyLogin failed: %v", err)
	}

	select {
	case event := <-sink.Events():
		if event.EventType != "session.login" {
			t.Fatalf("expected session.login, got %q", event.EventType)
		}
		if event.UserID != "u1" || !event.Success {
			t.Fatalf("unexpected event: %+v", event)
		}
		if event.ContextID != c.ContextID() {
			t.Fatalf("expected event stamped with context id, got %+v", event)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for audit event")
	}
}

func TestAuditPayloadNeverCarriesCredentials(t *testing.T) {
	sink := NewChannelSink(16)
	c, err := New().
		WithAPI(&fakeAPI{}).
		WithStore(credstore.NewMemoryStore()).
		WithBroadcaster(&recordBroadcaster{}).
		WithDeviceProvider(device.StaticProvider{Desc: testDescriptor()}).
		WithAuditSink(sink).
		Build(context.Background())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if err := c.ApplyLogin(context.Background(), testUser(), "A-secret", "R-secret"); err != nil {
		t.Fatalf("ApplyLogin failed: %v", err)
	}
	c.Logout(context.Background())
	c.Close()

	for {
		select {
		case event := <-sink.Events():
			for _, v := range event.Metadata {
				if v == "A-secret" || v == "R-secret" {
					t.Fatalf("credential leaked into audit metadata: %+v", event)
				}
			}
			if event.Error == "A-secret" || event.Error == "R-secret" {
				t.Fatalf("credential leaked into audit error: %+v", event)
			}
		default:
			return
		}
	}
}
