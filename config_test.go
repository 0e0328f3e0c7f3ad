package sessionkit

import (
	"context"
	"errors"
	"testing"

	"github.com/daon-network/sessionkit/credstore"
	"github.com/daon-network/sessionkit/device"
)

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "negative leeway", mutate: func(c *Config) { c.Refresh.ExpiryLeeway = -1 }, wantErr: true},
		{name: "negative timeout", mutate: func(c *Config) { c.API.Timeout = -1 }, wantErr: true},
		{name: "empty channel", mutate: func(c *Config) { c.Broadcast.Channel = "" }, wantErr: true},
		{name: "audit without buffer", mutate: func(c *Config) { c.Audit.Enabled = true; c.Audit.BufferSize = 0 }, wantErr: true},
		{name: "audit with buffer", mutate: func(c *Config) { c.Audit.Enabled = true }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestBuildRequiresAPI(t *testing.T) {
	_, err := New().
		WithStore(credstore.NewMemoryStore()).
		Build(context.Background())
	if err == nil {
		t.Fatal("expected build to fail without an API client")
	}
}

func TestBuildRequiresStore(t *testing.T) {
	_, err := New().
		WithAPI(&fakeAPI{}).
		Build(context.Background())
	if err == nil {
		t.Fatal("expected build to fail without a credential store")
	}
}

func TestBuildFromStateDir(t *testing.T) {
	dir := t.TempDir()
	c, err := New().
		WithAPI(&fakeAPI{}).
		WithStateDir(dir).
		Build(context.Background())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	defer c.Close()

	if c.ContextID() == "" {
		t.Fatal("expected a context identifier")
	}
	session := c.Snapshot()
	if session.State != StateUninitialized {
		t.Fatalf("expected StateUninitialized before restore, got %v", session.State)
	}
}

func TestBuilderSingleUse(t *testing.T) {
	b := New().
		WithAPI(&fakeAPI{}).
		WithStore(credstore.NewMemoryStore()).
		WithDeviceProvider(device.StaticProvider{Desc: testDescriptor()})
	c, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("first build failed: %v", err)
	}
	defer c.Close()

	if _, err := b.Build(context.Background()); err == nil {
		t.Fatal("expected second build to fail")
	}
}

func TestCoordinatorClosedRejectsLogin(t *testing.T) {
	api := &fakeAPI{}
	c, _, _ := newTestCoordinator(t, api)
	c.Close()

	err := c.ApplyLogin(context.Background(), testUser(), "A1", "R1")
	if !errors.Is(err, ErrCoordinatorClosed) {
		t.Fatalf("expected ErrCoordinatorClosed, got %v", err)
	}
}
