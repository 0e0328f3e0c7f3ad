package sessionkit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/daon-network/sessionkit/authapi"
)

func TestDeviceListRequiresCredential(t *testing.T) {
	api := &fakeAPI{}
	c, _, _ := newTestCoordinator(t, api)

	_, err := c.Devices().List(context.Background())
	if !errors.Is(err, ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential, got %v", err)
	}
}

func TestDeviceListPassesBearer(t *testing.T) {
	until := time.Now().Add(12 * time.Hour)
	api := &fakeAPI{
		listFn: func() ([]authapi.Device, error) {
			return []authapi.Device{
				{ID: "d1", Name: "laptop", TrustedUntil: &until},
				{ID: "d2", Name: "phone"},
			}, nil
		},
	}
	c, store, _ := newTestCoordinator(t, api)
	seedAuthenticated(t, c, store, "R1")

	devices, err := c.Devices().List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(devices))
	}
	api.mu.Lock()
	bearer := api.lastBearer
	api.mu.Unlock()
	if bearer != "A0" {
		t.Fatalf("expected bearer A0, got %q", bearer)
	}
}

func TestDeviceRename(t *testing.T) {
	api := &fakeAPI{
		renameFn: func(id, name string) (*authapi.Device, error) {
			if id != "d1" || name != "desk" {
				t.Errorf("unexpected rename args: %s %s", id, name)
			}
			return &authapi.Device{ID: id, Name: name}, nil
		},
	}
	c, store, _ := newTestCoordinator(t, api)
	seedAuthenticated(t, c, store, "R1")

	updated, err := c.Devices().Rename(context.Background(), "d1", "desk")
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if updated.Name != "desk" {
		t.Fatalf("expected renamed device, got %+v", updated)
	}
}

func TestDeviceRemove(t *testing.T) {
	removed := ""
	api := &fakeAPI{
		removeFn: func(id string) error {
			removed = id
			return nil
		},
	}
	c, store, _ := newTestCoordinator(t, api)
	seedAuthenticated(t, c, store, "R1")

	if err := c.Devices().Remove(context.Background(), "d2"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if removed != "d2" {
		t.Fatalf("expected removal of d2, got %q", removed)
	}
}
