package sessionkit

import (
	"context"
	"sync"
	"testing"

	"github.com/daon-network/sessionkit/authapi"
	"github.com/daon-network/sessionkit/broadcast"
	"github.com/daon-network/sessionkit/credstore"
	"github.com/daon-network/sessionkit/device"
)

// fakeAPI is a scriptable authapi.API. Behaviors default to "not wired" so a
// test fails loudly when an unexpected endpoint is hit.
type fakeAPI struct {
	mu sync.Mutex

	refreshCalls int
	refreshGate  chan struct{}
	refreshFn    func(refreshToken string, dev authapi.DeviceDescriptor) (*authapi.RefreshResult, error)

	requestLinkFn func(email string) error
	verifyFn      func(token string, dev authapi.DeviceDescriptor) (*authapi.VerifyResult, error)
	setupFn       func(pending string) (*authapi.SecondFactorProvision, error)
	verifySetupFn func(pending, code string, backupAck bool) (*authapi.Grant, error)
	completeFn    func(pending, code string) (*authapi.Grant, error)

	revokeCalls    int
	revokeErr      error
	revokeAllCalls int
	revokeAllErr   error

	listFn   func() ([]authapi.Device, error)
	renameFn func(id, name string) (*authapi.Device, error)
	removeFn func(id string) error

	lastBearer string
}

func (f *fakeAPI) RequestMagicLink(ctx context.Context, email string) error {
	if f.requestLinkFn == nil {
		panic("RequestMagicLink not wired")
	}
	return f.requestLinkFn(email)
}

func (f *fakeAPI) VerifyMagicLink(ctx context.Context, token string, dev authapi.DeviceDescriptor) (*authapi.VerifyResult, error) {
	if f.verifyFn == nil {
		panic("VerifyMagicLink not wired")
	}
	return f.verifyFn(token, dev)
}

func (f *fakeAPI) BeginSecondFactorSetup(ctx context.Context, pending string) (*authapi.SecondFactorProvision, error) {
	if f.setupFn == nil {
		panic("BeginSecondFactorSetup not wired")
	}
	return f.setupFn(pending)
}

func (f *fakeAPI) CompleteSecondFactorSetup(ctx context.Context, pending, code string, backupAck bool) (*authapi.Grant, error) {
	if f.verifySetupFn == nil {
		panic("CompleteSecondFactorSetup not wired")
	}
	return f.verifySetupFn(pending, code, backupAck)
}

func (f *fakeAPI) CompleteSecondFactor(ctx context.Context, pending, code string) (*authapi.Grant, error) {
	if f.completeFn == nil {
		panic("CompleteSecondFactor not wired")
	}
	return f.completeFn(pending, code)
}

func (f *fakeAPI) Refresh(ctx context.Context, refreshToken string, dev authapi.DeviceDescriptor) (*authapi.RefreshResult, error) {
	f.mu.Lock()
	f.refreshCalls++
	gate := f.refreshGate
	fn := f.refreshFn
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if fn == nil {
		panic("Refresh not wired")
	}
	return fn(refreshToken, dev)
}

func (f *fakeAPI) Revoke(ctx context.Context, accessToken, refreshToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revokeCalls++
	f.lastBearer = accessToken
	return f.revokeErr
}

func (f *fakeAPI) RevokeAll(ctx context.Context, accessToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revokeAllCalls++
	f.lastBearer = accessToken
	return f.revokeAllErr
}

func (f *fakeAPI) ListDevices(ctx context.Context, accessToken string) ([]authapi.Device, error) {
	f.mu.Lock()
	f.lastBearer = accessToken
	fn := f.listFn
	f.mu.Unlock()
	if fn == nil {
		panic("ListDevices not wired")
	}
	return fn()
}

func (f *fakeAPI) RenameDevice(ctx context.Context, accessToken, id, name string) (*authapi.Device, error) {
	f.mu.Lock()
	f.lastBearer = accessToken
	fn := f.renameFn
	f.mu.Unlock()
	if fn == nil {
		panic("RenameDevice not wired")
	}
	return fn(id, name)
}

func (f *fakeAPI) RemoveDevice(ctx context.Context, accessToken, id string) error {
	f.mu.Lock()
	f.lastBearer = accessToken
	fn := f.removeFn
	f.mu.Unlock()
	if fn == nil {
		panic("RemoveDevice not wired")
	}
	return fn(id)
}

func (f *fakeAPI) refreshCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshCalls
}

var _ authapi.API = (*fakeAPI)(nil)

// recordBroadcaster captures published messages.
type recordBroadcaster struct {
	mu       sync.Mutex
	messages []broadcast.Message
	handler  broadcast.Handler
}

func (r *recordBroadcaster) Publish(ctx context.Context, msg broadcast.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	return nil
}

func (r *recordBroadcaster) Subscribe(handler broadcast.Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.handler != nil {
		return broadcast.ErrSubscribed
	}
	r.handler = handler
	return nil
}

func (r *recordBroadcaster) Close() error { return nil }

func (r *recordBroadcaster) published() []broadcast.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]broadcast.Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// deliver injects a message as if a sibling context had published it.
func (r *recordBroadcaster) deliver(msg broadcast.Message) {
	r.mu.Lock()
	handler := r.handler
	r.mu.Unlock()
	if handler != nil {
		handler(msg)
	}
}

func (r *recordBroadcaster) byKind(kind broadcast.Kind) []broadcast.Message {
	var out []broadcast.Message
	for _, msg := range r.published() {
		if msg.Kind == kind {
			out = append(out, msg)
		}
	}
	return out
}

var _ broadcast.Broadcaster = (*recordBroadcaster)(nil)

func testDescriptor() DeviceDescriptor {
	return DeviceDescriptor{ID: "dev-1", Name: "test", Platform: "test/amd64"}
}

func testUser() User {
	return User{ID: "u1", Email: "a@b.com", SecondFactorEnabled: false}
}

// newTestCoordinator builds a coordinator against in-process fakes.
func newTestCoordinator(t *testing.T, api authapi.API) (*Coordinator, *credstore.MemoryStore, *recordBroadcaster) {
	t.Helper()

	store := credstore.NewMemoryStore()
	bc := &recordBroadcaster{}
	coordinator, err := New().
		WithAPI(api).
		WithStore(store).
		WithBroadcaster(bc).
		WithDeviceProvider(device.StaticProvider{Desc: testDescriptor()}).
		WithMetricsEnabled(true).
		Build(context.Background())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	t.Cleanup(coordinator.Close)
	return coordinator, store, bc
}
