package device

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/daon-network/sessionkit/authapi"
)

const idFile = "device_id"

// Provider yields the descriptor for the current device.
type Provider interface {
	Descriptor(ctx context.Context) (authapi.DeviceDescriptor, error)
}

// FileProvider mints a device identifier on first use and persists it beside
// the credential store, so the same device presents the same identifier for
// the lifetime of its state directory.
type FileProvider struct {
	dir  string
	name string

	mu     sync.Mutex
	cached *authapi.DeviceDescriptor
}

// NewFileProvider creates a provider rooted at dir. An empty name defaults to
// the hostname.
func NewFileProvider(dir, name string) *FileProvider {
	return &FileProvider{dir: dir, name: name}
}

func (p *FileProvider) Descriptor(ctx context.Context) (authapi.DeviceDescriptor, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached != nil {
		return *p.cached, nil
	}

	id, err := p.loadOrMintID()
	if err != nil {
		return authapi.DeviceDescriptor{}, err
	}

	name := p.name
	if name == "" {
		if host, err := os.Hostname(); err == nil {
			name = host
		} else {
			name = "unknown"
		}
	}

	desc := authapi.DeviceDescriptor{
		ID:       id,
		Name:     name,
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
	}
	p.cached = &desc
	return desc, nil
}

func (p *FileProvider) loadOrMintID() (string, error) {
	path := filepath.Join(p.dir, idFile)
	if raw, err := os.ReadFile(path); err == nil {
		if id := strings.TrimSpace(string(raw)); id != "" {
			return id, nil
		}
	}

	if err := os.MkdirAll(p.dir, 0o700); err != nil {
		return "", fmt.Errorf("device id dir: %w", err)
	}
	id := uuid.NewString()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("persist device id: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("persist device id: %w", err)
	}
	return id, nil
}

// StaticProvider returns a fixed descriptor; used by tests and by callers
// that manage device identity themselves.
type StaticProvider struct {
	Desc authapi.DeviceDescriptor
}

func (p StaticProvider) Descriptor(context.Context) (authapi.DeviceDescriptor, error) {
	return p.Desc, nil
}

var (
	_ Provider = (*FileProvider)(nil)
	_ Provider = StaticProvider{}
)
