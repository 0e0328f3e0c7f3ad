package sessionkit

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/daon-network/sessionkit/authapi"
	"github.com/daon-network/sessionkit/broadcast"
	"github.com/daon-network/sessionkit/credstore"
	"github.com/daon-network/sessionkit/device"
	internalaudit "github.com/daon-network/sessionkit/internal/audit"
)

// Builder assembles a [Coordinator]. Construction is allocation-only until
// Build; no I/O happens before it. A Builder is single-use.
type Builder struct {
	config Config

	api         authapi.API
	store       credstore.Store
	broadcaster broadcast.Broadcaster
	devices     device.Provider
	redis       redis.UniversalClient
	stateDir    string
	auditSink   AuditSink

	built bool
}

// New creates a Builder with default configuration.
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithAPI injects an Authentication API implementation; tests use fakes here.
func (b *Builder) WithAPI(api authapi.API) *Builder {
	b.api = api
	return b
}

// WithAPIBaseURL constructs the production HTTP client against baseURL at
// Build time, honoring [APIConfig].
func (b *Builder) WithAPIBaseURL(baseURL string) *Builder {
	b.config.API.BaseURL = baseURL
	return b
}

// WithStore injects the durable credential store.
func (b *Builder) WithStore(store credstore.Store) *Builder {
	b.store = store
	return b
}

// WithStateDir uses a file-backed store and device identity rooted at dir.
// Ignored for concerns already injected explicitly.
func (b *Builder) WithStateDir(dir string) *Builder {
	b.stateDir = dir
	return b
}

// WithBroadcaster injects the cross-context broadcaster.
func (b *Builder) WithBroadcaster(bc broadcast.Broadcaster) *Builder {
	b.broadcaster = bc
	return b
}

// WithRedis wires Redis as the coordination surface: the broadcast transport
// and, unless a store was injected, shared durable storage. When the
// broadcast transport cannot be constructed the coordinator degrades to a
// no-op broadcaster; the store does not degrade.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithDeviceProvider injects the device descriptor source.
func (b *Builder) WithDeviceProvider(p device.Provider) *Builder {
	b.devices = p
	return b
}

// WithAuditSink enables auditing into sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.config.Audit.Enabled = true
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration, assembles the coordinator, and
// subscribes it to the broadcast channel. The session starts in
// [StateUninitialized]; call [Coordinator.Restore] once at startup.
func (b *Builder) Build(ctx context.Context) (*Coordinator, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	b.built = true

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	api := b.api
	if api == nil {
		if cfg.API.BaseURL == "" {
			return nil, errors.New("auth api required: provide WithAPI or WithAPIBaseURL")
		}
		opts := []authapi.Option{authapi.WithUserAgent(cfg.API.UserAgent)}
		if cfg.API.Timeout > 0 {
			opts = append(opts, authapi.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}))
		}
		api = authapi.NewClient(cfg.API.BaseURL, opts...)
	}

	store := b.store
	if store == nil {
		switch {
		case b.stateDir != "":
			fs, err := credstore.NewFileStore(filepath.Join(b.stateDir, "credentials"))
			if err != nil {
				return nil, err
			}
			store = fs
		case b.redis != nil:
			store = credstore.NewRedisStore(b.redis, cfg.Store.RedisPrefix)
		default:
			return nil, errors.New("credential store required: provide WithStore, WithStateDir, or WithRedis")
		}
	}

	devices := b.devices
	if devices == nil {
		if b.stateDir != "" {
			devices = device.NewFileProvider(b.stateDir, cfg.Device.Name)
		} else {
			devices = device.StaticProvider{Desc: DeviceDescriptor{
				ID:   uuid.NewString(),
				Name: cfg.Device.Name,
			}}
		}
	}

	// The broadcaster capability is decided exactly once: available, or a
	// permanent no-op. Call sites never re-check.
	broadcaster := b.broadcaster
	if broadcaster == nil {
		if b.redis != nil {
			rb, err := broadcast.NewRedisBroadcaster(ctx, b.redis, cfg.Broadcast.Channel)
			if err != nil {
				broadcaster = broadcast.NoopBroadcaster{}
			} else {
				broadcaster = rb
			}
		} else {
			broadcaster = broadcast.NoopBroadcaster{}
		}
	}

	c := &Coordinator{
		config:      cfg,
		api:         api,
		store:       store,
		broadcaster: broadcaster,
		devices:     devices,
		metrics:     NewMetrics(cfg.Metrics),
		contextID:   uuid.NewString(),
		state:       StateUninitialized,
	}

	if cfg.Audit.Enabled {
		sink := b.auditSink
		if sink == nil {
			sink = internalaudit.NoOpSink{}
		}
		dispatcher := internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:    true,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, sink)
		c.audit = internalaudit.NewRecorder(dispatcher, c.contextID, c.deviceID)
	}

	if err := broadcaster.Subscribe(c.handleBroadcast); err != nil {
		return nil, err
	}

	return c, nil
}
