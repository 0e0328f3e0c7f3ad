package sessionkit

import (
	"errors"
	"time"
)

// Config defines coordinator behavior. Configure before [Builder.Build] and
// treat as immutable afterwards.
type Config struct {
	API       APIConfig
	Refresh   RefreshConfig
	Broadcast BroadcastConfig
	Store     StoreConfig
	Device    DeviceConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig configures the Authentication API client constructed by
// [Builder.WithAPIBaseURL]. Ignored when a prebuilt client is injected.
type APIConfig struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

/*
====================================
REFRESH CONFIG
====================================
*/

// RefreshConfig tunes proactive refresh. ExpiryLeeway is how long before the
// access credential's JWT expiry [Coordinator.AccessToken] starts refreshing.
// A non-JWT access credential disables the expiry peek; refreshes then happen
// only on explicit calls.
type RefreshConfig struct {
	ExpiryLeeway time.Duration
}

/*
====================================
BROADCAST CONFIG
====================================
*/

// BroadcastConfig names the one cross-context channel per deployment.
type BroadcastConfig struct {
	Channel string
}

/*
====================================
STORE / DEVICE CONFIG
====================================
*/

// StoreConfig configures Redis-backed durable storage key layout.
type StoreConfig struct {
	RedisPrefix string
}

// DeviceConfig overrides the advertised device name; empty uses the hostname.
type DeviceConfig struct {
	Name string
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process counters.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the configuration [New] starts from. Callers that
// build a Config by hand should start here rather than from the zero value.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		API: APIConfig{
			Timeout:   15 * time.Second,
			UserAgent: "sessionkit",
		},
		Refresh: RefreshConfig{
			ExpiryLeeway: 30 * time.Second,
		},
		Broadcast: BroadcastConfig{
			Channel: "sessionkit:events",
		},
		Store: StoreConfig{
			RedisPrefix: "skc",
		},
		Audit: AuditConfig{
			BufferSize: 64,
			DropIfFull: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// All fields are value types; a shallow copy is a deep copy.
	return cfg
}

// Validate rejects configurations the coordinator cannot honor.
func (c *Config) Validate() error {
	if c.Refresh.ExpiryLeeway < 0 {
		return errors.New("refresh expiry leeway must not be negative")
	}
	if c.API.Timeout < 0 {
		return errors.New("api timeout must not be negative")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("audit buffer size must be positive when audit is enabled")
	}
	if c.Broadcast.Channel == "" {
		return errors.New("broadcast channel must not be empty")
	}
	return nil
}
