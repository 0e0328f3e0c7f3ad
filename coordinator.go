package sessionkit

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/daon-network/sessionkit/authapi"
	"github.com/daon-network/sessionkit/broadcast"
	"github.com/daon-network/sessionkit/credstore"
	"github.com/daon-network/sessionkit/device"
	internalaudit "github.com/daon-network/sessionkit/internal/audit"
)

// Coordinator owns the authoritative in-memory session state for one context
// and every transition on it: restore, login, refresh, logout, and the
// application of sibling broadcasts. Construct via [Builder.Build]; safe for
// concurrent use afterwards.
type Coordinator struct {
	config      Config
	api         authapi.API
	store       credstore.Store
	broadcaster broadcast.Broadcaster
	devices     device.Provider
	audit       *internalaudit.Recorder
	metrics     *Metrics

	// contextID identifies this context in broadcast messages so echoed
	// deliveries of our own publishes are ignored.
	contextID string
	devID     atomic.Value

	flight singleflight.Group

	mu           sync.Mutex
	state        State
	user         *User
	accessToken  string
	refreshToken string
	restored     bool
	closed       bool
}

// Close releases the broadcast subscription and drains the audit dispatcher.
// The coordinator must be closed on every context teardown path; session
// state is not cleared, only coordination resources are released.
func (c *Coordinator) Close() {
	if c == nil {
		return
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	if c.broadcaster != nil {
		_ = c.broadcaster.Close()
	}
	if c.audit != nil {
		c.audit.Close()
	}
}

// ContextID returns this context's broadcast origin identifier.
func (c *Coordinator) ContextID() string {
	return c.contextID
}

// Snapshot returns a read-only copy of the current session.
func (c *Coordinator) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Coordinator) snapshotLocked() Session {
	var user *User
	if c.user != nil {
		u := *c.user
		user = &u
	}
	authenticated := user != nil && c.accessToken != ""
	return Session{
		State:         c.state,
		User:          user,
		AccessToken:   c.accessToken,
		Authenticated: authenticated,
		Loading:       c.state == StateRestoring,
	}
}

// AuditDropped reports how many audit events were discarded under pressure.
func (c *Coordinator) AuditDropped() uint64 {
	if c == nil || c.audit == nil {
		return 0
	}
	return c.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all counters.
func (c *Coordinator) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return c.metrics.Snapshot()
}

func (c *Coordinator) metricInc(id MetricID) {
	if c == nil || c.metrics == nil {
		return
	}
	c.metrics.Inc(id)
}

// descriptor fetches the device descriptor, degrading to an empty descriptor
// when the provider fails; the server then simply treats the device as
// unrecognized.
func (c *Coordinator) descriptor(ctx context.Context) DeviceDescriptor {
	desc, err := c.devices.Descriptor(ctx)
	if err != nil {
		return DeviceDescriptor{}
	}
	c.devID.Store(desc.ID)
	return desc
}

func (c *Coordinator) deviceID() string {
	id, _ := c.devID.Load().(string)
	return id
}

// publish fans one message out to siblings. Publish failures never fail the
// triggering operation; they only widen the consistency window.
func (c *Coordinator) publish(ctx context.Context, msg broadcast.Message) {
	msg.Origin = c.contextID
	if err := c.broadcaster.Publish(ctx, msg); err != nil {
		c.metricInc(MetricBroadcastPublishFailed)
		c.emitAudit(ctx, internalaudit.EventPublishFailed, false, "", err, func() map[string]string {
			return map[string]string{"kind": string(msg.Kind)}
		})
		return
	}
	c.metricInc(MetricBroadcastPublished)
}

// handleBroadcast applies one sibling message as an idempotent overwrite of
// local state. Remote login and token_refresh messages never re-trigger API
// or storage side effects; a remote logout clears durable storage so the
// stores converge even if the sibling crashed mid-logout.
func (c *Coordinator) handleBroadcast(msg broadcast.Message) {
	if msg.Origin == c.contextID {
		c.metricInc(MetricBroadcastIgnored)
		return
	}

	ctx := context.Background()
	switch msg.Kind {
	case broadcast.KindLogin:
		if msg.User == nil || msg.AccessToken == "" {
			c.metricInc(MetricBroadcastIgnored)
			return
		}
		c.mu.Lock()
		c.user = &User{
			ID:                  msg.User.ID,
			Email:               msg.User.Email,
			SecondFactorEnabled: msg.User.SecondFactorEnabled,
		}
		c.accessToken = msg.AccessToken
		c.refreshToken = ""
		c.state = StateAuthenticated
		userID := c.user.ID
		c.mu.Unlock()
		c.metricInc(MetricBroadcastApplied)
		c.emitAudit(ctx, internalaudit.EventBroadcastApplied, true, userID, nil, func() map[string]string {
			return map[string]string{"kind": string(broadcast.KindLogin), "origin": msg.Origin}
		})

	case broadcast.KindTokenRefresh:
		c.mu.Lock()
		c.accessToken = msg.AccessToken
		// The rotated refresh credential is not broadcast; drop the stale
		// in-memory copy so the next refresh reads durable storage.
		c.refreshToken = ""
		if c.user != nil && c.accessToken != "" {
			c.state = StateAuthenticated
		}
		c.mu.Unlock()
		c.metricInc(MetricBroadcastApplied)
		c.emitAudit(ctx, internalaudit.EventBroadcastApplied, true, "", nil, func() map[string]string {
			return map[string]string{"kind": string(broadcast.KindTokenRefresh), "origin": msg.Origin}
		})

	case broadcast.KindLogout:
		c.mu.Lock()
		c.user = nil
		c.accessToken = ""
		c.refreshToken = ""
		c.state = StateUnauthenticated
		c.mu.Unlock()
		_ = c.store.Clear(ctx)
		c.metricInc(MetricBroadcastApplied)
		c.emitAudit(ctx, internalaudit.EventBroadcastApplied, true, "", nil, func() map[string]string {
			return map[string]string{"kind": string(broadcast.KindLogout), "origin": msg.Origin}
		})

	default:
		c.metricInc(MetricBroadcastIgnored)
	}
}
