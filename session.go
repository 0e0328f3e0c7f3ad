package sessionkit

import (
	"context"

	"github.com/daon-network/sessionkit/broadcast"
	"github.com/daon-network/sessionkit/credstore"
	internalaudit "github.com/daon-network/sessionkit/internal/audit"
)

// Restore revives a persisted session at context startup. When durable
// storage holds a profile and refresh credential, one refresh call validates
// them against the server; on success the session is authenticated with a
// fresh access credential. Any failure resolves to a plain unauthenticated
// session — a failed restore is "not logged in", not an error, so Restore
// returns the resulting snapshot instead of surfacing one.
//
// Restore runs at most once per coordinator lifetime; later calls return the
// current snapshot unchanged.
func (c *Coordinator) Restore(ctx context.Context) Session {
	c.mu.Lock()
	if c.restored || c.closed {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap
	}
	c.restored = true
	c.state = StateRestoring
	c.mu.Unlock()

	rec, ok, err := c.store.Load(ctx)
	if err != nil || !ok {
		c.mu.Lock()
		c.state = StateUnauthenticated
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.emitAudit(ctx, internalaudit.EventRestore, false, "", err, nil)
		return snap
	}

	c.mu.Lock()
	c.user = &User{
		ID:                  rec.UserID,
		Email:               rec.Email,
		SecondFactorEnabled: rec.SecondFactorEnabled,
	}
	c.refreshToken = rec.RefreshToken
	c.mu.Unlock()

	// Refresh fails closed: storage is cleared and state reset before it
	// returns, so the failure path needs no cleanup here.
	if err := c.Refresh(ctx); err != nil {
		c.metricInc(MetricRestoreFailure)
		c.emitAudit(ctx, internalaudit.EventRestore, false, rec.UserID, err, nil)
		return c.Snapshot()
	}

	c.metricInc(MetricRestoreSuccess)
	c.emitAudit(ctx, internalaudit.EventRestore, true, rec.UserID, nil, nil)
	return c.Snapshot()
}

// ApplyLogin installs a fully authenticated session: in-memory state first,
// then durable storage (profile + refresh credential, never the access
// credential), then a login broadcast so sibling contexts adopt the session
// without re-calling the API.
func (c *Coordinator) ApplyLogin(ctx context.Context, user User, accessToken, refreshToken string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrCoordinatorClosed
	}
	c.user = &user
	c.accessToken = accessToken
	c.refreshToken = refreshToken
	c.state = StateAuthenticated
	c.mu.Unlock()

	if err := c.store.Save(ctx, credstore.Record{
		UserID:              user.ID,
		Email:               user.Email,
		SecondFactorEnabled: user.SecondFactorEnabled,
		RefreshToken:        refreshToken,
	}); err != nil {
		return err
	}

	c.metricInc(MetricLoginSuccess)
	c.emitAudit(ctx, internalaudit.EventLogin, true, user.ID, nil, nil)
	c.publish(ctx, broadcast.Message{
		Kind:        broadcast.KindLogin,
		AccessToken: accessToken,
		User: &broadcast.UserInfo{
			ID:                  user.ID,
			Email:               user.Email,
			SecondFactorEnabled: user.SecondFactorEnabled,
		},
	})
	return nil
}

// Logout ends the session. The server-side revocation call is best-effort:
// its failure is audited and swallowed, because a user must always be able to
// log out locally even when the server is unreachable. Local state and
// durable storage are cleared unconditionally and a logout broadcast is
// published.
func (c *Coordinator) Logout(ctx context.Context) {
	c.logout(ctx, true)
}

// logout implements Logout; revoke selects whether the server-side
// revocation call is attempted (a refresh already rejected by the server has
// nothing left to revoke).
func (c *Coordinator) logout(ctx context.Context, revoke bool) {
	c.mu.Lock()
	accessToken := c.accessToken
	refreshToken := c.refreshToken
	var userID string
	if c.user != nil {
		userID = c.user.ID
	}
	c.user = nil
	c.accessToken = ""
	c.refreshToken = ""
	c.state = StateUnauthenticated
	c.mu.Unlock()

	if revoke && refreshToken == "" {
		// A token_refresh broadcast may have dropped the in-memory copy;
		// the rotated value lives in durable storage.
		if rec, ok, _ := c.store.Load(ctx); ok {
			refreshToken = rec.RefreshToken
		}
	}

	if revoke && refreshToken != "" {
		if err := c.api.Revoke(ctx, accessToken, refreshToken); err != nil {
			c.metricInc(MetricRevokeFailed)
			c.emitAudit(ctx, internalaudit.EventRevokeFailed, false, userID, err, nil)
		}
	}

	_ = c.store.Clear(ctx)

	c.metricInc(MetricLogout)
	c.emitAudit(ctx, internalaudit.EventLogout, true, userID, nil, nil)
	c.publish(ctx, broadcast.Message{Kind: broadcast.KindLogout})
}

// RevokeAll revokes every session of the authenticated user server-side,
// then performs a local logout. Unlike Logout, the revocation here is the
// point of the call, so its failure is surfaced before any state is cleared.
func (c *Coordinator) RevokeAll(ctx context.Context) error {
	c.mu.Lock()
	accessToken := c.accessToken
	c.mu.Unlock()
	if accessToken == "" {
		return ErrNotAuthenticated
	}
	if err := c.api.RevokeAll(ctx, accessToken); err != nil {
		return err
	}
	c.logout(ctx, false)
	return nil
}
