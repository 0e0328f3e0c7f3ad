package sessionkit

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/daon-network/sessionkit/broadcast"
	internalaudit "github.com/daon-network/sessionkit/internal/audit"
)

// refreshFlightKey is the single in-flight registry key: one refresh per
// context, ever, regardless of how many callers ask.
const refreshFlightKey = "refresh"

// Refresh obtains a new access credential from the refresh endpoint.
//
// Concurrent callers within this context coalesce onto one outbound call and
// all observe its outcome; the in-flight entry is cleared on every exit path.
// On success the access credential is replaced in memory and, only when the
// server rotated it, the refresh credential is adopted in memory and durable
// storage; a token_refresh broadcast carrying only the access credential is
// published. On any API failure the session fails closed into a full logout
// before the error is returned — a refresh failure never leaves a partial
// session behind.
//
// [ErrNoCredential] is returned without side effects when neither memory nor
// durable storage holds a refresh credential.
func (c *Coordinator) Refresh(ctx context.Context) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrCoordinatorClosed
	}

	// The shared call must not die with whichever caller happened to
	// initiate it, so it runs detached from the caller's cancellation.
	result := c.flight.DoChan(refreshFlightKey, func() (any, error) {
		return nil, c.doRefresh(context.WithoutCancel(ctx))
	})

	select {
	case res := <-result:
		if res.Shared {
			c.metricInc(MetricRefreshCoalesced)
		}
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Coordinator) doRefresh(ctx context.Context) error {
	c.mu.Lock()
	refreshToken := c.refreshToken
	c.mu.Unlock()

	if refreshToken == "" {
		rec, ok, err := c.store.Load(ctx)
		if err != nil || !ok {
			return ErrNoCredential
		}
		refreshToken = rec.RefreshToken
		c.mu.Lock()
		c.refreshToken = refreshToken
		if c.user == nil {
			c.user = &User{
				ID:                  rec.UserID,
				Email:               rec.Email,
				SecondFactorEnabled: rec.SecondFactorEnabled,
			}
		}
		c.mu.Unlock()
	}

	result, err := c.api.Refresh(ctx, refreshToken, c.descriptor(ctx))
	if err != nil {
		c.metricInc(MetricRefreshFailure)
		c.emitAudit(ctx, internalaudit.EventRefreshFailure, false, "", err, nil)
		// Fail closed: any rejection — revoked, rotated away by a sibling,
		// or an unreachable server — ends the session visibly rather than
		// leaving an ambiguous half-state.
		c.logout(ctx, false)
		return err
	}

	rotated := result.RefreshToken != "" && result.RefreshToken != refreshToken
	c.mu.Lock()
	if c.refreshToken != refreshToken {
		// The session moved while the call was in flight — a logout or a
		// sibling's rotation dropped the credential this call was made with.
		// Installing the stale result would resurrect a session the context
		// no longer owns.
		c.mu.Unlock()
		return ErrNoCredential
	}
	c.accessToken = result.AccessToken
	if rotated {
		c.refreshToken = result.RefreshToken
	}
	if c.user != nil {
		c.state = StateAuthenticated
	}
	var userID string
	if c.user != nil {
		userID = c.user.ID
	}
	c.mu.Unlock()

	if rotated {
		c.metricInc(MetricRefreshRotated)
		if err := c.store.UpdateRefreshToken(ctx, result.RefreshToken); err != nil {
			c.emitAudit(ctx, internalaudit.EventRefreshFailure, false, userID, err, func() map[string]string {
				return map[string]string{"reason": "persist_rotated_credential"}
			})
		}
	}

	c.metricInc(MetricRefreshSuccess)
	c.emitAudit(ctx, internalaudit.EventRefreshSuccess, true, userID, nil, func() map[string]string {
		if rotated {
			return map[string]string{"rotated": "true"}
		}
		return nil
	})
	c.publish(ctx, broadcast.Message{
		Kind:        broadcast.KindTokenRefresh,
		AccessToken: result.AccessToken,
	})
	return nil
}

// AccessToken returns a live access credential for API calls, driving a
// single-flight refresh first when none is held or the current one is within
// [RefreshConfig.ExpiryLeeway] of its JWT expiry. Access credentials that are
// not JWTs skip the expiry peek and are returned as-is.
func (c *Coordinator) AccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	token := c.accessToken
	c.mu.Unlock()

	if token != "" && !c.nearExpiry(token) {
		return token, nil
	}

	if err := c.Refresh(ctx); err != nil {
		return "", err
	}

	c.mu.Lock()
	token = c.accessToken
	c.mu.Unlock()
	if token == "" {
		return "", ErrNoCredential
	}
	return token, nil
}

// nearExpiry peeks at the access credential's exp claim without verifying
// the signature; validation is the server's job. Unparseable tokens fail
// soft as "not near expiry".
func (c *Coordinator) nearExpiry(token string) bool {
	expiry, ok := accessTokenExpiry(token)
	if !ok {
		return false
	}
	return time.Until(expiry) <= c.config.Refresh.ExpiryLeeway
}

func accessTokenExpiry(token string) (time.Time, bool) {
	var claims jwt.RegisteredClaims
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// IsCredentialFailure reports whether err represents the server rejecting
// the refresh credential itself, as opposed to a transport failure.
func IsCredentialFailure(err error) bool {
	return errors.Is(err, ErrCredentialRevoked)
}
