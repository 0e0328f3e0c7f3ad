package sessionkit

import (
	"errors"

	"github.com/daon-network/sessionkit/authapi"
)

// API error taxonomy, re-exported so callers match with errors.Is against
// this package alone.
var (
	// ErrNetwork wraps transport-level failures; callers may offer retry.
	ErrNetwork = authapi.ErrNetwork
	// ErrInvalidOrExpiredLink rejects a consumed, expired, or unknown
	// magic-link token; the login flow resets to its start.
	ErrInvalidOrExpiredLink = authapi.ErrInvalidOrExpiredLink
	// ErrInvalidCode rejects a second-factor code; the flow stays at the
	// second-factor stage for bounded retries (enforced server-side).
	ErrInvalidCode = authapi.ErrInvalidCode
	// ErrPendingSessionExpired invalidates a second-factor attempt.
	ErrPendingSessionExpired = authapi.ErrPendingSessionExpired
	// ErrNoCredential is returned when a refresh is requested and no refresh
	// credential is held in memory or durable storage.
	ErrNoCredential = authapi.ErrNoCredential
	// ErrCredentialRevoked is the server rejecting a refresh credential as
	// revoked or rotated away. The session is already logged out locally
	// when a caller observes it.
	ErrCredentialRevoked = authapi.ErrCredentialRevoked
	// ErrRateLimited throttles a flow operation.
	ErrRateLimited = authapi.ErrRateLimited
	// ErrInvalidEmail rejects a malformed magic-link address.
	ErrInvalidEmail = authapi.ErrInvalidEmail
	// ErrServer covers unclassified server failures.
	ErrServer = authapi.ErrServer
)

var (
	// ErrNotAuthenticated is returned by operations requiring an
	// authenticated session when none is held.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrFlowStage is returned when a login-flow operation is invoked from a
	// stage that does not permit it.
	ErrFlowStage = errors.New("login flow stage does not permit this operation")
	// ErrCoordinatorClosed is returned after Close.
	ErrCoordinatorClosed = errors.New("coordinator closed")
)
