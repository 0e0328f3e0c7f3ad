package authapi

import "errors"

var (
	// ErrNetwork wraps transport-level failures: the request could not be sent
	// or the response could not be parsed. Callers may retry.
	ErrNetwork = errors.New("auth api unreachable")
	// ErrInvalidOrExpiredLink is returned when a magic-link token was already
	// consumed, expired, or never issued.
	ErrInvalidOrExpiredLink = errors.New("invalid or expired magic link")
	// ErrInvalidCode is returned when a second-factor code does not verify.
	// The pending session remains valid for bounded retries.
	ErrInvalidCode = errors.New("invalid second factor code")
	// ErrPendingSessionExpired is returned when a second-factor attempt
	// identifier is no longer valid.
	ErrPendingSessionExpired = errors.New("pending session expired")
	// ErrNoCredential is returned when an operation requires a refresh
	// credential and none is held.
	ErrNoCredential = errors.New("no refresh credential")
	// ErrCredentialRevoked is returned when the server rejects a refresh
	// credential as revoked, rotated away, or unknown.
	ErrCredentialRevoked = errors.New("refresh credential revoked or rotated")
	// ErrRateLimited is returned when the server throttles the request.
	ErrRateLimited = errors.New("rate limited")
	// ErrInvalidEmail is returned when a magic-link request carries a
	// malformed address.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrServer is returned for unclassified server-side failures.
	ErrServer = errors.New("auth api error")
)

// Wire error codes returned in the "error" field of a failure body.
const (
	codeInvalidLink    = "invalid_link"
	codeInvalidCode    = "invalid_code"
	codePendingExpired = "pending_session_expired"
	codeRevoked        = "credential_revoked"
	codeRateLimited    = "rate_limited"
	codeInvalidEmail   = "invalid_email"
	codeMissingRefresh = "missing_refresh_credential"
)

func mapErrorCode(code string, status int) error {
	switch code {
	case codeInvalidLink:
		return ErrInvalidOrExpiredLink
	case codeInvalidCode:
		return ErrInvalidCode
	case codePendingExpired:
		return ErrPendingSessionExpired
	case codeRevoked:
		return ErrCredentialRevoked
	case codeRateLimited:
		return ErrRateLimited
	case codeInvalidEmail:
		return ErrInvalidEmail
	case codeMissingRefresh:
		return ErrNoCredential
	}
	if status == 401 || status == 403 {
		return ErrCredentialRevoked
	}
	if status == 429 {
		return ErrRateLimited
	}
	return ErrServer
}
