package authapi

import (
	"context"
	"time"
)

// User is the server-sourced profile cached alongside the refresh credential.
type User struct {
	ID                  string `json:"id"`
	Email               string `json:"email"`
	SecondFactorEnabled bool   `json:"second_factor_enabled"`
}

// DeviceDescriptor identifies the calling device. The server evaluates
// second-factor exemptions against it; the client only forwards it.
type DeviceDescriptor struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Platform string `json:"platform"`
}

// Device is a registered device as reported by the device-list endpoint.
// TrustedUntil is nil when the device is not currently trusted.
type Device struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Fingerprint  string     `json:"fingerprint"`
	TrustedUntil *time.Time `json:"trusted_until,omitempty"`
	LastSeenAt   time.Time  `json:"last_seen_at"`
}

// Grant carries durable credentials issued when an authentication flow
// completes. RefreshToken is opaque and subject to server-side rotation.
type Grant struct {
	AccessToken  string `json:"access_credential"`
	RefreshToken string `json:"refresh_credential"`
	User         User   `json:"user"`
}

// Second-factor states the verify endpoint may demand before issuing a Grant.
const (
	SecondFactorRequired      = "required"
	SecondFactorSetupRequired = "setup_required"
)

// VerifyResult is the outcome of exchanging a magic-link token. Exactly one
// of Grant or PendingSession is set: a Grant when the user has no second
// factor or the device is inside its trust window, otherwise a short-lived
// pending-session identifier plus the demanded SecondFactorState.
type VerifyResult struct {
	Grant          *Grant `json:"grant,omitempty"`
	PendingSession string `json:"pending_session_id,omitempty"`
	// SecondFactorState is SecondFactorRequired or SecondFactorSetupRequired
	// when PendingSession is set.
	SecondFactorState string `json:"second_factor_state,omitempty"`
}

// SecondFactorProvision is returned by the 2FA setup endpoint. URI is an
// otpauth:// provisioning URI; Secret is its base32 secret.
type SecondFactorProvision struct {
	Secret string `json:"secret"`
	URI    string `json:"uri"`
}

// RefreshResult is the outcome of a refresh call. RefreshToken is empty when
// the server did not rotate the credential; the caller must then retain the
// previous value unchanged.
type RefreshResult struct {
	AccessToken  string `json:"access_credential"`
	RefreshToken string `json:"refresh_credential,omitempty"`
}

// API is the Authentication API surface the session coordinator depends on.
// [Client] is the production implementation; tests substitute fakes.
type API interface {
	RequestMagicLink(ctx context.Context, email string) error
	VerifyMagicLink(ctx context.Context, token string, device DeviceDescriptor) (*VerifyResult, error)
	BeginSecondFactorSetup(ctx context.Context, pendingSession string) (*SecondFactorProvision, error)
	CompleteSecondFactorSetup(ctx context.Context, pendingSession, code string, backupAck bool) (*Grant, error)
	CompleteSecondFactor(ctx context.Context, pendingSession, code string) (*Grant, error)
	Refresh(ctx context.Context, refreshToken string, device DeviceDescriptor) (*RefreshResult, error)
	Revoke(ctx context.Context, accessToken, refreshToken string) error
	RevokeAll(ctx context.Context, accessToken string) error
	ListDevices(ctx context.Context, accessToken string) ([]Device, error)
	RenameDevice(ctx context.Context, accessToken, deviceID, name string) (*Device, error)
	RemoveDevice(ctx context.Context, accessToken, deviceID string) error
}
