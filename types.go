package sessionkit

import (
	"github.com/daon-network/sessionkit/authapi"
)

// User is the server-sourced profile. Immutable on the client except by
// server-sourced updates; cached verbatim in durable storage alongside the
// refresh credential.
type User = authapi.User

// DeviceDescriptor identifies the calling device to the Authentication API.
type DeviceDescriptor = authapi.DeviceDescriptor

// Device is a registered device as reported by the server. The server owns
// trust; the client only reads, renames, or removes registrations.
type Device = authapi.Device

// SecondFactorProvision carries TOTP provisioning data during enrollment.
type SecondFactorProvision = authapi.SecondFactorProvision

// State is the session state machine's position.
type State uint8

const (
	// StateUninitialized is the state before Restore has run.
	StateUninitialized State = iota
	// StateRestoring is the transient state while a persisted session is
	// being revalidated against the server.
	StateRestoring
	// StateAuthenticated holds a user and a live access credential.
	StateAuthenticated
	// StateUnauthenticated holds no session. Re-enterable: a later login or
	// received login broadcast transitions back to StateAuthenticated.
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRestoring:
		return "restoring"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	}
	return "unknown"
}

// Session is a read-only snapshot of the current context's session.
// Authenticated is true iff both User and AccessToken are present; the
// access credential in the snapshot is never written to durable storage.
type Session struct {
	State         State
	User          *User
	AccessToken   string
	Authenticated bool
	Loading       bool
}
