package credstore

import (
	"context"
	"errors"
)

// ErrBackend is returned when the underlying storage is unreachable or
// rejects an operation. A missing or corrupt record is not a backend error.
var ErrBackend = errors.New("credential store backend unavailable")

// Record is the durable session remnant: the cached profile and the refresh
// credential, persisted together on login and cleared together on logout.
type Record struct {
	UserID              string `json:"user_id"`
	Email               string `json:"email"`
	SecondFactorEnabled bool   `json:"second_factor_enabled"`
	RefreshToken        string `json:"refresh_credential"`
}

// Store is the durable storage contract. Implementations must be safe for
// concurrent use and must fail soft on corrupt records: Load returns
// ok=false and the implementation clears the entry rather than surfacing it.
type Store interface {
	// Save overwrites the stored record.
	Save(ctx context.Context, rec Record) error
	// Load returns the stored record, or ok=false when none is present.
	Load(ctx context.Context) (rec Record, ok bool, err error)
	// UpdateRefreshToken replaces only the refresh credential, keeping the
	// cached profile. A no-op when no record is stored.
	UpdateRefreshToken(ctx context.Context, refreshToken string) error
	// Clear removes profile and refresh credential together. Idempotent.
	Clear(ctx context.Context) error
}
