// Package authapi implements the HTTP client for the remote Authentication API:
// magic-link issuance and verification, second-factor setup and completion,
// refresh-token rotation, revocation, and the device-trust endpoints.
//
// # Error mapping
//
// Transport failures (request could not be sent or the response could not be
// parsed) wrap [ErrNetwork] so callers can distinguish "retry later" from
// corrective flows. API rejections are decoded from the response body's error
// code and mapped onto the package sentinels ([ErrInvalidOrExpiredLink],
// [ErrInvalidCode], [ErrCredentialRevoked], ...), falling back on the HTTP
// status class when no code is present.
//
// # Architecture boundaries
//
// This package owns request/response DTOs, wire encoding, and error mapping.
// It does NOT hold session state, persist credentials, or decide retry and
// logout policy — those responsibilities belong to the Coordinator.
//
// # What this package must NOT do
//
//   - Import sessionkit or any sibling package (no upward imports).
//   - Cache responses or derive device trust locally.
//   - Log or persist credentials.
package authapi
