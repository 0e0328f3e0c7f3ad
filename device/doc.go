// Package device produces the stable per-device descriptor forwarded to the
// Authentication API.
//
// The server evaluates second-factor exemptions against the descriptor; this
// package never derives or assumes trust locally. The identifier is minted
// once per device and persisted so the server can recognize the device across
// sessions and honor an active trust window.
//
// # What this package must NOT do
//
//   - Decide whether a device is trusted.
//   - Import sessionkit or any sibling package other than authapi's DTOs.
package device
