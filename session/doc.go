// Package session persists the engine's two session markers: the short-lived
// identity marker written right after credential verification and the
// long-lived verified marker written when a login flow establishes. Markers
// are binary-encoded Redis values whose key TTL matches the marker lifetime.
//
// # What this package must NOT do
//
//   - Make authorization decisions; it stores and retrieves markers only.
//   - Import the root package (no import cycles).
package session
