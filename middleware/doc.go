// Package middleware exposes HTTP middleware adapters that gate handlers on
// a valid verified-session token issued by trustgate.Engine.
//
// # Guards
//
//   - [RequireSession] — verified-session token plus session marker check.
//
// The guard reads the Authorization header, calls Engine.ValidateSession,
// and injects the validated identity into the request context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself — all decisions are delegated to
// Engine.ValidateSession.
//
// # What this package must NOT do
//
//   - Parse or create marker tokens directly (delegates to Engine).
//   - Access Redis (Engine handles I/O).
//   - Make authorization decisions beyond pass/reject from ValidateSession.
package middleware
