// Package trustgate provides a device-trust-aware multi-factor login flow engine:
// primary credential verification, a conditional one-time-code (OTP) challenge with
// countdown expiry and a bounded resend budget, and Redis-backed trusted-device
// registration that lets a recognized device skip the OTP step on later logins.
//
// The package is designed for concurrent server workloads: Engine methods are safe
// to call from multiple goroutines after initialization through [Builder.Build].
// A [LoginFlow] returned by [Engine.StartLogin] belongs to a single login attempt;
// it serializes its own submissions and must be released with [LoginFlow.Cancel]
// when abandoned.
//
// # Architecture boundaries
//
// trustgate is the public surface. It exposes [Engine], [Builder], [Config],
// [LoginFlow], and the collaborator interfaces ([CredentialBackend], [OTPBackend],
// [Notifier], [TransportCodec], [SignalProvider]). Internal coordination — audit
// dispatch, record encoding, randomness — lives under internal/ and is never
// exported. Session marker persistence lives in the session subpackage, marker
// token signing in the token subpackage.
//
// # What this package must NOT do
//
//   - Store or hash primary credentials. The credential backend owns the
//     credential store; a [Credential] exists only for the duration of one
//     verification call.
//   - Generate, store, or compare OTP state server-side. The OTP backend owns
//     challenge storage and comparison; the engine only registers and submits.
//   - Upgrade the best-effort notification dispatch to a reliable call. Its
//     unreliability is part of the contract (see [Notifier]).
//
// # Ordering contract
//
// Credential verification fully completes before any trust lookup or OTP issuance.
// OTP backend registration completes before the flow accepts code entry. Exactly
// one countdown timer runs per active challenge, and exactly one code submission
// may be in flight at a time; the flow rejects a second submission instead of
// racing the first.
package trustgate
