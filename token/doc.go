// Package token signs and validates the engine's session marker tokens.
// Two kinds exist, mirroring the two marker lifetimes: a short-lived
// identity token issued right after credential verification and a
// long-lived verified-session token issued on establishment.
package token
