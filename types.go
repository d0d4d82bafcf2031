package trustgate

import (
	"context"
	"io"
	"time"

	internalaudit "github.com/trustgate/trustgate/internal/audit"
)

// Credential carries a primary username/password pair. It is transient by
// contract: a Credential exists only for the duration of one verification
// call and is never persisted or logged.
type Credential struct {
	Username string
	Password string
}

// UserIdentity is the identity produced by a successful credential
// verification. It is owned by the login flow for the lifetime of the
// session and destroyed on logout.
type UserIdentity struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	MobileNo string `json:"mobileNo"`
	Role     string `json:"role"`
}

// CredentialReply is the credential backend's response contract.
type CredentialReply struct {
	Success   bool         `json:"success"`
	User      UserIdentity `json:"user"`
	SessionID string       `json:"sessionId"`
}

// TrustedDeviceRecord is one persisted trust grant for a (username,
// fingerprint) pair. Records expire after the configured trust window and
// are pruned on every read path.
type TrustedDeviceRecord struct {
	Fingerprint   string
	DeviceLabel   string
	LocationLabel string
	TrustedAt     time.Time
	ExpiresAt     time.Time
}

// OtpChallenge is the live OTP instance associated with one login attempt.
// At most one challenge is active per attempt; a resend discards the old
// challenge and creates a new one.
type OtpChallenge struct {
	Code              string
	SentAt            time.Time
	SessionID         string
	MobileNo          string
	AttemptsRemaining int
}

// SessionGrant is returned when a login flow reaches the established state.
// SessionToken is the long-lived verified-session marker; the short-lived
// identity marker token is issued earlier, by [Engine.StartLogin].
type SessionGrant struct {
	SessionID       string
	Identity        UserIdentity
	SessionToken    string
	EstablishedAt   time.Time
	TrustRegistered bool
}

// LoginResult is returned by [Engine.StartLogin]. Either Grant is set (the
// device was trusted and the OTP step was skipped) or Flow is set and the
// caller drives the challenge to completion.
type LoginResult struct {
	Grant *SessionGrant

	OTPRequired   bool
	Flow          *LoginFlow
	IdentityToken string
}

// CredentialBackend verifies primary credentials. Implementations perform a
// single backend call; the engine validates inputs locally before calling.
type CredentialBackend interface {
	VerifyCredentials(ctx context.Context, username, password string) (*CredentialReply, error)
}

// OTPBackend registers and verifies OTP challenges server-side. Both calls
// exchange opaque encrypted envelopes; the engine encrypts requests and
// decrypts and validates responses through the configured [TransportCodec].
type OTPBackend interface {
	RegisterOTP(ctx context.Context, envelope string) (string, error)
	VerifyOTP(ctx context.Context, envelope string) (string, error)
}

// Notifier dispatches the OTP message to the user's phone. The dispatch is
// best-effort and fire-and-forget by contract: Send returns no result, the
// response of the underlying gateway is not reliably observable, and
// failures are intentionally swallowed. Do not upgrade implementations to a
// reliable call without revisiting that contract.
type Notifier interface {
	Send(ctx context.Context, mobileNo, message string)
}

// TransportCodec is the encrypted transport boundary between the engine and
// the OTP backend. The engine depends only on this contract, not on any
// particular cipher.
type TransportCodec interface {
	Encrypt(plain []byte) (string, error)
	Decrypt(opaque string) ([]byte, error)
	Validate(plain []byte) bool
}

// OTPRegisterRequest is the plaintext registration payload sent to the OTP
// backend inside an encrypted envelope.
type OTPRegisterRequest struct {
	Token     string `json:"token"`
	Username  string `json:"username"`
	MobileNo  string `json:"mobileno"`
	SessionID string `json:"session_id"`
	OTP       string `json:"otp"`
	OTPSendOn string `json:"otpsendon"`
	Status    string `json:"status"`
	UpdatedOn string `json:"updatedon"`
}

// OTPVerifyRequest is the plaintext verification payload sent to the OTP
// backend inside an encrypted envelope.
type OTPVerifyRequest struct {
	Token         string `json:"token"`
	Username      string `json:"username"`
	MobileNo      string `json:"mobileno"`
	SessionID     string `json:"session_id"`
	OTP           string `json:"otp"`
	OTPSendOn     string `json:"otpsendon"`
	OTPVerifiedOn string `json:"otpverifiedon"`
	Status        string `json:"status"`
	UpdatedOn     string `json:"updatedon"`
}

// OTPEnvelope is the decrypted OTP backend response. A verification succeeds
// only when Success is true, ValidCheck is "1", Message contains the
// configured success marker, and SessionID is non-empty; any single miss is
// treated as invalid and Message is surfaced verbatim.
type OTPEnvelope struct {
	Success    bool   `json:"success"`
	ValidCheck string `json:"validcheck"`
	Message    string `json:"message"`
	SessionID  string `json:"session_id"`
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// ZapSink is an [AuditSink] that logs events through a zap logger.
type ZapSink = internalaudit.ZapSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
