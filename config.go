package trustgate

import (
	"errors"
	"time"
)

// Config defines a public type used by trustgate APIs.
//
// Config instances are intended to be configured during initialization and then
// treated as immutable unless documented otherwise.
type Config struct {
	OTP     OTPConfig
	Trust   TrustConfig
	Session SessionConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
OTP CONFIG
====================================
*/

// OTPConfig defines a public type used by trustgate APIs.
//
// OTPConfig instances are intended to be configured during initialization and then
// treated as immutable unless documented otherwise.
type OTPConfig struct {
	// Digits is the OTP code length. Codes are numeric.
	Digits int
	// ChallengeTTL is the countdown window for one challenge.
	ChallengeTTL time.Duration
	// MaxResendAttempts bounds how many times a challenge may be reissued
	// before the flow is forced to restart.
	MaxResendAttempts int
	// SuccessMarker is the substring the backend's verification message must
	// contain for the response to count as a success.
	SuccessMarker string
	// GatewayToken is the shared token carried in OTP backend payloads.
	GatewayToken string
	// MessageTemplate formats the dispatched text; %s receives the code.
	MessageTemplate string
	// TimestampLayout formats otpsendon/otpverifiedon/updatedon fields.
	TimestampLayout string
}

/*
====================================
TRUST CONFIG
====================================
*/

// TrustConfig defines a public type used by trustgate APIs.
//
// TrustConfig instances are intended to be configured during initialization and then
// treated as immutable unless documented otherwise.
type TrustConfig struct {
	// Window is how long a registered device stays trusted.
	Window time.Duration
	// RedisPrefix namespaces trusted-device keys.
	RedisPrefix string
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by trustgate APIs.
//
// SessionConfig instances are intended to be configured during initialization and then
// treated as immutable unless documented otherwise.
type SessionConfig struct {
	// IdentityTTL bounds the pre-verification identity marker.
	IdentityTTL time.Duration
	// VerifiedTTL bounds the post-verification session marker.
	VerifiedTTL time.Duration
	// SigningKey signs marker tokens (HS256). Required.
	SigningKey []byte
	// Issuer is stamped into marker token claims.
	Issuer string
	// RedisPrefix namespaces session marker keys.
	RedisPrefix string
}

// AuditConfig defines a public type used by trustgate APIs.
//
// AuditConfig instances are intended to be configured during initialization and then
// treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by trustgate APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then
// treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the engine defaults: 6-digit codes, a 45 second
// countdown, 3 resend attempts, and a 30 day trust window. The session
// signing key has no default and must be supplied.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		OTP: OTPConfig{
			Digits:            6,
			ChallengeTTL:      45 * time.Second,
			MaxResendAttempts: 3,
			SuccessMarker:     "successfully",
			MessageTemplate:   "Your one-time login code is %s. It expires shortly.",
			TimestampLayout:   "2006-01-02 15:04:05",
		},
		Trust: TrustConfig{
			Window:      30 * 24 * time.Hour,
			RedisPrefix: "tdv",
		},
		Session: SessionConfig{
			IdentityTTL: 5 * time.Minute,
			VerifiedTTL: 24 * time.Hour,
			Issuer:      "trustgate",
			RedisPrefix: "tgs",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	if c.OTP.Digits < 4 || c.OTP.Digits > 10 {
		return errors.New("otp digits must be between 4 and 10")
	}
	if c.OTP.ChallengeTTL <= 0 {
		return errors.New("otp challenge ttl must be positive")
	}
	if c.OTP.MaxResendAttempts < 0 {
		return errors.New("otp resend attempts must not be negative")
	}
	if c.OTP.SuccessMarker == "" {
		return errors.New("otp success marker must not be empty")
	}
	if c.Trust.Window <= 0 {
		return errors.New("trust window must be positive")
	}
	if c.Session.IdentityTTL <= 0 || c.Session.VerifiedTTL <= 0 {
		return errors.New("session marker lifetimes must be positive")
	}
	if c.Session.VerifiedTTL < c.Session.IdentityTTL {
		return errors.New("verified session lifetime must not be shorter than identity lifetime")
	}
	if len(c.Session.SigningKey) < 32 {
		return errors.New("session signing key must be at least 32 bytes")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if cfg.Session.SigningKey != nil {
		out.Session.SigningKey = make([]byte, len(cfg.Session.SigningKey))
		copy(out.Session.SigningKey, cfg.Session.SigningKey)
	}
	return out
}
