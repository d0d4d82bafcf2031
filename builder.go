package trustgate

import (
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/trustgate/trustgate/session"
	"github.com/trustgate/trustgate/token"
	"go.uber.org/zap"
)

// Builder defines a public type used by trustgate APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	trustKV        TrustKV
	credentials    CredentialBackend
	otpBackend     OTPBackend
	notifier       Notifier
	codec          TransportCodec
	signalProvider SignalProvider
	logger         *zap.Logger
	auditSink      AuditSink

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
//
// WithRedis may return an error when input validation, dependency calls, or security checks fail.
// WithRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithTrustKV describes the withtrustkv operation and its observable behavior.
//
// WithTrustKV may return an error when input validation, dependency calls, or security checks fail.
// WithTrustKV does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithTrustKV(kv TrustKV) *Builder {
	b.trustKV = kv
	return b
}

// WithCredentialBackend describes the withcredentialbackend operation and its observable behavior.
//
// WithCredentialBackend may return an error when input validation, dependency calls, or security checks fail.
// WithCredentialBackend does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithCredentialBackend(backend CredentialBackend) *Builder {
	b.credentials = backend
	return b
}

// WithOTPBackend describes the withotpbackend operation and its observable behavior.
//
// WithOTPBackend may return an error when input validation, dependency calls, or security checks fail.
// WithOTPBackend does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithOTPBackend(backend OTPBackend) *Builder {
	b.otpBackend = backend
	return b
}

// WithNotifier describes the withnotifier operation and its observable behavior.
//
// WithNotifier may return an error when input validation, dependency calls, or security checks fail.
// WithNotifier does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithNotifier(n Notifier) *Builder {
	b.notifier = n
	return b
}

// WithCodec describes the withcodec operation and its observable behavior.
//
// WithCodec may return an error when input validation, dependency calls, or security checks fail.
// WithCodec does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithCodec(codec TransportCodec) *Builder {
	b.codec = codec
	return b
}

// WithSignalProvider describes the withsignalprovider operation and its observable behavior.
//
// WithSignalProvider may return an error when input validation, dependency calls, or security checks fail.
// WithSignalProvider does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithSignalProvider(provider SignalProvider) *Builder {
	b.signalProvider = provider
	return b
}

// WithLogger describes the withlogger operation and its observable behavior.
//
// WithLogger may return an error when input validation, dependency calls, or security checks fail.
// WithLogger does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink may return an error when input validation, dependency calls, or security checks fail.
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	if sink != nil {
		b.config.Audit.Enabled = true
	}
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled may return an error when input validation, dependency calls, or security checks fail.
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms may return an error when input validation, dependency calls, or security checks fail.
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.credentials == nil {
		return nil, errors.New("credential backend required")
	}
	if b.otpBackend == nil {
		return nil, errors.New("otp backend required")
	}
	if b.codec == nil {
		return nil, errors.New("transport codec required")
	}

	trustKV := b.trustKV
	if trustKV == nil {
		if b.redis == nil {
			return nil, errors.New("redis client or trust kv required")
		}
		trustKV = NewRedisTrustKV(b.redis)
	}
	if b.redis == nil {
		return nil, errors.New("redis client required")
	}

	signalProvider := b.signalProvider
	if signalProvider == nil {
		signalProvider = HostSignalProvider{}
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	tokens, err := token.NewManager(
		cfg.Session.SigningKey,
		cfg.Session.Issuer,
		cfg.Session.IdentityTTL,
		cfg.Session.VerifiedTTL,
	)
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config: cloneConfig(cfg),

		credentials:   b.credentials,
		otpBackend:    b.otpBackend,
		notifier:      b.notifier,
		codec:         b.codec,
		fingerprinter: NewFingerprinter(signalProvider),

		trustStore:   newTrustedDeviceStore(trustKV, cfg.Trust.RedisPrefix, cfg.Trust.Window),
		sessionStore: session.NewStore(b.redis, cfg.Session.RedisPrefix),
		tokens:       tokens,

		audit:   newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics: NewMetrics(cfg.Metrics),
		logger:  logger,
	}

	b.built = true
	return engine, nil
}
