package trustgate

import (
	"time"

	"github.com/trustgate/trustgate/session"
	"github.com/trustgate/trustgate/token"
	"go.uber.org/zap"
)

// Engine defines a public type used by trustgate APIs.
//
// Engine is the device-trust-aware login flow engine. It is stateless across
// login attempts: all per-attempt state lives in the [LoginFlow] values it
// hands out, and all durable state lives behind the trust and session
// stores. One Engine is safe for concurrent use by any number of flows.
//
// Construct it with [Builder]; the zero value is not usable.
type Engine struct {
	config Config

	credentials   CredentialBackend
	otpBackend    OTPBackend
	notifier      Notifier
	codec         TransportCodec
	fingerprinter *Fingerprinter

	trustStore   *trustedDeviceStore
	sessionStore *session.Store
	tokens       *token.Manager

	audit   *auditDispatcher
	metrics *Metrics
	logger  *zap.Logger
}

// Config returns a copy of the engine's effective configuration.
func (e *Engine) Config() Config {
	return cloneConfig(e.config)
}

// MetricsSnapshot returns a point-in-time copy of the engine's metrics.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	return e.metrics.Snapshot()
}

// AuditDropped reports how many audit events were discarded under
// backpressure since the engine started.
func (e *Engine) AuditDropped() uint64 {
	return e.audit.Dropped()
}

// Close drains and stops the audit dispatcher. The engine must not be used
// after Close.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

func (e *Engine) metricInc(id MetricID) {
	e.metrics.Inc(id)
}

func (e *Engine) metricObserve(id MetricID, d time.Duration) {
	e.metrics.ObserveLatency(id, d)
}
