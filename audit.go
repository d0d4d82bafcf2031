package trustgate

import (
	"context"
	"time"

	internalaudit "github.com/trustgate/trustgate/internal/audit"
	"go.uber.org/zap"
)

const (
	auditEventCredentialRejected = "credential_rejected"
	auditEventCredentialVerified = "credential_verified"
	auditEventMissingMobile      = "missing_mobile_number"
	auditEventSessionKeyFallback = "session_key_fallback"
	auditEventEnvUnsupported     = "environment_unsupported"
	auditEventTrustedSkip        = "trusted_device_skip"
	auditEventOTPIssued          = "otp_issued"
	auditEventOTPResend          = "otp_resend"
	auditEventOTPInvalid         = "otp_invalid"
	auditEventOTPExpired         = "otp_expired"
	auditEventResendExhausted    = "otp_resend_exhausted"
	auditEventEstablished        = "session_established"
	auditEventFlowCancelled      = "flow_cancelled"
	auditEventTrustRegistered    = "trust_registered"
	auditEventTrustRevoked       = "trust_revoked"
	auditEventLogout             = "logout"
)

// NewZapSink creates a [ZapSink] that logs audit events through logger.
func NewZapSink(logger *zap.Logger) *ZapSink {
	return internalaudit.NewZapSink(logger)
}

// emitAudit builds and queues an audit event. The metadata func is only
// invoked when auditing is enabled, keeping the disabled path allocation-free.
func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	username string,
	sessionID string,
	fingerprint string,
	cause error,
	metadata func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp:   time.Now(),
		EventType:   eventType,
		Username:    username,
		SessionID:   sessionID,
		Fingerprint: fingerprint,
		IP:          clientIPFromContext(ctx),
		Success:     success,
	}
	if cause != nil {
		event.Error = cause.Error()
	}
	if metadata != nil {
		event.Metadata = metadata()
	}

	e.audit.Emit(ctx, event)
}
