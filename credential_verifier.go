package trustgate

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// verifyCredentials runs the primary credential check. Local validation
// happens before any network call; a missing credential never reaches the
// backend. The returned session key is the backend's session id, or the
// user id when the backend omits one (a degraded but recoverable condition
// that is logged and counted).
func (e *Engine) verifyCredentials(ctx context.Context, username, password string) (UserIdentity, string, error) {
	if username == "" || password == "" {
		e.metricInc(MetricCredentialRejected)
		e.emitAudit(ctx, auditEventCredentialRejected, false, username, "", "", ErrMissingCredential, func() map[string]string {
			return map[string]string{
				"reason": "missing_credential",
			}
		})
		return UserIdentity{}, "", ErrMissingCredential
	}

	reply, err := e.credentials.VerifyCredentials(ctx, username, password)
	if err != nil {
		e.metricInc(MetricCredentialRejected)
		e.emitAudit(ctx, auditEventCredentialRejected, false, username, "", "", ErrCredentialBackendUnavailable, func() map[string]string {
			return map[string]string{
				"reason": "backend_error",
			}
		})
		return UserIdentity{}, "", fmt.Errorf("%w: %v", ErrCredentialBackendUnavailable, err)
	}
	if reply == nil || !reply.Success {
		e.metricInc(MetricCredentialRejected)
		e.emitAudit(ctx, auditEventCredentialRejected, false, username, "", "", ErrAuthenticationRejected, func() map[string]string {
			return map[string]string{
				"reason": "rejected",
			}
		})
		return UserIdentity{}, "", ErrAuthenticationRejected
	}

	identity := reply.User
	if identity.MobileNo == "" {
		e.metricInc(MetricMissingMobileNumber)
		e.emitAudit(ctx, auditEventMissingMobile, false, username, "", "", ErrMissingMobileNumber, nil)
		return UserIdentity{}, "", ErrMissingMobileNumber
	}

	sessionID := reply.SessionID
	if sessionID == "" {
		// Recoverable degradation: the user id substitutes as the session key
		// and the flow continues.
		sessionID = identity.UserID
		e.metricInc(MetricSessionKeyFallback)
		e.logger.Warn("credential backend returned no session id, falling back to user id",
			zap.String("username", username),
		)
		e.emitAudit(ctx, auditEventSessionKeyFallback, true, username, sessionID, "", nil, nil)
	}

	e.metricInc(MetricCredentialVerified)
	e.emitAudit(ctx, auditEventCredentialVerified, true, username, sessionID, "", nil, nil)
	return identity, sessionID, nil
}
