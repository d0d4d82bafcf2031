package trustgate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/trustgate/trustgate/session"
	"github.com/trustgate/trustgate/token"
	"go.uber.org/zap"
)

// StartLogin runs one login attempt up to the point where it either
// completes (the device is trusted, the OTP step is skipped, and the result
// carries a [SessionGrant]) or requires a challenge (the result carries a
// live [LoginFlow] that the caller drives to completion).
//
// The sequence is fixed: local credential validation, backend credential
// verification, identity marker issuance, device fingerprinting, trust
// lookup, then either the trusted skip or challenge issuance. A missing
// mobile number aborts before any trust store access. A trust store read
// failure only costs the skip: the attempt degrades to the OTP path.
//
// When challenge registration fails the returned result is still non-nil
// and its flow is live at code entry; the wrapped [ErrOTPRegistration] is
// returned alongside so the caller can surface it. A resend retries the
// registration.
func (e *Engine) StartLogin(ctx context.Context, username, password string) (*LoginResult, error) {
	if e == nil || e.credentials == nil || e.otpBackend == nil || e.codec == nil {
		return nil, ErrEngineNotReady
	}

	identity, sessionID, err := e.verifyCredentials(ctx, username, password)
	if err != nil {
		return nil, err
	}

	identityToken, err := e.saveIdentityMarker(ctx, identity, sessionID)
	if err != nil {
		return nil, err
	}

	fingerprint, err := e.fingerprinter.Compute()
	if err != nil {
		e.metricInc(MetricEnvironmentUnsupported)
		e.emitAudit(ctx, auditEventEnvUnsupported, false, username, sessionID, "", err, nil)
		return nil, err
	}

	trusted, err := e.trustStore.IsTrusted(ctx, identity.Username, fingerprint)
	if err != nil {
		// A trust backend outage must not block login; it only costs the
		// OTP skip.
		trusted = false
		e.logger.Warn("trusted device lookup failed, falling back to otp challenge",
			zap.String("username", identity.Username),
			zap.Error(err),
		)
	}

	if trusted {
		grant, err := e.establish(ctx, identity, sessionID, false, fingerprint)
		if err != nil {
			return nil, err
		}
		e.metricInc(MetricTrustedSkip)
		e.emitAudit(ctx, auditEventTrustedSkip, true, identity.Username, sessionID, fingerprint, nil, nil)
		return &LoginResult{Grant: grant, IdentityToken: identityToken}, nil
	}

	flow := e.newLoginFlow(identity, sessionID, fingerprint)
	challenge, issueErr := e.issueChallenge(ctx, identity, sessionID, e.config.OTP.MaxResendAttempts)
	if challenge == nil {
		return nil, issueErr
	}
	flow.arm(challenge)

	e.metricInc(MetricChallengeIssued)
	e.emitAudit(ctx, auditEventOTPIssued, issueErr == nil, identity.Username, sessionID, fingerprint, issueErr, nil)

	result := &LoginResult{
		OTPRequired:   true,
		Flow:          flow,
		IdentityToken: identityToken,
	}
	return result, issueErr
}

// saveIdentityMarker persists the short-lived identity marker and signs its
// token, immediately after credential verification and before any OTP work.
func (e *Engine) saveIdentityMarker(ctx context.Context, identity UserIdentity, sessionID string) (string, error) {
	now := time.Now()
	marker := &session.Marker{
		SessionID: sessionID,
		UserID:    identity.UserID,
		Username:  identity.Username,
		Role:      identity.Role,
		Kind:      session.KindIdentity,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(e.config.Session.IdentityTTL).Unix(),
	}
	if err := e.sessionStore.Save(ctx, marker, e.config.Session.IdentityTTL); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSessionBackendUnavailable, err)
	}
	return e.tokens.IssueIdentity(identity.UserID, identity.Username, identity.Role, sessionID)
}

// establish writes the long-lived verified marker, signs the session token,
// and registers device trust when requested. A trust registration failure
// does not fail the established session; the grant reports it through
// TrustRegistered.
func (e *Engine) establish(
	ctx context.Context,
	identity UserIdentity,
	sessionID string,
	trustRequested bool,
	fingerprint string,
) (*SessionGrant, error) {
	now := time.Now()
	marker := &session.Marker{
		SessionID: sessionID,
		UserID:    identity.UserID,
		Username:  identity.Username,
		Role:      identity.Role,
		Kind:      session.KindVerified,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(e.config.Session.VerifiedTTL).Unix(),
	}
	if err := e.sessionStore.Save(ctx, marker, e.config.Session.VerifiedTTL); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionBackendUnavailable, err)
	}

	sessionToken, err := e.tokens.IssueVerified(identity.UserID, identity.Username, identity.Role, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	grant := &SessionGrant{
		SessionID:     sessionID,
		Identity:      identity,
		SessionToken:  sessionToken,
		EstablishedAt: now,
	}

	if trustRequested {
		deviceLabel := deviceLabelFromContext(ctx)
		locationLabel := locationLabelFromContext(ctx)
		if err := e.trustStore.RegisterTrust(ctx, identity.Username, fingerprint, deviceLabel, locationLabel); err != nil {
			e.logger.Warn("trust registration failed, session stands without the grant",
				zap.String("username", identity.Username),
				zap.Error(err),
			)
		} else {
			grant.TrustRegistered = true
			e.metricInc(MetricTrustRegistered)
			e.emitAudit(ctx, auditEventTrustRegistered, true, identity.Username, sessionID, fingerprint, nil, func() map[string]string {
				return map[string]string{
					"device_label": deviceLabel,
				}
			})
		}
	}

	e.metricInc(MetricFlowEstablished)
	e.emitAudit(ctx, auditEventEstablished, true, identity.Username, sessionID, fingerprint, nil, nil)
	return grant, nil
}

// ValidateSession parses a verified-session token and confirms its marker
// still exists. It returns the identity the session belongs to and its
// session id. Identity-kind tokens are rejected: they only bridge the gap
// between credential verification and OTP success.
func (e *Engine) ValidateSession(ctx context.Context, raw string) (UserIdentity, string, error) {
	claims, err := e.tokens.Parse(raw)
	if err != nil || claims.Kind != token.KindVerified {
		return UserIdentity{}, "", ErrTokenInvalid
	}

	sessionID := claims.SessionID()
	marker, err := e.sessionStore.Get(ctx, session.KindVerified, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrMarkerNotFound) {
			return UserIdentity{}, "", ErrSessionNotFound
		}
		return UserIdentity{}, "", fmt.Errorf("%w: %v", ErrSessionBackendUnavailable, err)
	}

	identity := UserIdentity{
		UserID:   marker.UserID,
		Username: marker.Username,
		Role:     marker.Role,
	}
	return identity, sessionID, nil
}

// Logout destroys both markers for sessionID. Logging out an absent session
// is not an error.
func (e *Engine) Logout(ctx context.Context, sessionID string) error {
	if err := e.sessionStore.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionBackendUnavailable, err)
	}
	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, true, "", sessionID, "", nil, nil)
	return nil
}
