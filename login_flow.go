package trustgate

import (
	"context"
	"sync"

	"github.com/trustgate/trustgate/internal"
)

// FlowState defines a public type used by trustgate APIs.
//
// FlowState values describe where a [LoginFlow] is in the login state
// machine. Established and Restart are terminal.
type FlowState uint8

const (
	// StateCollectingCredentials is an exported constant or variable used by the login flow engine.
	StateCollectingCredentials FlowState = iota
	// StateVerifyingCredentials is an exported constant or variable used by the login flow engine.
	StateVerifyingCredentials
	// StateIssuingOTP is an exported constant or variable used by the login flow engine.
	StateIssuingOTP
	// StateAwaitingCode is an exported constant or variable used by the login flow engine.
	StateAwaitingCode
	// StateVerifyingCode is an exported constant or variable used by the login flow engine.
	StateVerifyingCode
	// StateEstablished is an exported constant or variable used by the login flow engine.
	StateEstablished
	// StateRestart is an exported constant or variable used by the login flow engine.
	StateRestart
)

// String returns the state name.
func (s FlowState) String() string {
	switch s {
	case StateCollectingCredentials:
		return "collecting_credentials"
	case StateVerifyingCredentials:
		return "verifying_credentials"
	case StateIssuingOTP:
		return "issuing_otp"
	case StateAwaitingCode:
		return "awaiting_code"
	case StateVerifyingCode:
		return "verifying_code"
	case StateEstablished:
		return "established"
	case StateRestart:
		return "restart"
	default:
		return "unknown"
	}
}

// LoginFlow drives one login attempt that requires an OTP challenge. The
// flow exclusively owns its active challenge and countdown timer; both are
// discarded on every transition out of the OTP states (success, exhaustion,
// [LoginFlow.Cancel]). An invalid code loops back to code entry; an expired
// countdown blocks submission until a resend; an exhausted resend budget
// forces a full restart of the flow.
//
// The flow serializes its own operations: a submission while another is in
// flight is rejected with [ErrVerifyInFlight] rather than raced.
type LoginFlow struct {
	id          string
	engine      *Engine
	fingerprint string

	mu        sync.Mutex
	state     FlowState
	identity  UserIdentity
	sessionID string
	challenge *OtpChallenge
	timer     *OtpTimer
}

func (e *Engine) newLoginFlow(identity UserIdentity, sessionID, fingerprint string) *LoginFlow {
	id := ""
	if fid, err := internal.NewFlowID(); err == nil {
		id = fid.String()
	}

	flow := &LoginFlow{
		id:          id,
		engine:      e,
		fingerprint: fingerprint,
		state:       StateIssuingOTP,
		identity:    identity,
		sessionID:   sessionID,
	}
	flow.timer = NewOtpTimer(func() {
		e.metricInc(MetricCodeExpired)
		e.emitAudit(context.Background(), auditEventOTPExpired, false, identity.Username, sessionID, fingerprint, ErrOTPExpired, nil)
	})
	return flow
}

// arm installs a freshly issued challenge and starts its countdown.
func (f *LoginFlow) arm(challenge *OtpChallenge) {
	f.mu.Lock()
	f.challenge = challenge
	f.state = StateAwaitingCode
	f.mu.Unlock()

	f.timer.Start(f.engine.config.OTP.ChallengeTTL)
}

// ID identifies this login attempt.
func (f *LoginFlow) ID() string {
	return f.id
}

// State reports the current flow state.
func (f *LoginFlow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Identity returns the verified identity this flow belongs to.
func (f *LoginFlow) Identity() UserIdentity {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.identity
}

// ResendsRemaining reports how many resend attempts the active challenge
// has left.
func (f *LoginFlow) ResendsRemaining() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.challenge == nil {
		return 0
	}
	return f.challenge.AttemptsRemaining
}

// SecondsRemaining reports the seconds left before the active challenge
// expires.
func (f *LoginFlow) SecondsRemaining() int {
	return f.timer.Remaining()
}

// Expired reports whether the active challenge's countdown has run out.
func (f *LoginFlow) Expired() bool {
	return f.timer.Expired()
}

// Submit verifies a code against the active challenge. Malformed codes and
// expired challenges are rejected locally, without a network call. On
// success the flow establishes the session, registering device trust when
// trustDevice is set. On an invalid code the flow returns to code entry;
// the server's rejection message, when present, is wrapped into the
// returned error verbatim.
func (f *LoginFlow) Submit(ctx context.Context, code string, trustDevice bool) (*SessionGrant, error) {
	f.mu.Lock()
	switch f.state {
	case StateRestart:
		f.mu.Unlock()
		return nil, ErrFlowRestartRequired
	case StateVerifyingCode:
		f.mu.Unlock()
		return nil, ErrVerifyInFlight
	case StateAwaitingCode:
	default:
		f.mu.Unlock()
		return nil, ErrFlowStateInvalid
	}

	e := f.engine
	if !internal.IsNumericCode(code, e.config.OTP.Digits) {
		username, sessionID := f.identity.Username, f.sessionID
		f.mu.Unlock()
		e.metricInc(MetricCodeInvalid)
		e.emitAudit(ctx, auditEventOTPInvalid, false, username, sessionID, f.fingerprint, ErrOTPInvalid, func() map[string]string {
			return map[string]string{
				"reason": "malformed_code",
			}
		})
		return nil, ErrOTPInvalid
	}
	if f.timer.Expired() {
		f.mu.Unlock()
		return nil, ErrOTPExpired
	}

	identity := f.identity
	challenge := f.challenge
	f.state = StateVerifyingCode
	f.mu.Unlock()

	envelope, err := e.verifyCode(ctx, identity, challenge, code)
	if err != nil {
		f.mu.Lock()
		if f.state == StateVerifyingCode {
			f.state = StateAwaitingCode
		}
		f.mu.Unlock()
		e.metricInc(MetricCodeInvalid)
		e.emitAudit(ctx, auditEventOTPInvalid, false, identity.Username, challenge.SessionID, f.fingerprint, err, nil)
		return nil, err
	}

	f.mu.Lock()
	if f.state != StateVerifyingCode {
		// Cancelled while the verification was in flight; the session must
		// not be established.
		f.mu.Unlock()
		return nil, ErrFlowRestartRequired
	}
	f.timer.Cancel()
	f.challenge = nil
	sessionID := f.sessionID
	if envelope.SessionID != "" {
		sessionID = envelope.SessionID
	}
	f.sessionID = sessionID
	f.state = StateEstablished
	f.mu.Unlock()

	e.metricInc(MetricCodeAccepted)
	grant, err := e.establish(ctx, identity, sessionID, trustDevice, f.fingerprint)
	if err != nil {
		f.mu.Lock()
		f.state = StateRestart
		f.mu.Unlock()
		return nil, err
	}
	return grant, nil
}

// Resend discards the current challenge and issues a fresh one with a
// restarted countdown, consuming one resend attempt. When the budget is
// already spent the flow transitions to its terminal restart state, the
// challenge and timer are discarded, and [ErrResendAttemptsExhausted] is
// returned: the login must start over from credentials.
func (f *LoginFlow) Resend(ctx context.Context) error {
	f.mu.Lock()
	switch f.state {
	case StateRestart:
		f.mu.Unlock()
		return ErrFlowRestartRequired
	case StateVerifyingCode:
		f.mu.Unlock()
		return ErrVerifyInFlight
	case StateAwaitingCode:
	default:
		f.mu.Unlock()
		return ErrFlowStateInvalid
	}

	e := f.engine
	if f.challenge == nil || f.challenge.AttemptsRemaining <= 0 {
		f.timer.Cancel()
		f.challenge = nil
		f.state = StateRestart
		username, sessionID := f.identity.Username, f.sessionID
		f.mu.Unlock()

		e.metricInc(MetricResendExhausted)
		e.emitAudit(ctx, auditEventResendExhausted, false, username, sessionID, f.fingerprint, ErrResendAttemptsExhausted, nil)
		return ErrResendAttemptsExhausted
	}

	remaining := f.challenge.AttemptsRemaining - 1
	identity := f.identity
	sessionID := f.sessionID
	f.state = StateIssuingOTP
	f.mu.Unlock()

	challenge, issueErr := e.issueChallenge(ctx, identity, sessionID, remaining)

	f.mu.Lock()
	if f.state != StateIssuingOTP {
		f.mu.Unlock()
		return ErrFlowRestartRequired
	}
	if challenge == nil {
		// Code generation failed before any side effect; the prior challenge
		// and countdown stay live.
		f.state = StateAwaitingCode
		f.mu.Unlock()
		return issueErr
	}

	// Supersede: the prior countdown must be cancelled before the next one
	// starts, so two timers never race on the same challenge state.
	f.timer.Cancel()
	f.challenge = challenge
	f.state = StateAwaitingCode
	f.mu.Unlock()

	f.timer.Start(e.config.OTP.ChallengeTTL)

	e.metricInc(MetricChallengeResend)
	e.emitAudit(ctx, auditEventOTPResend, issueErr == nil, identity.Username, sessionID, f.fingerprint, issueErr, func() map[string]string {
		return map[string]string{
			"attempts_remaining": flowAttemptsLabel(remaining),
		}
	})
	return issueErr
}

// Cancel abandons the flow: the countdown is cancelled, the active
// challenge is discarded, and no background work continues. Cancelling a
// terminal flow is a no-op.
func (f *LoginFlow) Cancel() {
	f.mu.Lock()
	switch f.state {
	case StateEstablished, StateRestart:
		f.mu.Unlock()
		return
	}
	f.timer.Cancel()
	f.challenge = nil
	username, sessionID := f.identity.Username, f.sessionID
	f.state = StateRestart
	f.mu.Unlock()

	f.engine.metricInc(MetricFlowCancelled)
	f.engine.emitAudit(context.Background(), auditEventFlowCancelled, false, username, sessionID, f.fingerprint, nil, nil)
}

func flowAttemptsLabel(remaining int) string {
	const digits = "0123456789"
	if remaining >= 0 && remaining < len(digits) {
		return digits[remaining : remaining+1]
	}
	return "many"
}
