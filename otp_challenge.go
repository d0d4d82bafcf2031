package trustgate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/trustgate/trustgate/internal"
	"go.uber.org/zap"
)

// issueChallenge generates a fresh OTP challenge and performs its two side
// effects in contract order: a best-effort, fire-and-forget notification
// dispatch whose outcome is deliberately unobserved, then a backend
// registration call whose failure IS surfaced. On registration failure the
// challenge is still returned so the flow can move to code entry and the
// user can retry via resend.
func (e *Engine) issueChallenge(
	ctx context.Context,
	identity UserIdentity,
	sessionID string,
	attemptsRemaining int,
) (*OtpChallenge, error) {
	code, err := internal.NewOTP(e.config.OTP.Digits)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOTPRegistration, err)
	}

	challenge := &OtpChallenge{
		Code:              code,
		SentAt:            time.Now(),
		SessionID:         sessionID,
		MobileNo:          identity.MobileNo,
		AttemptsRemaining: attemptsRemaining,
	}

	e.dispatchNotification(challenge)

	if err := e.registerChallenge(ctx, identity, challenge); err != nil {
		e.metricInc(MetricRegistrationFailure)
		return challenge, err
	}
	return challenge, nil
}

// dispatchNotification sends the code to the user's phone without waiting
// for, or observing, the outcome. Failures are swallowed by contract; the
// dispatch counter is the only trace.
func (e *Engine) dispatchNotification(challenge *OtpChallenge) {
	if e.notifier == nil {
		return
	}

	message := fmt.Sprintf(e.config.OTP.MessageTemplate, challenge.Code)
	mobileNo := challenge.MobileNo
	notifier := e.notifier

	e.metricInc(MetricNotifyDispatched)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				e.logger.Debug("notification dispatch panicked", zap.Any("panic", r))
			}
		}()
		// Deliberately detached from the request context: cancellation of the
		// flow must not retract a dispatch already in flight.
		notifier.Send(context.Background(), mobileNo, message)
	}()
}

// registerChallenge stores the challenge server-side through the encrypted
// transport boundary.
func (e *Engine) registerChallenge(ctx context.Context, identity UserIdentity, challenge *OtpChallenge) error {
	layout := e.config.OTP.TimestampLayout
	now := time.Now()

	request := OTPRegisterRequest{
		Token:     e.config.OTP.GatewayToken,
		Username:  identity.Username,
		MobileNo:  challenge.MobileNo,
		SessionID: challenge.SessionID,
		OTP:       challenge.Code,
		OTPSendOn: challenge.SentAt.Format(layout),
		Status:    "sent",
		UpdatedOn: now.Format(layout),
	}

	envelope, err := e.sealRequest(request)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOTPRegistration, err)
	}

	reply, err := e.otpBackend.RegisterOTP(ctx, envelope)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOTPRegistration, err)
	}

	parsed, err := e.openEnvelope(reply)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOTPRegistration, err)
	}
	if !parsed.Success {
		if parsed.Message != "" {
			return fmt.Errorf("%w: %s", ErrOTPRegistration, parsed.Message)
		}
		return ErrOTPRegistration
	}
	return nil
}

func (e *Engine) sealRequest(request any) (string, error) {
	plain, err := json.Marshal(request)
	if err != nil {
		return "", err
	}
	return e.codec.Encrypt(plain)
}

// openEnvelope decrypts and validates a backend reply before any of its
// fields may be trusted.
func (e *Engine) openEnvelope(opaque string) (*OTPEnvelope, error) {
	plain, err := e.codec.Decrypt(opaque)
	if err != nil {
		return nil, err
	}
	if !e.codec.Validate(plain) {
		return nil, ErrTransportEnvelope
	}

	parsed := &OTPEnvelope{}
	if err := json.Unmarshal(plain, parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransportEnvelope, err)
	}
	return parsed, nil
}
