package trustgate

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// verifyCode submits a code against the active challenge through the
// encrypted transport boundary. Callers have already applied the local
// checks (code shape, challenge expiry); this path is network-only.
//
// Success requires all of: success true, validcheck "1", the configured
// success marker present in the message, and a non-empty session id. Any
// single miss is invalid, with the server's message surfaced verbatim when
// it supplied one.
func (e *Engine) verifyCode(ctx context.Context, identity UserIdentity, challenge *OtpChallenge, code string) (*OTPEnvelope, error) {
	started := time.Now()
	defer func() {
		e.metricObserve(MetricVerifyLatency, time.Since(started))
	}()

	layout := e.config.OTP.TimestampLayout
	now := time.Now()

	request := OTPVerifyRequest{
		Token:         e.config.OTP.GatewayToken,
		Username:      identity.Username,
		MobileNo:      challenge.MobileNo,
		SessionID:     challenge.SessionID,
		OTP:           code,
		OTPSendOn:     challenge.SentAt.Format(layout),
		OTPVerifiedOn: now.Format(layout),
		Status:        "verified",
		UpdatedOn:     now.Format(layout),
	}

	envelope, err := e.sealRequest(request)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOTPInvalid, err)
	}

	reply, err := e.otpBackend.VerifyOTP(ctx, envelope)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOTPInvalid, err)
	}

	parsed, err := e.openEnvelope(reply)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOTPInvalid, err)
	}

	if !parsed.Success ||
		parsed.ValidCheck != "1" ||
		!strings.Contains(parsed.Message, e.config.OTP.SuccessMarker) ||
		parsed.SessionID == "" {
		if parsed.Message != "" {
			return nil, fmt.Errorf("%w: %s", ErrOTPInvalid, parsed.Message)
		}
		return nil, ErrOTPInvalid
	}

	return parsed, nil
}
