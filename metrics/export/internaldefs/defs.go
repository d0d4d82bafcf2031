package internaldefs

import (
	trustgate "github.com/trustgate/trustgate"
)

// CounterDef defines a public type used by trustgate APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   trustgate.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by trustgate APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   trustgate.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the login flow engine.
var CounterDefs = []CounterDef{
	{ID: trustgate.MetricCredentialVerified, Name: "trustgate_credential_verified_total", Help: "Successful credential verifications."},
	{ID: trustgate.MetricCredentialRejected, Name: "trustgate_credential_rejected_total", Help: "Rejected or failed credential verifications."},
	{ID: trustgate.MetricMissingMobileNumber, Name: "trustgate_missing_mobile_number_total", Help: "Logins aborted because the account has no mobile number."},
	{ID: trustgate.MetricSessionKeyFallback, Name: "trustgate_session_key_fallback_total", Help: "Logins that fell back to the user id as session key."},
	{ID: trustgate.MetricEnvironmentUnsupported, Name: "trustgate_environment_unsupported_total", Help: "Logins aborted because the environment could not be fingerprinted."},
	{ID: trustgate.MetricTrustedSkip, Name: "trustgate_trusted_skip_total", Help: "Logins that skipped the OTP step on a trusted device."},
	{ID: trustgate.MetricChallengeIssued, Name: "trustgate_challenge_issued_total", Help: "Issued OTP challenges."},
	{ID: trustgate.MetricChallengeResend, Name: "trustgate_challenge_resend_total", Help: "Reissued OTP challenges."},
	{ID: trustgate.MetricRegistrationFailure, Name: "trustgate_registration_failure_total", Help: "Failed OTP backend registrations."},
	{ID: trustgate.MetricNotifyDispatched, Name: "trustgate_notify_dispatched_total", Help: "Dispatched OTP notifications."},
	{ID: trustgate.MetricCodeInvalid, Name: "trustgate_code_invalid_total", Help: "Rejected OTP code submissions."},
	{ID: trustgate.MetricCodeExpired, Name: "trustgate_code_expired_total", Help: "OTP challenges whose countdown expired."},
	{ID: trustgate.MetricCodeAccepted, Name: "trustgate_code_accepted_total", Help: "Accepted OTP code submissions."},
	{ID: trustgate.MetricResendExhausted, Name: "trustgate_resend_exhausted_total", Help: "Flows forced to restart by an exhausted resend budget."},
	{ID: trustgate.MetricFlowEstablished, Name: "trustgate_flow_established_total", Help: "Login flows that reached the established state."},
	{ID: trustgate.MetricFlowCancelled, Name: "trustgate_flow_cancelled_total", Help: "Cancelled login flows."},
	{ID: trustgate.MetricTrustRegistered, Name: "trustgate_trust_registered_total", Help: "Registered device trust grants."},
	{ID: trustgate.MetricTrustRevoked, Name: "trustgate_trust_revoked_total", Help: "Revoked device trust grants."},
	{ID: trustgate.MetricLogout, Name: "trustgate_logout_total", Help: "Logout operations."},
}

// HistogramDefs is an exported constant or variable used by the login flow engine.
var HistogramDefs = []HistogramDef{
	{ID: trustgate.MetricVerifyLatency, Name: "trustgate_verify_latency_seconds", Help: "OTP verification latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the login flow engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the login flow engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
