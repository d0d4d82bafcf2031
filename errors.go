package trustgate

import "errors"

var (
	// ErrMissingCredential is an exported constant or variable used by the login flow engine.
	ErrMissingCredential = errors.New("username and password required")
	// ErrAuthenticationRejected is an exported constant or variable used by the login flow engine.
	ErrAuthenticationRejected = errors.New("invalid credentials")
	// ErrCredentialBackendUnavailable is an exported constant or variable used by the login flow engine.
	ErrCredentialBackendUnavailable = errors.New("credential backend unavailable")
	// ErrMissingMobileNumber is an exported constant or variable used by the login flow engine.
	ErrMissingMobileNumber = errors.New("no mobile number on record, contact support")
	// ErrEnvironmentUnsupported is an exported constant or variable used by the login flow engine.
	ErrEnvironmentUnsupported = errors.New("device environment unsupported")
	// ErrOTPRegistration is an exported constant or variable used by the login flow engine.
	ErrOTPRegistration = errors.New("otp registration failed")
	// ErrOTPInvalid is an exported constant or variable used by the login flow engine.
	ErrOTPInvalid = errors.New("otp code invalid")
	// ErrOTPExpired is an exported constant or variable used by the login flow engine.
	ErrOTPExpired = errors.New("otp code expired")
	// ErrResendAttemptsExhausted is an exported constant or variable used by the login flow engine.
	ErrResendAttemptsExhausted = errors.New("otp resend attempts exhausted")
	// ErrVerifyInFlight is an exported constant or variable used by the login flow engine.
	ErrVerifyInFlight = errors.New("otp verification already in flight")
	// ErrFlowRestartRequired is an exported constant or variable used by the login flow engine.
	ErrFlowRestartRequired = errors.New("login flow must be restarted")
	// ErrFlowStateInvalid is an exported constant or variable used by the login flow engine.
	ErrFlowStateInvalid = errors.New("operation not valid in current flow state")
	// ErrTransportEnvelope is an exported constant or variable used by the login flow engine.
	ErrTransportEnvelope = errors.New("transport envelope invalid")
	// ErrTrustBackendUnavailable is an exported constant or variable used by the login flow engine.
	ErrTrustBackendUnavailable = errors.New("trusted device backend unavailable")
	// ErrSessionBackendUnavailable is an exported constant or variable used by the login flow engine.
	ErrSessionBackendUnavailable = errors.New("session backend unavailable")
	// ErrSessionNotFound is an exported constant or variable used by the login flow engine.
	ErrSessionNotFound = errors.New("session not found")
	// ErrTokenInvalid is an exported constant or variable used by the login flow engine.
	ErrTokenInvalid = errors.New("invalid session marker token")
	// ErrEngineNotReady is an exported constant or variable used by the login flow engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
