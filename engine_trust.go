package trustgate

import "context"

// TrustedDevices lists the live trust grants for username, newest first.
// Expired grants are pruned before the list is returned.
func (e *Engine) TrustedDevices(ctx context.Context, username string) ([]TrustedDeviceRecord, error) {
	return e.trustStore.List(ctx, username)
}

// RevokeTrustedDevice removes the trust grant for (username, fingerprint).
// The next login from that device goes through the full OTP challenge.
// Revoking an absent fingerprint is a no-op.
func (e *Engine) RevokeTrustedDevice(ctx context.Context, username, fingerprint string) error {
	if err := e.trustStore.Revoke(ctx, username, fingerprint); err != nil {
		return err
	}
	e.metricInc(MetricTrustRevoked)
	e.emitAudit(ctx, auditEventTrustRevoked, true, username, "", fingerprint, nil, nil)
	return nil
}
