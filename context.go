package trustgate

import "context"

type clientIPContextKey struct{}
type deviceLabelContextKey struct{}
type locationLabelContextKey struct{}

// WithClientIP attaches the caller's IP address to ctx. The Engine carries it
// into audit events.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// WithDeviceLabel attaches a human-readable device label to ctx. It is
// recorded when the user opts to trust the device.
func WithDeviceLabel(ctx context.Context, label string) context.Context {
	return context.WithValue(ctx, deviceLabelContextKey{}, label)
}

// WithLocationLabel attaches an approximate location label to ctx. It is
// recorded alongside the trust grant for user-facing device management.
func WithLocationLabel(ctx context.Context, label string) context.Context {
	return context.WithValue(ctx, locationLabelContextKey{}, label)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

func deviceLabelFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	label, _ := ctx.Value(deviceLabelContextKey{}).(string)
	return label
}

func locationLabelFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	label, _ := ctx.Value(locationLabelContextKey{}).(string)
	return label
}
