package trustgate

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// EnvironmentSignals is the fixed signal set a device fingerprint is derived
// from. Every field participates in the hash; zero values participate like
// any other value, so determinism — not completeness — is the contract.
type EnvironmentSignals struct {
	// Platform identifies the browser/platform combination, e.g. a user agent
	// string or "linux/amd64".
	Platform string
	// Locale is the active language/region tag.
	Locale string
	// ScreenWidth and ScreenHeight are the display dimensions in pixels.
	ScreenWidth  int
	ScreenHeight int
	// TimezoneOffsetMinutes is the UTC offset of the local timezone.
	TimezoneOffsetMinutes int
	// RenderSignature is a stable rendering-derived signature. Non-browser
	// targets may substitute any stable per-device signal (machine
	// identifier, TPM-backed key) behind the same hashing contract.
	RenderSignature string
	// LogicalProcessors is the logical CPU count.
	LogicalProcessors int
	// DeviceMemoryGB is the approximate device memory hint, zero when the
	// environment does not expose one.
	DeviceMemoryGB float64
}

// SignalProvider supplies the environment signals a fingerprint is computed
// from. Implementations must be pure reads of local environment state: no
// network access, no storage access.
type SignalProvider interface {
	Signals() (EnvironmentSignals, error)
}

// Fingerprinter derives a stable per-device identifier from environment
// signals. Identical signals produce identical fingerprints on every call.
type Fingerprinter struct {
	provider SignalProvider
}

// NewFingerprinter creates a Fingerprinter reading from the given provider.
func NewFingerprinter(provider SignalProvider) *Fingerprinter {
	return &Fingerprinter{provider: provider}
}

// Compute returns the device fingerprint as a hex digest. It fails with
// [ErrEnvironmentUnsupported] when the provider cannot supply the required
// signals; that condition is fatal for the login flow because the trust
// lookup cannot run without a fingerprint.
func (f *Fingerprinter) Compute() (string, error) {
	if f == nil || f.provider == nil {
		return "", ErrEnvironmentUnsupported
	}

	signals, err := f.provider.Signals()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEnvironmentUnsupported, err)
	}
	if signals.Platform == "" || signals.RenderSignature == "" || signals.LogicalProcessors <= 0 {
		return "", ErrEnvironmentUnsupported
	}

	// Canonical field order with an explicit separator so distinct signal
	// sets can never collapse onto the same preimage.
	var b strings.Builder
	b.Grow(128)
	b.WriteString(signals.Platform)
	b.WriteByte(0x1f)
	b.WriteString(signals.Locale)
	b.WriteByte(0x1f)
	b.WriteString(strconv.Itoa(signals.ScreenWidth))
	b.WriteByte('x')
	b.WriteString(strconv.Itoa(signals.ScreenHeight))
	b.WriteByte(0x1f)
	b.WriteString(strconv.Itoa(signals.TimezoneOffsetMinutes))
	b.WriteByte(0x1f)
	b.WriteString(signals.RenderSignature)
	b.WriteByte(0x1f)
	b.WriteString(strconv.Itoa(signals.LogicalProcessors))
	b.WriteByte(0x1f)
	b.WriteString(strconv.FormatFloat(signals.DeviceMemoryGB, 'f', -1, 64))

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:]), nil
}

// HostSignalProvider is a [SignalProvider] for non-browser targets. It
// substitutes the host machine identity for browser-only signals: the
// hostname stands in for the rendering signature and screen dimensions are
// reported as zero.
type HostSignalProvider struct{}

// Signals reads the host environment.
func (HostSignalProvider) Signals() (EnvironmentSignals, error) {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		return EnvironmentSignals{}, fmt.Errorf("hostname unavailable: %v", err)
	}

	_, offsetSeconds := time.Now().Zone()

	return EnvironmentSignals{
		Platform:              runtime.GOOS + "/" + runtime.GOARCH,
		Locale:                hostLocale(),
		TimezoneOffsetMinutes: offsetSeconds / 60,
		RenderSignature:       hostname,
		LogicalProcessors:     runtime.NumCPU(),
	}, nil
}

func hostLocale() string {
	for _, key := range []string{"LC_ALL", "LANG"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return "C"
}
