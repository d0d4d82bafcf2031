package trustgate

import (
	"sync/atomic"
	"time"
)

// MetricID defines a public type used by trustgate APIs.
//
// MetricID instances are intended to be configured during initialization and then
// treated as immutable unless documented otherwise.
type MetricID uint16

const (
	// MetricCredentialVerified is an exported constant or variable used by the login flow engine.
	MetricCredentialVerified MetricID = iota
	// MetricCredentialRejected is an exported constant or variable used by the login flow engine.
	MetricCredentialRejected
	// MetricMissingMobileNumber is an exported constant or variable used by the login flow engine.
	MetricMissingMobileNumber
	// MetricSessionKeyFallback is an exported constant or variable used by the login flow engine.
	MetricSessionKeyFallback
	// MetricEnvironmentUnsupported is an exported constant or variable used by the login flow engine.
	MetricEnvironmentUnsupported
	// MetricTrustedSkip is an exported constant or variable used by the login flow engine.
	MetricTrustedSkip
	// MetricChallengeIssued is an exported constant or variable used by the login flow engine.
	MetricChallengeIssued
	// MetricChallengeResend is an exported constant or variable used by the login flow engine.
	MetricChallengeResend
	// MetricRegistrationFailure is an exported constant or variable used by the login flow engine.
	MetricRegistrationFailure
	// MetricNotifyDispatched is an exported constant or variable used by the login flow engine.
	MetricNotifyDispatched
	// MetricCodeInvalid is an exported constant or variable used by the login flow engine.
	MetricCodeInvalid
	// MetricCodeExpired is an exported constant or variable used by the login flow engine.
	MetricCodeExpired
	// MetricCodeAccepted is an exported constant or variable used by the login flow engine.
	MetricCodeAccepted
	// MetricResendExhausted is an exported constant or variable used by the login flow engine.
	MetricResendExhausted
	// MetricFlowEstablished is an exported constant or variable used by the login flow engine.
	MetricFlowEstablished
	// MetricFlowCancelled is an exported constant or variable used by the login flow engine.
	MetricFlowCancelled
	// MetricTrustRegistered is an exported constant or variable used by the login flow engine.
	MetricTrustRegistered
	// MetricTrustRevoked is an exported constant or variable used by the login flow engine.
	MetricTrustRevoked
	// MetricLogout is an exported constant or variable used by the login flow engine.
	MetricLogout
	// MetricVerifyLatency is an exported constant or variable used by the login flow engine.
	MetricVerifyLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics defines a public type used by trustgate APIs.
//
// Counters are cache-line padded and incremented atomically; histograms use 8
// fixed latency buckets. Both are allocation-free on the write path.
type Metrics struct {
	enabled       bool
	enableLatency bool

	counters   [metricIDCount]paddedCounter
	histograms [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates a new [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.EnableLatencyHistograms,
	}
}

// Inc increments the counter identified by id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// ObserveLatency records d into the histogram identified by id.
func (m *Metrics) ObserveLatency(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.histograms[id].buckets[latencyBucket(d)], 1)
}

func latencyBucket(d time.Duration) int {
	switch {
	case d <= 5*time.Millisecond:
		return 0
	case d <= 10*time.Millisecond:
		return 1
	case d <= 25*time.Millisecond:
		return 2
	case d <= 50*time.Millisecond:
		return 3
	case d <= 100*time.Millisecond:
		return 4
	case d <= 250*time.Millisecond:
		return 5
	case d <= 500*time.Millisecond:
		return 6
	default:
		return 7
	}
}

// Snapshot returns a deep copy of the current counters and histograms.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snapshot := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, metricIDCount),
		Histograms: make(map[MetricID][]uint64),
	}
	if m == nil || !m.enabled {
		return snapshot
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		snapshot.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	if m.enableLatency {
		for id := MetricID(0); id < metricIDCount; id++ {
			buckets := make([]uint64, histBucketCount)
			var total uint64
			for i := 0; i < histBucketCount; i++ {
				buckets[i] = atomic.LoadUint64(&m.histograms[id].buckets[i])
				total += buckets[i]
			}
			if total > 0 {
				snapshot.Histograms[id] = buckets
			}
		}
	}

	return snapshot
}
