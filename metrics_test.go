package trustgate

import (
	"testing"
	"time"
)

func TestMetricsDisabledIsNoOp(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricCodeAccepted)
	m.ObserveLatency(MetricVerifyLatency, time.Millisecond)

	snapshot := m.Snapshot()
	if len(snapshot.Counters) != 0 || len(snapshot.Histograms) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snapshot)
	}

	// A nil receiver is safe too.
	var nilMetrics *Metrics
	nilMetrics.Inc(MetricCodeAccepted)
	nilMetrics.ObserveLatency(MetricVerifyLatency, time.Millisecond)
}

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	m.Inc(MetricChallengeIssued)
	m.Inc(MetricChallengeIssued)
	m.Inc(MetricCodeAccepted)
	m.Inc(metricIDCount + 1) // out of range, ignored

	snapshot := m.Snapshot()
	if got := snapshot.Counters[MetricChallengeIssued]; got != 2 {
		t.Fatalf("expected 2 issued challenges, got %d", got)
	}
	if got := snapshot.Counters[MetricCodeAccepted]; got != 1 {
		t.Fatalf("expected 1 accepted code, got %d", got)
	}
}

func TestMetricsLatencyBuckets(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	observations := map[time.Duration]int{
		time.Millisecond:        0,
		8 * time.Millisecond:    1,
		20 * time.Millisecond:   2,
		40 * time.Millisecond:   3,
		80 * time.Millisecond:   4,
		200 * time.Millisecond:  5,
		400 * time.Millisecond:  6,
		2000 * time.Millisecond: 7,
	}
	for d := range observations {
		m.ObserveLatency(MetricVerifyLatency, d)
	}

	buckets := m.Snapshot().Histograms[MetricVerifyLatency]
	if len(buckets) != histBucketCount {
		t.Fatalf("expected %d buckets, got %d", histBucketCount, len(buckets))
	}
	for d, want := range observations {
		if got := latencyBucket(d); got != want {
			t.Fatalf("duration %v: expected bucket %d, got %d", d, want, got)
		}
	}
	for i, count := range buckets {
		if count != 1 {
			t.Fatalf("bucket %d: expected 1 observation, got %d", i, count)
		}
	}
}

func TestMetricsLatencyDisabledSeparately(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.ObserveLatency(MetricVerifyLatency, time.Millisecond)

	if hist := m.Snapshot().Histograms; len(hist) != 0 {
		t.Fatalf("expected no histograms without the latency flag, got %+v", hist)
	}
}
