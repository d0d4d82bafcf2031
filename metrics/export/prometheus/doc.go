// Package prometheus provides Prometheus collectors for trustgate metrics.
//
// [NewPrometheusExporter] accepts a [trustgate.Engine] and exposes an [http.Handler]
// that renders all trustgate counters and histograms in Prometheus text exposition
// format. Counter names are prefixed trustgate_*_total; the single histogram is
// trustgate_verify_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus
