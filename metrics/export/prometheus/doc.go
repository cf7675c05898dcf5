// Package prometheus renders goPassword engine metrics in the Prometheus text
// exposition format.
//
// [NewPrometheusExporter] wraps a [goPassword.Engine] and serves every
// counter (gopassword_*_total), both latency histograms
// (gopassword_queue_wait_seconds, gopassword_primitive_seconds) and the
// pending/queued scheduler gauges.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry. Callers mount the Handler.
//   - Mutate engine state.
package prometheus
