// Package otel binds goPassword engine metrics to OpenTelemetry instruments.
//
// [NewOTelExporter] registers an Int64ObservableCounter per engine counter,
// one Int64ObservableGauge per histogram bucket and gauges for the pending
// and queued job counts. A single callback reads the engine on each
// collection cycle.
//
// # What this package must NOT do
//
//   - Own the MeterProvider. Callers supply the Meter.
//   - Mutate engine state.
package otel
