// Package otel provides OpenTelemetry metric exporter bindings for authkern counters and
// histograms.
//
// [NewOTelExporter] registers Int64ObservableCounter instruments for each authkern metric
// and Int64ObservableGauge per histogram bucket. A single callback reads
// [authkern.Kernel.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider — callers supply the Meter.
//   - Mutate kernel state.
package otel
