// Package prometheus provides Prometheus collectors for authkern metrics.
//
// [NewPrometheusExporter] accepts an [authkern.Kernel] and exposes an [http.Handler]
// that renders all authkern counters and histograms in Prometheus text exposition format.
// Counter names are prefixed authkern_*_total; the single histogram is
// authkern_authorize_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate kernel state.
package prometheus
