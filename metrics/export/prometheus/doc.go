// Package prometheus renders goSession metrics in Prometheus text exposition
// format.
//
// [NewExporter] accepts a [goSession.Engine] and exposes an [http.Handler]
// that renders all counters and histograms. Counter names are prefixed
// gosession_*_total; the single histogram is gosession_refresh_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus
