package internaldefs

import (
	goSession "github.com/avrik7/goSession"
)

// CounterDef pairs a metric ID with its exposition name and help text.
//
// CounterDef instances are configured at package init and treated as
// immutable afterwards.
type CounterDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// HistogramDef pairs a histogram metric ID with its exposition name and help
// text.
type HistogramDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// CounterDefs lists every counter the engine collects, in exposition order.
var CounterDefs = []CounterDef{
	{ID: goSession.MetricLoginSuccess, Name: "gosession_login_success_total", Help: "Successful explicit logins."},
	{ID: goSession.MetricLoginFailure, Name: "gosession_login_failure_total", Help: "Rejected or failed explicit logins."},
	{ID: goSession.MetricBootstrapSuccess, Name: "gosession_bootstrap_success_total", Help: "Successful startup credential acquisitions."},
	{ID: goSession.MetricBootstrapFailure, Name: "gosession_bootstrap_failure_total", Help: "Failed startup credential acquisitions."},
	{ID: goSession.MetricRefreshSuccess, Name: "gosession_refresh_success_total", Help: "Successful credential renewals."},
	{ID: goSession.MetricRefreshFailure, Name: "gosession_refresh_failure_total", Help: "Transient renewal failures."},
	{ID: goSession.MetricRefreshRejected, Name: "gosession_refresh_rejected_total", Help: "Renewals explicitly rejected by the server."},
	{ID: goSession.MetricRefreshAborted, Name: "gosession_refresh_aborted_total", Help: "Renewals aborted by the logout guard."},
	{ID: goSession.MetricRefreshExhausted, Name: "gosession_refresh_exhausted_total", Help: "Retry-budget exhaustions forcing teardown."},
	{ID: goSession.MetricProfileLoaded, Name: "gosession_profile_loaded_total", Help: "Successful authoritative profile fetches."},
	{ID: goSession.MetricProfileFailed, Name: "gosession_profile_failed_total", Help: "Isolated profile fetch failures."},
	{ID: goSession.MetricLogout, Name: "gosession_logout_total", Help: "Executed session teardowns."},
	{ID: goSession.MetricIdleTimeout, Name: "gosession_idle_timeout_total", Help: "Teardowns triggered by the idle threshold."},
	{ID: goSession.MetricMirrorWarmStart, Name: "gosession_mirror_warm_start_total", Help: "Bootstraps seeded from a fresh mirror record."},
}

// HistogramDefs lists every histogram the engine collects.
var HistogramDefs = []HistogramDef{
	{ID: goSession.MetricRefreshLatency, Name: "gosession_refresh_latency_seconds", Help: "Renewal round-trip latency histogram."},
}

// HistogramBounds holds the upper bucket bounds in seconds, exposition form.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// NormalizeBuckets copies a variable-length snapshot slice into the fixed
// 8-bucket layout exporters render.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form the
// Prometheus exposition format requires.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
