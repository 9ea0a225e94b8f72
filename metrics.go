package goSession

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a specific counter or histogram bucket in the
// in-process metrics system.
type MetricID uint16

const (
	// MetricLoginSuccess counts successful explicit logins.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts rejected or failed explicit logins.
	MetricLoginFailure
	// MetricBootstrapSuccess counts successful startup credential acquisitions.
	MetricBootstrapSuccess
	// MetricBootstrapFailure counts failed startup credential acquisitions.
	MetricBootstrapFailure
	// MetricRefreshSuccess counts successful credential renewals.
	MetricRefreshSuccess
	// MetricRefreshFailure counts transient renewal failures.
	MetricRefreshFailure
	// MetricRefreshRejected counts renewals explicitly rejected by the server.
	MetricRefreshRejected
	// MetricRefreshAborted counts renewals aborted by the logout guard.
	MetricRefreshAborted
	// MetricRefreshExhausted counts retry-budget exhaustions.
	MetricRefreshExhausted
	// MetricProfileLoaded counts successful authoritative profile fetches.
	MetricProfileLoaded
	// MetricProfileFailed counts isolated profile fetch failures.
	MetricProfileFailed
	// MetricLogout counts executed session teardowns.
	MetricLogout
	// MetricIdleTimeout counts teardowns triggered by the idle threshold.
	MetricIdleTimeout
	// MetricMirrorWarmStart counts bootstraps seeded from a fresh mirror record.
	MetricMirrorWarmStart
	// MetricRefreshLatency is the renewal round-trip latency histogram.
	MetricRefreshLatency

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

// Metrics holds atomic counters and an optional refresh-latency histogram.
// All operations are allocation-free on the write path and safe for
// concurrent use.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates a [Metrics] instance configured by cfg. When Enabled is
// false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether metric collection is active.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc increments the counter for id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records a refresh round-trip duration.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enableLatency || id != MetricRefreshLatency {
		return
	}
	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value reads a single counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot returns a deep copy of all counters and histograms.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricRefreshLatency].buckets[i])
		}
		s.Histograms[MetricRefreshLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
