// Package metrics provides Prometheus instrumentation for the poll loop.
//
// All methods are nil-safe so instrumentation can be disabled entirely by
// not constructing a Metrics; callers never need to branch on whether
// metrics are enabled.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cycle results recorded by ObserveCycle.
const (
	CycleOK          = "ok"
	CycleFetchFailed = "fetch_failed"
	CycleSaveFailed  = "save_failed"
)

// Metrics provides observability for the poll loop.
type Metrics struct {
	// Completed poll cycles by result
	CyclesTotal *prometheus.CounterVec

	// Upstream fetch attempts, including retries
	FetchAttemptsTotal prometheus.Counter

	// History entries appended across all courses
	EntriesAppended prometheus.Counter

	// Number of course IDs being polled
	TrackedCourses prometheus.Gauge

	// Duration of one fetch-merge-persist cycle
	CycleDuration prometheus.Histogram
}

// New creates a Metrics instance with all poll-loop metrics registered on
// the default registry.
func New() *Metrics {
	return &Metrics{
		CyclesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "wrtrack_poll_cycles_total",
			Help: "Completed poll cycles by result",
		}, []string{"result"}), // result: "ok", "fetch_failed", "save_failed"

		FetchAttemptsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "wrtrack_fetch_attempts_total",
			Help: "Upstream fetch attempts, including retries",
		}),

		EntriesAppended: promauto.NewCounter(prometheus.CounterOpts{
			Name: "wrtrack_history_entries_appended_total",
			Help: "Record history entries appended across all courses",
		}),

		TrackedCourses: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "wrtrack_tracked_courses",
			Help: "Number of course ids being polled",
		}),

		CycleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "wrtrack_poll_cycle_duration_seconds",
			Help:    "Duration of one fetch-merge-persist cycle",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
	}
}

// ObserveCycle records a completed cycle and its duration.
func (m *Metrics) ObserveCycle(result string, d time.Duration) {
	if m != nil {
		m.CyclesTotal.WithLabelValues(result).Inc()
		m.CycleDuration.Observe(d.Seconds())
	}
}

// IncFetchAttempt records one upstream request attempt.
func (m *Metrics) IncFetchAttempt() {
	if m != nil {
		m.FetchAttemptsTotal.Inc()
	}
}

// AddAppended records entries appended during a merge.
func (m *Metrics) AddAppended(n int) {
	if m != nil && n > 0 {
		m.EntriesAppended.Add(float64(n))
	}
}

// SetTrackedCourses records the size of the tracked course set.
func (m *Metrics) SetTrackedCourses(n int) {
	if m != nil {
		m.TrackedCourses.Set(float64(n))
	}
}

// Handler returns the Prometheus exposition handler for the default
// registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
