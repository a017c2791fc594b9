package facade

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics wraps the facade's Prometheus instrumentation: a latency
// histogram bucketed for a CPU-bound, never-yields query (§5), and a
// counter split by outcome so an operator can see the unreachable-
// destination rate without scraping logs.
type Metrics struct {
	latency *prometheus.HistogramVec
	queries *prometheus.CounterVec
}

// NewMetrics registers the facade's collectors against reg. Pass
// prometheus.NewRegistry() in tests to avoid colliding with the default
// global registry across parallel test binaries.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "raptorengine",
			Subsystem: "facade",
			Name:      "query_duration_seconds",
			Help:      "Latency of a single forward search, end to end; each arrive-by probe is observed separately.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 16),
		}, []string{"outcome"}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "raptorengine",
			Subsystem: "facade",
			Name:      "queries_total",
			Help:      "Total facade queries, partitioned by whether a journey was found.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.latency, m.queries)
	return m
}

// startTimer begins timing a query. The returned func must be called
// exactly once with whether the query found at least one journey; it
// records both the histogram observation and the outcome counter. A nil
// Metrics (no registry configured) makes this a complete no-op, so
// instrumentation is opt-in and never required to run a query.
func (m *Metrics) startTimer() func(found bool) {
	if m == nil {
		return func(bool) {}
	}
	timer := prometheus.NewTimer(nil)
	return func(found bool) {
		outcome := "unreachable"
		if found {
			outcome = "found"
		}
		m.latency.WithLabelValues(outcome).Observe(timer.ObserveDuration().Seconds())
		m.queries.WithLabelValues(outcome).Inc()
	}
}
