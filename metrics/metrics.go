package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// StreamsTotal counts finished tutor relays by transport and outcome.
	StreamsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tutor",
		Subsystem: "relay",
		Name:      "streams_total",
		Help:      "Total number of tutor relays, labeled by transport (sse|ws) and outcome (done|cap|error|canceled).",
	}, []string{"transport", "outcome"})

	// StreamDurationSeconds is the wall time of one relay, from upstream request to the last frame.
	StreamDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tutor",
		Subsystem: "relay",
		Name:      "stream_duration_seconds",
		Help:      "Wall time of a tutor relay.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60, 120, 300},
	}, []string{"outcome"})

	// ActiveStreams is the number of relays currently open.
	ActiveStreams = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "tutor",
		Subsystem: "relay",
		Name:      "active_streams",
		Help:      "Number of tutor relays currently in flight.",
	})

	UpstreamErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tutor",
		Subsystem: "relay",
		Name:      "upstream_errors_total",
		Help:      "Upstream failures, labeled by kind (connect|status|read|timeout).",
	}, []string{"kind"})

	ValidatorResultsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tutor",
		Subsystem: "validator",
		Name:      "results_total",
		Help:      "Draft validations, labeled by resulting status.",
	}, []string{"status"})

	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tutor",
		Subsystem: "http",
		Name:      "rate_limited_total",
		Help:      "Tutor stream requests rejected by the rate limiter.",
	})
)

// Register registers tutor metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			StreamsTotal,
			StreamDurationSeconds,
			ActiveStreams,
			UpstreamErrorsTotal,
			ValidatorResultsTotal,
			RateLimitedTotal,
		)
	})
}
