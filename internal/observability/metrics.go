package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once
	registry     = prometheus.NewRegistry()

	exchanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "greetctl",
			Subsystem: "greetd",
			Name:      "exchanges_total",
			Help:      "Total greetd request/response exchanges.",
		},
		[]string{"transport", "request", "result"},
	)
	exchangeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "greetctl",
			Subsystem: "greetd",
			Name:      "exchange_duration_seconds",
			Help:      "greetd exchange round-trip duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"transport", "request"},
	)
	loginOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "greetctl",
			Subsystem: "login",
			Name:      "outcomes_total",
			Help:      "Login builder submissions by outcome.",
		},
		[]string{"outcome"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		registry.MustRegister(exchanges, exchangeDuration, loginOutcomes)
	})
}

// Gatherer exposes the greetctl registry.
func Gatherer() prometheus.Gatherer {
	RegisterMetrics()
	return registry
}

// RecordExchange counts one exchange. result is the response type or
// "transport_error".
func RecordExchange(transport, request, result string, duration time.Duration) {
	RegisterMetrics()
	exchanges.WithLabelValues(transport, request, result).Inc()
	exchangeDuration.WithLabelValues(transport, request).Observe(duration.Seconds())
}

func RecordOutcome(outcome string) {
	RegisterMetrics()
	loginOutcomes.WithLabelValues(outcome).Inc()
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Gatherer())
}
