package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var fetchAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "source_fetch_attempts_total",
	Help: "Fetch attempts against the source CDN, partitioned by fallback variant index and outcome",
}, []string{"variant", "outcome"})

func init() {
	prometheus.MustRegister(fetchAttempts)
}

// ObserveFetchAttempt counts one attempt of the fetch fallback sequence.
// Variant is the zero-based position in the sequence.
func ObserveFetchAttempt(variant int, outcome string) {
	fetchAttempts.WithLabelValues(strconv.Itoa(variant), outcome).Inc()
}
