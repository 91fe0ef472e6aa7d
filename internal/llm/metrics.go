// Prometheus instrumentation for gateway calls. Labels are kept to a small
// closed set (operation outcome) so cardinality stays bounded regardless of
// which providers or models operators configure.
package llm

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// gatewayCalls counts gateway operations by kind and outcome.
	gatewayCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_gateway_calls_total",
			Help: "Total number of LLM gateway calls.",
		},
		[]string{"op", "outcome"},
	)

	// gatewayDuration records end-to-end call duration in seconds by kind.
	// Streaming calls include the full drain time of the fragment sequence.
	gatewayDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_gateway_call_duration_seconds",
			Help:    "Duration of LLM gateway calls in seconds.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(gatewayCalls, gatewayDuration)
}

func observeStream(outcome string, start time.Time) {
	gatewayCalls.WithLabelValues("stream_chat", outcome).Inc()
	gatewayDuration.WithLabelValues("stream_chat").Observe(time.Since(start).Seconds())
}

func observeExtract(outcome string, start time.Time) {
	gatewayCalls.WithLabelValues("suggest_questions", outcome).Inc()
	gatewayDuration.WithLabelValues("suggest_questions").Observe(time.Since(start).Seconds())
}
