package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		aiCallsLatencyMs,
		aiCallsInFlight,
		exchangesTotal,
	)
}

var (
	aiCallsLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_calls_latency_ms",
			Help:    "Model channel round trip latency in milliseconds.",
			Buckets: []float64{100, 250, 500, 1000, 2000, 4000, 8000, 15000, 30000, 60000},
		},
		[]string{"provider", "success"},
	)

	aiCallsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ai_calls_in_flight",
			Help: "Model channel calls currently awaiting a response.",
		},
	)

	exchangesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_exchanges_total",
			Help: "Message exchanges by terminal outcome (fulfilled, failed, ignored).",
		},
		[]string{"outcome"},
	)
)

// ObserveModelCall records one channel round trip and returns nothing; call it
// after the reply (or error) arrived.
func ObserveModelCall(provider string, elapsed time.Duration, success bool) {
	aiCallsLatencyMs.WithLabelValues(norm(provider), strconv.FormatBool(success)).
		Observe(float64(elapsed.Milliseconds()))
}

// TrackInFlight increments the in-flight gauge; the returned func decrements it.
func TrackInFlight() func() {
	aiCallsInFlight.Inc()
	return aiCallsInFlight.Dec
}

func IncExchange(outcome string) {
	exchangesTotal.WithLabelValues(norm(outcome)).Inc()
}
