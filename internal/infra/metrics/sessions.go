package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		sessionEventsTotal,
		storeOpsTotal,
	)
}

var (
	sessionEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_session_events_total",
			Help: "Session lifecycle events (created, deleted, reconciled).",
		},
		[]string{"event"},
	)

	storeOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operations_total",
			Help: "Persistence store operations by outcome.",
		},
		[]string{"op", "result"}, // op=get|set|remove|decode, result=ok|miss|error
	)
)

func IncSessionEvent(event string) {
	sessionEventsTotal.WithLabelValues(norm(event)).Inc()
}

func IncStoreOp(op, result string) {
	storeOpsTotal.WithLabelValues(norm(op), norm(result)).Inc()
}
