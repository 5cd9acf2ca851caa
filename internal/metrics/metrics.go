package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ProcessedEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "replica_events_processed_total", Help: "Total feed events applied to the replica"},
		[]string{"type"},
	)
	FailedEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "replica_events_failed_total", Help: "Total feed events that could not be applied"},
		[]string{"type"},
	)
	DeadLetters = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "replica_dead_letters_total", Help: "Total events parked as dead letters"},
	)
	DroppedNotifications = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "replica_notifications_dropped_total", Help: "Change notifications dropped for slow subscribers"},
	)
	SearchIndexed = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "replica_search_indexed_total", Help: "Messages written to the search mirror"},
	)
)

func Register() {
	prometheus.MustRegister(ProcessedEvents, FailedEvents, DeadLetters, DroppedNotifications, SearchIndexed)
}
