package events

import "github.com/prometheus/client_golang/prometheus"

var (
	publishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "podd",
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Total events published, by event type",
		},
		[]string{"type"},
	)

	subscribersGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "podd",
			Subsystem: "events",
			Name:      "subscribers",
			Help:      "Currently connected event-stream subscribers",
		},
	)

	evictionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "podd",
			Subsystem: "events",
			Name:      "subscriber_evictions_total",
			Help:      "Subscribers evicted because their delivery queue overflowed",
		},
	)
)

func init() {
	prometheus.MustRegister(publishedTotal, subscribersGauge, evictionsTotal)
}
