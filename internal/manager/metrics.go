package manager

import (
	"github.com/prometheus/client_golang/prometheus"

	"podd/pkg/types"
)

var (
	podsByStatus = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "podd",
		Subsystem: "manager",
		Name:      "pods",
		Help:      "Number of tracked pods by status.",
	}, []string{"status"})

	podsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "podd",
		Subsystem: "manager",
		Name:      "pods_created_total",
		Help:      "Total pods provisioned through this instance.",
	})

	podsTerminatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "podd",
		Subsystem: "manager",
		Name:      "pods_terminated_total",
		Help:      "Total pods terminated through this instance.",
	})

	pollFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "podd",
		Subsystem: "manager",
		Name:      "poll_failures_total",
		Help:      "Provider poll attempts that returned an error.",
	})

	staleReadsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "podd",
		Subsystem: "manager",
		Name:      "stale_reads_total",
		Help:      "Provider poll results dropped because the local state had already moved on.",
	})
)

func init() {
	prometheus.MustRegister(podsByStatus, podsCreatedTotal, podsTerminatedTotal, pollFailuresTotal, staleReadsTotal)
}

// refreshPodGauges recomputes the per-status gauge. Callers must hold m.mu.
func (m *Manager) refreshPodGauges() {
	counts := map[types.Status]int{}
	for _, st := range m.pods {
		counts[st.rec.Status]++
	}
	for _, s := range []types.Status{
		types.StatusInitializing, types.StatusRunning, types.StatusStopped,
		types.StatusFailed, types.StatusTerminated,
	} {
		podsByStatus.WithLabelValues(string(s)).Set(float64(counts[s]))
	}
}
