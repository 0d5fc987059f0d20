package utils

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	backendRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "learnfront",
		Name:      "backend_requests_total",
		Help:      "Requests sent to the learning backend, by operation and status class.",
	}, []string{"op", "status"})

	backendLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "learnfront",
		Name:      "backend_request_duration_seconds",
		Help:      "Latency of backend requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})

	optimisticRollbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "learnfront",
		Name:      "optimistic_rollbacks_total",
		Help:      "Optimistic updates reverted after the backend rejected them.",
	}, []string{"entity"})

	pollFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "learnfront",
		Name:      "module_poll_failures_total",
		Help:      "Background module list refreshes that failed.",
	})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "learnfront",
		Name:      "active_sessions",
		Help:      "Sessions currently held in memory.",
	})
)

// ObserveBackendRequest records one backend round trip; status 0 means no response
func ObserveBackendRequest(op string, status int, took time.Duration) {
	class := "error"
	if status > 0 {
		class = strconv.Itoa(status/100) + "xx"
	}
	backendRequests.WithLabelValues(op, class).Inc()
	backendLatency.WithLabelValues(op).Observe(took.Seconds())
}

func RecordRollback(entity string) {
	optimisticRollbacks.WithLabelValues(entity).Inc()
}

func RecordPollFailure() {
	pollFailures.Inc()
}

func SetActiveSessions(n int) {
	activeSessions.Set(float64(n))
}
