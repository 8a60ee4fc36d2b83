package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "indigo_menu"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	storeWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_writes_total",
			Help:      "Catalog writes by operation and result.",
		},
		[]string{"op", "result"},
	)

	snapshots = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_delivered_total",
			Help:      "Catalog snapshots delivered to subscribers by source.",
		},
		[]string{"source"},
	)

	recommendations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Assistant recommendation requests by result.",
		},
		[]string{"result"},
	)

	botUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bot_updates_total",
			Help:      "Telegram updates handled by kind.",
		},
		[]string{"kind"},
	)

	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Browser sessions holding a live view.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, storeWrites, snapshots, recommendations, botUpdates, activeSessions)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// ObserveWrite counts a catalog write; err decides the result label.
func ObserveWrite(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	storeWrites.WithLabelValues(op, result).Inc()
}

// IncSnapshot counts a delivered snapshot.
func IncSnapshot(fromCache bool) {
	source := "server"
	if fromCache {
		source = "cache"
	}
	snapshots.WithLabelValues(source).Inc()
}

// IncRecommendation counts an assistant call by result ("ok", "empty", "error").
func IncRecommendation(result string) {
	recommendations.WithLabelValues(result).Inc()
}

// SetActiveSessions reports the current number of sessions.
func SetActiveSessions(n int) {
	activeSessions.Set(float64(n))
}

// IncBotUpdate counts a handled Telegram update ("command", "callback", "text", "panic").
func IncBotUpdate(kind string) {
	botUpdates.WithLabelValues(kind).Inc()
}
