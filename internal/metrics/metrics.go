package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	NodesTotal   prometheus.Gauge
	NodesActive  prometheus.Gauge
	NodesOffline prometheus.Gauge
	AvgLatencyMs prometheus.Gauge

	PollsTotal        *prometheus.CounterVec
	AssistantRequests *prometheus.CounterVec
	CompletionSeconds *prometheus.HistogramVec
)

// Init registers the collectors. Call once from main; helpers below
// no-op until then so library code stays test-friendly.
func Init() {
	NodesTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "xandalyze",
		Name:      "nodes_total",
		Help:      "Nodes in the current snapshot",
	})
	NodesActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "xandalyze",
		Name:      "nodes_active",
		Help:      "Active nodes in the current snapshot",
	})
	NodesOffline = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "xandalyze",
		Name:      "nodes_offline",
		Help:      "Offline nodes in the current snapshot",
	})
	AvgLatencyMs = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "xandalyze",
		Name:      "avg_latency_ms",
		Help:      "Mean node latency in the current snapshot",
	})

	PollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "xandalyze",
			Name:      "polls_total",
			Help:      "Node list refreshes by result source",
		},
		[]string{"source"},
	)
	AssistantRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "xandalyze",
			Name:      "assistant_requests_total",
			Help:      "Assistant round trips by outcome",
		},
		[]string{"outcome"},
	)
	CompletionSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "xandalyze",
			Name:      "completion_duration_seconds",
			Help:      "Completion backend round-trip duration",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	prometheus.MustRegister(
		NodesTotal, NodesActive, NodesOffline, AvgLatencyMs,
		PollsTotal, AssistantRequests, CompletionSeconds,
	)
}

// SetSnapshot updates the node gauges after a refresh.
func SetSnapshot(total, active, offline int, avgLatencyMs float64) {
	if NodesTotal == nil {
		return
	}
	NodesTotal.Set(float64(total))
	NodesActive.Set(float64(active))
	NodesOffline.Set(float64(offline))
	AvgLatencyMs.Set(avgLatencyMs)
}

// Poll counts one refresh attributed to its data source.
func Poll(source string) {
	if PollsTotal == nil {
		return
	}
	PollsTotal.WithLabelValues(source).Inc()
}

// AssistantRequest counts one round trip by outcome ("ok"/"error").
func AssistantRequest(outcome string) {
	if AssistantRequests == nil {
		return
	}
	AssistantRequests.WithLabelValues(outcome).Inc()
}

// CompletionDuration observes one backend round trip.
func CompletionDuration(provider string, d time.Duration) {
	if CompletionSeconds == nil {
		return
	}
	CompletionSeconds.WithLabelValues(provider).Observe(d.Seconds())
}
