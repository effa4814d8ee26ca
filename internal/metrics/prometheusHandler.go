package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var turnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "chat_turns_total",
	Help: "Completed chat turns labelled by outcome",
}, []string{"outcome"})

var intentHits = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "intent_dispatch_total",
	Help: "Ancillary API intent matches labelled by function",
}, []string{"function"})

var activeConversations = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "active_conversations",
	Help: "Tenant bundles currently held in the context store",
})

var turnDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "chat_turn_duration_seconds",
	Help:    "Total time spent handling one chat turn.",
	Buckets: []float64{.1, .5, 1, 2, 5, 10, 30},
}, []string{"outcome"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureTurnMetrics(outcome string, timeElapsed time.Duration) {
	turnsTotal.WithLabelValues(outcome).Inc()
	turnDuration.WithLabelValues(outcome).Observe(timeElapsed.Seconds())
}

func CountIntentHit(function string) {
	intentHits.WithLabelValues(function).Inc()
}

func SetActiveConversations(n int) {
	activeConversations.Set(float64(n))
}
