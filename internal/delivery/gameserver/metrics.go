package gameserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeValid = "valid"
	outcomeError = "error"
)

var knownPaths = map[string]struct{}{
	"/isValidPlayer": {},
	"/requestCode":   {},
	"/health":        {},
	"/ready":         {},
	"/metrics":       {},
}

type Metrics struct {
	inFlight prometheus.Gauge
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tiergate_http_in_flight_requests",
			Help: "In-flight HTTP requests.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tiergate_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tiergate_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tiergate_validation_outcomes_total",
			Help: "Player validation results by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.inFlight, m.requests, m.duration, m.outcomes)
	return m
}

func (m *Metrics) observeOutcome(outcome string) {
	m.outcomes.WithLabelValues(outcome).Inc()
}

// Instrument records request count, latency and in-flight gauge.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if _, ok := knownPaths[path]; !ok {
			path = "other"
		}

		m.inFlight.Inc()
		defer m.inFlight.Dec()

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		status := strconv.Itoa(sw.code)
		m.duration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
		m.requests.WithLabelValues(r.Method, path, status).Inc()
	})
}
