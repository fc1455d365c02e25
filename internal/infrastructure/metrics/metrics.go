package metrics

import (
	"net/http"
	"runtime"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "oekaki"

// Metrics defines our Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	roomsActive       prometheus.Gauge
	connectionsActive prometheus.Gauge
	goroutines        prometheus.Gauge
	roundsStarted     prometheus.Counter
	roundResults      *prometheus.CounterVec
	judgeDuration     *prometheus.HistogramVec
	judgeFailures     *prometheus.CounterVec
	eventsRejected    *prometheus.CounterVec
	strokesRelayed    prometheus.Counter
	requestCount      *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		roomsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms_active",
			Help:      "Number of rooms currently held by the registry.",
		}),
		connectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Number of open websocket connections.",
		}),
		goroutines: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "go_routines",
			Help:      "Goroutines observed at the last scrape.",
		}),
		roundsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_started_total",
			Help:      "Rounds that received a topic.",
		}),
		roundResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "round_results_total",
			Help:      "Resolved rounds by guess correctness.",
		}, []string{"correct"}),
		judgeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "judge_duration_seconds",
			Help:      "Latency of judgment service calls.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}, []string{"op"}),
		judgeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "judge_failures_total",
			Help:      "Failed judgment service calls.",
		}, []string{"op"}),
		eventsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_rejected_total",
			Help:      "Inbound events answered with an error message.",
		}, []string{"code"}),
		strokesRelayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "strokes_relayed_total",
			Help:      "Stroke events forwarded to guessers.",
		}),
		requestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.roomsActive,
		m.connectionsActive,
		m.goroutines,
		m.roundsStarted,
		m.roundResults,
		m.judgeDuration,
		m.judgeFailures,
		m.eventsRejected,
		m.strokesRelayed,
		m.requestCount,
		m.requestDuration,
	)

	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	scrape := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.goroutines.Set(float64(runtime.NumGoroutine()))
		scrape.ServeHTTP(w, r)
	})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) SetRoomsActive(n int) {
	m.roomsActive.Set(float64(n))
}

func (m *Metrics) ConnectionOpened() {
	m.connectionsActive.Inc()
}

func (m *Metrics) ConnectionClosed() {
	m.connectionsActive.Dec()
}

func (m *Metrics) RoundStarted() {
	m.roundsStarted.Inc()
}

func (m *Metrics) RoundResolved(correct bool) {
	m.roundResults.WithLabelValues(strconv.FormatBool(correct)).Inc()
}

func (m *Metrics) ObserveJudge(op string, seconds float64, err error) {
	m.judgeDuration.WithLabelValues(op).Observe(seconds)
	if err != nil {
		m.judgeFailures.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) EventRejected(code string) {
	m.eventsRejected.WithLabelValues(code).Inc()
}

func (m *Metrics) StrokeRelayed() {
	m.strokesRelayed.Inc()
}

func (m *Metrics) ObserveRequest(method, path string, status int, seconds float64) {
	m.requestCount.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(seconds)
}
