// Package metrics holds Prometheus collectors of aquafarmd and aquasync.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var latencyBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Server collects metrics of the backend.
type Server struct {
	requests         *prometheus.CounterVec
	latency          *prometheus.HistogramVec
	inFlight         prometheus.Gauge
	tenantRejections *prometheus.CounterVec
	readings         *prometheus.CounterVec
	alerts           *prometheus.CounterVec
}

// NewServer registers backend collectors to reg.
func NewServer(reg prometheus.Registerer) *Server {
	f := promauto.With(reg)
	return &Server{
		requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aquafarm_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aquafarm_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: latencyBuckets,
			},
			[]string{"method", "route"},
		),
		inFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "aquafarm_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),
		tenantRejections: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aquafarm_tenant_rejections_total",
				Help: "Requests refused while resolving the tenant",
			},
			[]string{"reason"},
		),
		readings: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aquafarm_water_readings_total",
				Help: "Water-quality readings received, by outcome (created or replayed)",
			},
			[]string{"outcome"},
		),
		alerts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aquafarm_water_quality_alerts_total",
				Help: "Notifications raised for water-quality thresholds",
			},
			[]string{"parameter"},
		),
	}
}

// Middleware records count and latency of requests by route pattern.
func (m *Server) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		m.inFlight.Inc()
		defer m.inFlight.Dec()

		begin := time.Now()
		err := next(c)

		status := c.Response().Status
		if he, ok := err.(*echo.HTTPError); ok {
			status = he.Code
		}
		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request().Method
		m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		m.latency.WithLabelValues(method, route).Observe(time.Since(begin).Seconds())
		return err
	}
}

// TenantRejected counts a request refused by the tenant middleware.
func (m *Server) TenantRejected(reason string) {
	m.tenantRejections.WithLabelValues(reason).Inc()
}

// ReadingReceived counts a reading; created is false for an idempotent replay.
func (m *Server) ReadingReceived(created bool) {
	outcome := "replayed"
	if created {
		outcome = "created"
	}
	m.readings.WithLabelValues(outcome).Inc()
}

func (m *Server) AlertRaised(parameter string) {
	m.alerts.WithLabelValues(parameter).Inc()
}

// Agent collects metrics of the field agent.
type Agent struct {
	passes     *prometheus.CounterVec
	items      *prometheus.CounterVec
	queueDepth prometheus.Gauge
	enqueued   *prometheus.CounterVec
}

// NewAgent registers agent collectors to reg.
func NewAgent(reg prometheus.Registerer) *Agent {
	f := promauto.With(reg)
	return &Agent{
		passes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aquasync_sync_passes_total",
				Help: "Sync passes by result (drained, halted, skipped)",
			},
			[]string{"result"},
		),
		items: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aquasync_sync_items_total",
				Help: "Queue items by send outcome (sent, failed)",
			},
			[]string{"outcome"},
		),
		queueDepth: f.NewGauge(prometheus.GaugeOpts{
			Name: "aquasync_queue_depth",
			Help: "Items waiting in the offline queue",
		}),
		enqueued: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aquasync_enqueued_total",
				Help: "Items enqueued, by source (cli, mqtt)",
			},
			[]string{"source"},
		),
	}
}

func (a *Agent) Pass(result string) {
	a.passes.WithLabelValues(result).Inc()
}

func (a *Agent) Sent(n int) {
	a.items.WithLabelValues("sent").Add(float64(n))
}

func (a *Agent) Failed() {
	a.items.WithLabelValues("failed").Inc()
}

func (a *Agent) QueueDepth(n int) {
	a.queueDepth.Set(float64(n))
}

func (a *Agent) Enqueued(source string) {
	a.enqueued.WithLabelValues(source).Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
