// Package metrics exposes Prometheus collectors for order resolution and the
// HTTP API. Each Recorder owns its registry so that several can coexist in
// one process (tests in particular).
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eugenenazirov/pack-orders/internal/resolver"
)

// Recorder collects resolution, order-line and HTTP metrics.
type Recorder struct {
	registry *prometheus.Registry

	resolutions     *prometheus.CounterVec
	resolveDuration prometheus.Histogram
	orderLines      *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "packorder_resolutions_total",
				Help: "Total number of pack resolutions by outcome status and policy",
			},
			[]string{"status", "policy"},
		),
		resolveDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "packorder_resolve_duration_seconds",
				Help:    "Pack resolution duration in seconds",
				Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
			},
		),
		orderLines: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "packorder_order_lines_total",
				Help: "Total number of processed order lines by outcome",
			},
			[]string{"outcome"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "packorder_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "status_code"},
		),
	}
	r.registry.MustRegister(r.resolutions, r.resolveDuration, r.orderLines, r.httpRequests)
	return r
}

// ObserveResolution records a single resolver call.
func (r *Recorder) ObserveResolution(policy resolver.Policy, status resolver.Status, elapsed time.Duration) {
	r.resolutions.WithLabelValues(status.String(), string(policy)).Inc()
	r.resolveDuration.Observe(elapsed.Seconds())
}

// ObserveLine records the outcome of an order line.
func (r *Recorder) ObserveLine(outcome string) {
	r.orderLines.WithLabelValues(outcome).Inc()
}

// ObserveRequest records a completed HTTP request.
func (r *Recorder) ObserveRequest(method string, status int) {
	r.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
