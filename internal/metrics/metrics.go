package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPRequests counts served requests by method, route template and status.
var HTTPRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "wallet_service_http_requests_total",
		Help: "Total number of HTTP requests served",
	},
	[]string{"method", "route", "status"},
)

// HTTPLatency records request latency by method and route template.
var HTTPLatency = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "wallet_service_http_request_duration_seconds",
		Help:    "Latency in seconds of HTTP requests",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// Operations counts core operation outcomes by result code.
var Operations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "wallet_service_operations_total",
		Help: "Outcomes of auth and wallet operations by result code",
	},
	[]string{"operation", "code"},
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPLatency, Operations)
}

// RecordOperation increments the outcome counter for op.
func RecordOperation(op string, code int) {
	Operations.WithLabelValues(op, strconv.Itoa(code)).Inc()
}

// ObserveRequest records one served request.
func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
