package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestCounter counts all HTTP requests with labels
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	// RequestDurationHistogram records request duration in seconds
	RequestDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)

	// StatusCodeCategoryCounter counts responses per 2xx/4xx/5xx
	StatusCodeCategoryCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_status_category_total",
			Help: "Total number of responses by status category (2xx, 4xx, 5xx)",
		},
		[]string{"service", "category", "method", "path"},
	)

	// BillsOverdue is set by the hourly overdue sweep.
	BillsOverdue = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bills_overdue",
			Help: "Number of unpaid bills past their due date",
		},
	)

	// AuthAttemptsCounter counts logins by outcome (success, failure)
	AuthAttemptsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_login_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"method", "outcome"},
	)

	// PushSentCounter counts FCM deliveries by outcome
	PushSentCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_messages_total",
			Help: "Total number of push deliveries",
		},
		[]string{"outcome"},
	)

	registerOnce sync.Once
)

// Register adds every collector to the default registry once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDurationHistogram,
			StatusCodeCategoryCounter,
			BillsOverdue,
			AuthAttemptsCounter,
			PushSentCounter,
		)
	})
}

// HTTPMetrics holds configuration and state for HTTP metrics collection
type HTTPMetrics struct {
	ServiceName string
}

func NewHTTPMetrics(serviceName string) *HTTPMetrics {
	Register()
	return &HTTPMetrics{ServiceName: serviceName}
}

func statusCategory(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500 && status < 600:
		return "5xx"
	}
	return ""
}

// Middleware records request metrics. The route pattern is used as path
// label so ids do not explode cardinality.
func (m *HTTPMetrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		method := c.Method()
		path := c.Route().Path
		statusStr := strconv.Itoa(status)

		RequestCounter.WithLabelValues(m.ServiceName, method, path, statusStr).Inc()
		if cat := statusCategory(status); cat != "" {
			StatusCodeCategoryCounter.WithLabelValues(m.ServiceName, cat, method, path).Inc()
		}
		RequestDurationHistogram.WithLabelValues(m.ServiceName, method, path, statusStr).
			Observe(time.Since(start).Seconds())

		return err
	}
}

// RecordLogin increments the login counter.
func RecordLogin(method string, ok bool) {
	outcome := "failure"
	if ok {
		outcome = "success"
	}
	AuthAttemptsCounter.WithLabelValues(method, outcome).Inc()
}

func RecordPush(success, failure int) {
	PushSentCounter.WithLabelValues("success").Add(float64(success))
	PushSentCounter.WithLabelValues("failure").Add(float64(failure))
}

// GetPrometheusHandler returns an HTTP handler for exposing Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}
