package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics stores Prometheus collectors for the delivery pipeline and the
// health/metrics HTTP surface.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal        *prometheus.CounterVec
	httpRequestDuration      *prometheus.HistogramVec
	notificationsSentTotal   *prometheus.CounterVec
	notificationsFailedTotal *prometheus.CounterVec
	notificationsRetried     *prometheus.CounterVec
	emailSendDuration        *prometheus.HistogramVec
	consumerInflight         prometheus.Gauge
	poisonMessagesTotal      prometheus.Counter
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "notification_engine",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "notification_engine",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds by method and path.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		notificationsSentTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "notification_engine",
				Name:      "notifications_sent_total",
				Help:      "Total number of notifications delivered successfully.",
			},
			[]string{"type"},
		),
		notificationsFailedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "notification_engine",
				Name:      "notifications_failed_total",
				Help:      "Total number of delivery attempts that ended in failed state.",
			},
			[]string{"type", "reason"},
		),
		notificationsRetried: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "notification_engine",
				Name:      "notifications_retried_total",
				Help:      "Total number of sweeper-driven retry attempts.",
			},
			[]string{"type"},
		),
		emailSendDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "notification_engine",
				Name:      "email_send_duration_seconds",
				Help:      "Email provider send duration in seconds grouped by notification type.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"type"},
		),
		consumerInflight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "notification_engine",
				Name:      "consumer_inflight",
				Help:      "Current number of in-flight consumer deliveries.",
			},
		),
		poisonMessagesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "notification_engine",
				Name:      "poison_messages_total",
				Help:      "Total number of malformed queue messages rejected without requeue.",
			},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.notificationsSentTotal,
		m.notificationsFailedTotal,
		m.notificationsRetried,
		m.emailSendDuration,
		m.consumerInflight,
		m.poisonMessagesTotal,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) HTTPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := routePath(c)
		// Avoid self-scrape noise for request counters.
		if path == "/metrics" {
			return err
		}

		m.recordHTTPRequest(c.Method(), path, statusFromResult(c, err), time.Since(start))
		return err
	}
}

func (m *Metrics) IncNotificationSent(notificationType string) {
	if m == nil {
		return
	}
	m.notificationsSentTotal.WithLabelValues(normalizeType(notificationType)).Inc()
}

func (m *Metrics) IncNotificationFailed(notificationType string, reason string) {
	if m == nil {
		return
	}
	reasonLabel := strings.TrimSpace(strings.ToLower(reason))
	if reasonLabel == "" {
		reasonLabel = "unknown"
	}
	m.notificationsFailedTotal.WithLabelValues(normalizeType(notificationType), reasonLabel).Inc()
}

func (m *Metrics) IncNotificationRetried(notificationType string) {
	if m == nil {
		return
	}
	m.notificationsRetried.WithLabelValues(normalizeType(notificationType)).Inc()
}

func (m *Metrics) ObserveEmailSendDuration(notificationType string, duration time.Duration) {
	if m == nil {
		return
	}
	seconds := duration.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	m.emailSendDuration.WithLabelValues(normalizeType(notificationType)).Observe(seconds)
}

func (m *Metrics) IncConsumerInFlight() {
	if m == nil {
		return
	}
	m.consumerInflight.Inc()
}

func (m *Metrics) DecConsumerInFlight() {
	if m == nil {
		return
	}
	m.consumerInflight.Dec()
}

func (m *Metrics) IncPoisonMessage() {
	if m == nil {
		return
	}
	m.poisonMessagesTotal.Inc()
}

func (m *Metrics) recordHTTPRequest(method string, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	methodLabel := strings.ToUpper(strings.TrimSpace(method))
	if methodLabel == "" {
		methodLabel = "UNKNOWN"
	}
	pathLabel := strings.TrimSpace(path)
	if pathLabel == "" {
		pathLabel = "unmatched"
	}

	m.httpRequestsTotal.WithLabelValues(methodLabel, pathLabel, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(methodLabel, pathLabel).Observe(duration.Seconds())
}

func routePath(c *fiber.Ctx) string {
	if c == nil {
		return "unmatched"
	}

	if route := c.Route(); route != nil {
		if path := strings.TrimSpace(route.Path); path != "" {
			return path
		}
	}
	return "unmatched"
}

func statusFromResult(c *fiber.Ctx, err error) int {
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			return fiberErr.Code
		}
		return fiber.StatusInternalServerError
	}

	if c == nil {
		return fiber.StatusOK
	}

	status := c.Response().StatusCode()
	if status == 0 {
		return fiber.StatusOK
	}
	return status
}

func normalizeType(notificationType string) string {
	normalized := strings.ToLower(strings.TrimSpace(notificationType))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}
