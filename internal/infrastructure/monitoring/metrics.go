// Package monitoring provides metrics, tracing and the operations server
package monitoring

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/alchemorsel/dishgen/internal/domain/dish"
	"github.com/alchemorsel/dishgen/internal/domain/shared"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsCollector handles Prometheus metrics collection
type MetricsCollector struct {
	registry *prometheus.Registry
	logger   *zap.Logger

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpActiveRequests  prometheus.Gauge

	// Business metrics
	dishesSavedTotal   prometheus.Counter
	dishesDeletedTotal prometheus.Counter
	likeTogglesTotal   *prometheus.CounterVec
	likeFeedClients    prometheus.Gauge
}

// NewMetricsCollector creates a collector backed by its own registry
func NewMetricsCollector(logger *zap.Logger) *MetricsCollector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &MetricsCollector{
		registry: registry,
		logger:   logger.Named("metrics"),

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status_code"},
		),
		httpActiveRequests: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_active_requests",
				Help: "Number of in-flight HTTP requests",
			},
		),

		dishesSavedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "dishes_saved_total",
				Help: "Total number of dishes saved",
			},
		),
		dishesDeletedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "dishes_deleted_total",
				Help: "Total number of dishes deleted",
			},
		),
		likeTogglesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dish_like_toggles_total",
				Help: "Total number of committed like toggles by outcome",
			},
			[]string{"action"},
		),
		likeFeedClients: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "like_feed_clients",
				Help: "Number of connected like feed websocket clients",
			},
		),
	}
}

// Registry exposes the underlying registry
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RequestStarted marks a request as in flight
func (m *MetricsCollector) RequestStarted() {
	m.httpActiveRequests.Inc()
}

// RecordRequest records a finished HTTP request. path is the route
// pattern, not the raw URL, to keep label cardinality bounded.
func (m *MetricsCollector) RecordRequest(method, path string, status int, duration time.Duration) {
	m.httpActiveRequests.Dec()

	code := strconv.Itoa(status)
	m.httpRequestsTotal.WithLabelValues(method, path, code).Inc()
	m.httpRequestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
}

// LikeFeedClients tracks the number of connected feed clients
func (m *MetricsCollector) LikeFeedClients(n int) {
	m.likeFeedClients.Set(float64(n))
}

// HandleEvent updates business metrics from dish events
func (m *MetricsCollector) HandleEvent(_ context.Context, event shared.DomainEvent) error {
	switch event.(type) {
	case dish.DishSavedEvent:
		m.dishesSavedTotal.Inc()
	case dish.DishDeletedEvent:
		m.dishesDeletedTotal.Inc()
	case dish.DishLikedEvent:
		m.likeTogglesTotal.WithLabelValues(string(dish.LikeActionLiked)).Inc()
	case dish.DishUnlikedEvent:
		m.likeTogglesTotal.WithLabelValues(string(dish.LikeActionUnliked)).Inc()
	default:
		m.logger.Debug("Ignoring event", zap.String("event", event.EventName()))
	}
	return nil
}
