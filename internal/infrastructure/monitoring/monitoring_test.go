package monitoring

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alchemorsel/dishgen/internal/domain/dish"
	"github.com/alchemorsel/dishgen/internal/infrastructure/config"
	"github.com/alchemorsel/dishgen/pkg/healthcheck"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMetricsCollector_HandleEvent(t *testing.T) {
	metrics := NewMetricsCollector(zap.NewNop())
	ctx := context.Background()

	require.NoError(t, metrics.HandleEvent(ctx, dish.DishSavedEvent{DishID: uuid.New()}))
	require.NoError(t, metrics.HandleEvent(ctx, dish.DishLikedEvent{DishID: uuid.New(), LikesCount: 1}))
	require.NoError(t, metrics.HandleEvent(ctx, dish.DishLikedEvent{DishID: uuid.New(), LikesCount: 2}))
	require.NoError(t, metrics.HandleEvent(ctx, dish.DishUnlikedEvent{DishID: uuid.New()}))

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.dishesSavedTotal))
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.likeTogglesTotal.WithLabelValues("liked")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.likeTogglesTotal.WithLabelValues("unliked")))
}

func TestMetricsCollector_RecordRequest(t *testing.T) {
	metrics := NewMetricsCollector(zap.NewNop())

	metrics.RequestStarted()
	metrics.RecordRequest(http.MethodGet, "/api/v1/dishes/ranking", http.StatusOK, 20*time.Millisecond)

	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.httpActiveRequests))
	assert.Equal(t, float64(1), testutil.ToFloat64(
		metrics.httpRequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/dishes/ranking", "200"),
	))
}

func TestOpsServer_Routes(t *testing.T) {
	cfg := &config.Config{
		Monitoring: config.MonitoringConfig{EnableMetrics: true, MetricsPort: 0},
	}
	metrics := NewMetricsCollector(zap.NewNop())
	require.NoError(t, metrics.HandleEvent(context.Background(), dish.DishSavedEvent{}))

	server := NewOpsServer(cfg, metrics, healthcheck.New("test", zap.NewNop()), zap.NewNop())

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	w := get("/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "dishes_saved_total 1")

	for _, path := range []string{"/health", "/health/live", "/health/ready"} {
		assert.Equal(t, http.StatusOK, get(path).Code, path)
	}
}

func TestTracingProvider_Disabled(t *testing.T) {
	tp, err := NewTracingProvider(context.Background(), TracingConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, tp.Enabled())
	h := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	assert.NotNil(t, tp.WrapHandler(h, "api"))
	assert.NoError(t, tp.Shutdown(context.Background()))
	assert.Empty(t, TraceIDFromContext(context.Background()))
}
