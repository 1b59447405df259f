package healthcheck

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alchemorsel/dishgen/internal/infrastructure/persistence/sqlite"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubChecker struct {
	status Status
	delay  time.Duration
	calls  atomic.Int32
}

func (s *stubChecker) Check(ctx context.Context) Check {
	s.calls.Add(1)
	start := time.Now()

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return Check{Status: StatusUnhealthy, Message: "Check timed out", LastChecked: start}
		}
	}
	return Check{Status: s.status, LastChecked: start, Duration: time.Since(start)}
}

func TestHealthCheck_AggregateStatus(t *testing.T) {
	cases := map[string]struct {
		statuses []Status
		want     Status
	}{
		"NoCheckers":    {nil, StatusHealthy},
		"AllHealthy":    {[]Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		"OneDegraded":   {[]Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		"UnhealthyWins": {[]Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			hc := New("test", zap.NewNop())
			for i, s := range tc.statuses {
				hc.Register(string(rune('a'+i)), &stubChecker{status: s})
			}

			response := hc.Check(context.Background())

			assert.Equal(t, tc.want, response.Status)
			assert.Len(t, response.Checks, len(tc.statuses))
			assert.Equal(t, "test", response.Version)
		})
	}
}

func TestHealthCheck_ChecksOrderedByName(t *testing.T) {
	hc := New("test", zap.NewNop())
	for _, name := range []string{"redis", "cache", "likefeed", "database"} {
		hc.Register(name, &stubChecker{status: StatusHealthy})
	}

	response := hc.Check(context.Background())

	var names []string
	for _, c := range response.Checks {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"cache", "database", "likefeed", "redis"}, names)
}

func TestHealthCheck_RegisterDropsCachedResponse(t *testing.T) {
	hc := New("test", zap.NewNop(), WithCacheTTL(time.Hour))
	hc.Register("database", &stubChecker{status: StatusHealthy})
	require.Equal(t, StatusHealthy, hc.Check(context.Background()).Status)

	hc.Register("likefeed", &stubChecker{status: StatusUnhealthy})

	response := hc.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, response.Status)
	assert.Equal(t, []string{"likefeed"}, response.Failing())
}

func TestHealthCheck_TimeoutBoundsSlowChecks(t *testing.T) {
	hc := New("test", zap.NewNop(), WithTimeout(20*time.Millisecond))
	hc.Register("slow", &stubChecker{status: StatusHealthy, delay: time.Second})

	start := time.Now()
	response := hc.Check(context.Background())

	assert.Equal(t, StatusUnhealthy, response.Status)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestHealthCheck_LogsTransitions(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	hc := New("test", zap.New(core), WithCacheTTL(0))
	status := StatusHealthy
	hc.Register("cache", CheckFunc(func(context.Context) (Status, string, map[string]interface{}) {
		return status, "", nil
	}))

	hc.Check(context.Background())
	assert.Zero(t, logs.Len())

	status = StatusUnhealthy
	hc.Check(context.Background())
	hc.Check(context.Background())
	require.Equal(t, 1, logs.FilterMessage("Health check failing").Len())

	status = StatusHealthy
	hc.Check(context.Background())
	assert.Equal(t, 1, logs.FilterMessage("Health check recovered").Len())
}

func TestCheckFunc(t *testing.T) {
	checker := CheckFunc(func(ctx context.Context) (Status, string, map[string]interface{}) {
		return StatusDegraded, "slow", map[string]interface{}{"clients": 3}
	})

	check := checker.Check(context.Background())

	assert.Equal(t, StatusDegraded, check.Status)
	assert.Equal(t, "slow", check.Message)
	assert.Equal(t, 3, check.Metadata["clients"])
	assert.False(t, check.LastChecked.IsZero())
}

func TestHealthCheck_ChecksRunConcurrently(t *testing.T) {
	hc := New("test", zap.NewNop())
	delay := 50 * time.Millisecond
	for _, name := range []string{"a", "b", "c"} {
		hc.Register(name, &stubChecker{status: StatusHealthy, delay: delay})
	}

	start := time.Now()
	response := hc.Check(context.Background())

	assert.Equal(t, StatusHealthy, response.Status)
	assert.Less(t, time.Since(start), 2*delay)
}

func TestHealthCheck_CachesResponse(t *testing.T) {
	hc := New("test", zap.NewNop(), WithCacheTTL(50*time.Millisecond))
	checker := &stubChecker{status: StatusHealthy}
	hc.Register("db", checker)

	hc.Check(context.Background())
	hc.Check(context.Background())
	assert.Equal(t, int32(1), checker.calls.Load())

	time.Sleep(60 * time.Millisecond)
	hc.Check(context.Background())
	assert.Equal(t, int32(2), checker.calls.Load())
}

func TestHealthCheck_Handlers(t *testing.T) {
	gin.SetMode(gin.TestMode)

	serve := func(handler gin.HandlerFunc) *httptest.ResponseRecorder {
		router := gin.New()
		router.GET("/", handler)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		return w
	}

	healthy := New("test", zap.NewNop())
	healthy.Register("db", &stubChecker{status: StatusHealthy})

	unhealthy := New("test", zap.NewNop())
	unhealthy.Register("db", &stubChecker{status: StatusUnhealthy})

	t.Run("Health", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve(healthy.Handler()).Code)
		assert.Equal(t, http.StatusServiceUnavailable, serve(unhealthy.Handler()).Code)
	})

	t.Run("Liveness_IgnoresChecks", func(t *testing.T) {
		w := serve(unhealthy.LivenessHandler())
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"alive"`)
	})

	t.Run("Readiness", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve(healthy.ReadinessHandler()).Code)

		w := serve(unhealthy.ReadinessHandler())
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), `"not_ready"`)
		assert.Contains(t, w.Body.String(), `"failing":["db"]`)
	})
}

func TestDatabaseChecker(t *testing.T) {
	db, err := sqlite.SetupDatabase("", nil)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	checker := NewDatabaseChecker(sqlDB)

	check := checker.Check(context.Background())
	assert.Equal(t, StatusHealthy, check.Status)
	assert.Contains(t, check.Metadata, "open_conns")

	require.NoError(t, sqlDB.Close())
	check = checker.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, check.Status)
	assert.NotEmpty(t, check.Message)
}

func TestResponse_MarshalJSON(t *testing.T) {
	response := Response{
		Status:        StatusHealthy,
		Version:       "test",
		Timestamp:     time.Now(),
		Checks:        []Check{{Name: "db", Status: StatusHealthy, Duration: 1500 * time.Millisecond}},
		TotalDuration: 2 * time.Second,
	}

	data, err := json.Marshal(response)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, float64(2000), decoded["total_duration_ms"])
	assert.Equal(t, float64(1500), decoded["checks"].([]interface{})[0].(map[string]interface{})["duration_ms"])
}
