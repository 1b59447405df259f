// Package healthcheck aggregates dependency checks behind the ops server's
// /health endpoints
package healthcheck

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Status is the state reported by a single check or by the aggregate
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

// worse reports whether s outranks other in the aggregate
func (s Status) worse(other Status) bool {
	rank := map[Status]int{StatusHealthy: 0, StatusDegraded: 1, StatusUnhealthy: 2}
	return rank[s] > rank[other]
}

// Check is the outcome of one checker
type Check struct {
	Name        string                 `json:"name"`
	Status      Status                 `json:"status"`
	Message     string                 `json:"message,omitempty"`
	LastChecked time.Time              `json:"last_checked"`
	Duration    time.Duration          `json:"-"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// Response is the aggregate of every registered check, ordered by name
type Response struct {
	Status        Status        `json:"status"`
	Version       string        `json:"version"`
	Timestamp     time.Time     `json:"timestamp"`
	Checks        []Check       `json:"checks"`
	TotalDuration time.Duration `json:"-"`
}

// Failing returns the names of the checks that are not healthy
func (r Response) Failing() []string {
	var names []string
	for _, c := range r.Checks {
		if c.Status != StatusHealthy {
			names = append(names, c.Name)
		}
	}
	return names
}

// Checker reports on one dependency
type Checker interface {
	Check(ctx context.Context) Check
}

// CheckFunc adapts a plain function to a Checker
type CheckFunc func(ctx context.Context) (Status, string, map[string]interface{})

// Check runs f and times it
func (f CheckFunc) Check(ctx context.Context) Check {
	start := time.Now()
	status, message, metadata := f(ctx)
	return Check{
		Status:      status,
		Message:     message,
		Metadata:    metadata,
		LastChecked: start,
		Duration:    time.Since(start),
	}
}

// Option configures a HealthCheck
type Option func(*HealthCheck)

// WithCacheTTL sets how long an aggregate response is reused
func WithCacheTTL(ttl time.Duration) Option {
	return func(h *HealthCheck) { h.cacheTTL = ttl }
}

// WithTimeout bounds a full round of checks
func WithTimeout(timeout time.Duration) Option {
	return func(h *HealthCheck) { h.timeout = timeout }
}

// HealthCheck runs the registered checkers and serves their aggregate
type HealthCheck struct {
	version  string
	logger   *zap.Logger
	cacheTTL time.Duration
	timeout  time.Duration

	mu       sync.RWMutex
	checkers map[string]Checker
	cached   *Response
	failing  map[string]bool
}

// New creates a health check with no checkers
func New(version string, logger *zap.Logger, opts ...Option) *HealthCheck {
	h := &HealthCheck{
		version:  version,
		logger:   logger.Named("healthcheck"),
		cacheTTL: 5 * time.Second,
		timeout:  5 * time.Second,
		checkers: make(map[string]Checker),
		failing:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register adds checker under name, replacing any previous one
func (h *HealthCheck) Register(name string, checker Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = checker
	h.cached = nil
}

// Check runs every checker concurrently, or returns the cached aggregate
// while it is fresh
func (h *HealthCheck) Check(ctx context.Context) Response {
	h.mu.RLock()
	if h.cached != nil && time.Since(h.cached.Timestamp) < h.cacheTTL {
		response := *h.cached
		h.mu.RUnlock()
		return response
	}
	checkers := make(map[string]Checker, len(h.checkers))
	for name, c := range h.checkers {
		checkers[name] = c
	}
	h.mu.RUnlock()

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	checks := make([]Check, 0, len(checkers))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for name, c := range checkers {
		wg.Add(1)
		go func(name string, c Checker) {
			defer wg.Done()
			check := c.Check(ctx)
			check.Name = name
			mu.Lock()
			checks = append(checks, check)
			mu.Unlock()
		}(name, c)
	}
	wg.Wait()

	sort.Slice(checks, func(i, j int) bool { return checks[i].Name < checks[j].Name })

	response := Response{
		Status:        StatusHealthy,
		Version:       h.version,
		Timestamp:     start,
		Checks:        checks,
		TotalDuration: time.Since(start),
	}
	for _, c := range checks {
		if c.Status.worse(response.Status) {
			response.Status = c.Status
		}
	}

	h.mu.Lock()
	h.cached = &response
	h.logTransitions(checks)
	h.mu.Unlock()

	return response
}

// logTransitions logs checks that changed between healthy and not. Callers
// hold h.mu.
func (h *HealthCheck) logTransitions(checks []Check) {
	for _, c := range checks {
		down := c.Status != StatusHealthy
		if down == h.failing[c.Name] {
			continue
		}
		h.failing[c.Name] = down
		if down {
			h.logger.Warn("Health check failing",
				zap.String("check", c.Name),
				zap.String("status", string(c.Status)),
				zap.String("message", c.Message))
		} else {
			h.logger.Info("Health check recovered", zap.String("check", c.Name))
		}
	}
}

// Handler serves the full aggregate, 503 when any check is unhealthy
func (h *HealthCheck) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		response := h.Check(c.Request.Context())
		code := http.StatusOK
		if response.Status == StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, response)
	}
}

// LivenessHandler answers as long as the process serves requests
func (h *HealthCheck) LivenessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "alive", "timestamp": time.Now()})
	}
}

// ReadinessHandler answers 200 only when every check is healthy
func (h *HealthCheck) ReadinessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		response := h.Check(c.Request.Context())
		if response.Status != StatusHealthy {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "not_ready",
				"failing": response.Failing(),
				"checks":  response.Checks,
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "timestamp": response.Timestamp})
	}
}

// NewDatabaseChecker pings the pool and reports degraded when it is
// nearly exhausted
func NewDatabaseChecker(db *sql.DB) CheckFunc {
	return func(ctx context.Context) (Status, string, map[string]interface{}) {
		if err := db.PingContext(ctx); err != nil {
			return StatusUnhealthy, err.Error(), nil
		}

		stats := db.Stats()
		metadata := map[string]interface{}{
			"open_conns": stats.OpenConnections,
			"in_use":     stats.InUse,
			"idle_conns": stats.Idle,
			"max_conns":  stats.MaxOpenConnections,
			"wait_count": stats.WaitCount,
		}
		if stats.MaxOpenConnections > 1 && stats.InUse*10 > stats.MaxOpenConnections*9 {
			return StatusDegraded, "connection pool above 90% in use", metadata
		}
		return StatusHealthy, "", metadata
	}
}

// NewRedisChecker pings Redis and reports its pool counters
func NewRedisChecker(client redis.UniversalClient) CheckFunc {
	return func(ctx context.Context) (Status, string, map[string]interface{}) {
		if err := client.Ping(ctx).Err(); err != nil {
			return StatusUnhealthy, err.Error(), nil
		}

		stats := client.PoolStats()
		return StatusHealthy, "", map[string]interface{}{
			"hits":        stats.Hits,
			"misses":      stats.Misses,
			"timeouts":    stats.Timeouts,
			"total_conns": stats.TotalConns,
			"idle_conns":  stats.IdleConns,
		}
	}
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// MarshalJSON reports the duration in milliseconds
func (c Check) MarshalJSON() ([]byte, error) {
	type plain Check
	return json.Marshal(struct {
		plain
		DurationMS float64 `json:"duration_ms"`
	}{plain(c), millis(c.Duration)})
}

// MarshalJSON reports the total duration in milliseconds
func (r Response) MarshalJSON() ([]byte, error) {
	type plain Response
	return json.Marshal(struct {
		plain
		TotalDurationMS float64 `json:"total_duration_ms"`
	}{plain(r), millis(r.TotalDuration)})
}
