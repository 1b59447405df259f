package monitoring

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alchemorsel/dishgen/internal/infrastructure/config"
	"github.com/alchemorsel/dishgen/pkg/healthcheck"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OpsServer serves metrics and health endpoints on a port separate from
// the public API
type OpsServer struct {
	server *http.Server
	engine *gin.Engine
	logger *zap.Logger
}

// NewOpsServer creates the operations server
func NewOpsServer(
	cfg *config.Config,
	metrics *MetricsCollector,
	health *healthcheck.HealthCheck,
	logger *zap.Logger,
) *OpsServer {
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	logger = logger.Named("ops-server")

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger))

	if cfg.Monitoring.EnableMetrics {
		engine.GET("/metrics", gin.WrapH(metrics.Handler()))
	}
	engine.GET("/health", health.Handler())
	engine.GET("/health/live", health.LivenessHandler())
	engine.GET("/health/ready", health.ReadinessHandler())

	return &OpsServer{
		engine: engine,
		logger: logger,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Monitoring.MetricsPort),
			Handler:           engine,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler exposes the router for tests
func (s *OpsServer) Handler() http.Handler {
	return s.engine
}

// Start serves in the background until Shutdown is called
func (s *OpsServer) Start() {
	s.logger.Info("Starting ops server", zap.String("address", s.server.Addr))

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Ops server failed", zap.Error(err))
		}
	}()
}

// Shutdown gracefully stops the server
func (s *OpsServer) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down ops server")
	return s.server.Shutdown(ctx)
}

// requestLogger logs every ops request at debug level
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Debug("Ops request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
