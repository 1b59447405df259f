package middleware

import (
	"io"
	"net"
	"net/http"
	"time"

	"github.com/alchemorsel/dishgen/internal/infrastructure/http/response"
	"github.com/alchemorsel/dishgen/pkg/errors"
	"github.com/andybalholm/brotli"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Limiter decides whether a client may make another request
type Limiter interface {
	Allow(key string) bool
}

// RequestRecorder receives per-request measurements
type RequestRecorder interface {
	RequestStarted()
	RecordRequest(method, path string, status int, duration time.Duration)
}

// RateLimit limits requests per client IP
func RateLimit(limiter Limiter, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !limiter.Allow(ip) {
				logger.Warn("Rate limit exceeded",
					zap.String("ip", ip),
					zap.String("path", r.URL.Path),
				)
				w.Header().Set("Retry-After", "60")
				response.Error(w, r, logger, errors.NewTooManyRequestsError())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Metrics records request counts and latency by route pattern
func Metrics(recorder RequestRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			recorder.RequestStarted()

			next.ServeHTTP(ww, r)

			path := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				path = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			recorder.RecordRequest(r.Method, path, status, time.Since(start))
		})
	}
}

// Compress compresses JSON responses with brotli or gzip depending on
// what the client accepts
func Compress(level int) func(http.Handler) http.Handler {
	compressor := chimiddleware.NewCompressor(level, "application/json")
	compressor.SetEncoder("br", func(w io.Writer, level int) io.Writer {
		return brotli.NewWriterLevel(w, level)
	})
	return compressor.Handler
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
