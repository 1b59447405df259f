// Package apiserver provides the JSON API HTTP server
package apiserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/alchemorsel/dishgen/internal/infrastructure/config"
	"github.com/alchemorsel/dishgen/internal/infrastructure/http/handlers"
	"github.com/alchemorsel/dishgen/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/dishgen/internal/infrastructure/monitoring"
	"github.com/alchemorsel/dishgen/internal/infrastructure/security"
	"github.com/alchemorsel/dishgen/internal/ports/inbound"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Dependencies are the collaborators the API routes are built from.
// Limiter, Metrics and Tracing may be nil.
type Dependencies struct {
	DishService       inbound.DishService
	IngredientService inbound.IngredientService
	UserService       inbound.UserService
	Tokens            middleware.TokenValidator
	Validator         *security.Validator
	Limiter           middleware.Limiter
	Metrics           middleware.RequestRecorder
	LikeFeed          http.Handler
	Tracing           *monitoring.TracingProvider
}

// Server is the JSON API HTTP server
type Server struct {
	config  *config.Config
	logger  *zap.Logger
	server  *http.Server
	router  *chi.Mux
	deps    Dependencies
	openAPI *OpenAPIHandler
}

// NewServer creates a new API server instance
func NewServer(cfg *config.Config, log *zap.Logger, deps Dependencies) *Server {
	if deps.Validator == nil {
		deps.Validator = security.NewValidator()
	}

	s := &Server{
		config:  cfg,
		logger:  log.Named("api-server"),
		deps:    deps,
		openAPI: NewOpenAPIHandler(log),
	}
	s.router = s.setupRoutes()

	var handler http.Handler = s.router
	if deps.Tracing != nil {
		handler = deps.Tracing.WrapHandler(handler, "dishgen-api")
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	return s
}

// setupRoutes configures the middleware stack and mounts the API
func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()
	api := handlers.NewAPIHandlers(s.config.App.Version, s.logger)

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Security())
	r.Use(middleware.CORS(s.config.Server.AllowedOrigins))
	if s.deps.Metrics != nil {
		r.Use(middleware.Metrics(s.deps.Metrics))
	}

	r.NotFound(api.NotFound)
	r.Get("/health", api.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.NotFound(api.NotFound)

		// The websocket connection outlives any request timeout and must
		// not be wrapped by the compressor
		if s.deps.LikeFeed != nil {
			r.Handle("/ws/likes", s.deps.LikeFeed)
		}

		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(s.requestTimeout()))
			if s.config.Server.EnableCompression {
				r.Use(middleware.Compress(5))
			}
			r.Use(middleware.JSONOnly())

			s.setupAPIV1Routes(r, api)
		})
	})

	return r
}

// setupAPIV1Routes configures API v1 endpoints
func (s *Server) setupAPIV1Routes(r chi.Router, api *handlers.APIHandlers) {
	authH := handlers.NewAuthAPIHandlers(s.deps.UserService, s.deps.Validator, s.logger)
	ingredientH := handlers.NewIngredientAPIHandlers(s.deps.IngredientService, s.deps.Validator, s.logger)
	dishH := handlers.NewDishAPIHandlers(s.deps.DishService, s.deps.Validator, s.logger)
	demoH := handlers.NewDemoAPIHandlers(s.deps.DishService, s.deps.Validator, s.logger)

	authenticate := middleware.Authenticate(s.deps.Tokens, s.logger)

	r.Get("/health", api.HealthCheck)
	r.Get("/openapi.yaml", s.openAPI.ServeOpenAPISpec)

	// Authentication routes
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authH.Register)
		r.Post("/login", authH.Login)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/logout", authH.Logout)
			r.Get("/me", authH.Me)
		})
	})

	// Ingredient routes
	r.Route("/ingredients", func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/", ingredientH.List)
		r.Post("/", ingredientH.Create)
		r.Get("/{id}", ingredientH.Get)
		r.Put("/{id}", ingredientH.Rename)
		r.Delete("/{id}", ingredientH.Delete)
	})

	// Dish routes
	r.Route("/dishes", func(r chi.Router) {
		// Public listings mark the caller's likes when signed in
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(s.deps.Tokens, s.logger))
			r.Get("/ranking", dishH.Ranking)
			r.Get("/recent", dishH.Recent)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/generate", dishH.Generate)
			r.Post("/", dishH.Save)
			r.Get("/", dishH.ListMine)
			r.Delete("/{id}", dishH.Delete)
			r.Post("/{id}/like", dishH.ToggleLike)
		})
	})

	// Demo routes, no account required
	r.Route("/demo", func(r chi.Router) {
		if s.deps.Limiter != nil {
			r.Use(middleware.RateLimit(s.deps.Limiter, s.logger))
		}
		r.Post("/generate", demoH.Generate)
		r.Post("/dish-name", demoH.DishName)
	})
}

func (s *Server) requestTimeout() time.Duration {
	if s.config.Server.RequestTimeout > 0 {
		return s.config.Server.RequestTimeout
	}
	return 30 * time.Second
}

// Handler returns the root handler, including tracing when enabled
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the API HTTP server. It blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("Starting JSON API server",
		zap.String("address", s.server.Addr),
		zap.Bool("compression", s.config.Server.EnableCompression),
	)

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the API server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server...")
	return s.server.Shutdown(ctx)
}
