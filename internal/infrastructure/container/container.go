// Package container provides dependency injection using Uber FX
package container

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	appdish "github.com/alchemorsel/dishgen/internal/application/dish"
	appingredient "github.com/alchemorsel/dishgen/internal/application/ingredient"
	appuser "github.com/alchemorsel/dishgen/internal/application/user"
	"github.com/alchemorsel/dishgen/internal/domain/dish"
	"github.com/alchemorsel/dishgen/internal/domain/shared"
	"github.com/alchemorsel/dishgen/internal/infrastructure/config"
	"github.com/alchemorsel/dishgen/internal/infrastructure/events"
	"github.com/alchemorsel/dishgen/internal/infrastructure/http/apiserver"
	"github.com/alchemorsel/dishgen/internal/infrastructure/http/likefeed"
	"github.com/alchemorsel/dishgen/internal/infrastructure/monitoring"
	gormrepo "github.com/alchemorsel/dishgen/internal/infrastructure/persistence/gorm"
	"github.com/alchemorsel/dishgen/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/dishgen/internal/infrastructure/persistence/migrations"
	"github.com/alchemorsel/dishgen/internal/infrastructure/persistence/postgres"
	rediscache "github.com/alchemorsel/dishgen/internal/infrastructure/persistence/redis"
	"github.com/alchemorsel/dishgen/internal/infrastructure/persistence/sqlite"
	"github.com/alchemorsel/dishgen/internal/infrastructure/security"
	"github.com/alchemorsel/dishgen/internal/ports/inbound"
	"github.com/alchemorsel/dishgen/internal/ports/outbound"
	"github.com/alchemorsel/dishgen/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ConfigPath is the config file to load. Empty means the default search
// paths.
type ConfigPath string

// Module provides all dependency injection modules
var Module = fx.Options(
	// Infrastructure modules
	ConfigModule,
	LoggerModule,
	DatabaseModule,
	CacheModule,

	// Repository modules
	RepositoryModule,

	// Service modules
	ServiceModule,

	// Event modules
	EventModule,

	// Observability modules
	ObservabilityModule,

	// HTTP modules
	HTTPModule,

	// Lifecycle hooks
	LifecycleModule,
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func(path ConfigPath) (*config.Config, error) {
		cfg, err := config.Load(string(path))
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		return cfg, nil
	},
)

// LoggerModule provides logging. The atomic level lets a config reload
// change verbosity without a restart.
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, zap.AtomicLevel, error) {
		return logger.NewAtomic(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
		})
	},
)

// DatabaseModule provides database connections
var DatabaseModule = fx.Provide(
	NewDatabase,
	func(db *gorm.DB) (*sql.DB, error) {
		return db.DB()
	},
)

// NewDatabase opens the configured store. Postgres schemas are managed by
// the embedded migrations; SQLite is migrated from the GORM models.
func NewDatabase(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	gormLog := gormrepo.NewLogger(log.Named("gorm"), cfg.Database.LogLevel, cfg.Database.SlowQueryThreshold)

	switch cfg.Database.Driver {
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		cm, err := postgres.NewConnectionManager(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return cm.Close() }})

		if cfg.Database.AutoMigrate {
			if err := migrateUp(cm.GetDB(), cfg.Database.Database, log); err != nil {
				return nil, err
			}
		}
		return cm.GetDB(), nil

	default:
		db, err := sqlite.SetupDatabase(cfg.Database.Path, gormLog)
		if err != nil {
			return nil, fmt.Errorf("failed to setup SQLite database: %w", err)
		}
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return sqlite.Close(db) }})

		log.Info("Connected to SQLite database", zap.String("path", cfg.Database.Path))
		return db, nil
	}
}

func migrateUp(db *gorm.DB, name string, log *zap.Logger) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	m, err := migrations.New(sqlDB, name, log)
	if err != nil {
		return err
	}
	defer m.Close()

	return m.Up()
}

// CacheBackend is the cache repository plus the Redis client behind it, if any
type CacheBackend struct {
	Repository outbound.CacheRepository
	Redis      redis.UniversalClient
}

// CacheModule provides caching
var CacheModule = fx.Provide(
	NewCacheBackend,
	func(b *CacheBackend) outbound.CacheRepository {
		return b.Repository
	},
)

// NewCacheBackend connects to Redis when enabled and otherwise keeps the
// cache in process
func NewCacheBackend(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*CacheBackend, error) {
	if !cfg.Redis.Enabled {
		log.Info("Using in-memory cache")
		cache := memory.NewCacheRepository(time.Minute)
		lc.Append(fx.Hook{OnStop: func(context.Context) error {
			cache.Close()
			return nil
		}})
		return &CacheBackend{Repository: cache}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := rediscache.NewClient(ctx, &cfg.Redis, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{OnStop: func(context.Context) error { return client.Close() }})

	return &CacheBackend{
		Repository: rediscache.NewCacheRepository(client, cfg.App.Name, log),
		Redis:      client,
	}, nil
}

// RepositoryModule provides repository implementations
var RepositoryModule = fx.Provide(
	fx.Annotate(
		gormrepo.NewDishCatalog,
		fx.As(new(outbound.DishCatalog)),
	),
	fx.Annotate(
		gormrepo.NewIngredientRepository,
		fx.As(new(outbound.IngredientRepository)),
	),
	fx.Annotate(
		gormrepo.NewUserRepository,
		fx.As(new(outbound.UserRepository)),
	),
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	dish.NewGenerator,
	appdish.NewProjection,

	// Dish service
	func(
		catalog outbound.DishCatalog,
		ingredients outbound.IngredientRepository,
		cache outbound.CacheRepository,
		dispatcher shared.EventDispatcher,
		generator *dish.Generator,
		projection *appdish.Projection,
		cfg *config.Config,
		log *zap.Logger,
	) inbound.DishService {
		return appdish.NewService(catalog, ingredients, cache, dispatcher, generator, projection, appdish.Options{
			BatchSize:       cfg.Generator.BatchSize,
			PageSize:        cfg.Generator.PageSize,
			RankingCacheTTL: cfg.Generator.RankingCacheTTL,
		}, log)
	},

	// Ingredient service
	func(repo outbound.IngredientRepository, cfg *config.Config, log *zap.Logger) inbound.IngredientService {
		return appingredient.NewService(repo, cfg.Generator.IngredientPageSize, log)
	},

	// Tokens
	func(cfg *config.Config, cache outbound.CacheRepository, log *zap.Logger) *security.TokenService {
		return security.NewTokenService(&cfg.Auth, cache, log)
	},
	func(tokens *security.TokenService) outbound.TokenIssuer {
		return tokens
	},

	// User service
	func(repo outbound.UserRepository, tokens outbound.TokenIssuer, cfg *config.Config, log *zap.Logger) inbound.UserService {
		return appuser.NewUserService(repo, tokens, cfg.Auth.BCryptCost, log)
	},

	security.NewValidator,
	func(cfg *config.Config, log *zap.Logger) *security.RateLimiter {
		return security.NewRateLimiter(cfg.RateLimit, log)
	},
)

// EventModule provides event handling
var EventModule = fx.Options(
	fx.Provide(
		events.NewDispatcher,
		func(d *events.Dispatcher) shared.EventDispatcher {
			return d
		},
	),
	fx.Invoke(RegisterEventHandlers),
)

// RegisterEventHandlers subscribes metrics and the like feed to dish events
func RegisterEventHandlers(d *events.Dispatcher, metrics *monitoring.MetricsCollector, hub *likefeed.Hub) {
	for _, name := range []string{dish.EventDishSaved, dish.EventDishDeleted, dish.EventDishLiked, dish.EventDishUnliked} {
		d.Register(name, metrics.HandleEvent)
	}
	d.Register(dish.EventDishLiked, hub.HandleEvent)
	d.Register(dish.EventDishUnliked, hub.HandleEvent)
}

// ObservabilityModule provides metrics, tracing and health checks
var ObservabilityModule = fx.Provide(
	monitoring.NewMetricsCollector,

	func(cfg *config.Config, log *zap.Logger) (*monitoring.TracingProvider, error) {
		return monitoring.NewTracingProvider(context.Background(), monitoring.TracingConfig{
			ServiceName:    cfg.App.Name,
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Environment,
			OTLPEndpoint:   cfg.Monitoring.OTLPEndpoint,
			SamplingRate:   cfg.Monitoring.SamplingRate,
			Enabled:        cfg.Monitoring.EnableTracing,
		}, log)
	},

	NewHealthCheck,
	monitoring.NewOpsServer,
)

// HTTPModule provides HTTP server and handlers
var HTTPModule = fx.Provide(
	func(cfg *config.Config, metrics *monitoring.MetricsCollector, log *zap.Logger) *likefeed.Hub {
		return likefeed.NewHub(cfg.Server.AllowedOrigins, metrics.LikeFeedClients, log)
	},

	func(
		cfg *config.Config,
		log *zap.Logger,
		dishes inbound.DishService,
		ingredients inbound.IngredientService,
		users inbound.UserService,
		tokens *security.TokenService,
		validator *security.Validator,
		limiter *security.RateLimiter,
		metrics *monitoring.MetricsCollector,
		hub *likefeed.Hub,
		tracing *monitoring.TracingProvider,
	) *apiserver.Server {
		deps := apiserver.Dependencies{
			DishService:       dishes,
			IngredientService: ingredients,
			UserService:       users,
			Tokens:            tokens,
			Validator:         validator,
			LikeFeed:          hub,
			Tracing:           tracing,
		}
		if cfg.RateLimit.Enable {
			deps.Limiter = limiter
		}
		if cfg.Monitoring.EnableMetrics {
			deps.Metrics = metrics
		}
		return apiserver.NewServer(cfg, log, deps)
	},
)

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// RegisterLifecycleHooks registers application lifecycle hooks
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	path ConfigPath,
	cfg *config.Config,
	log *zap.Logger,
	level zap.AtomicLevel,
	server *apiserver.Server,
	ops *monitoring.OpsServer,
	hub *likefeed.Hub,
	limiter *security.RateLimiter,
	tracing *monitoring.TracingProvider,
) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Info("Starting dishgen",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
				zap.String("database", cfg.Database.Driver),
			)

			err := config.Watch(string(path), log, func(next *config.Config) {
				level.SetLevel(logger.ParseLevel(next.App.LogLevel))
			})
			if err != nil {
				log.Warn("Config hot reload disabled", zap.Error(err))
			}

			go hub.Run(ctx)
			go limiter.Run(ctx)
			ops.Start()

			go func() {
				if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("API server stopped", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			log.Info("Shutting down dishgen")

			if err := server.Shutdown(stopCtx); err != nil {
				log.Error("Failed to shutdown API server", zap.Error(err))
			}
			if err := ops.Shutdown(stopCtx); err != nil {
				log.Error("Failed to shutdown ops server", zap.Error(err))
			}

			cancel()
			select {
			case <-hub.Done():
			case <-stopCtx.Done():
			}

			if err := tracing.Shutdown(stopCtx); err != nil {
				log.Error("Failed to shutdown tracing", zap.Error(err))
			}

			_ = log.Sync()
			return nil
		},
	})
}
