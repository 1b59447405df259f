package container

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alchemorsel/dishgen/internal/infrastructure/config"
	"github.com/alchemorsel/dishgen/internal/infrastructure/http/likefeed"
	"github.com/alchemorsel/dishgen/internal/ports/outbound"
	"github.com/alchemorsel/dishgen/pkg/healthcheck"
	"go.uber.org/zap"
)

const cacheCheckKey = "healthcheck:cache"

// NewHealthCheck registers a checker for every dependency the API needs to
// serve: the database, the ranking cache and the like feed hub
func NewHealthCheck(cfg *config.Config, db *sql.DB, cache *CacheBackend, hub *likefeed.Hub, log *zap.Logger) *healthcheck.HealthCheck {
	hc := healthcheck.New(cfg.App.Version, log)
	hc.Register("database", healthcheck.NewDatabaseChecker(db))
	if cache.Redis != nil {
		hc.Register("redis", healthcheck.NewRedisChecker(cache.Redis))
	} else {
		hc.Register("cache", cacheCheck(cache.Repository))
	}
	hc.Register("likefeed", likeFeedCheck(hub))
	return hc
}

// cacheCheck writes and reads back a short-lived entry
func cacheCheck(cache outbound.CacheRepository) healthcheck.CheckFunc {
	return func(ctx context.Context) (healthcheck.Status, string, map[string]interface{}) {
		want := []byte(time.Now().UTC().Format(time.RFC3339Nano))
		if err := cache.Set(ctx, cacheCheckKey, want, 30*time.Second); err != nil {
			return healthcheck.StatusUnhealthy, err.Error(), nil
		}
		got, err := cache.Get(ctx, cacheCheckKey)
		if err != nil {
			return healthcheck.StatusUnhealthy, err.Error(), nil
		}
		if !bytes.Equal(got, want) {
			return healthcheck.StatusDegraded, fmt.Sprintf("read back %q, wrote %q", got, want), nil
		}
		return healthcheck.StatusHealthy, "", nil
	}
}

// likeFeedCheck fails once the hub's run loop has exited, since no client
// would receive like updates after that
func likeFeedCheck(hub *likefeed.Hub) healthcheck.CheckFunc {
	return func(context.Context) (healthcheck.Status, string, map[string]interface{}) {
		metadata := map[string]interface{}{"clients": hub.ClientCount()}
		select {
		case <-hub.Done():
			return healthcheck.StatusUnhealthy, "like feed hub stopped", metadata
		default:
			return healthcheck.StatusHealthy, "", metadata
		}
	}
}
