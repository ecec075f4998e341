package catalog

import (
	"github.com/redis/go-redis/v9"
	"github.com/smallbiznis/tilldesk/internal/cache"
	"github.com/smallbiznis/tilldesk/internal/catalog/domain"
	"github.com/smallbiznis/tilldesk/internal/catalog/service"
	"github.com/smallbiznis/tilldesk/internal/catalog/store"
	"github.com/smallbiznis/tilldesk/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("catalog",
	fx.Provide(service.New),
	fx.Provide(newProductCache),
	fx.Provide(store.New),
)

// newProductCache keeps products in process memory by default, or in
// redis when REDIS_ADDR is set so multiple console replicas share one
// view of the catalog.
func newProductCache(cfg config.Config, log *zap.Logger) cache.Cache[domain.CachedProduct] {
	if cfg.RedisAddr == "" {
		return cache.NewTTLCache[domain.CachedProduct]()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return cache.NewRedisCache[domain.CachedProduct](client, "catalog", log)
}
