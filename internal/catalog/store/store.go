package store

import (
	"context"
	"strings"
	"time"

	"github.com/smallbiznis/tilldesk/internal/cache"
	"github.com/smallbiznis/tilldesk/internal/catalog/domain"
	"github.com/smallbiznis/tilldesk/internal/config"
	"github.com/smallbiznis/tilldesk/internal/events"
	"github.com/smallbiznis/tilldesk/internal/observability/metrics"
	"github.com/smallbiznis/tilldesk/internal/storekit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const domainName = "catalog"

// Store is a read-through product cache. Entries are dropped when a
// price adjustment for the product is published; a failed invalidation
// is logged and swallowed so it can never fail the adjustment that
// triggered it.
type Store struct {
	log    *zap.Logger
	svc    domain.Service
	policy *config.ConsolePolicyHolder
	cache  cache.Cache[domain.CachedProduct]
}

type Params struct {
	fx.In

	Log    *zap.Logger
	Svc    domain.Service
	Policy *config.ConsolePolicyHolder
	Bus    *events.Bus
	Cache  cache.Cache[domain.CachedProduct]
}

func New(p Params) *Store {
	s := &Store{
		log:    p.Log.Named("catalog.store"),
		svc:    p.Svc,
		policy: p.Policy,
		cache:  p.Cache,
	}
	p.Bus.Subscribe(events.TopicPriceChanged, s.onPriceChanged)
	return s
}

// Product returns the cached product or fetches it from the platform.
func (s *Store) Product(ctx context.Context, id string) storekit.Result[domain.Product] {
	start := time.Now()
	key := productKey(id)

	if cached, ok := s.cache.Get(ctx, key); ok {
		metrics.Store().ObserveAction(domainName, "product", metrics.OutcomeSuccess, time.Since(start))
		return storekit.OK(cached.Product, cached.Origin)
	}

	record, origin, err := s.svc.Product(ctx, id)
	if err != nil {
		metrics.Store().ObserveAction(domainName, "product", metrics.OutcomeError, time.Since(start))
		return storekit.Fail[domain.Product](err)
	}

	s.cache.Set(ctx, key, domain.CachedProduct{Product: *record, Origin: origin}, s.policy.Get().CatalogCacheTTL)

	outcome := metrics.OutcomeSuccess
	if origin == storekit.OriginFallback {
		outcome = metrics.OutcomeFallback
	}
	metrics.Store().ObserveAction(domainName, "product", outcome, time.Since(start))
	return storekit.OK(*record, origin)
}

// Invalidate drops one product from the cache.
func (s *Store) Invalidate(ctx context.Context, id string) {
	s.cache.Delete(ctx, productKey(id))
}

func (s *Store) onPriceChanged(ctx context.Context, payload any) {
	changed, ok := payload.(events.PriceChanged)
	if !ok {
		s.log.Warn("unexpected price-changed payload", zap.Any("payload", payload))
		return
	}
	s.Invalidate(ctx, changed.ProductID)
	s.log.Debug("catalog entry invalidated", zap.String("product_id", changed.ProductID))
}

func productKey(id string) string {
	return cache.Key("product", strings.TrimSpace(id))
}
