package store

import (
	"context"
	"errors"
	"testing"

	"github.com/smallbiznis/tilldesk/internal/cache"
	"github.com/smallbiznis/tilldesk/internal/catalog/domain"
	"github.com/smallbiznis/tilldesk/internal/config"
	"github.com/smallbiznis/tilldesk/internal/events"
	"github.com/smallbiznis/tilldesk/internal/storekit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeService struct {
	calls   int
	product *domain.Product
	origin  storekit.Origin
	err     error
}

func (f *fakeService) Product(context.Context, string) (*domain.Product, storekit.Origin, error) {
	f.calls++
	if f.err != nil {
		return nil, storekit.OriginReal, f.err
	}
	origin := f.origin
	if origin == "" {
		origin = storekit.OriginReal
	}
	return f.product, origin, nil
}

func newTestStore(svc domain.Service) (*Store, *events.Bus) {
	bus := events.NewBus(zap.NewNop())
	store := New(Params{
		Log:    zap.NewNop(),
		Svc:    svc,
		Policy: config.StaticConsolePolicyHolder(config.DefaultConsolePolicy()),
		Bus:    bus,
		Cache:  cache.NewTTLCache[domain.CachedProduct](),
	})
	return store, bus
}

func TestProductReadsThroughCache(t *testing.T) {
	svc := &fakeService{product: &domain.Product{ID: "prod-espresso", Name: "House Espresso 1kg", Price: 18.50}}
	store, _ := newTestStore(svc)
	ctx := context.Background()

	first := store.Product(ctx, "prod-espresso")
	second := store.Product(ctx, "prod-espresso")

	require.True(t, first.Success)
	require.True(t, second.Success)
	assert.Equal(t, 1, svc.calls)
	assert.Equal(t, 18.50, second.Data.Price)
}

func TestCacheHitKeepsFallbackOrigin(t *testing.T) {
	svc := &fakeService{
		product: &domain.Product{ID: "prod-espresso", Price: 18.50},
		origin:  storekit.OriginFallback,
	}
	store, _ := newTestStore(svc)
	ctx := context.Background()

	first := store.Product(ctx, "prod-espresso")
	require.True(t, first.Success)
	assert.Equal(t, storekit.OriginFallback, first.Origin)

	hit := store.Product(ctx, "prod-espresso")
	require.True(t, hit.Success)
	assert.Equal(t, storekit.OriginFallback, hit.Origin)
	assert.Equal(t, 1, svc.calls)
}

func TestProductFailureIsNotCached(t *testing.T) {
	svc := &fakeService{err: errors.New("Product not found")}
	store, _ := newTestStore(svc)
	ctx := context.Background()

	result := store.Product(ctx, "prod-missing")
	assert.False(t, result.Success)
	assert.Equal(t, "Product not found", result.Err)

	svc.err = nil
	svc.product = &domain.Product{ID: "prod-missing", Price: 4}
	retry := store.Product(ctx, "prod-missing")

	require.True(t, retry.Success)
	assert.Equal(t, 2, svc.calls)
}

func TestPriceChangedEventDropsCachedProduct(t *testing.T) {
	svc := &fakeService{product: &domain.Product{ID: "prod-espresso", Price: 18.50}}
	store, bus := newTestStore(svc)
	ctx := context.Background()

	require.True(t, store.Product(ctx, "prod-espresso").Success)

	bus.Publish(ctx, events.TopicPriceChanged, events.PriceChanged{ProductID: "prod-espresso", NewPrice: 21})

	svc.product = &domain.Product{ID: "prod-espresso", Price: 21}
	refreshed := store.Product(ctx, "prod-espresso")

	require.True(t, refreshed.Success)
	assert.Equal(t, 2, svc.calls)
	assert.Equal(t, 21.0, refreshed.Data.Price)
}

func TestUnexpectedPayloadIsIgnored(t *testing.T) {
	svc := &fakeService{product: &domain.Product{ID: "prod-espresso", Price: 18.50}}
	store, bus := newTestStore(svc)
	ctx := context.Background()

	require.True(t, store.Product(ctx, "prod-espresso").Success)

	bus.Publish(ctx, events.TopicPriceChanged, "not-a-payload")

	cached := store.Product(ctx, "prod-espresso")
	require.True(t, cached.Success)
	assert.Equal(t, 1, svc.calls)
}
