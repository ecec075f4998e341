package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smallbiznis/tilldesk/internal/config"
	"github.com/smallbiznis/tilldesk/internal/reference/domain"
	"github.com/smallbiznis/tilldesk/internal/storekit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeService struct {
	methodCalls int
	methods     []domain.PaymentMethod
	methodErr   error
	currencies  []domain.Currency
	currencyErr error
	origin      storekit.Origin
}

func (f *fakeService) originOrReal() storekit.Origin {
	if f.origin == "" {
		return storekit.OriginReal
	}
	return f.origin
}

func (f *fakeService) PaymentMethods(context.Context) ([]domain.PaymentMethod, storekit.Origin, error) {
	f.methodCalls++
	if f.methodErr != nil {
		return nil, storekit.OriginReal, f.methodErr
	}
	return f.methods, f.originOrReal(), nil
}

func (f *fakeService) Currencies(context.Context) ([]domain.Currency, storekit.Origin, error) {
	if f.currencyErr != nil {
		return nil, storekit.OriginReal, f.currencyErr
	}
	return f.currencies, f.originOrReal(), nil
}

func newTestStore(svc domain.Service) *Store {
	return New(Params{
		Log:    zap.NewNop(),
		Svc:    svc,
		Policy: config.StaticConsolePolicyHolder(config.DefaultConsolePolicy()),
	})
}

func TestPaymentMethodsServesCacheWhileFresh(t *testing.T) {
	svc := &fakeService{
		methods:    []domain.PaymentMethod{{Code: "cash", Name: "Cash", Active: true}},
		currencies: []domain.Currency{{Code: "USD", Name: "US Dollar", Decimals: 2}},
	}
	store := newTestStore(svc)

	first := store.PaymentMethods(context.Background())
	second := store.PaymentMethods(context.Background())

	require.True(t, first.Success)
	require.True(t, second.Success)
	assert.Equal(t, 1, svc.methodCalls)
}

func TestFallbackOriginSurvivesCaching(t *testing.T) {
	svc := &fakeService{
		methods:    []domain.PaymentMethod{{Code: "cash", Name: "Cash", Active: true}},
		currencies: []domain.Currency{{Code: "USD", Name: "US Dollar", Decimals: 2}},
		origin:     storekit.OriginFallback,
	}
	store := newTestStore(svc)

	first := store.PaymentMethods(context.Background())
	require.True(t, first.Success)
	assert.Equal(t, storekit.OriginFallback, first.Origin)

	cached := store.Currencies(context.Background())
	require.True(t, cached.Success)
	assert.Equal(t, storekit.OriginFallback, cached.Origin)
	assert.Equal(t, 1, svc.methodCalls)

	assert.Equal(t, storekit.OriginFallback, store.Snapshot().Origin)
}

func TestRefreshKeepsOldCacheOnPartialFailure(t *testing.T) {
	svc := &fakeService{
		methods:    []domain.PaymentMethod{{Code: "cash"}},
		currencies: []domain.Currency{{Code: "USD"}},
	}
	store := newTestStore(svc)
	require.NoError(t, store.Refresh(context.Background()))

	svc.currencyErr = errors.New("upstream unavailable")
	err := store.Refresh(context.Background())

	require.Error(t, err)
	snap := store.Snapshot()
	assert.Len(t, snap.PaymentMethods, 1)
	assert.Len(t, snap.Currencies, 1)
	assert.Equal(t, "upstream unavailable", snap.Error)
}

func TestLookupsAreCaseInsensitive(t *testing.T) {
	svc := &fakeService{
		methods:    []domain.PaymentMethod{{Code: "QRIS", Name: "QR payment"}},
		currencies: []domain.Currency{{Code: "idr", Name: "Rupiah"}},
	}
	store := newTestStore(svc)
	require.NoError(t, store.Refresh(context.Background()))

	method, ok := store.PaymentMethod("qris")
	require.True(t, ok)
	assert.Equal(t, "QR payment", method.Name)

	currency, ok := store.Currency("IDR")
	require.True(t, ok)
	assert.Equal(t, "Rupiah", currency.Name)

	_, ok = store.Currency("JPY")
	assert.False(t, ok)
}

func TestRefreshStampsLoadedAt(t *testing.T) {
	svc := &fakeService{}
	store := newTestStore(svc)

	before := time.Now().UTC()
	require.NoError(t, store.Refresh(context.Background()))

	snap := store.Snapshot()
	assert.False(t, snap.LoadedAt.Before(before))
}
