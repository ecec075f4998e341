package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smallbiznis/tilldesk/internal/events"
	"github.com/smallbiznis/tilldesk/internal/inventory/domain"
	"github.com/smallbiznis/tilldesk/internal/storekit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeService struct {
	createRecord *domain.Count
	createErr    error
	listBody     []domain.Count
	listErr      error
	recentBody   []domain.Count
	recentErr    error
}

func (f *fakeService) Create(context.Context, domain.CreateRequest) (*domain.Count, storekit.Origin, error) {
	if f.createErr != nil {
		return nil, storekit.OriginReal, f.createErr
	}
	return f.createRecord, storekit.OriginReal, nil
}

func (f *fakeService) ListByLocation(context.Context, string, int, int) ([]domain.Count, storekit.Origin, error) {
	if f.listErr != nil {
		return nil, storekit.OriginReal, f.listErr
	}
	return f.listBody, storekit.OriginReal, nil
}

func (f *fakeService) Recent(context.Context, int, int) ([]domain.Count, storekit.Origin, error) {
	if f.recentErr != nil {
		return nil, storekit.OriginReal, f.recentErr
	}
	return f.recentBody, storekit.OriginReal, nil
}

func newTestStore(svc domain.Service) (*Store, *events.Bus) {
	bus := events.NewBus(zap.NewNop())
	return New(Params{Log: zap.NewNop(), Svc: svc, Bus: bus}), bus
}

func TestCreatePrependsAndPublishesVariance(t *testing.T) {
	record := &domain.Count{ID: 7, ProductID: "prod-cups", Location: "backroom", Expected: 10, Counted: 8, Variance: -2}
	store, bus := newTestStore(&fakeService{createRecord: record})

	var seen []events.InventoryCounted
	bus.Subscribe(events.TopicInventoryCounted, func(_ context.Context, payload any) {
		seen = append(seen, payload.(events.InventoryCounted))
	})

	result := store.Create(context.Background(), domain.CreateRequest{})

	require.True(t, result.Success)
	snap := store.Snapshot()
	require.Len(t, snap.Counts, 1)
	assert.EqualValues(t, 7, snap.Counts[0].ID)

	require.Len(t, seen, 1)
	assert.Equal(t, "prod-cups", seen[0].ProductID)
	assert.EqualValues(t, -2, seen[0].Variance)
}

func TestCreateFailureSetsErrorAndSkipsEvent(t *testing.T) {
	store, bus := newTestStore(&fakeService{createErr: errors.New("Location not found")})

	published := 0
	bus.Subscribe(events.TopicInventoryCounted, func(context.Context, any) { published++ })

	result := store.Create(context.Background(), domain.CreateRequest{})

	assert.False(t, result.Success)
	assert.Equal(t, "Location not found", result.Err)
	assert.Equal(t, "Location not found", store.Snapshot().Error)
	assert.Zero(t, published)
}

func TestVarianceByProductSkipsExactCounts(t *testing.T) {
	store, _ := newTestStore(&fakeService{})
	store.counts = []domain.Count{
		{ID: 1, ProductID: "prod-a", Variance: 0},
		{ID: 2, ProductID: "prod-a", Variance: 3},
		{ID: 3, ProductID: "prod-b", Variance: -1},
		{ID: 4, ProductID: "prod-a", Variance: -2},
	}

	matched := store.VarianceByProduct("prod-a")

	require.Len(t, matched, 2)
	assert.EqualValues(t, 2, matched[0].ID)
	assert.EqualValues(t, 4, matched[1].ID)
}

func TestLocationHistoryKeysAreIsolated(t *testing.T) {
	svc := &fakeService{listBody: []domain.Count{{ID: 1, Location: "front"}}}
	store, _ := newTestStore(svc)

	result := store.FetchLocationHistory(context.Background(), "front", 0, 0)
	require.True(t, result.Success)

	_, ok := store.LocationHistory("front")
	assert.True(t, ok)
	_, ok = store.LocationHistory("backroom")
	assert.False(t, ok)

	store.ClearLocationHistory("front")
	_, ok = store.LocationHistory("front")
	assert.False(t, ok)
}

func TestFetchRecentReplacesList(t *testing.T) {
	svc := &fakeService{recentBody: []domain.Count{{ID: 5, CreatedAt: time.Now()}}}
	store, _ := newTestStore(svc)
	store.counts = []domain.Count{{ID: 1}}
	store.errMsg = "previous failure"

	result := store.FetchRecent(context.Background(), 0, 0)

	require.True(t, result.Success)
	snap := store.Snapshot()
	require.Len(t, snap.Counts, 1)
	assert.EqualValues(t, 5, snap.Counts[0].ID)
	assert.Empty(t, snap.Error)
}
