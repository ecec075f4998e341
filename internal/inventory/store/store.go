package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/smallbiznis/tilldesk/internal/events"
	"github.com/smallbiznis/tilldesk/internal/inventory/domain"
	"github.com/smallbiznis/tilldesk/internal/observability/metrics"
	"github.com/smallbiznis/tilldesk/internal/storekit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const domainName = "inventory"

// Store holds the console's inventory-count state: a flat list of
// recent counts plus a per-location history cache.
type Store struct {
	log *zap.Logger
	svc domain.Service
	bus *events.Bus

	mu       sync.Mutex
	counts   []domain.Count
	loading  bool
	creating bool
	errMsg   string

	locationHistory *storekit.Keyed[domain.Count]
}

type Snapshot struct {
	Counts   []domain.Count `json:"counts"`
	Loading  bool           `json:"loading"`
	Creating bool           `json:"creating"`
	Error    string         `json:"error,omitempty"`
}

type Params struct {
	fx.In

	Log *zap.Logger
	Svc domain.Service
	Bus *events.Bus
}

func New(p Params) *Store {
	return &Store{
		log:             p.Log.Named("inventory.store"),
		svc:             p.Svc,
		bus:             p.Bus,
		locationHistory: storekit.NewKeyed[domain.Count](),
	}
}

func (s *Store) Create(ctx context.Context, req domain.CreateRequest) storekit.Result[domain.Count] {
	start := time.Now()
	s.begin(&s.creating)

	record, origin, err := s.svc.Create(ctx, req)
	if err != nil {
		s.fail(&s.creating, err)
		metrics.Store().ObserveAction(domainName, "create", metrics.OutcomeError, time.Since(start))
		return storekit.Fail[domain.Count](err)
	}

	s.mu.Lock()
	s.creating = false
	s.counts = append([]domain.Count{*record}, s.counts...)
	s.mu.Unlock()

	s.bus.Publish(ctx, events.TopicInventoryCounted, events.InventoryCounted{
		ProductID: record.ProductID,
		Location:  record.Location,
		Variance:  record.Variance,
	})

	metrics.Store().ObserveAction(domainName, "create", outcomeFor(origin), time.Since(start))
	return storekit.OK(*record, origin)
}

// FetchLocationHistory loads counts for one location into the keyed
// cache, fenced against newer fetches and clears of the same key.
func (s *Store) FetchLocationHistory(ctx context.Context, location string, limit, offset int) storekit.Result[[]domain.Count] {
	start := time.Now()
	s.begin(&s.loading)

	key := strings.TrimSpace(location)
	seq := s.locationHistory.Begin(key)

	records, origin, err := s.svc.ListByLocation(ctx, location, limit, offset)
	if err != nil {
		s.fail(&s.loading, err)
		metrics.Store().ObserveAction(domainName, "fetch_location_history", metrics.OutcomeError, time.Since(start))
		return storekit.Fail[[]domain.Count](err)
	}

	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()

	s.locationHistory.Commit(key, seq, storekit.Entry[domain.Count]{
		Records:   records,
		FetchedAt: time.Now().UTC(),
		HasMore:   limit > 0 && len(records) == limit,
		Offset:    offset,
		Origin:    origin,
	})

	metrics.Store().ObserveAction(domainName, "fetch_location_history", outcomeFor(origin), time.Since(start))
	return storekit.OK(records, origin)
}

func (s *Store) FetchRecent(ctx context.Context, days, limit int) storekit.Result[[]domain.Count] {
	start := time.Now()
	s.begin(&s.loading)

	records, origin, err := s.svc.Recent(ctx, days, limit)
	if err != nil {
		s.fail(&s.loading, err)
		metrics.Store().ObserveAction(domainName, "fetch_recent", metrics.OutcomeError, time.Since(start))
		return storekit.Fail[[]domain.Count](err)
	}

	s.mu.Lock()
	s.loading = false
	s.counts = records
	s.mu.Unlock()

	metrics.Store().ObserveAction(domainName, "fetch_recent", outcomeFor(origin), time.Since(start))
	return storekit.OK(records, origin)
}

func (s *Store) ClearCounts() {
	s.mu.Lock()
	s.counts = nil
	s.errMsg = ""
	s.mu.Unlock()
}

func (s *Store) ClearLocationHistory(location string) {
	s.locationHistory.Clear(strings.TrimSpace(location))
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Counts:   append([]domain.Count(nil), s.counts...),
		Loading:  s.loading,
		Creating: s.creating,
		Error:    s.errMsg,
	}
}

func (s *Store) LocationHistory(location string) (storekit.Entry[domain.Count], bool) {
	return s.locationHistory.Get(strings.TrimSpace(location))
}

// VarianceByProduct returns the counts for a product whose counted and
// expected quantities disagree, in original order.
func (s *Store) VarianceByProduct(productID string) []domain.Count {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := make([]domain.Count, 0)
	for _, record := range s.counts {
		if record.ProductID == productID && record.Variance != 0 {
			matched = append(matched, record)
		}
	}
	return matched
}

func (s *Store) begin(flag *bool) {
	s.mu.Lock()
	*flag = true
	s.errMsg = ""
	s.mu.Unlock()
}

func (s *Store) fail(flag *bool, err error) {
	message := storekit.DefaultErrorMessage
	if err != nil && strings.TrimSpace(err.Error()) != "" {
		message = err.Error()
	}
	s.mu.Lock()
	*flag = false
	s.errMsg = message
	s.mu.Unlock()
}

func outcomeFor(origin storekit.Origin) string {
	if origin == storekit.OriginFallback {
		return metrics.OutcomeFallback
	}
	return metrics.OutcomeSuccess
}
