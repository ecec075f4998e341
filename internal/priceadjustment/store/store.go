package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/smallbiznis/tilldesk/internal/events"
	"github.com/smallbiznis/tilldesk/internal/observability/metrics"
	"github.com/smallbiznis/tilldesk/internal/priceadjustment/domain"
	"github.com/smallbiznis/tilldesk/internal/storekit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const domainName = "price_adjustment"

// Store owns the console's view of price adjustments. It is an explicit
// instance, injected wherever it is read; all mutation happens inside
// its action methods. Actions never return Go errors; failures land in
// the result envelope and the store's error flag.
type Store struct {
	log *zap.Logger
	svc domain.Service
	bus *events.Bus

	mu          sync.Mutex
	adjustments []domain.Adjustment
	loading     bool
	creating    bool
	errMsg      string

	productHistory *storekit.Keyed[domain.Adjustment]
}

// Snapshot is the synchronous read surface consumed by the console.
type Snapshot struct {
	Adjustments []domain.Adjustment `json:"adjustments"`
	Loading     bool                `json:"loading"`
	Creating    bool                `json:"creating"`
	Error       string              `json:"error,omitempty"`
}

type Params struct {
	fx.In

	Log *zap.Logger
	Svc domain.Service
	Bus *events.Bus
}

func New(p Params) *Store {
	return &Store{
		log:            p.Log.Named("priceadjustment.store"),
		svc:            p.Svc,
		bus:            p.Bus,
		productHistory: storekit.NewKeyed[domain.Adjustment](),
	}
}

// Create validates and submits a new adjustment. On success the record
// is prepended to the list and a price-changed event is published for
// the catalog cache; event delivery is best-effort and can never fail
// the create.
func (s *Store) Create(ctx context.Context, req domain.CreateRequest) storekit.Result[domain.Adjustment] {
	start := time.Now()
	s.begin(&s.creating)

	record, origin, err := s.svc.Create(ctx, req)
	if err != nil {
		s.fail(&s.creating, err)
		metrics.Store().ObserveAction(domainName, "create", metrics.OutcomeError, time.Since(start))
		return storekit.Fail[domain.Adjustment](err)
	}

	s.mu.Lock()
	s.creating = false
	s.adjustments = append([]domain.Adjustment{*record}, s.adjustments...)
	s.mu.Unlock()

	s.bus.Publish(ctx, events.TopicPriceChanged, events.PriceChanged{
		ProductID: record.ProductID,
		NewPrice:  record.NewPrice,
	})

	metrics.Store().ObserveAction(domainName, "create", outcomeFor(origin), time.Since(start))
	return storekit.OK(*record, origin)
}

// FetchProductHistory loads one product's history into the keyed cache.
// Responses are fenced per key: if a newer fetch or an explicit clear
// was issued while this one was in flight, the result is returned to
// the caller but not applied to the cache.
func (s *Store) FetchProductHistory(ctx context.Context, productID string, limit, offset int) storekit.Result[[]domain.Adjustment] {
	start := time.Now()
	s.begin(&s.loading)

	key := strings.TrimSpace(productID)
	seq := s.productHistory.Begin(key)

	records, origin, err := s.svc.ProductHistory(ctx, productID, limit, offset)
	if err != nil {
		s.fail(&s.loading, err)
		metrics.Store().ObserveAction(domainName, "fetch_product_history", metrics.OutcomeError, time.Since(start))
		return storekit.Fail[[]domain.Adjustment](err)
	}

	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()

	applied := s.productHistory.Commit(key, seq, storekit.Entry[domain.Adjustment]{
		Records:   records,
		FetchedAt: time.Now().UTC(),
		HasMore:   limit > 0 && len(records) == limit,
		Offset:    offset,
		Origin:    origin,
	})
	if !applied {
		s.log.Debug("stale history response dropped", zap.String("product_id", key))
	}

	metrics.Store().ObserveAction(domainName, "fetch_product_history", outcomeFor(origin), time.Since(start))
	return storekit.OK(records, origin)
}

// FetchRecent replaces the store's list with the latest adjustments.
func (s *Store) FetchRecent(ctx context.Context, days, limit int) storekit.Result[[]domain.Adjustment] {
	start := time.Now()
	s.begin(&s.loading)

	records, origin, err := s.svc.Recent(ctx, days, limit)
	if err != nil {
		s.fail(&s.loading, err)
		metrics.Store().ObserveAction(domainName, "fetch_recent", metrics.OutcomeError, time.Since(start))
		return storekit.Fail[[]domain.Adjustment](err)
	}

	s.mu.Lock()
	s.loading = false
	s.adjustments = records
	s.mu.Unlock()

	metrics.Store().ObserveAction(domainName, "fetch_recent", outcomeFor(origin), time.Since(start))
	return storekit.OK(records, origin)
}

// FetchDateRange replaces the store's list with adjustments in a period.
func (s *Store) FetchDateRange(ctx context.Context, query domain.DateRangeQuery) storekit.Result[[]domain.Adjustment] {
	start := time.Now()
	s.begin(&s.loading)

	records, origin, err := s.svc.DateRange(ctx, query)
	if err != nil {
		s.fail(&s.loading, err)
		metrics.Store().ObserveAction(domainName, "fetch_date_range", metrics.OutcomeError, time.Since(start))
		return storekit.Fail[[]domain.Adjustment](err)
	}

	s.mu.Lock()
	s.loading = false
	s.adjustments = records
	s.mu.Unlock()

	metrics.Store().ObserveAction(domainName, "fetch_date_range", outcomeFor(origin), time.Since(start))
	return storekit.OK(records, origin)
}

// ClearAdjustments empties the list and error flag. Idempotent.
func (s *Store) ClearAdjustments() {
	s.mu.Lock()
	s.adjustments = nil
	s.errMsg = ""
	s.mu.Unlock()
}

// ClearProductHistory drops one product's cached history, leaving other
// keys untouched.
func (s *Store) ClearProductHistory(productID string) {
	s.productHistory.Clear(strings.TrimSpace(productID))
}

// Snapshot returns a copy of the list and flags.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Adjustments: append([]domain.Adjustment(nil), s.adjustments...),
		Loading:     s.loading,
		Creating:    s.creating,
		Error:       s.errMsg,
	}
}

// ProductHistory returns the cached entry for one product.
func (s *Store) ProductHistory(productID string) (storekit.Entry[domain.Adjustment], bool) {
	return s.productHistory.Get(strings.TrimSpace(productID))
}

// AdjustmentsByProduct filters the current list by product, preserving
// original relative order.
func (s *Store) AdjustmentsByProduct(productID string) []domain.Adjustment {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := make([]domain.Adjustment, 0)
	for _, record := range s.adjustments {
		if record.ProductID == productID {
			matched = append(matched, record)
		}
	}
	return matched
}

// RecentAdjustments returns the n newest records by created_at, ties
// broken by original insertion order.
func (s *Store) RecentAdjustments(n int) []domain.Adjustment {
	s.mu.Lock()
	sorted := append([]domain.Adjustment(nil), s.adjustments...)
	s.mu.Unlock()

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if n < 0 {
		n = 0
	}
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
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
