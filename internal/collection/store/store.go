package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/smallbiznis/tilldesk/internal/collection/domain"
	"github.com/smallbiznis/tilldesk/internal/observability/metrics"
	"github.com/smallbiznis/tilldesk/internal/storekit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const domainName = "collection"

// Store holds sales-collection state: a flat recent list plus a
// per-customer history cache.
type Store struct {
	log *zap.Logger
	svc domain.Service

	mu          sync.Mutex
	collections []domain.Collection
	loading     bool
	creating    bool
	errMsg      string

	customerHistory *storekit.Keyed[domain.Collection]
}

type Snapshot struct {
	Collections []domain.Collection `json:"collections"`
	Loading     bool                `json:"loading"`
	Creating    bool                `json:"creating"`
	Error       string              `json:"error,omitempty"`
}

type Params struct {
	fx.In

	Log *zap.Logger
	Svc domain.Service
}

func New(p Params) *Store {
	return &Store{
		log:             p.Log.Named("collection.store"),
		svc:             p.Svc,
		customerHistory: storekit.NewKeyed[domain.Collection](),
	}
}

func (s *Store) Create(ctx context.Context, req domain.CreateRequest) storekit.Result[domain.Collection] {
	start := time.Now()
	s.begin(&s.creating)

	record, origin, err := s.svc.Create(ctx, req)
	if err != nil {
		s.fail(&s.creating, err)
		metrics.Store().ObserveAction(domainName, "create", metrics.OutcomeError, time.Since(start))
		return storekit.Fail[domain.Collection](err)
	}

	s.mu.Lock()
	s.creating = false
	s.collections = append([]domain.Collection{*record}, s.collections...)
	s.mu.Unlock()

	metrics.Store().ObserveAction(domainName, "create", outcomeFor(origin), time.Since(start))
	return storekit.OK(*record, origin)
}

// FetchCustomerHistory loads one customer's collections into the keyed
// cache, fenced against newer fetches and clears of the same key.
func (s *Store) FetchCustomerHistory(ctx context.Context, customerID string, limit, offset int) storekit.Result[[]domain.Collection] {
	start := time.Now()
	s.begin(&s.loading)

	key := strings.TrimSpace(customerID)
	seq := s.customerHistory.Begin(key)

	records, origin, err := s.svc.ListByCustomer(ctx, customerID, limit, offset)
	if err != nil {
		s.fail(&s.loading, err)
		metrics.Store().ObserveAction(domainName, "fetch_customer_history", metrics.OutcomeError, time.Since(start))
		return storekit.Fail[[]domain.Collection](err)
	}

	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()

	s.customerHistory.Commit(key, seq, storekit.Entry[domain.Collection]{
		Records:   records,
		FetchedAt: time.Now().UTC(),
		HasMore:   limit > 0 && len(records) == limit,
		Offset:    offset,
		Origin:    origin,
	})

	metrics.Store().ObserveAction(domainName, "fetch_customer_history", outcomeFor(origin), time.Since(start))
	return storekit.OK(records, origin)
}

func (s *Store) FetchRecent(ctx context.Context, days, limit int) storekit.Result[[]domain.Collection] {
	start := time.Now()
	s.begin(&s.loading)

	records, origin, err := s.svc.Recent(ctx, days, limit)
	if err != nil {
		s.fail(&s.loading, err)
		metrics.Store().ObserveAction(domainName, "fetch_recent", metrics.OutcomeError, time.Since(start))
		return storekit.Fail[[]domain.Collection](err)
	}

	s.mu.Lock()
	s.loading = false
	s.collections = records
	s.mu.Unlock()

	metrics.Store().ObserveAction(domainName, "fetch_recent", outcomeFor(origin), time.Since(start))
	return storekit.OK(records, origin)
}

func (s *Store) ClearCollections() {
	s.mu.Lock()
	s.collections = nil
	s.errMsg = ""
	s.mu.Unlock()
}

func (s *Store) ClearCustomerHistory(customerID string) {
	s.customerHistory.Clear(strings.TrimSpace(customerID))
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Collections: append([]domain.Collection(nil), s.collections...),
		Loading:     s.loading,
		Creating:    s.creating,
		Error:       s.errMsg,
	}
}

func (s *Store) CustomerHistory(customerID string) (storekit.Entry[domain.Collection], bool) {
	return s.customerHistory.Get(strings.TrimSpace(customerID))
}

// CollectionsByCustomer filters the current list, preserving order.
func (s *Store) CollectionsByCustomer(customerID string) []domain.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := make([]domain.Collection, 0)
	for _, record := range s.collections {
		if record.CustomerID == customerID {
			matched = append(matched, record)
		}
	}
	return matched
}

// RecentCollections returns the n newest records by created_at, ties
// broken by original insertion order.
func (s *Store) RecentCollections(n int) []domain.Collection {
	s.mu.Lock()
	sorted := append([]domain.Collection(nil), s.collections...)
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
