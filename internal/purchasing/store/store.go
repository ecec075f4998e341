package store

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/smallbiznis/tilldesk/internal/observability/metrics"
	"github.com/smallbiznis/tilldesk/internal/purchasing/domain"
	"github.com/smallbiznis/tilldesk/internal/storekit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const domainName = "purchasing"

// Store holds purchase orders and a per-order payment cache. Recording
// a payment prepends to the order's cached payments so the outstanding
// balance reflects it without a refetch.
type Store struct {
	log *zap.Logger
	svc domain.Service

	mu       sync.Mutex
	orders   []domain.Order
	loading  bool
	creating bool
	errMsg   string

	orderPayments *storekit.Keyed[domain.Payment]
}

type Snapshot struct {
	Orders   []domain.Order `json:"orders"`
	Loading  bool           `json:"loading"`
	Creating bool           `json:"creating"`
	Error    string         `json:"error,omitempty"`
}

type Params struct {
	fx.In

	Log *zap.Logger
	Svc domain.Service
}

func New(p Params) *Store {
	return &Store{
		log:           p.Log.Named("purchasing.store"),
		svc:           p.Svc,
		orderPayments: storekit.NewKeyed[domain.Payment](),
	}
}

// CreatePayment records a payment and merges it into the order's cached
// payment list when one is present.
func (s *Store) CreatePayment(ctx context.Context, req domain.CreatePaymentRequest) storekit.Result[domain.Payment] {
	start := time.Now()
	s.begin(&s.creating)

	record, origin, err := s.svc.CreatePayment(ctx, req)
	if err != nil {
		s.fail(&s.creating, err)
		metrics.Store().ObserveAction(domainName, "create_payment", metrics.OutcomeError, time.Since(start))
		return storekit.Fail[domain.Payment](err)
	}

	s.mu.Lock()
	s.creating = false
	s.mu.Unlock()

	key := orderKey(record.OrderID)
	if entry, ok := s.orderPayments.Get(key); ok {
		entry.Records = append([]domain.Payment{*record}, entry.Records...)
		seq := s.orderPayments.Begin(key)
		s.orderPayments.Commit(key, seq, entry)
	}

	metrics.Store().ObserveAction(domainName, "create_payment", outcomeFor(origin), time.Since(start))
	return storekit.OK(*record, origin)
}

func (s *Store) FetchOrders(ctx context.Context, limit, offset int) storekit.Result[[]domain.Order] {
	start := time.Now()
	s.begin(&s.loading)

	records, origin, err := s.svc.ListOrders(ctx, limit, offset)
	if err != nil {
		s.fail(&s.loading, err)
		metrics.Store().ObserveAction(domainName, "fetch_orders", metrics.OutcomeError, time.Since(start))
		return storekit.Fail[[]domain.Order](err)
	}

	s.mu.Lock()
	s.loading = false
	s.orders = records
	s.mu.Unlock()

	metrics.Store().ObserveAction(domainName, "fetch_orders", outcomeFor(origin), time.Since(start))
	return storekit.OK(records, origin)
}

// FetchOrderPayments loads one order's payments into the keyed cache,
// fenced against newer fetches and clears of the same key.
func (s *Store) FetchOrderPayments(ctx context.Context, orderID int64, limit, offset int) storekit.Result[[]domain.Payment] {
	start := time.Now()
	s.begin(&s.loading)

	key := orderKey(orderID)
	seq := s.orderPayments.Begin(key)

	records, origin, err := s.svc.PaymentsByOrder(ctx, orderID, limit, offset)
	if err != nil {
		s.fail(&s.loading, err)
		metrics.Store().ObserveAction(domainName, "fetch_order_payments", metrics.OutcomeError, time.Since(start))
		return storekit.Fail[[]domain.Payment](err)
	}

	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()

	s.orderPayments.Commit(key, seq, storekit.Entry[domain.Payment]{
		Records:   records,
		FetchedAt: time.Now().UTC(),
		HasMore:   limit > 0 && len(records) == limit,
		Offset:    offset,
		Origin:    origin,
	})

	metrics.Store().ObserveAction(domainName, "fetch_order_payments", outcomeFor(origin), time.Since(start))
	return storekit.OK(records, origin)
}

func (s *Store) ClearOrders() {
	s.mu.Lock()
	s.orders = nil
	s.errMsg = ""
	s.mu.Unlock()
}

func (s *Store) ClearOrderPayments(orderID int64) {
	s.orderPayments.Clear(orderKey(orderID))
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Orders:   append([]domain.Order(nil), s.orders...),
		Loading:  s.loading,
		Creating: s.creating,
		Error:    s.errMsg,
	}
}

func (s *Store) OrderPayments(orderID int64) (storekit.Entry[domain.Payment], bool) {
	return s.orderPayments.Get(orderKey(orderID))
}

// OutstandingOrders returns orders that still owe money: canceled and
// fully-paid orders are skipped, and an order whose cached payments
// already cover its total is treated as settled.
func (s *Store) OutstandingOrders() []domain.Order {
	s.mu.Lock()
	orders := append([]domain.Order(nil), s.orders...)
	s.mu.Unlock()

	outstanding := make([]domain.Order, 0)
	for _, order := range orders {
		if order.Status == domain.OrderPaid || order.Status == domain.OrderCanceled {
			continue
		}
		if entry, ok := s.orderPayments.Get(orderKey(order.ID)); ok {
			paid := 0.0
			for _, payment := range entry.Records {
				paid += payment.Amount
			}
			if paid >= order.Total {
				continue
			}
		}
		outstanding = append(outstanding, order)
	}
	return outstanding
}

func orderKey(orderID int64) string {
	return strconv.FormatInt(orderID, 10)
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
