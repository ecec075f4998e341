package service

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/smallbiznis/tilldesk/internal/config"
	"github.com/smallbiznis/tilldesk/internal/fallback"
	"github.com/smallbiznis/tilldesk/internal/observability/metrics"
	"github.com/smallbiznis/tilldesk/internal/purchasing/domain"
	"github.com/smallbiznis/tilldesk/internal/storekit"
	"github.com/smallbiznis/tilldesk/pkg/restclient"
	"github.com/smallbiznis/tilldesk/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const domainName = "purchasing"

type Params struct {
	fx.In

	Cfg      config.Config
	Policy   *config.ConsolePolicyHolder
	Log      *zap.Logger
	Client   *restclient.Client
	Recorder *telemetry.Recorder
	Fallback *fallback.Store `optional:"true"`
}

type Service struct {
	cfg      config.Config
	policy   *config.ConsolePolicyHolder
	log      *zap.Logger
	client   *restclient.Client
	recorder *telemetry.Recorder
	fallback *fallback.Store
}

func New(p Params) domain.Service {
	return &Service{
		cfg:      p.Cfg,
		policy:   p.Policy,
		log:      p.Log.Named("purchasing.service"),
		client:   p.Client,
		recorder: p.Recorder,
		fallback: p.Fallback,
	}
}

func (s *Service) CreatePayment(ctx context.Context, req domain.CreatePaymentRequest) (*domain.Payment, storekit.Origin, error) {
	start := time.Now()

	if err := validatePayment(req); err != nil {
		s.record(ctx, "create_payment", "", start, err, false)
		return nil, "", err
	}

	var payment domain.Payment
	err := s.client.Post(ctx, "/purchase-orders/"+strconv.FormatInt(req.OrderID, 10)+"/payments", req, &payment)
	if err == nil {
		s.record(ctx, "create_payment", strconv.FormatInt(payment.OrderID, 10), start, nil, false)
		return &payment, storekit.OriginReal, nil
	}

	if s.fallbackEnabled() {
		record, ferr := s.fallback.CreatePurchasePayment(ctx, req)
		if ferr == nil {
			s.serveFallback(ctx, "create_payment", strconv.FormatInt(req.OrderID, 10), start)
			return record, storekit.OriginFallback, nil
		}
		s.log.Warn("fallback payment create failed", zap.Error(ferr))
	}

	s.record(ctx, "create_payment", strconv.FormatInt(req.OrderID, 10), start, err, false)
	return nil, "", err
}

func (s *Service) ListOrders(ctx context.Context, limit, offset int) ([]domain.Order, storekit.Origin, error) {
	start := time.Now()

	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}

	var orders []domain.Order
	err := s.client.Get(ctx, "/purchase-orders", query, &orders)
	if err == nil {
		s.record(ctx, "list_orders", "", start, nil, false)
		return orders, storekit.OriginReal, nil
	}

	if s.fallbackEnabled() {
		records, ferr := s.fallback.PurchaseOrders(ctx, limit, offset)
		if ferr == nil {
			s.serveFallback(ctx, "list_orders", "", start)
			return records, storekit.OriginFallback, nil
		}
		s.log.Warn("fallback order read failed", zap.Error(ferr))
	}

	s.record(ctx, "list_orders", "", start, err, false)
	return nil, "", err
}

func (s *Service) PaymentsByOrder(ctx context.Context, orderID int64, limit, offset int) ([]domain.Payment, storekit.Origin, error) {
	start := time.Now()

	if orderID <= 0 {
		err := domain.ErrInvalidOrder
		s.record(ctx, "payments_by_order", "", start, err, false)
		return nil, "", err
	}
	key := strconv.FormatInt(orderID, 10)

	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}

	var payments []domain.Payment
	err := s.client.Get(ctx, "/purchase-orders/"+key+"/payments", query, &payments)
	if err == nil {
		s.record(ctx, "payments_by_order", key, start, nil, false)
		return payments, storekit.OriginReal, nil
	}

	if s.fallbackEnabled() {
		records, ferr := s.fallback.PurchasePaymentsByOrder(ctx, orderID, limit, offset)
		if ferr == nil {
			s.serveFallback(ctx, "payments_by_order", key, start)
			return records, storekit.OriginFallback, nil
		}
		s.log.Warn("fallback payment read failed", zap.Error(ferr))
	}

	s.record(ctx, "payments_by_order", key, start, err, false)
	return nil, "", err
}

func (s *Service) fallbackEnabled() bool {
	if s.fallback == nil {
		return false
	}
	return s.policy.FallbackFor(domainName, s.cfg.FallbackEnabled)
}

func (s *Service) serveFallback(ctx context.Context, operation, key string, start time.Time) {
	metrics.Store().IncFallback(domainName, operation)
	s.record(ctx, operation, key, start, nil, true)
}

func (s *Service) record(ctx context.Context, operation, key string, start time.Time, err error, fellBack bool) {
	s.recorder.Record(ctx, telemetry.Event{
		Operation: domainName + "." + operation,
		Key:       key,
		Duration:  time.Since(start),
		Err:       err,
		Fallback:  fellBack,
	})
}

func validatePayment(req domain.CreatePaymentRequest) error {
	if req.OrderID <= 0 {
		return domain.ErrInvalidOrder
	}
	if req.Amount <= 0 {
		return domain.ErrInvalidAmount
	}
	if strings.TrimSpace(req.Method) == "" {
		return domain.ErrMissingMethod
	}
	return nil
}
