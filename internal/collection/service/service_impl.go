package service

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/smallbiznis/tilldesk/internal/collection/domain"
	"github.com/smallbiznis/tilldesk/internal/config"
	"github.com/smallbiznis/tilldesk/internal/fallback"
	"github.com/smallbiznis/tilldesk/internal/observability/metrics"
	"github.com/smallbiznis/tilldesk/internal/storekit"
	"github.com/smallbiznis/tilldesk/pkg/restclient"
	"github.com/smallbiznis/tilldesk/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const domainName = "collection"

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
		log:      p.Log.Named("collection.service"),
		client:   p.Client,
		recorder: p.Recorder,
		fallback: p.Fallback,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Collection, storekit.Origin, error) {
	start := time.Now()

	if err := validateCreate(req); err != nil {
		s.record(ctx, "create", req.CustomerID, start, err, false)
		return nil, "", err
	}

	var collection domain.Collection
	err := s.client.Post(ctx, "/collections", req, &collection)
	if err == nil {
		s.record(ctx, "create", collection.CustomerID, start, nil, false)
		return &collection, storekit.OriginReal, nil
	}

	if s.fallbackEnabled() {
		record, ferr := s.fallback.CreateCollection(ctx, req)
		if ferr == nil {
			s.serveFallback(ctx, "create", req.CustomerID, start)
			return record, storekit.OriginFallback, nil
		}
		s.log.Warn("fallback collection create failed", zap.Error(ferr))
	}

	s.record(ctx, "create", req.CustomerID, start, err, false)
	return nil, "", err
}

func (s *Service) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]domain.Collection, storekit.Origin, error) {
	start := time.Now()

	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		err := domain.ErrMissingCustomer
		s.record(ctx, "list_by_customer", "", start, err, false)
		return nil, "", err
	}

	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}

	var collections []domain.Collection
	err := s.client.Get(ctx, "/collections/customer/"+url.PathEscape(customerID), query, &collections)
	if err == nil {
		s.record(ctx, "list_by_customer", customerID, start, nil, false)
		return collections, storekit.OriginReal, nil
	}

	if s.fallbackEnabled() {
		records, ferr := s.fallback.CollectionsByCustomer(ctx, customerID, limit, offset)
		if ferr == nil {
			s.serveFallback(ctx, "list_by_customer", customerID, start)
			return records, storekit.OriginFallback, nil
		}
		s.log.Warn("fallback customer read failed", zap.Error(ferr))
	}

	s.record(ctx, "list_by_customer", customerID, start, err, false)
	return nil, "", err
}

func (s *Service) Recent(ctx context.Context, days, limit int) ([]domain.Collection, storekit.Origin, error) {
	start := time.Now()

	policy := s.policy.Get()
	if days <= 0 {
		days = policy.RecentWindowDays
	}
	if limit <= 0 {
		limit = policy.RecentLimit
	}

	query := url.Values{}
	query.Set("days", strconv.Itoa(days))
	query.Set("limit", strconv.Itoa(limit))

	var collections []domain.Collection
	err := s.client.Get(ctx, "/collections/recent", query, &collections)
	if err == nil {
		s.record(ctx, "recent", "", start, nil, false)
		return collections, storekit.OriginReal, nil
	}

	if s.fallbackEnabled() {
		since := time.Now().UTC().AddDate(0, 0, -days)
		records, ferr := s.fallback.RecentCollections(ctx, since, limit)
		if ferr == nil {
			s.serveFallback(ctx, "recent", "", start)
			return records, storekit.OriginFallback, nil
		}
		s.log.Warn("fallback recent read failed", zap.Error(ferr))
	}

	s.record(ctx, "recent", "", start, err, false)
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

func validateCreate(req domain.CreateRequest) error {
	if strings.TrimSpace(req.CustomerID) == "" {
		return domain.ErrMissingCustomer
	}
	if req.Amount <= 0 {
		return domain.ErrInvalidAmount
	}
	if strings.TrimSpace(req.Method) == "" {
		return domain.ErrMissingMethod
	}
	return nil
}
