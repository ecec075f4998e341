package service

import (
	"context"
	"time"

	"github.com/smallbiznis/tilldesk/internal/config"
	"github.com/smallbiznis/tilldesk/internal/fallback"
	"github.com/smallbiznis/tilldesk/internal/observability/metrics"
	"github.com/smallbiznis/tilldesk/internal/reference/domain"
	"github.com/smallbiznis/tilldesk/internal/storekit"
	"github.com/smallbiznis/tilldesk/pkg/restclient"
	"github.com/smallbiznis/tilldesk/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const domainName = "reference"

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
		log:      p.Log.Named("reference.service"),
		client:   p.Client,
		recorder: p.Recorder,
		fallback: p.Fallback,
	}
}

func (s *Service) PaymentMethods(ctx context.Context) ([]domain.PaymentMethod, storekit.Origin, error) {
	start := time.Now()

	var methods []domain.PaymentMethod
	err := s.client.Get(ctx, "/reference/payment-methods", nil, &methods)
	if err == nil {
		s.record(ctx, "payment_methods", start, nil, false)
		return methods, storekit.OriginReal, nil
	}

	if s.fallbackEnabled() {
		records, ferr := s.fallback.PaymentMethods(ctx)
		if ferr == nil {
			s.serveFallback(ctx, "payment_methods", start)
			return records, storekit.OriginFallback, nil
		}
		s.log.Warn("fallback payment-method read failed", zap.Error(ferr))
	}

	s.record(ctx, "payment_methods", start, err, false)
	return nil, "", err
}

func (s *Service) Currencies(ctx context.Context) ([]domain.Currency, storekit.Origin, error) {
	start := time.Now()

	var currencies []domain.Currency
	err := s.client.Get(ctx, "/reference/currencies", nil, &currencies)
	if err == nil {
		s.record(ctx, "currencies", start, nil, false)
		return currencies, storekit.OriginReal, nil
	}

	if s.fallbackEnabled() {
		records, ferr := s.fallback.Currencies(ctx)
		if ferr == nil {
			s.serveFallback(ctx, "currencies", start)
			return records, storekit.OriginFallback, nil
		}
		s.log.Warn("fallback currency read failed", zap.Error(ferr))
	}

	s.record(ctx, "currencies", start, err, false)
	return nil, "", err
}

func (s *Service) fallbackEnabled() bool {
	if s.fallback == nil {
		return false
	}
	return s.policy.FallbackFor(domainName, s.cfg.FallbackEnabled)
}

func (s *Service) serveFallback(ctx context.Context, operation string, start time.Time) {
	metrics.Store().IncFallback(domainName, operation)
	s.record(ctx, operation, start, nil, true)
}

func (s *Service) record(ctx context.Context, operation string, start time.Time, err error, fellBack bool) {
	s.recorder.Record(ctx, telemetry.Event{
		Operation: domainName + "." + operation,
		Duration:  time.Since(start),
		Err:       err,
		Fallback:  fellBack,
	})
}
