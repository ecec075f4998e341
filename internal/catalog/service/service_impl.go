package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/smallbiznis/tilldesk/internal/catalog/domain"
	"github.com/smallbiznis/tilldesk/internal/config"
	"github.com/smallbiznis/tilldesk/internal/fallback"
	"github.com/smallbiznis/tilldesk/internal/observability/metrics"
	"github.com/smallbiznis/tilldesk/internal/storekit"
	"github.com/smallbiznis/tilldesk/pkg/restclient"
	"github.com/smallbiznis/tilldesk/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const domainName = "catalog"

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
		log:      p.Log.Named("catalog.service"),
		client:   p.Client,
		recorder: p.Recorder,
		fallback: p.Fallback,
	}
}

func (s *Service) Product(ctx context.Context, id string) (*domain.Product, storekit.Origin, error) {
	start := time.Now()

	id = strings.TrimSpace(id)
	if id == "" {
		err := domain.ErrMissingProduct
		s.record(ctx, id, start, err, false)
		return nil, "", err
	}

	var product domain.Product
	err := s.client.Get(ctx, "/products/"+url.PathEscape(id), nil, &product)
	if err == nil {
		s.record(ctx, id, start, nil, false)
		return &product, storekit.OriginReal, nil
	}

	if s.fallbackEnabled() {
		record, ferr := s.fallback.Product(ctx, id)
		if ferr == nil {
			metrics.Store().IncFallback(domainName, "product")
			s.record(ctx, id, start, nil, true)
			return record, storekit.OriginFallback, nil
		}
		s.log.Warn("fallback product read failed", zap.Error(ferr))
	}

	s.record(ctx, id, start, err, false)
	return nil, "", err
}

func (s *Service) fallbackEnabled() bool {
	if s.fallback == nil {
		return false
	}
	return s.policy.FallbackFor(domainName, s.cfg.FallbackEnabled)
}

func (s *Service) record(ctx context.Context, key string, start time.Time, err error, fellBack bool) {
	s.recorder.Record(ctx, telemetry.Event{
		Operation: domainName + ".product",
		Key:       key,
		Duration:  time.Since(start),
		Err:       err,
		Fallback:  fellBack,
	})
}
