package service

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/smallbiznis/tilldesk/internal/cashregister/domain"
	"github.com/smallbiznis/tilldesk/internal/config"
	"github.com/smallbiznis/tilldesk/internal/fallback"
	"github.com/smallbiznis/tilldesk/internal/observability/metrics"
	"github.com/smallbiznis/tilldesk/internal/storekit"
	"github.com/smallbiznis/tilldesk/pkg/restclient"
	"github.com/smallbiznis/tilldesk/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const domainName = "cash_register"

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
		log:      p.Log.Named("cashregister.service"),
		client:   p.Client,
		recorder: p.Recorder,
		fallback: p.Fallback,
	}
}

func (s *Service) Open(ctx context.Context, req domain.OpenRequest) (*domain.Session, storekit.Origin, error) {
	start := time.Now()

	if err := validateOpen(req); err != nil {
		s.record(ctx, "open", req.RegisterID, start, err, false)
		return nil, "", err
	}

	var session domain.Session
	err := s.client.Post(ctx, "/register-sessions", req, &session)
	if err == nil {
		s.record(ctx, "open", session.RegisterID, start, nil, false)
		return &session, storekit.OriginReal, nil
	}

	if s.fallbackEnabled() {
		record, ferr := s.fallback.OpenRegisterSession(ctx, req)
		if ferr == nil {
			s.serveFallback(ctx, "open", req.RegisterID, start)
			return record, storekit.OriginFallback, nil
		}
		s.log.Warn("fallback open failed", zap.Error(ferr))
	}

	s.record(ctx, "open", req.RegisterID, start, err, false)
	return nil, "", err
}

func (s *Service) Close(ctx context.Context, req domain.CloseRequest) (*domain.Session, storekit.Origin, error) {
	start := time.Now()

	if err := validateClose(req); err != nil {
		s.record(ctx, "close", "", start, err, false)
		return nil, "", err
	}

	var session domain.Session
	err := s.client.Post(ctx, "/register-sessions/"+strconv.FormatInt(req.SessionID, 10)+"/close", req, &session)
	if err == nil {
		s.record(ctx, "close", session.RegisterID, start, nil, false)
		return &session, storekit.OriginReal, nil
	}

	if s.fallbackEnabled() {
		record, ferr := s.fallback.CloseRegisterSession(ctx, req)
		if ferr == nil {
			s.serveFallback(ctx, "close", record.RegisterID, start)
			return record, storekit.OriginFallback, nil
		}
		s.log.Warn("fallback close failed", zap.Error(ferr))
	}

	s.record(ctx, "close", "", start, err, false)
	return nil, "", err
}

func (s *Service) ListByRegister(ctx context.Context, registerID string, limit, offset int) ([]domain.Session, storekit.Origin, error) {
	start := time.Now()

	registerID = strings.TrimSpace(registerID)
	if registerID == "" {
		err := domain.ErrMissingRegister
		s.record(ctx, "list_by_register", "", start, err, false)
		return nil, "", err
	}

	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}

	var sessions []domain.Session
	err := s.client.Get(ctx, "/register-sessions/register/"+url.PathEscape(registerID), query, &sessions)
	if err == nil {
		s.record(ctx, "list_by_register", registerID, start, nil, false)
		return sessions, storekit.OriginReal, nil
	}

	if s.fallbackEnabled() {
		records, ferr := s.fallback.RegisterSessionsByRegister(ctx, registerID, limit, offset)
		if ferr == nil {
			s.serveFallback(ctx, "list_by_register", registerID, start)
			return records, storekit.OriginFallback, nil
		}
		s.log.Warn("fallback register read failed", zap.Error(ferr))
	}

	s.record(ctx, "list_by_register", registerID, start, err, false)
	return nil, "", err
}

func (s *Service) Recent(ctx context.Context, days, limit int) ([]domain.Session, storekit.Origin, error) {
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

	var sessions []domain.Session
	err := s.client.Get(ctx, "/register-sessions/recent", query, &sessions)
	if err == nil {
		s.record(ctx, "recent", "", start, nil, false)
		return sessions, storekit.OriginReal, nil
	}

	if s.fallbackEnabled() {
		since := time.Now().UTC().AddDate(0, 0, -days)
		records, ferr := s.fallback.RecentRegisterSessions(ctx, since, limit)
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

func validateOpen(req domain.OpenRequest) error {
	if strings.TrimSpace(req.RegisterID) == "" {
		return domain.ErrMissingRegister
	}
	if req.OpeningFloat < 0 {
		return domain.ErrNegativeOpeningFloat
	}
	return nil
}

func validateClose(req domain.CloseRequest) error {
	if req.SessionID <= 0 {
		return domain.ErrInvalidSession
	}
	if req.ClosingTotal < 0 {
		return domain.ErrNegativeClosingTotal
	}
	return nil
}
