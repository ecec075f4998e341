package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/smallbiznis/tilldesk/internal/config"
	"github.com/smallbiznis/tilldesk/internal/observability/metrics"
	"github.com/smallbiznis/tilldesk/internal/reference/domain"
	"github.com/smallbiznis/tilldesk/internal/storekit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const domainName = "reference"

// Store caches platform reference data. Reads serve the cached lists
// while they are fresher than the configured TTL; Refresh forces a
// refetch of both lists.
type Store struct {
	log    *zap.Logger
	svc    domain.Service
	policy *config.ConsolePolicyHolder

	mu       sync.Mutex
	methods  []domain.PaymentMethod
	currs    []domain.Currency
	origin   storekit.Origin
	loadedAt time.Time
	loading  bool
	errMsg   string
}

type Snapshot struct {
	PaymentMethods []domain.PaymentMethod `json:"payment_methods"`
	Currencies     []domain.Currency      `json:"currencies"`
	Origin         storekit.Origin        `json:"origin,omitempty"`
	LoadedAt       time.Time              `json:"loaded_at"`
	Loading        bool                   `json:"loading"`
	Error          string                 `json:"error,omitempty"`
}

type Params struct {
	fx.In

	Log    *zap.Logger
	Svc    domain.Service
	Policy *config.ConsolePolicyHolder
}

func New(p Params) *Store {
	return &Store{
		log:    p.Log.Named("reference.store"),
		svc:    p.Svc,
		policy: p.Policy,
	}
}

// PaymentMethods returns the cached list, fetching when it is stale.
func (s *Store) PaymentMethods(ctx context.Context) storekit.Result[[]domain.PaymentMethod] {
	if s.fresh() {
		s.mu.Lock()
		cached := append([]domain.PaymentMethod(nil), s.methods...)
		origin := s.origin
		s.mu.Unlock()
		return storekit.OK(cached, origin)
	}
	if err := s.Refresh(ctx); err != nil {
		return storekit.Fail[[]domain.PaymentMethod](err)
	}
	s.mu.Lock()
	cached := append([]domain.PaymentMethod(nil), s.methods...)
	origin := s.origin
	s.mu.Unlock()
	return storekit.OK(cached, origin)
}

// Currencies returns the cached list, fetching when it is stale.
func (s *Store) Currencies(ctx context.Context) storekit.Result[[]domain.Currency] {
	if s.fresh() {
		s.mu.Lock()
		cached := append([]domain.Currency(nil), s.currs...)
		origin := s.origin
		s.mu.Unlock()
		return storekit.OK(cached, origin)
	}
	if err := s.Refresh(ctx); err != nil {
		return storekit.Fail[[]domain.Currency](err)
	}
	s.mu.Lock()
	cached := append([]domain.Currency(nil), s.currs...)
	origin := s.origin
	s.mu.Unlock()
	return storekit.OK(cached, origin)
}

// Refresh refetches both reference lists. A partial failure leaves the
// previous cache intact.
func (s *Store) Refresh(ctx context.Context) error {
	start := time.Now()
	s.mu.Lock()
	s.loading = true
	s.errMsg = ""
	s.mu.Unlock()

	methods, methodsOrigin, err := s.svc.PaymentMethods(ctx)
	if err != nil {
		s.fail(err)
		metrics.Store().ObserveAction(domainName, "refresh", metrics.OutcomeError, time.Since(start))
		return err
	}
	currencies, currenciesOrigin, err := s.svc.Currencies(ctx)
	if err != nil {
		s.fail(err)
		metrics.Store().ObserveAction(domainName, "refresh", metrics.OutcomeError, time.Since(start))
		return err
	}

	origin := storekit.OriginReal
	if methodsOrigin == storekit.OriginFallback || currenciesOrigin == storekit.OriginFallback {
		origin = storekit.OriginFallback
	}

	s.mu.Lock()
	s.loading = false
	s.methods = methods
	s.currs = currencies
	s.origin = origin
	s.loadedAt = time.Now().UTC()
	s.mu.Unlock()

	outcome := metrics.OutcomeSuccess
	if origin == storekit.OriginFallback {
		outcome = metrics.OutcomeFallback
	}
	metrics.Store().ObserveAction(domainName, "refresh", outcome, time.Since(start))
	return nil
}

// PaymentMethod looks up a tender type by code, case-insensitively.
func (s *Store) PaymentMethod(code string) (domain.PaymentMethod, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, method := range s.methods {
		if strings.ToLower(method.Code) == code {
			return method, true
		}
	}
	return domain.PaymentMethod{}, false
}

// Currency looks up a currency by code, case-insensitively.
func (s *Store) Currency(code string) (domain.Currency, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, currency := range s.currs {
		if strings.ToLower(currency.Code) == code {
			return currency, true
		}
	}
	return domain.Currency{}, false
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		PaymentMethods: append([]domain.PaymentMethod(nil), s.methods...),
		Currencies:     append([]domain.Currency(nil), s.currs...),
		Origin:         s.origin,
		LoadedAt:       s.loadedAt,
		Loading:        s.loading,
		Error:          s.errMsg,
	}
}

func (s *Store) fresh() bool {
	ttl := s.policy.Get().ReferenceCacheTTL
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.loadedAt.IsZero() && time.Since(s.loadedAt) < ttl
}

func (s *Store) fail(err error) {
	message := storekit.DefaultErrorMessage
	if err != nil && strings.TrimSpace(err.Error()) != "" {
		message = err.Error()
	}
	s.mu.Lock()
	s.loading = false
	s.errMsg = message
	s.mu.Unlock()
}
