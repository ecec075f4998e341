package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/smallbiznis/tilldesk/internal/cashregister/domain"
	"github.com/smallbiznis/tilldesk/internal/events"
	"github.com/smallbiznis/tilldesk/internal/observability/metrics"
	"github.com/smallbiznis/tilldesk/internal/storekit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const domainName = "cash_register"

// Store holds register-session state. A close never patches fields on a
// cached session; the returned record replaces the old one wholesale.
type Store struct {
	log *zap.Logger
	svc domain.Service
	bus *events.Bus

	mu       sync.Mutex
	sessions []domain.Session
	loading  bool
	creating bool
	errMsg   string

	registerHistory *storekit.Keyed[domain.Session]
}

type Snapshot struct {
	Sessions []domain.Session `json:"sessions"`
	Loading  bool             `json:"loading"`
	Creating bool             `json:"creating"`
	Error    string           `json:"error,omitempty"`
}

type Params struct {
	fx.In

	Log *zap.Logger
	Svc domain.Service
	Bus *events.Bus
}

func New(p Params) *Store {
	return &Store{
		log:             p.Log.Named("cashregister.store"),
		svc:             p.Svc,
		bus:             p.Bus,
		registerHistory: storekit.NewKeyed[domain.Session](),
	}
}

// Open starts a session and merges it at the front of the list. If a
// session with the same ID is already present it is replaced instead of
// duplicated.
func (s *Store) Open(ctx context.Context, req domain.OpenRequest) storekit.Result[domain.Session] {
	start := time.Now()
	s.begin(&s.creating)

	record, origin, err := s.svc.Open(ctx, req)
	if err != nil {
		s.fail(&s.creating, err)
		metrics.Store().ObserveAction(domainName, "open", metrics.OutcomeError, time.Since(start))
		return storekit.Fail[domain.Session](err)
	}

	s.mu.Lock()
	s.creating = false
	s.mergeLocked(*record, true)
	s.mu.Unlock()

	metrics.Store().ObserveAction(domainName, "open", outcomeFor(origin), time.Since(start))
	return storekit.OK(*record, origin)
}

// Close ends a session, replaces the cached record in place, and
// publishes a session-closed event.
func (s *Store) Close(ctx context.Context, req domain.CloseRequest) storekit.Result[domain.Session] {
	start := time.Now()
	s.begin(&s.creating)

	record, origin, err := s.svc.Close(ctx, req)
	if err != nil {
		s.fail(&s.creating, err)
		metrics.Store().ObserveAction(domainName, "close", metrics.OutcomeError, time.Since(start))
		return storekit.Fail[domain.Session](err)
	}

	s.mu.Lock()
	s.creating = false
	s.mergeLocked(*record, false)
	s.mu.Unlock()

	s.bus.Publish(ctx, events.TopicSessionClosed, events.SessionClosed{
		RegisterID: record.RegisterID,
		SessionID:  record.ID,
	})

	metrics.Store().ObserveAction(domainName, "close", outcomeFor(origin), time.Since(start))
	return storekit.OK(*record, origin)
}

// FetchRegisterHistory loads one register's sessions into the keyed
// cache, fenced against newer fetches and clears of the same key.
func (s *Store) FetchRegisterHistory(ctx context.Context, registerID string, limit, offset int) storekit.Result[[]domain.Session] {
	start := time.Now()
	s.begin(&s.loading)

	key := strings.TrimSpace(registerID)
	seq := s.registerHistory.Begin(key)

	records, origin, err := s.svc.ListByRegister(ctx, registerID, limit, offset)
	if err != nil {
		s.fail(&s.loading, err)
		metrics.Store().ObserveAction(domainName, "fetch_register_history", metrics.OutcomeError, time.Since(start))
		return storekit.Fail[[]domain.Session](err)
	}

	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()

	s.registerHistory.Commit(key, seq, storekit.Entry[domain.Session]{
		Records:   records,
		FetchedAt: time.Now().UTC(),
		HasMore:   limit > 0 && len(records) == limit,
		Offset:    offset,
		Origin:    origin,
	})

	metrics.Store().ObserveAction(domainName, "fetch_register_history", outcomeFor(origin), time.Since(start))
	return storekit.OK(records, origin)
}

func (s *Store) FetchRecent(ctx context.Context, days, limit int) storekit.Result[[]domain.Session] {
	start := time.Now()
	s.begin(&s.loading)

	records, origin, err := s.svc.Recent(ctx, days, limit)
	if err != nil {
		s.fail(&s.loading, err)
		metrics.Store().ObserveAction(domainName, "fetch_recent", metrics.OutcomeError, time.Since(start))
		return storekit.Fail[[]domain.Session](err)
	}

	s.mu.Lock()
	s.loading = false
	s.sessions = records
	s.mu.Unlock()

	metrics.Store().ObserveAction(domainName, "fetch_recent", outcomeFor(origin), time.Since(start))
	return storekit.OK(records, origin)
}

func (s *Store) ClearSessions() {
	s.mu.Lock()
	s.sessions = nil
	s.errMsg = ""
	s.mu.Unlock()
}

func (s *Store) ClearRegisterHistory(registerID string) {
	s.registerHistory.Clear(strings.TrimSpace(registerID))
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Sessions: append([]domain.Session(nil), s.sessions...),
		Loading:  s.loading,
		Creating: s.creating,
		Error:    s.errMsg,
	}
}

func (s *Store) RegisterHistory(registerID string) (storekit.Entry[domain.Session], bool) {
	return s.registerHistory.Get(strings.TrimSpace(registerID))
}

// OpenSessions returns sessions still open, in original order.
func (s *Store) OpenSessions() []domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	open := make([]domain.Session, 0)
	for _, session := range s.sessions {
		if session.Status == domain.StatusOpen {
			open = append(open, session)
		}
	}
	return open
}

// mergeLocked replaces a same-ID session in place, or prepends when the
// session is new and prepend is set (appends otherwise).
func (s *Store) mergeLocked(record domain.Session, prepend bool) {
	for i := range s.sessions {
		if s.sessions[i].ID == record.ID {
			s.sessions[i] = record
			return
		}
	}
	if prepend {
		s.sessions = append([]domain.Session{record}, s.sessions...)
		return
	}
	s.sessions = append(s.sessions, record)
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
