package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smallbiznis/tilldesk/internal/cashregister/domain"
	"github.com/smallbiznis/tilldesk/internal/events"
	"github.com/smallbiznis/tilldesk/internal/storekit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeService struct {
	openRecord  *domain.Session
	openErr     error
	closeRecord *domain.Session
	closeErr    error
	listBody    []domain.Session
	recentBody  []domain.Session
}

func (f *fakeService) Open(context.Context, domain.OpenRequest) (*domain.Session, storekit.Origin, error) {
	if f.openErr != nil {
		return nil, storekit.OriginReal, f.openErr
	}
	return f.openRecord, storekit.OriginReal, nil
}

func (f *fakeService) Close(context.Context, domain.CloseRequest) (*domain.Session, storekit.Origin, error) {
	if f.closeErr != nil {
		return nil, storekit.OriginReal, f.closeErr
	}
	return f.closeRecord, storekit.OriginReal, nil
}

func (f *fakeService) ListByRegister(context.Context, string, int, int) ([]domain.Session, storekit.Origin, error) {
	return f.listBody, storekit.OriginReal, nil
}

func (f *fakeService) Recent(context.Context, int, int) ([]domain.Session, storekit.Origin, error) {
	return f.recentBody, storekit.OriginReal, nil
}

func newTestStore(svc domain.Service) (*Store, *events.Bus) {
	bus := events.NewBus(zap.NewNop())
	return New(Params{Log: zap.NewNop(), Svc: svc, Bus: bus}), bus
}

func TestOpenPrependsNewSession(t *testing.T) {
	record := &domain.Session{ID: 10, RegisterID: "reg-1", Status: domain.StatusOpen, OpenedAt: time.Now()}
	store, _ := newTestStore(&fakeService{openRecord: record})
	store.sessions = []domain.Session{{ID: 1, RegisterID: "reg-2", Status: domain.StatusClosed}}

	result := store.Open(context.Background(), domain.OpenRequest{})

	require.True(t, result.Success)
	snap := store.Snapshot()
	require.Len(t, snap.Sessions, 2)
	assert.EqualValues(t, 10, snap.Sessions[0].ID)
}

func TestCloseReplacesWholeRecordInPlace(t *testing.T) {
	closedAt := time.Now()
	closed := &domain.Session{
		ID:           10,
		RegisterID:   "reg-1",
		Status:       domain.StatusClosed,
		ClosingTotal: 812.40,
		ClosedAt:     &closedAt,
	}
	store, bus := newTestStore(&fakeService{closeRecord: closed})
	store.sessions = []domain.Session{
		{ID: 4, RegisterID: "reg-2", Status: domain.StatusOpen},
		{ID: 10, RegisterID: "reg-1", Status: domain.StatusOpen, OpenedBy: "ana", OpeningFloat: 150},
	}

	var seen []events.SessionClosed
	bus.Subscribe(events.TopicSessionClosed, func(_ context.Context, payload any) {
		seen = append(seen, payload.(events.SessionClosed))
	})

	result := store.Close(context.Background(), domain.CloseRequest{SessionID: 10, ClosingTotal: 812.40})

	require.True(t, result.Success)
	snap := store.Snapshot()
	require.Len(t, snap.Sessions, 2)
	// same position, but the open-time fields must be gone entirely
	assert.EqualValues(t, 10, snap.Sessions[1].ID)
	assert.Equal(t, domain.StatusClosed, snap.Sessions[1].Status)
	assert.Empty(t, snap.Sessions[1].OpenedBy)
	assert.Zero(t, snap.Sessions[1].OpeningFloat)

	require.Len(t, seen, 1)
	assert.Equal(t, "reg-1", seen[0].RegisterID)
	assert.EqualValues(t, 10, seen[0].SessionID)
}

func TestOpenFailureSetsError(t *testing.T) {
	store, _ := newTestStore(&fakeService{openErr: errors.New("Register not found")})

	result := store.Open(context.Background(), domain.OpenRequest{})

	assert.False(t, result.Success)
	assert.Equal(t, "Register not found", result.Err)
	snap := store.Snapshot()
	assert.Empty(t, snap.Sessions)
	assert.Equal(t, "Register not found", snap.Error)
}

func TestOpenSessionsSelector(t *testing.T) {
	store, _ := newTestStore(&fakeService{})
	store.sessions = []domain.Session{
		{ID: 1, Status: domain.StatusOpen},
		{ID: 2, Status: domain.StatusClosed},
		{ID: 3, Status: domain.StatusOpen},
	}

	open := store.OpenSessions()

	require.Len(t, open, 2)
	assert.EqualValues(t, 1, open[0].ID)
	assert.EqualValues(t, 3, open[1].ID)
}

func TestRegisterHistoryKeysAreIsolated(t *testing.T) {
	svc := &fakeService{listBody: []domain.Session{{ID: 1, RegisterID: "reg-1"}}}
	store, _ := newTestStore(svc)

	result := store.FetchRegisterHistory(context.Background(), "reg-1", 0, 0)
	require.True(t, result.Success)

	_, ok := store.RegisterHistory("reg-1")
	assert.True(t, ok)
	_, ok = store.RegisterHistory("reg-2")
	assert.False(t, ok)
}
