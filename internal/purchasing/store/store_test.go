package store

import (
	"context"
	"errors"
	"testing"

	"github.com/smallbiznis/tilldesk/internal/purchasing/domain"
	"github.com/smallbiznis/tilldesk/internal/storekit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeService struct {
	paymentRecord *domain.Payment
	paymentErr    error
	ordersBody    []domain.Order
	ordersErr     error
	paymentsBody  []domain.Payment
	paymentsErr   error
}

func (f *fakeService) CreatePayment(context.Context, domain.CreatePaymentRequest) (*domain.Payment, storekit.Origin, error) {
	if f.paymentErr != nil {
		return nil, storekit.OriginReal, f.paymentErr
	}
	return f.paymentRecord, storekit.OriginReal, nil
}

func (f *fakeService) ListOrders(context.Context, int, int) ([]domain.Order, storekit.Origin, error) {
	if f.ordersErr != nil {
		return nil, storekit.OriginReal, f.ordersErr
	}
	return f.ordersBody, storekit.OriginReal, nil
}

func (f *fakeService) PaymentsByOrder(context.Context, int64, int, int) ([]domain.Payment, storekit.Origin, error) {
	if f.paymentsErr != nil {
		return nil, storekit.OriginReal, f.paymentsErr
	}
	return f.paymentsBody, storekit.OriginReal, nil
}

func newTestStore(svc domain.Service) *Store {
	return New(Params{Log: zap.NewNop(), Svc: svc})
}

func TestCreatePaymentMergesIntoCachedOrder(t *testing.T) {
	svc := &fakeService{
		paymentsBody:  []domain.Payment{{ID: 1, OrderID: 9, Amount: 100}},
		paymentRecord: &domain.Payment{ID: 2, OrderID: 9, Amount: 50},
	}
	store := newTestStore(svc)

	require.True(t, store.FetchOrderPayments(context.Background(), 9, 0, 0).Success)

	result := store.CreatePayment(context.Background(), domain.CreatePaymentRequest{OrderID: 9, Amount: 50, Method: "bank_transfer"})
	require.True(t, result.Success)

	entry, ok := store.OrderPayments(9)
	require.True(t, ok)
	require.Len(t, entry.Records, 2)
	assert.EqualValues(t, 2, entry.Records[0].ID)
}

func TestCreatePaymentWithoutCachedOrderLeavesCacheEmpty(t *testing.T) {
	svc := &fakeService{paymentRecord: &domain.Payment{ID: 2, OrderID: 9, Amount: 50}}
	store := newTestStore(svc)

	result := store.CreatePayment(context.Background(), domain.CreatePaymentRequest{OrderID: 9, Amount: 50, Method: "cash"})

	require.True(t, result.Success)
	_, ok := store.OrderPayments(9)
	assert.False(t, ok)
}

func TestCreatePaymentFailureSetsError(t *testing.T) {
	store := newTestStore(&fakeService{paymentErr: errors.New("Order not found")})

	result := store.CreatePayment(context.Background(), domain.CreatePaymentRequest{})

	assert.False(t, result.Success)
	assert.Equal(t, "Order not found", result.Err)
	assert.Equal(t, "Order not found", store.Snapshot().Error)
}

func TestOutstandingOrdersSkipsSettled(t *testing.T) {
	svc := &fakeService{}
	store := newTestStore(svc)
	store.orders = []domain.Order{
		{ID: 1, Total: 100, Status: domain.OrderOpen},
		{ID: 2, Total: 100, Status: domain.OrderPaid},
		{ID: 3, Total: 100, Status: domain.OrderCanceled},
		{ID: 4, Total: 100, Status: domain.OrderPartial},
	}

	// order 4's cached payments already cover its total
	svc.paymentsBody = []domain.Payment{{ID: 10, OrderID: 4, Amount: 60}, {ID: 11, OrderID: 4, Amount: 40}}
	require.True(t, store.FetchOrderPayments(context.Background(), 4, 0, 0).Success)

	outstanding := store.OutstandingOrders()

	require.Len(t, outstanding, 1)
	assert.EqualValues(t, 1, outstanding[0].ID)
}

func TestFetchOrdersReplacesList(t *testing.T) {
	svc := &fakeService{ordersBody: []domain.Order{{ID: 5, Status: domain.OrderOpen}}}
	store := newTestStore(svc)
	store.orders = []domain.Order{{ID: 1}}

	result := store.FetchOrders(context.Background(), 0, 0)

	require.True(t, result.Success)
	snap := store.Snapshot()
	require.Len(t, snap.Orders, 1)
	assert.EqualValues(t, 5, snap.Orders[0].ID)
}
