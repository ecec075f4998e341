package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/tilldesk/internal/storekit"
)

// Service brokers purchase orders and their payments against the
// platform API.
type Service interface {
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (*Payment, storekit.Origin, error)
	ListOrders(ctx context.Context, limit, offset int) ([]Order, storekit.Origin, error)
	PaymentsByOrder(ctx context.Context, orderID int64, limit, offset int) ([]Payment, storekit.Origin, error)
}

var (
	ErrInvalidOrder  = errors.New("order_id must be positive")
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrMissingMethod = errors.New("method is required")
)
