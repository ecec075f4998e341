package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/tilldesk/internal/storekit"
)

// Service brokers sales collections against the platform API.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Collection, storekit.Origin, error)
	ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]Collection, storekit.Origin, error)
	Recent(ctx context.Context, days, limit int) ([]Collection, storekit.Origin, error)
}

var (
	ErrMissingCustomer = errors.New("customer_id is required")
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrMissingMethod   = errors.New("method is required")
)
