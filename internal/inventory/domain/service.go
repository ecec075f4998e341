package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/tilldesk/internal/storekit"
)

// Service brokers inventory-count operations against the platform API.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Count, storekit.Origin, error)
	ListByLocation(ctx context.Context, location string, limit, offset int) ([]Count, storekit.Origin, error)
	Recent(ctx context.Context, days, limit int) ([]Count, storekit.Origin, error)
}

var (
	ErrMissingProduct   = errors.New("product_id is required")
	ErrMissingLocation  = errors.New("location is required")
	ErrNegativeCounted  = errors.New("counted must not be negative")
	ErrNegativeExpected = errors.New("expected must not be negative")
)
