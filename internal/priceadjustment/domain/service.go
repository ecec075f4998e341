package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/tilldesk/internal/storekit"
)

// Service brokers price-adjustment operations against the platform API,
// with an optional demo-dataset fallback once retries are exhausted.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Adjustment, storekit.Origin, error)
	ProductHistory(ctx context.Context, productID string, limit, offset int) ([]Adjustment, storekit.Origin, error)
	Recent(ctx context.Context, days, limit int) ([]Adjustment, storekit.Origin, error)
	DateRange(ctx context.Context, query DateRangeQuery) ([]Adjustment, storekit.Origin, error)
}

// Validation failures name the offending field and constraint; they are
// raised before any network attempt.
var (
	ErrMissingProduct  = errors.New("product_id is required")
	ErrInvalidNewPrice = errors.New("new_price must be positive")
	ErrMissingReason   = errors.New("reason is required")
	ErrReasonTooLong   = errors.New("reason must be 500 characters or fewer")
	ErrMissingRange    = errors.New("start_date and end_date are required")
	ErrInvalidRange    = errors.New("start_date must not be after end_date")
)
