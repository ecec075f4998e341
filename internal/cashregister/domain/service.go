package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/tilldesk/internal/storekit"
)

// Service brokers cash-register sessions against the platform API.
type Service interface {
	Open(ctx context.Context, req OpenRequest) (*Session, storekit.Origin, error)
	Close(ctx context.Context, req CloseRequest) (*Session, storekit.Origin, error)
	ListByRegister(ctx context.Context, registerID string, limit, offset int) ([]Session, storekit.Origin, error)
	Recent(ctx context.Context, days, limit int) ([]Session, storekit.Origin, error)
}

var (
	ErrMissingRegister      = errors.New("register_id is required")
	ErrNegativeOpeningFloat = errors.New("opening_float must not be negative")
	ErrInvalidSession       = errors.New("session_id must be positive")
	ErrNegativeClosingTotal = errors.New("closing_total must not be negative")
)
