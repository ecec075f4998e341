package domain

import (
	"context"

	"github.com/smallbiznis/tilldesk/internal/storekit"
)

// PaymentMethod is platform reference data for tender types.
type PaymentMethod struct {
	Code   string `json:"code" gorm:"primaryKey;type:text"`
	Name   string `json:"name" gorm:"type:text;not null"`
	Kind   string `json:"kind" gorm:"type:text"`
	Active bool   `json:"active" gorm:"not null"`
}

func (PaymentMethod) TableName() string { return "demo_payment_methods" }

// Currency is platform reference data for accepted currencies.
type Currency struct {
	Code     string `json:"code" gorm:"primaryKey;type:text"`
	Name     string `json:"name" gorm:"type:text;not null"`
	Symbol   string `json:"symbol,omitempty" gorm:"type:text"`
	Decimals int    `json:"decimals" gorm:"not null"`
}

func (Currency) TableName() string { return "demo_currencies" }

// Service fetches reference data from the platform API.
type Service interface {
	PaymentMethods(ctx context.Context) ([]PaymentMethod, storekit.Origin, error)
	Currencies(ctx context.Context) ([]Currency, storekit.Origin, error)
}
