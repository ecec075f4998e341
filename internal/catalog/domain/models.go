package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/tilldesk/internal/storekit"
)

// Product is the catalog view of one sellable item.
type Product struct {
	ID        string    `json:"id" gorm:"primaryKey;type:text"`
	Name      string    `json:"name" gorm:"type:text;not null"`
	SKU       string    `json:"sku" gorm:"type:text;index"`
	Price     float64   `json:"price" gorm:"not null"`
	Unit      string    `json:"unit,omitempty" gorm:"type:text"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`
}

func (Product) TableName() string { return "demo_products" }

// CachedProduct pairs a product with the origin of the fetch that
// populated the cache entry, so a hit reports how the data was obtained.
type CachedProduct struct {
	Product Product         `json:"product"`
	Origin  storekit.Origin `json:"origin"`
}

// Service fetches catalog entries from the platform API.
type Service interface {
	Product(ctx context.Context, id string) (*Product, storekit.Origin, error)
}

var ErrMissingProduct = errors.New("product id is required")
