package fallback

import (
	"context"
	"errors"

	catalogdomain "github.com/smallbiznis/tilldesk/internal/catalog/domain"
	referencedomain "github.com/smallbiznis/tilldesk/internal/reference/domain"
	"gorm.io/gorm"
)

// ErrProductNotFound mirrors the platform's unknown-product error.
var ErrProductNotFound = errors.New("product not found")

// PaymentMethods lists the demo tender types.
func (s *Store) PaymentMethods(ctx context.Context) ([]referencedomain.PaymentMethod, error) {
	var records []referencedomain.PaymentMethod
	err := s.db.WithContext(ctx).Order("code").Find(&records).Error
	return records, err
}

// Currencies lists the demo currencies.
func (s *Store) Currencies(ctx context.Context) ([]referencedomain.Currency, error) {
	var records []referencedomain.Currency
	err := s.db.WithContext(ctx).Order("code").Find(&records).Error
	return records, err
}

// Product reads one demo catalog entry.
func (s *Store) Product(ctx context.Context, id string) (*catalogdomain.Product, error) {
	var record catalogdomain.Product
	err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}
