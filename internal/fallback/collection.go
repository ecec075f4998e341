package fallback

import (
	"context"
	"time"

	domain "github.com/smallbiznis/tilldesk/internal/collection/domain"
)

// CreateCollection synthesizes a collected-payment record.
func (s *Store) CreateCollection(ctx context.Context, req domain.CreateRequest) (*domain.Collection, error) {
	record := &domain.Collection{
		ID:          s.genID.Generate().Int64(),
		CustomerID:  req.CustomerID,
		InvoiceRef:  req.InvoiceRef,
		Amount:      req.Amount,
		Method:      req.Method,
		Currency:    req.Currency,
		CollectedBy: req.CollectedBy,
		Note:        req.Note,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// CollectionsByCustomer lists demo collections for one customer.
func (s *Store) CollectionsByCustomer(ctx context.Context, customerID string, limit, offset int) ([]domain.Collection, error) {
	var records []domain.Collection
	err := s.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Limit(normalizeLimit(limit)).
		Offset(offset).
		Find(&records).Error
	return records, err
}

// RecentCollections lists demo collections since the cutoff.
func (s *Store) RecentCollections(ctx context.Context, since time.Time, limit int) ([]domain.Collection, error) {
	var records []domain.Collection
	err := s.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Order("created_at DESC").
		Limit(normalizeLimit(limit)).
		Find(&records).Error
	return records, err
}
