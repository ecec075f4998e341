package fallback

import (
	"context"
	"time"

	domain "github.com/smallbiznis/tilldesk/internal/inventory/domain"
)

// CreateInventoryCount synthesizes a created count record.
func (s *Store) CreateInventoryCount(ctx context.Context, req domain.CreateRequest) (*domain.Count, error) {
	record := &domain.Count{
		ID:        s.genID.Generate().Int64(),
		ProductID: req.ProductID,
		Location:  req.Location,
		Expected:  req.Expected,
		Counted:   req.Counted,
		Variance:  req.Counted - req.Expected,
		CountedBy: req.CountedBy,
		Note:      req.Note,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// InventoryCountsByLocation lists demo counts for one location.
func (s *Store) InventoryCountsByLocation(ctx context.Context, location string, limit, offset int) ([]domain.Count, error) {
	var records []domain.Count
	err := s.db.WithContext(ctx).
		Where("location = ?", location).
		Order("created_at DESC").
		Limit(normalizeLimit(limit)).
		Offset(offset).
		Find(&records).Error
	return records, err
}

// RecentInventoryCounts lists demo counts since the cutoff.
func (s *Store) RecentInventoryCounts(ctx context.Context, since time.Time, limit int) ([]domain.Count, error) {
	var records []domain.Count
	err := s.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Order("created_at DESC").
		Limit(normalizeLimit(limit)).
		Find(&records).Error
	return records, err
}
