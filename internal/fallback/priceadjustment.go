package fallback

import (
	"context"
	"time"

	domain "github.com/smallbiznis/tilldesk/internal/priceadjustment/domain"
)

// CreatePriceAdjustment synthesizes a locally-plausible created record:
// the previous price comes from the demo catalog when known, and the
// catalog row is updated so later fallback reads stay consistent.
func (s *Store) CreatePriceAdjustment(ctx context.Context, req domain.CreateRequest) (*domain.Adjustment, error) {
	oldPrice := 0.0
	productName := ""
	var product struct {
		Name  string
		Price float64
	}
	err := s.db.WithContext(ctx).
		Table("demo_products").
		Select("name", "price").
		Where("id = ?", req.ProductID).
		Scan(&product).Error
	if err == nil {
		oldPrice = product.Price
		productName = product.Name
	}

	record := &domain.Adjustment{
		ID:            s.genID.Generate().Int64(),
		ProductID:     req.ProductID,
		ProductName:   productName,
		OldPrice:      oldPrice,
		NewPrice:      req.NewPrice,
		PriceChange:   req.NewPrice - oldPrice,
		PercentChange: percentChange(req.NewPrice-oldPrice, oldPrice, 0),
		Reason:        req.Reason,
		Unit:          req.Unit,
		AdjustedBy:    req.AdjustedBy,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}

	s.db.WithContext(ctx).
		Table("demo_products").
		Where("id = ?", req.ProductID).
		Updates(map[string]any{"price": req.NewPrice, "updated_at": record.CreatedAt})

	return record, nil
}

// PriceAdjustmentsByProduct lists the demo history for one product.
func (s *Store) PriceAdjustmentsByProduct(ctx context.Context, productID string, limit, offset int) ([]domain.Adjustment, error) {
	var records []domain.Adjustment
	err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Limit(normalizeLimit(limit)).
		Offset(offset).
		Find(&records).Error
	return records, err
}

// RecentPriceAdjustments lists demo adjustments since the cutoff.
func (s *Store) RecentPriceAdjustments(ctx context.Context, since time.Time, limit int) ([]domain.Adjustment, error) {
	var records []domain.Adjustment
	err := s.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Order("created_at DESC").
		Limit(normalizeLimit(limit)).
		Find(&records).Error
	return records, err
}

// PriceAdjustmentsInRange lists demo adjustments inside a period,
// optionally narrowed to one product.
func (s *Store) PriceAdjustmentsInRange(ctx context.Context, query domain.DateRangeQuery) ([]domain.Adjustment, error) {
	tx := s.db.WithContext(ctx).
		Where("created_at >= ? AND created_at <= ?", query.Start, query.End)
	if query.ProductID != "" {
		tx = tx.Where("product_id = ?", query.ProductID)
	}

	var records []domain.Adjustment
	err := tx.Order("created_at DESC").
		Limit(normalizeLimit(query.Limit)).
		Offset(query.Offset).
		Find(&records).Error
	return records, err
}

func percentChange(change, oldValue, provided float64) float64 {
	if oldValue == 0 {
		return provided
	}
	return change / oldValue * 100
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	return limit
}
