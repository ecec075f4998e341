package fallback

import (
	"context"
	"time"

	domain "github.com/smallbiznis/tilldesk/internal/purchasing/domain"
)

// CreatePurchasePayment synthesizes a payment against a demo order.
func (s *Store) CreatePurchasePayment(ctx context.Context, req domain.CreatePaymentRequest) (*domain.Payment, error) {
	var order domain.Order
	supplierID := ""
	currency := req.Currency
	if err := s.db.WithContext(ctx).First(&order, "id = ?", req.OrderID).Error; err == nil {
		supplierID = order.SupplierID
		if currency == "" {
			currency = order.Currency
		}
	}

	now := time.Now().UTC()
	record := &domain.Payment{
		ID:         s.genID.Generate().Int64(),
		OrderID:    req.OrderID,
		SupplierID: supplierID,
		Amount:     req.Amount,
		Method:     req.Method,
		Currency:   currency,
		PaidAt:     now,
		CreatedAt:  now,
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// PurchaseOrders lists demo orders, newest first.
func (s *Store) PurchaseOrders(ctx context.Context, limit, offset int) ([]domain.Order, error) {
	var records []domain.Order
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(normalizeLimit(limit)).
		Offset(offset).
		Find(&records).Error
	return records, err
}

// PurchasePaymentsByOrder lists demo payments for one order.
func (s *Store) PurchasePaymentsByOrder(ctx context.Context, orderID int64, limit, offset int) ([]domain.Payment, error) {
	var records []domain.Payment
	err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Limit(normalizeLimit(limit)).
		Offset(offset).
		Find(&records).Error
	return records, err
}
