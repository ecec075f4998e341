package fallback

import (
	"context"
	"time"

	cashregisterdomain "github.com/smallbiznis/tilldesk/internal/cashregister/domain"
	catalogdomain "github.com/smallbiznis/tilldesk/internal/catalog/domain"
	collectiondomain "github.com/smallbiznis/tilldesk/internal/collection/domain"
	inventorydomain "github.com/smallbiznis/tilldesk/internal/inventory/domain"
	priceadjustmentdomain "github.com/smallbiznis/tilldesk/internal/priceadjustment/domain"
	purchasingdomain "github.com/smallbiznis/tilldesk/internal/purchasing/domain"
	referencedomain "github.com/smallbiznis/tilldesk/internal/reference/domain"
)

// seedIfEmpty populates the demo dataset once. Records use fixed small
// IDs so demo walkthroughs are reproducible run to run.
func (s *Store) seedIfEmpty(ctx context.Context) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&catalogdomain.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC().Truncate(time.Hour)

	products := []catalogdomain.Product{
		{ID: "prod-espresso", Name: "Espresso Beans 1kg", SKU: "SKU-ESP-1", Price: 18.50, Unit: "bag", UpdatedAt: now},
		{ID: "prod-grinder", Name: "Burr Grinder", SKU: "SKU-GRD-1", Price: 129.00, Unit: "unit", UpdatedAt: now},
		{ID: "prod-cups", Name: "Paper Cups 12oz (50)", SKU: "SKU-CUP-12", Price: 6.20, Unit: "pack", UpdatedAt: now},
	}
	if err := s.db.WithContext(ctx).Create(&products).Error; err != nil {
		return err
	}

	adjustments := []priceadjustmentdomain.Adjustment{
		{ID: 1, ProductID: "prod-espresso", ProductName: "Espresso Beans 1kg", OldPrice: 17.00, NewPrice: 18.50, PriceChange: 1.50, PercentChange: 8.82, Reason: "supplier cost increase", CreatedAt: now.Add(-72 * time.Hour)},
		{ID: 2, ProductID: "prod-cups", ProductName: "Paper Cups 12oz (50)", OldPrice: 6.80, NewPrice: 6.20, PriceChange: -0.60, PercentChange: -8.82, Reason: "volume discount passed on", CreatedAt: now.Add(-48 * time.Hour)},
		{ID: 3, ProductID: "prod-espresso", ProductName: "Espresso Beans 1kg", OldPrice: 18.50, NewPrice: 18.50, PriceChange: 0, PercentChange: 0, Reason: "seasonal review, no change", CreatedAt: now.Add(-24 * time.Hour)},
	}
	if err := s.db.WithContext(ctx).Create(&adjustments).Error; err != nil {
		return err
	}

	counts := []inventorydomain.Count{
		{ID: 1, ProductID: "prod-espresso", Location: "main-floor", Expected: 40, Counted: 38, Variance: -2, CountedBy: "demo", CreatedAt: now.Add(-36 * time.Hour)},
		{ID: 2, ProductID: "prod-cups", Location: "storeroom", Expected: 120, Counted: 120, Variance: 0, CountedBy: "demo", CreatedAt: now.Add(-12 * time.Hour)},
	}
	if err := s.db.WithContext(ctx).Create(&counts).Error; err != nil {
		return err
	}

	closedAt := now.Add(-16 * time.Hour)
	sessions := []cashregisterdomain.Session{
		{ID: 1, RegisterID: "till-1", OpenedBy: "demo", OpeningFloat: 150, ClosingTotal: 1240.40, ExpectedTotal: 1238.00, Overage: 2.40, Status: cashregisterdomain.StatusClosed, OpenedAt: now.Add(-26 * time.Hour), ClosedAt: &closedAt, CreatedAt: now.Add(-26 * time.Hour)},
		{ID: 2, RegisterID: "till-1", OpenedBy: "demo", OpeningFloat: 150, Status: cashregisterdomain.StatusOpen, OpenedAt: now.Add(-2 * time.Hour), CreatedAt: now.Add(-2 * time.Hour)},
	}
	if err := s.db.WithContext(ctx).Create(&sessions).Error; err != nil {
		return err
	}

	orders := []purchasingdomain.Order{
		{ID: 1, SupplierID: "sup-roaster", Reference: "PO-1001", Total: 925.00, Currency: "USD", Status: purchasingdomain.OrderPartial, CreatedAt: now.Add(-96 * time.Hour)},
		{ID: 2, SupplierID: "sup-paper", Reference: "PO-1002", Total: 310.00, Currency: "USD", Status: purchasingdomain.OrderOpen, CreatedAt: now.Add(-20 * time.Hour)},
	}
	if err := s.db.WithContext(ctx).Create(&orders).Error; err != nil {
		return err
	}

	payments := []purchasingdomain.Payment{
		{ID: 1, OrderID: 1, SupplierID: "sup-roaster", Amount: 500.00, Method: "bank_transfer", Currency: "USD", PaidAt: now.Add(-70 * time.Hour), CreatedAt: now.Add(-70 * time.Hour)},
	}
	if err := s.db.WithContext(ctx).Create(&payments).Error; err != nil {
		return err
	}

	collections := []collectiondomain.Collection{
		{ID: 1, CustomerID: "cust-cafe-nine", InvoiceRef: "INV-2041", Amount: 420.00, Method: "card", Currency: "USD", CollectedBy: "demo", CreatedAt: now.Add(-40 * time.Hour)},
		{ID: 2, CustomerID: "cust-cafe-nine", InvoiceRef: "INV-2044", Amount: 180.00, Method: "cash", Currency: "USD", CollectedBy: "demo", CreatedAt: now.Add(-8 * time.Hour)},
	}
	if err := s.db.WithContext(ctx).Create(&collections).Error; err != nil {
		return err
	}

	methods := []referencedomain.PaymentMethod{
		{Code: "cash", Name: "Cash", Kind: "cash", Active: true},
		{Code: "card", Name: "Card", Kind: "card", Active: true},
		{Code: "bank_transfer", Name: "Bank Transfer", Kind: "transfer", Active: true},
		{Code: "store_credit", Name: "Store Credit", Kind: "credit", Active: false},
	}
	if err := s.db.WithContext(ctx).Create(&methods).Error; err != nil {
		return err
	}

	currencies := []referencedomain.Currency{
		{Code: "USD", Name: "US Dollar", Symbol: "$", Decimals: 2},
		{Code: "EUR", Name: "Euro", Symbol: "€", Decimals: 2},
		{Code: "IDR", Name: "Indonesian Rupiah", Symbol: "Rp", Decimals: 0},
	}
	return s.db.WithContext(ctx).Create(&currencies).Error
}
