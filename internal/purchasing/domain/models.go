package domain

import "time"

// OrderStatus tracks a purchase order through its payment lifecycle.
type OrderStatus string

const (
	OrderOpen     OrderStatus = "OPEN"
	OrderPartial  OrderStatus = "PARTIALLY_PAID"
	OrderPaid     OrderStatus = "PAID"
	OrderCanceled OrderStatus = "CANCELED"
)

// Order is a purchase order raised against a supplier.
type Order struct {
	ID         int64       `json:"id" gorm:"primaryKey"`
	SupplierID string      `json:"supplier_id" gorm:"type:text;not null;index"`
	Reference  string      `json:"reference" gorm:"type:text;not null"`
	Total      float64     `json:"total" gorm:"not null"`
	Currency   string      `json:"currency" gorm:"type:text;not null"`
	Status     OrderStatus `json:"status" gorm:"type:text;not null"`
	CreatedAt  time.Time   `json:"created_at" gorm:"not null;index"`
}

func (Order) TableName() string { return "demo_purchase_orders" }

// Payment is money paid out against a purchase order.
type Payment struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	OrderID    int64     `json:"order_id" gorm:"not null;index"`
	SupplierID string    `json:"supplier_id" gorm:"type:text;index"`
	Amount     float64   `json:"amount" gorm:"not null"`
	Method     string    `json:"method" gorm:"type:text;not null"`
	Currency   string    `json:"currency" gorm:"type:text"`
	PaidAt     time.Time `json:"paid_at" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"not null;index"`
}

func (Payment) TableName() string { return "demo_purchase_payments" }

// CreatePaymentRequest records a payment against an order.
type CreatePaymentRequest struct {
	OrderID  int64   `json:"order_id"`
	Amount   float64 `json:"amount"`
	Method   string  `json:"method"`
	Currency string  `json:"currency,omitempty"`
}
