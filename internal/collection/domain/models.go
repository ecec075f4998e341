package domain

import "time"

// Collection is a receivable collected from a customer, usually against
// an outstanding invoice.
type Collection struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	CustomerID  string    `json:"customer_id" gorm:"type:text;not null;index"`
	InvoiceRef  string    `json:"invoice_ref,omitempty" gorm:"type:text"`
	Amount      float64   `json:"amount" gorm:"not null"`
	Method      string    `json:"method" gorm:"type:text;not null"`
	Currency    string    `json:"currency,omitempty" gorm:"type:text"`
	CollectedBy string    `json:"collected_by,omitempty" gorm:"type:text"`
	Note        string    `json:"note,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null;index"`
}

func (Collection) TableName() string { return "demo_sales_collections" }

// CreateRequest records a collection from a customer.
type CreateRequest struct {
	CustomerID  string  `json:"customer_id"`
	InvoiceRef  string  `json:"invoice_ref,omitempty"`
	Amount      float64 `json:"amount"`
	Method      string  `json:"method"`
	Currency    string  `json:"currency,omitempty"`
	CollectedBy string  `json:"collected_by,omitempty"`
	Note        string  `json:"note,omitempty"`
}
