package domain

import "time"

// Count is one stock-count snapshot for a product at a location.
type Count struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	ProductID string    `json:"product_id" gorm:"type:text;not null;index"`
	Location  string    `json:"location" gorm:"type:text;not null;index"`
	Expected  int64     `json:"expected" gorm:"not null"`
	Counted   int64     `json:"counted" gorm:"not null"`
	Variance  int64     `json:"variance" gorm:"not null"`
	CountedBy string    `json:"counted_by,omitempty" gorm:"type:text"`
	Note      string    `json:"note,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;index"`
}

func (Count) TableName() string { return "demo_inventory_counts" }

// CreateRequest describes a new stock count.
type CreateRequest struct {
	ProductID string `json:"product_id"`
	Location  string `json:"location"`
	Expected  int64  `json:"expected"`
	Counted   int64  `json:"counted"`
	CountedBy string `json:"counted_by,omitempty"`
	Note      string `json:"note,omitempty"`
}
