package domain

import (
	"time"

	"gorm.io/datatypes"
)

// MaxReasonLength bounds the free-text reason on a price adjustment.
const MaxReasonLength = 500

// Adjustment is one price change as the console sees it. The platform
// assigns the identifier; the console never mutates a record in place.
type Adjustment struct {
	ID            int64             `json:"id" gorm:"primaryKey"`
	ProductID     string            `json:"product_id" gorm:"type:text;not null;index"`
	ProductName   string            `json:"product_name" gorm:"type:text"`
	OldPrice      float64           `json:"old_price" gorm:"not null"`
	NewPrice      float64           `json:"new_price" gorm:"not null"`
	PriceChange   float64           `json:"price_change" gorm:"not null"`
	PercentChange float64           `json:"percent_change" gorm:"not null"`
	Reason        string            `json:"reason" gorm:"type:text;not null"`
	Unit          string            `json:"unit,omitempty" gorm:"type:text"`
	AdjustedBy    string            `json:"adjusted_by,omitempty" gorm:"type:text"`
	Metadata      datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt     time.Time         `json:"created_at" gorm:"not null;index"`
}

func (Adjustment) TableName() string { return "demo_price_adjustments" }

// CreateRequest describes a new price adjustment.
type CreateRequest struct {
	ProductID  string         `json:"product_id"`
	NewPrice   float64        `json:"new_price"`
	Reason     string         `json:"reason"`
	Unit       string         `json:"unit,omitempty"`
	AdjustedBy string         `json:"adjusted_by,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// DateRangeQuery filters adjustments by period; ProductID is optional.
type DateRangeQuery struct {
	Start     time.Time
	End       time.Time
	ProductID string
	Limit     int
	Offset    int
}
