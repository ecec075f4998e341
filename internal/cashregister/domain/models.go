package domain

import "time"

// SessionStatus is the lifecycle state of a register session.
type SessionStatus string

const (
	StatusOpen   SessionStatus = "OPEN"
	StatusClosed SessionStatus = "CLOSED"
)

// Session is one cash-register shift: opened with a float, closed with a
// counted total. Closing replaces the whole record; the console never
// patches a session field in place.
type Session struct {
	ID            int64         `json:"id" gorm:"primaryKey"`
	RegisterID    string        `json:"register_id" gorm:"type:text;not null;index"`
	OpenedBy      string        `json:"opened_by,omitempty" gorm:"type:text"`
	OpeningFloat  float64       `json:"opening_float" gorm:"not null"`
	ClosingTotal  float64       `json:"closing_total"`
	ExpectedTotal float64       `json:"expected_total"`
	Overage       float64       `json:"overage"`
	Status        SessionStatus `json:"status" gorm:"type:text;not null"`
	OpenedAt      time.Time     `json:"opened_at" gorm:"not null;index"`
	ClosedAt      *time.Time    `json:"closed_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at" gorm:"not null"`
}

func (Session) TableName() string { return "demo_register_sessions" }

// OpenRequest starts a register session.
type OpenRequest struct {
	RegisterID   string  `json:"register_id"`
	OpenedBy     string  `json:"opened_by,omitempty"`
	OpeningFloat float64 `json:"opening_float"`
}

// CloseRequest ends a register session.
type CloseRequest struct {
	SessionID    int64   `json:"session_id"`
	ClosingTotal float64 `json:"closing_total"`
}
