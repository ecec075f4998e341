package fallback

import (
	"context"
	"errors"
	"time"

	domain "github.com/smallbiznis/tilldesk/internal/cashregister/domain"
	"gorm.io/gorm"
)

// ErrSessionNotFound mirrors the platform's close-unknown-session error.
var ErrSessionNotFound = errors.New("register session not found")

// OpenRegisterSession synthesizes an opened session.
func (s *Store) OpenRegisterSession(ctx context.Context, req domain.OpenRequest) (*domain.Session, error) {
	now := time.Now().UTC()
	record := &domain.Session{
		ID:           s.genID.Generate().Int64(),
		RegisterID:   req.RegisterID,
		OpenedBy:     req.OpenedBy,
		OpeningFloat: req.OpeningFloat,
		Status:       domain.StatusOpen,
		OpenedAt:     now,
		CreatedAt:    now,
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// CloseRegisterSession closes a demo session by whole-record replacement.
func (s *Store) CloseRegisterSession(ctx context.Context, req domain.CloseRequest) (*domain.Session, error) {
	var record domain.Session
	err := s.db.WithContext(ctx).First(&record, "id = ?", req.SessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record.ClosingTotal = req.ClosingTotal
	record.Overage = req.ClosingTotal - record.ExpectedTotal
	record.Status = domain.StatusClosed
	record.ClosedAt = &now
	if err := s.db.WithContext(ctx).Save(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// RegisterSessionsByRegister lists demo sessions for one register.
func (s *Store) RegisterSessionsByRegister(ctx context.Context, registerID string, limit, offset int) ([]domain.Session, error) {
	var records []domain.Session
	err := s.db.WithContext(ctx).
		Where("register_id = ?", registerID).
		Order("opened_at DESC").
		Limit(normalizeLimit(limit)).
		Offset(offset).
		Find(&records).Error
	return records, err
}

// RecentRegisterSessions lists demo sessions opened since the cutoff.
func (s *Store) RecentRegisterSessions(ctx context.Context, since time.Time, limit int) ([]domain.Session, error) {
	var records []domain.Session
	err := s.db.WithContext(ctx).
		Where("opened_at >= ?", since).
		Order("opened_at DESC").
		Limit(normalizeLimit(limit)).
		Find(&records).Error
	return records, err
}
