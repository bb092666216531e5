package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"delivery-options-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	SaveAuditRecord(ctx context.Context, rec *model.AuditRecord) error
	ListAuditRecords(ctx context.Context, sessionID string) ([]model.AuditRecord, error)
	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// SaveAuditRecord inserts an acknowledged persistence call.
func (s *gormStore) SaveAuditRecord(ctx context.Context, rec *model.AuditRecord) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to save audit record for session %s: %w", rec.SessionID, err)
	}
	return nil
}

// ListAuditRecords returns a session's records, oldest first.
func (s *gormStore) ListAuditRecords(ctx context.Context, sessionID string) ([]model.AuditRecord, error) {
	var records []model.AuditRecord
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("acknowledged_at, id").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list audit records for session %s: %w", sessionID, err)
	}
	return records, nil
}

// DB returns the underlying GORM DB instance.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}
