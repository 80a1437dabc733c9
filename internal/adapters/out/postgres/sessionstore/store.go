// Package sessionstore provides the GORM-backed durable store for stability
// session records. One row per order holds exactly the state needed to
// bridge a process restart: the accumulated excursion seconds, the
// in-excursion flag, and the wall time the record was written.
package sessionstore

import (
	"context"
	"errors"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionRecordDTO represents the database structure for persisting session records.
type SessionRecordDTO struct {
	OrderID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	ElapsedSeconds     int64
	InExcursion        bool
	SavedAtEpochMillis int64
}

// TableName specifies the database table name for session records.
func (SessionRecordDTO) TableName() string {
	return "session_records"
}

// GormSessionStore implements SessionStore using GORM.
type GormSessionStore struct {
	db *gorm.DB
}

// NewGormSessionStore creates a new GORM session store.
func NewGormSessionStore(db *gorm.DB) *GormSessionStore {
	return &GormSessionStore{db: db}
}

// Get returns the persisted record for an order. A missing row reports
// found=false without an error.
func (s *GormSessionStore) Get(ctx context.Context, orderID kernel.UUID) (ports.SessionRecord, bool, error) {
	if err := orderID.Validate(); err != nil {
		return ports.SessionRecord{}, false, err
	}

	var dto SessionRecordDTO
	if err := s.db.WithContext(ctx).First(&dto, "order_id = ?", orderID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.SessionRecord{}, false, nil
		}
		return ports.SessionRecord{}, false, err
	}

	return ports.SessionRecord{
		ElapsedSeconds:     dto.ElapsedSeconds,
		InExcursion:        dto.InExcursion,
		SavedAtEpochMillis: dto.SavedAtEpochMillis,
	}, true, nil
}

// Set durably writes the record for an order, replacing any previous one.
func (s *GormSessionStore) Set(ctx context.Context, orderID kernel.UUID, record ports.SessionRecord) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	dto := SessionRecordDTO{
		OrderID:            orderID.Bytes(),
		ElapsedSeconds:     record.ElapsedSeconds,
		InExcursion:        record.InExcursion,
		SavedAtEpochMillis: record.SavedAtEpochMillis,
	}

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			UpdateAll: true,
		}).
		Create(&dto).Error
}

// Delete removes the record for an order. Deleting a missing record is a no-op.
func (s *GormSessionStore) Delete(ctx context.Context, orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Delete(&SessionRecordDTO{}, "order_id = ?", orderID.Bytes()).Error
}
