package stoprepo

import (
	"context"
	"errors"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/stop"
	"coldchain/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormStopRepository implements StopRepository using GORM.
type GormStopRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormStopRepository creates a new GORM stop repository.
func NewGormStopRepository(db *gorm.DB, tracker aggregateTracker) *GormStopRepository {
	return &GormStopRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new stop to the database.
func (r *GormStopRepository) Add(ctx context.Context, aggregate *stop.Stop) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing stop to the database.
func (r *GormStopRepository) Update(ctx context.Context, aggregate *stop.Stop) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&StopDTO{}).Where("id = ?", dto.ID).Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves a stop by ID.
func (r *GormStopRepository) Get(ctx context.Context, id kernel.UUID) (*stop.Stop, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto StopDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("stop", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetByOrderID retrieves the patient stop carrying the given order.
func (r *GormStopRepository) GetByOrderID(ctx context.Context, orderID kernel.UUID) (*stop.Stop, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dto StopDTO
	if err := r.db.WithContext(ctx).First(&dto, "order_id = ?", orderID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("stop by order", orderID.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAllPending retrieves the stops still awaiting delivery in sequence order.
func (r *GormStopRepository) GetAllPending(ctx context.Context) ([]*stop.Stop, error) {
	return r.find(ctx, r.db.WithContext(ctx).Where("status = ?", int(stop.Pending)))
}

// GetAll retrieves every stop in sequence order, depot anchors included.
func (r *GormStopRepository) GetAll(ctx context.Context) ([]*stop.Stop, error) {
	return r.find(ctx, r.db.WithContext(ctx))
}

func (r *GormStopRepository) find(ctx context.Context, tx *gorm.DB) ([]*stop.Stop, error) {
	var dtos []StopDTO
	if err := tx.WithContext(ctx).Order("sequence").Find(&dtos).Error; err != nil {
		return nil, err
	}

	stops := make([]*stop.Stop, 0, len(dtos))
	for _, dto := range dtos {
		s, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		stops = append(stops, s)
	}

	return stops, nil
}
