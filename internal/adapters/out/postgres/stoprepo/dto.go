// Package stoprepo provides data transfer objects and mapping functions for stop persistence.
// This package implements the repository pattern for the stop domain aggregate, handling
// the conversion between domain entities and database representations.
package stoprepo

import (
	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/stop"

	"github.com/google/uuid"
)

// StopDTO represents the database structure for persisting stop aggregates.
// Maps stop domain entities to relational database tables with proper indexing
// for efficient querying by status, order and sequence position.
type StopDTO struct {
	ID       uuid.UUID   `gorm:"type:uuid;primaryKey"`
	NodeID   string      `gorm:"index"`
	Kind     int         `gorm:"type:smallint"`
	OrderID  *uuid.UUID  `gorm:"type:uuid;index"`
	Sequence int         `gorm:"index"`
	Status   int         `gorm:"type:smallint;index"`
	Position GeoPointDTO `gorm:"embedded"`
}

// TableName specifies the database table name for stop entities.
// Overrides GORM's default naming convention to use "stops".
func (StopDTO) TableName() string {
	return "stops"
}

// GeoPointDTO represents the embedded geographic position within the stop table.
type GeoPointDTO struct {
	Lat float64 `gorm:"type:double precision"`
	Lon float64 `gorm:"type:double precision"`
}

// fromDomain converts a stop domain aggregate to its database representation.
// Maps all stop attributes including the optional order assignment.
func fromDomain(aggregate *stop.Stop) StopDTO {
	var orderID *uuid.UUID
	if id := aggregate.OrderID(); id != nil {
		raw := id.Bytes()
		orderID = &raw
	}

	return StopDTO{
		ID:       aggregate.ID().Bytes(),
		NodeID:   aggregate.NodeID(),
		Kind:     int(aggregate.Kind()),
		OrderID:  orderID,
		Sequence: aggregate.Sequence(),
		Status:   int(aggregate.Status()),
		Position: GeoPointDTO{
			Lat: aggregate.Position().Lat(),
			Lon: aggregate.Position().Lon(),
		},
	}
}

// toDomain converts a database DTO to a stop domain aggregate.
// Reconstructs the complete aggregate including its persisted status using RestoreStop.
func toDomain(dto StopDTO) (*stop.Stop, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var orderID *kernel.UUID
	if dto.OrderID != nil {
		oID, orderErr := kernel.UUIDFromBytes((*dto.OrderID)[:])
		if orderErr != nil {
			return nil, orderErr
		}

		orderID = &oID
	}

	position, err := kernel.NewGeoPoint(dto.Position.Lat, dto.Position.Lon)
	if err != nil {
		return nil, err
	}

	return stop.RestoreStop(id, dto.NodeID, position, stop.Kind(dto.Kind), orderID, dto.Sequence, stop.Status(dto.Status))
}
