package ports

import (
	"context"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/stop"
)

// StopRepository defines the persistence contract for stop aggregates.
type StopRepository interface {
	// Add persists a new stop aggregate to storage.
	Add(ctx context.Context, aggregate *stop.Stop) error

	// Update persists changes to an existing stop aggregate.
	Update(ctx context.Context, aggregate *stop.Stop) error

	// Get retrieves a stop aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*stop.Stop, error)

	// GetByOrderID retrieves the patient stop carrying the given order.
	GetByOrderID(ctx context.Context, orderID kernel.UUID) (*stop.Stop, error)

	// GetAllPending retrieves the stops still awaiting delivery, in their
	// externally computed sequence order.
	GetAllPending(ctx context.Context) ([]*stop.Stop, error)

	// GetAll retrieves every stop in sequence order, including the depot
	// anchors and settled stops.
	GetAll(ctx context.Context) ([]*stop.Stop, error)
}
