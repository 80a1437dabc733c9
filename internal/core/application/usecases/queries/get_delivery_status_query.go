// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS architecture.
package queries

import (
	"errors"

	"coldchain/internal/pkg/guard"
)

var ErrGetDeliveryStatusQueryIsNotConstructed = errors.New(
	"GetDeliveryStatusQuery must be created via NewGetDeliveryStatusQuery constructor",
)

// GetDeliveryStatusQuery retrieves the full delivery picture for display:
// the current route polyline, the vehicle pose, every stop with its state,
// and the per-shipment stability countdowns.
//
// Example:
//
//	query := NewGetDeliveryStatusQuery()
//	handler := NewGetDeliveryStatusQueryHandler(db, board, registry, 8.0)
//
//	status, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to get delivery status: %w", err)
//	}
//	fmt.Printf("ETA %s, %s to go\n", status.EtaText, status.RemainingDistanceText)
type GetDeliveryStatusQuery struct {
	guard guard.ConstructorGuard
}

// NewGetDeliveryStatusQuery creates a query to retrieve the delivery status.
// This is a parameterless query covering the whole active run.
func NewGetDeliveryStatusQuery() GetDeliveryStatusQuery {
	return GetDeliveryStatusQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetDeliveryStatusQueryIsNotConstructed if validation fails.
func (q GetDeliveryStatusQuery) Validate() error {
	return q.guard.Validate(ErrGetDeliveryStatusQueryIsNotConstructed)
}

// GeoPointResponse is one vertex of the route polyline.
type GeoPointResponse struct {
	Lat float64
	Lon float64
}

// VehicleResponse is the vehicle pose at query time.
type VehicleResponse struct {
	Lat       float64
	Lon       float64
	Bearing   float64
	PathIndex int
}

// StopResponse is one stop of the run with its lifecycle state.
type StopResponse struct {
	ID       string
	NodeID   string
	Kind     string
	Status   string
	Sequence int
	Lat      float64
	Lon      float64
	OrderID  string
}

// ShipmentResponse is the stability countdown view of one order.
// RemainingText falls back to "unknown" for orders the stability server
// never configured.
type ShipmentResponse struct {
	OrderID       string
	Status        string
	RemainingText string
	InExcursion   bool
}

// GetDeliveryStatusResponse aggregates the whole delivery picture.
// Before the first route is published the polyline is empty and the
// movement texts read "unknown".
type GetDeliveryStatusResponse struct {
	Polyline              []GeoPointResponse
	Vehicle               VehicleResponse
	Stops                 []StopResponse
	Shipments             []ShipmentResponse
	EtaText               string
	RemainingDistanceText string
}
