package queries

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/stability"
	"coldchain/internal/core/domain/model/stop"
	"coldchain/internal/core/domain/services"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetDeliveryStatusQueryHandler assembles the live delivery picture.
// Stops come from the database; the route, vehicle pose, and stability
// countdowns come from the in-memory board and session registry.
//
// Example:
//
//	handler := NewGetDeliveryStatusQueryHandler(db, board, registry, 8.0)
//	query := NewGetDeliveryStatusQuery()
//
//	status, err := handler.Handle(ctx, query)
//	if err != nil {
//	    log.Printf("Failed to get delivery status: %v", err)
//	    return err
//	}
type GetDeliveryStatusQueryHandler struct {
	db              *gorm.DB
	board           *services.RouteBoard
	registry        *services.SessionRegistry
	assumedSpeedMps float64
}

// NewGetDeliveryStatusQueryHandler creates a handler for delivery status queries.
// assumedSpeedMps is the speed used to estimate travel time over route legs
// without reported durations.
func NewGetDeliveryStatusQueryHandler(
	db *gorm.DB,
	board *services.RouteBoard,
	registry *services.SessionRegistry,
	assumedSpeedMps float64,
) GetDeliveryStatusQueryHandler {
	return GetDeliveryStatusQueryHandler{
		db:              db,
		board:           board,
		registry:        registry,
		assumedSpeedMps: assumedSpeedMps,
	}
}

// Handle executes the delivery status query.
// Returns the stops in sequence order, a stability countdown per order, and
// the current route with ETA and remaining distance texts. Before the first
// route is published the movement fields read "unknown".
func (h GetDeliveryStatusQueryHandler) Handle(
	ctx context.Context,
	query GetDeliveryStatusQuery,
) (GetDeliveryStatusResponse, error) {
	if err := query.Validate(); err != nil {
		return GetDeliveryStatusResponse{}, err
	}

	response := GetDeliveryStatusResponse{
		Polyline:              make([]GeoPointResponse, 0),
		Stops:                 make([]StopResponse, 0),
		Shipments:             make([]ShipmentResponse, 0),
		EtaText:               "unknown",
		RemainingDistanceText: "unknown",
	}

	if err := h.collectStops(ctx, &response); err != nil {
		return GetDeliveryStatusResponse{}, err
	}

	h.collectRoute(&response)

	return response, nil
}

// collectStops reads every stop in sequence order and derives the shipment
// countdown view for each order.
func (h GetDeliveryStatusQueryHandler) collectStops(ctx context.Context, response *GetDeliveryStatusResponse) error {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			node_id,
			kind,
			status,
			sequence,
			order_id,
			lat,
			lon
		FROM stops
		ORDER BY sequence
	`).Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id       uuid.UUID
			nodeID   string
			kind     int
			status   int
			sequence int
			orderID  uuid.NullUUID
			lat      float64
			lon      float64
		)

		if err = rows.Scan(&id, &nodeID, &kind, &status, &sequence, &orderID, &lat, &lon); err != nil {
			return err
		}

		stopResp := StopResponse{
			ID:       id.String(),
			NodeID:   nodeID,
			Kind:     stop.Kind(kind).String(),
			Status:   stop.Status(status).String(),
			Sequence: sequence,
			Lat:      lat,
			Lon:      lon,
		}

		if orderID.Valid {
			stopResp.OrderID = orderID.UUID.String()
			response.Shipments = append(response.Shipments, h.shipmentView(orderID.UUID.String()))
		}

		response.Stops = append(response.Stops, stopResp)
	}

	return rows.Err()
}

// shipmentView renders one order's countdown from its registered session.
// Orders without a session read "unknown".
func (h GetDeliveryStatusQueryHandler) shipmentView(orderID string) ShipmentResponse {
	view := ShipmentResponse{
		OrderID:       orderID,
		Status:        "Untracked",
		RemainingText: "unknown",
	}

	id, err := kernel.UUIDFromString(orderID)
	if err != nil {
		return view
	}

	err = h.registry.WithSession(id, func(s *stability.Session) error {
		view.Status = s.Status().String()
		view.RemainingText = formatRemaining(s.Remaining())
		view.InExcursion = s.InExcursion()
		return nil
	})
	if errors.Is(err, services.ErrSessionNotFound) {
		return view
	}

	return view
}

// collectRoute snapshots the board into the polyline, vehicle pose and
// movement texts. An unpublished board leaves the defaults in place.
func (h GetDeliveryStatusQueryHandler) collectRoute(response *GetDeliveryStatusResponse) {
	r, vehicle, err := h.board.Snapshot()
	if err != nil {
		return
	}

	for _, p := range r.Points() {
		response.Polyline = append(response.Polyline, GeoPointResponse{Lat: p.Lat(), Lon: p.Lon()})
	}

	response.Vehicle = VehicleResponse{
		Lat:       vehicle.Position.Lat(),
		Lon:       vehicle.Position.Lon(),
		Bearing:   vehicle.Bearing,
		PathIndex: vehicle.PathIndex,
	}

	if distance, distErr := r.RemainingDistance(vehicle.PathIndex); distErr == nil {
		response.RemainingDistanceText = formatDistance(distance)
	}

	if eta, etaErr := r.ETA(vehicle.PathIndex, h.assumedSpeedMps); etaErr == nil {
		response.EtaText = formatEta(eta)
	}
}

// formatRemaining renders a countdown as "mm:ss".
func formatRemaining(d time.Duration) string {
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// formatEta renders an estimated travel time in whole minutes.
func formatEta(d time.Duration) string {
	minutes := int(math.Ceil(d.Minutes()))
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min", minutes)
}

// formatDistance renders a distance in metres below one kilometre, otherwise
// in kilometres with one decimal.
func formatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%.0f m", meters)
	}
	return fmt.Sprintf("%.1f km", meters/1000)
}
