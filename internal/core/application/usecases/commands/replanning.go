package commands

import (
	"context"
	"errors"
	"time"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/stability"
	"coldchain/internal/core/domain/model/stop"
	"coldchain/internal/core/domain/services"
	"coldchain/internal/core/ports"
	"coldchain/internal/pkg/errs"
)

// ErrDepotStopIsMissing is returned when the stop sequence carries no depot
// anchor, leaving the planner without a return point.
var ErrDepotStopIsMissing = errors.New("stop sequence must contain a depot anchor")

// replanRoute rebuilds the route from the remaining pending stops and
// publishes it on the board, which snaps the vehicle onto the new geometry.
// The anchor is the vehicle's current position, or the starting depot when
// nothing has been published yet. allStops must be the full stop list in
// sequence order, depot anchors included.
func replanRoute(
	ctx context.Context,
	planner *services.RoutePlanner,
	board *services.RouteBoard,
	allStops []*stop.Stop,
) error {
	pending := make([]*stop.Stop, 0, len(allStops))
	for _, s := range allStops {
		if s.IsPending() {
			pending = append(pending, s)
		}
	}

	depot, err := returnDepot(allStops)
	if err != nil {
		return err
	}

	anchor := depot
	if _, view, snapErr := board.Snapshot(); snapErr == nil {
		anchor = view.Position
	} else if first, firstErr := startingDepot(allStops); firstErr == nil {
		anchor = first
	}

	r, err := planner.Plan(ctx, anchor, pending, depot)
	if err != nil {
		return err
	}

	return board.Publish(r)
}

// startingDepot returns the position of the first depot anchor in the sequence.
func startingDepot(allStops []*stop.Stop) (kernel.GeoPoint, error) {
	for _, s := range allStops {
		if s.Kind() == stop.KindDepot {
			return s.Position(), nil
		}
	}

	return kernel.GeoPoint{}, ErrDepotStopIsMissing
}

// returnDepot returns the position of the last depot anchor in the sequence.
func returnDepot(allStops []*stop.Stop) (kernel.GeoPoint, error) {
	for i := len(allStops) - 1; i >= 0; i-- {
		if allStops[i].Kind() == stop.KindDepot {
			return allStops[i].Position(), nil
		}
	}

	return kernel.GeoPoint{}, ErrDepotStopIsMissing
}

// sessionRecord snapshots the durable slice of a session as of now.
func sessionRecord(session *stability.Session, now time.Time) ports.SessionRecord {
	return ports.SessionRecord{
		ElapsedSeconds:     int64(session.Elapsed() / time.Second),
		InExcursion:        session.InExcursion(),
		SavedAtEpochMillis: now.UnixMilli(),
	}
}

// spoilOrder marks the order's stop as spoiled. Returns true when the stop
// actually changed state, signalling that the route must be rebuilt. A stop
// that is already settled, or an order without a stop, changes nothing.
func spoilOrder(
	ctx context.Context,
	stopRepo ports.StopRepository,
	orderID kernel.UUID,
) (bool, error) {
	s, err := stopRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return false, nil
		}

		return false, err
	}

	changed, err := s.Spoil()
	if err != nil {
		return false, err
	}

	if !changed {
		return false, nil
	}

	if err = stopRepo.Update(ctx, s); err != nil {
		return false, err
	}

	return true, nil
}
