package commands

import (
	"context"
	"errors"

	"coldchain/internal/core/domain/services"
)

// AdvanceVehicleCommandHandler orchestrates one movement step of the vehicle.
// Advances the vehicle one route point, delivers the earliest pending stop
// when it falls within the arrival threshold, ends the delivered order's
// stability tracking, and rebuilds the route whenever a stop settled.
//
// Example:
//
//	handler := NewAdvanceVehicleCommandHandler(uowFactory, registry, planner, board)
//	cmd := NewAdvanceVehicleCommand()
//
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("vehicle movement failed: %w", err)
//	}
//
//	// This would typically be called periodically by a scheduler
type AdvanceVehicleCommandHandler struct {
	uowFactory UoWFactory
	registry   *services.SessionRegistry
	planner    *services.RoutePlanner
	board      *services.RouteBoard
}

// NewAdvanceVehicleCommandHandler creates a handler for vehicle movement operations.
func NewAdvanceVehicleCommandHandler(
	uowFactory UoWFactory,
	registry *services.SessionRegistry,
	planner *services.RoutePlanner,
	board *services.RouteBoard,
) AdvanceVehicleCommandHandler {
	return AdvanceVehicleCommandHandler{
		uowFactory: uowFactory,
		registry:   registry,
		planner:    planner,
		board:      board,
	}
}

// Handle processes the vehicle movement command.
// Moves the vehicle one route point forward, then delivers the earliest
// pending stop if it lies within the arrival threshold of the new position.
// A delivery removes the order's session and record and triggers a route
// rebuild from the remaining stops. All updates occur within a single
// transaction. Before the first route is published the command is a no-op.
func (h *AdvanceVehicleCommandHandler) Handle(ctx context.Context, cmd AdvanceVehicleCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	if err := h.board.Advance(); err != nil {
		if errors.Is(err, services.ErrNoRoutePublished) {
			return nil
		}

		return err
	}

	_, view, err := h.board.Snapshot()
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	stopRepo := uow.StopRepository()
	sessionStore := uow.SessionStore()

	pending, err := stopRepo.GetAllPending(ctx)
	if err != nil {
		return err
	}

	rebuild := false

	// Stops settle in route order: only the earliest pending stop may be
	// delivered, even when the path brushes past a later stop's radius.
	if len(pending) > 0 {
		next := pending[0]

		within, thresholdErr := next.WithinArrivalThreshold(view.Position)
		if thresholdErr != nil {
			return thresholdErr
		}

		if within {
			changed, deliverErr := next.Deliver()
			if deliverErr != nil {
				return deliverErr
			}

			if changed {
				if err = stopRepo.Update(ctx, next); err != nil {
					return err
				}

				if next.OrderID() != nil {
					h.registry.Remove(*next.OrderID())

					if err = sessionStore.Delete(ctx, *next.OrderID()); err != nil {
						return err
					}
				}

				rebuild = true
			}
		}
	}

	if rebuild {
		all, allErr := stopRepo.GetAll(ctx)
		if allErr != nil {
			return allErr
		}

		if err = replanRoute(ctx, h.planner, h.board, all); err != nil {
			return err
		}
	}

	return uow.Commit(ctx)
}
