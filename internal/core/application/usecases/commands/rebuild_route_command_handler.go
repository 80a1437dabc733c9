package commands

import (
	"context"

	"coldchain/internal/core/domain/services"
)

// RebuildRouteCommandHandler rebuilds the route on demand.
// Reads the full stop list, plans a fresh route through the stops still
// pending, and publishes it, snapping the vehicle onto the new geometry.
//
// Example:
//
//	handler := NewRebuildRouteCommandHandler(uowFactory, planner, board)
//	cmd := NewRebuildRouteCommand()
//
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("route rebuild failed: %w", err)
//	}
type RebuildRouteCommandHandler struct {
	uowFactory UoWFactory
	planner    *services.RoutePlanner
	board      *services.RouteBoard
}

// NewRebuildRouteCommandHandler creates a handler for route rebuild operations.
func NewRebuildRouteCommandHandler(
	uowFactory UoWFactory,
	planner *services.RoutePlanner,
	board *services.RouteBoard,
) RebuildRouteCommandHandler {
	return RebuildRouteCommandHandler{
		uowFactory: uowFactory,
		planner:    planner,
		board:      board,
	}
}

// Handle processes the route rebuild command.
// Loads every stop in sequence order, rebuilds the route through the
// pending ones, and publishes the replacement atomically.
func (h *RebuildRouteCommandHandler) Handle(ctx context.Context, cmd RebuildRouteCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	all, err := uow.StopRepository().GetAll(ctx)
	if err != nil {
		return err
	}

	if err = replanRoute(ctx, h.planner, h.board, all); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
