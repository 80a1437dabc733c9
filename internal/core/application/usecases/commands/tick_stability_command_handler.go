package commands

import (
	"context"
	"time"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/stability"
	"coldchain/internal/core/domain/services"
)

// TickStabilityCommandHandler orchestrates one pass of the excursion clock.
// Sessions currently in excursion accumulate the actual wall time since
// their previous tick and have their record persisted; a session that
// exhausts its budget expires, its stop is spoiled, and the route is
// rebuilt around the loss.
//
// Example:
//
//	handler := NewTickStabilityCommandHandler(uowFactory, registry, planner, board)
//	cmd := NewTickStabilityCommand()
//
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("stability tick failed: %w", err)
//	}
//
//	// This would typically be called periodically by a scheduler
type TickStabilityCommandHandler struct {
	uowFactory UoWFactory
	registry   *services.SessionRegistry
	planner    *services.RoutePlanner
	board      *services.RouteBoard
}

// NewTickStabilityCommandHandler creates a handler for excursion clock operations.
func NewTickStabilityCommandHandler(
	uowFactory UoWFactory,
	registry *services.SessionRegistry,
	planner *services.RoutePlanner,
	board *services.RouteBoard,
) TickStabilityCommandHandler {
	return TickStabilityCommandHandler{
		uowFactory: uowFactory,
		registry:   registry,
		planner:    planner,
		board:      board,
	}
}

// Handle processes the stability tick command.
// Advances every active session's excursion clock, persists the records of
// sessions in excursion, spoils the stops of sessions that expired, and
// rebuilds the route when any stop settled. All updates occur within a
// single transaction.
func (h *TickStabilityCommandHandler) Handle(ctx context.Context, cmd TickStabilityCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	now := time.Now()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	stopRepo := uow.StopRepository()
	sessionStore := uow.SessionStore()

	rebuild := false

	err := h.registry.ForEach(func(orderID kernel.UUID, s *stability.Session) error {
		if s.IsTerminal() {
			return nil
		}

		inExcursion := s.InExcursion()

		expired, tickErr := s.Tick(now)
		if tickErr != nil {
			return tickErr
		}

		if inExcursion || expired {
			if err := sessionStore.Set(ctx, orderID, sessionRecord(s, now)); err != nil {
				return err
			}
		}

		if !expired {
			return nil
		}

		spoiled, spoilErr := spoilOrder(ctx, stopRepo, orderID)
		if spoilErr != nil {
			return spoilErr
		}

		rebuild = rebuild || spoiled

		return nil
	})
	if err != nil {
		return err
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
