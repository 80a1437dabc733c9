package commands

import (
	"errors"

	"coldchain/internal/pkg/guard"
)

var ErrRebuildRouteCommandIsNotConstructed = errors.New(
	"RebuildRouteCommand must be created via NewRebuildRouteCommand constructor",
)

// RebuildRouteCommand triggers a full route rebuild from the remaining
// pending stops, anchored at the vehicle's current position.
//
// Example:
//
//	cmd := NewRebuildRouteCommand()
//	handler := NewRebuildRouteCommandHandler(uowFactory, planner, board)
//
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("route rebuild failed: %w", err)
//	}
type RebuildRouteCommand struct {
	guard guard.ConstructorGuard
}

// NewRebuildRouteCommand creates a command to rebuild the route.
// This is a parameterless command; the remaining stops are read from storage.
func NewRebuildRouteCommand() RebuildRouteCommand {
	return RebuildRouteCommand{
		guard: guard.NewConstructorGuard(),
	}
}

// Validate ensures the command was created through the constructor.
// Returns ErrRebuildRouteCommandIsNotConstructed if validation fails.
func (c *RebuildRouteCommand) Validate() error {
	return c.guard.Validate(ErrRebuildRouteCommandIsNotConstructed)
}
