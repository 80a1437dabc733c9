package commands

import (
	"errors"

	"coldchain/internal/pkg/guard"
)

var ErrAdvanceVehicleCommandIsNotConstructed = errors.New(
	"AdvanceVehicleCommand must be created via NewAdvanceVehicleCommand constructor",
)

// AdvanceVehicleCommand triggers one movement step of the vehicle along the
// current route, with arrival detection at pending stops.
//
// Example:
//
//	cmd := NewAdvanceVehicleCommand()
//	handler := NewAdvanceVehicleCommandHandler(uowFactory, registry, planner, board)
//
//	// Run periodically to simulate vehicle movement
//	ticker := time.NewTicker(time.Second)
//	for range ticker.C {
//	    if err := handler.Handle(ctx, cmd); err != nil {
//	        log.Printf("Vehicle tick failed: %v", err)
//	    }
//	}
type AdvanceVehicleCommand struct {
	guard guard.ConstructorGuard
}

// NewAdvanceVehicleCommand creates a command to trigger one vehicle movement step.
// This is a parameterless command issued on every movement tick.
func NewAdvanceVehicleCommand() AdvanceVehicleCommand {
	return AdvanceVehicleCommand{
		guard: guard.NewConstructorGuard(),
	}
}

// Validate ensures the command was created through the constructor.
// Returns ErrAdvanceVehicleCommandIsNotConstructed if validation fails.
func (c *AdvanceVehicleCommand) Validate() error {
	return c.guard.Validate(ErrAdvanceVehicleCommandIsNotConstructed)
}
