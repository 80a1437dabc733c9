package commands

import (
	"errors"

	"coldchain/internal/pkg/guard"
)

var ErrTickStabilityCommandIsNotConstructed = errors.New(
	"TickStabilityCommand must be created via NewTickStabilityCommand constructor",
)

// TickStabilityCommand advances the excursion clock of every active
// stability session by the wall time elapsed since the previous tick.
//
// Example:
//
//	cmd := NewTickStabilityCommand()
//	handler := NewTickStabilityCommandHandler(uowFactory, registry, planner, board)
//
//	ticker := time.NewTicker(time.Second)
//	for range ticker.C {
//	    if err := handler.Handle(ctx, cmd); err != nil {
//	        log.Printf("Stability tick failed: %v", err)
//	    }
//	}
type TickStabilityCommand struct {
	guard guard.ConstructorGuard
}

// NewTickStabilityCommand creates a command to advance the excursion clocks.
// This is a parameterless command issued on every clock tick.
func NewTickStabilityCommand() TickStabilityCommand {
	return TickStabilityCommand{
		guard: guard.NewConstructorGuard(),
	}
}

// Validate ensures the command was created through the constructor.
// Returns ErrTickStabilityCommandIsNotConstructed if validation fails.
func (c *TickStabilityCommand) Validate() error {
	return c.guard.Validate(ErrTickStabilityCommandIsNotConstructed)
}
