package commands

import (
	"errors"

	"coldchain/internal/pkg/guard"
)

var ErrLoadManifestCommandIsNotConstructed = errors.New(
	"LoadManifestCommand must be created via NewLoadManifestCommand constructor",
)

// LoadManifestCommand triggers the initial load of the delivery manifest.
// Reads the externally ordered stop sequence, starts stability tracking for
// every order, and publishes the first route.
//
// Example:
//
//	cmd := NewLoadManifestCommand()
//	handler := NewLoadManifestCommandHandler(uowFactory, source, client, registry, planner, board)
//
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("manifest load failed: %w", err)
//	}
//	// Stops are persisted, sessions are tracking, and the route is live
type LoadManifestCommand struct {
	guard guard.ConstructorGuard
}

// NewLoadManifestCommand creates a command to load the delivery manifest.
// This is a parameterless command issued once at startup.
func NewLoadManifestCommand() LoadManifestCommand {
	return LoadManifestCommand{
		guard: guard.NewConstructorGuard(),
	}
}

// Validate ensures the command was created through the constructor.
// Returns ErrLoadManifestCommandIsNotConstructed if validation fails.
func (c *LoadManifestCommand) Validate() error {
	return c.guard.Validate(ErrLoadManifestCommandIsNotConstructed)
}
