package commands

import (
	"errors"

	"coldchain/internal/pkg/guard"
)

var ErrIngestTelemetryCommandIsNotConstructed = errors.New(
	"IngestTelemetryCommand must be created via NewIngestTelemetryCommand constructor",
)

// IngestTelemetryCommand triggers one telemetry poll cycle: reading the
// shipment temperatures, classifying them against each session's safe band,
// and reporting the samples to the stability server.
//
// Example:
//
//	cmd := NewIngestTelemetryCommand()
//	handler := NewIngestTelemetryCommandHandler(uowFactory, tempFeed, posFeed, client, registry, planner, board, logger)
//
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    log.Printf("Telemetry poll failed: %v", err)
//	}
type IngestTelemetryCommand struct {
	guard guard.ConstructorGuard
}

// NewIngestTelemetryCommand creates a command to trigger one telemetry poll.
// This is a parameterless command issued on every poll cycle.
func NewIngestTelemetryCommand() IngestTelemetryCommand {
	return IngestTelemetryCommand{
		guard: guard.NewConstructorGuard(),
	}
}

// Validate ensures the command was created through the constructor.
// Returns ErrIngestTelemetryCommandIsNotConstructed if validation fails.
func (c *IngestTelemetryCommand) Validate() error {
	return c.guard.Validate(ErrIngestTelemetryCommandIsNotConstructed)
}
