package jobs

import (
	"fmt"
	"log/slog"

	"coldchain/internal/core/application/usecases/commands"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	vehicleTickJob   *VehicleTickJob
	telemetryPollJob *TelemetryPollJob
	stabilityTickJob *StabilityTickJob
}

// NewJobManager creates a new job manager with all required jobs.
// Takes command handlers as dependencies to wire up the job execution.
func NewJobManager(
	advanceVehicleHandler *commands.AdvanceVehicleCommandHandler,
	ingestTelemetryHandler *commands.IngestTelemetryCommandHandler,
	tickStabilityHandler *commands.TickStabilityCommandHandler,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		vehicleTickJob:   NewVehicleTickJob(advanceVehicleHandler, logger),
		telemetryPollJob: NewTelemetryPollJob(ingestTelemetryHandler, logger),
		stabilityTickJob: NewStabilityTickJob(tickStabilityHandler, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.vehicleTickJob.Start(); err != nil {
		return fmt.Errorf("failed to start vehicle tick job: %w", err)
	}

	if err := jm.telemetryPollJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.vehicleTickJob.Stop()
		return fmt.Errorf("failed to start telemetry poll job: %w", err)
	}

	if err := jm.stabilityTickJob.Start(); err != nil {
		jm.vehicleTickJob.Stop()
		jm.telemetryPollJob.Stop()
		return fmt.Errorf("failed to start stability tick job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully, waiting for in-flight
// invocations (and their persistence writes) to complete.
func (jm *JobManager) StopAll() {
	jm.vehicleTickJob.Stop()
	jm.telemetryPollJob.Stop()
	jm.stabilityTickJob.Stop()
}
