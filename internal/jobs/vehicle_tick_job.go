package jobs

import (
	"context"
	"log/slog"
	"sync/atomic"

	"coldchain/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// VehicleTickJob manages the scheduled advancement of the vehicle.
// Runs every second to move the vehicle one path index, detect arrivals
// and trigger route rebuilds.
type VehicleTickJob struct {
	handler *commands.AdvanceVehicleCommandHandler
	cron    *cron.Cron
	busy    atomic.Bool
	logger  *slog.Logger
}

// NewVehicleTickJob creates a new job advancing the vehicle.
// Uses AdvanceVehicleCommandHandler to process one movement step per second.
func NewVehicleTickJob(handler *commands.AdvanceVehicleCommandHandler, logger *slog.Logger) *VehicleTickJob {
	return &VehicleTickJob{
		handler: handler,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "vehicle_tick_job"),
	}
}

// Start begins the vehicle tick job to run every second.
// An invocation that fires while the previous one is still running is
// skipped, not queued, so a slow cycle never stacks concurrent runs.
func (j *VehicleTickJob) Start() error {
	_, err := j.cron.AddFunc("* * * * * *", func() {
		if !j.busy.CompareAndSwap(false, true) {
			return
		}
		defer j.busy.Store(false)

		ctx := context.Background()
		cmd := commands.NewAdvanceVehicleCommand()

		if err := j.handler.Handle(ctx, cmd); err != nil {
			j.logger.ErrorContext(ctx, "Vehicle tick job failed", "error", err)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Vehicle tick job started (running every second)")
	return nil
}

// Stop stops the vehicle tick job.
func (j *VehicleTickJob) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
	j.logger.InfoContext(context.Background(), "Vehicle tick job stopped")
}
