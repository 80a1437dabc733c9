package jobs

import (
	"context"
	"log/slog"
	"sync/atomic"

	"coldchain/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// StabilityTickJob manages the scheduled stability clock.
// Runs every second to charge in-excursion sessions with the actual
// wall-clock delta and spoil stops whose budget ran out.
type StabilityTickJob struct {
	handler *commands.TickStabilityCommandHandler
	cron    *cron.Cron
	busy    atomic.Bool
	logger  *slog.Logger
}

// NewStabilityTickJob creates a new job ticking the stability clock.
// Uses TickStabilityCommandHandler to process one clock tick per second.
func NewStabilityTickJob(handler *commands.TickStabilityCommandHandler, logger *slog.Logger) *StabilityTickJob {
	return &StabilityTickJob{
		handler: handler,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "stability_tick_job"),
	}
}

// Start begins the stability tick job to run every second.
// A skipped invocation loses nothing: sessions charge the actual wall
// delta on the next tick, so jitter never under-counts excursion time.
func (j *StabilityTickJob) Start() error {
	_, err := j.cron.AddFunc("* * * * * *", func() {
		if !j.busy.CompareAndSwap(false, true) {
			return
		}
		defer j.busy.Store(false)

		ctx := context.Background()
		cmd := commands.NewTickStabilityCommand()

		if err := j.handler.Handle(ctx, cmd); err != nil {
			j.logger.ErrorContext(ctx, "Stability tick job failed", "error", err)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Stability tick job started (running every second)")
	return nil
}

// Stop stops the stability tick job.
func (j *StabilityTickJob) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
	j.logger.InfoContext(context.Background(), "Stability tick job stopped")
}
