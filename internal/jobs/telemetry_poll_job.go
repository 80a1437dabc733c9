package jobs

import (
	"context"
	"log/slog"
	"sync/atomic"

	"coldchain/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// TelemetryPollJob manages the scheduled telemetry poll cycle.
// Runs every two seconds to read shipment temperatures, report them to the
// stability server and apply authoritative verdicts.
type TelemetryPollJob struct {
	handler *commands.IngestTelemetryCommandHandler
	cron    *cron.Cron
	busy    atomic.Bool
	logger  *slog.Logger
}

// NewTelemetryPollJob creates a new job polling telemetry.
// Uses IngestTelemetryCommandHandler to process one poll cycle.
func NewTelemetryPollJob(handler *commands.IngestTelemetryCommandHandler, logger *slog.Logger) *TelemetryPollJob {
	return &TelemetryPollJob{
		handler: handler,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "telemetry_poll_job"),
	}
}

// Start begins the telemetry poll job to run every two seconds.
// The busy-guard skips an invocation while the previous network round trip
// is still pending, bounding concurrent requests to the stability server.
func (j *TelemetryPollJob) Start() error {
	_, err := j.cron.AddFunc("*/2 * * * * *", func() {
		if !j.busy.CompareAndSwap(false, true) {
			return
		}
		defer j.busy.Store(false)

		ctx := context.Background()
		cmd := commands.NewIngestTelemetryCommand()

		if err := j.handler.Handle(ctx, cmd); err != nil {
			j.logger.ErrorContext(ctx, "Telemetry poll job failed", "error", err)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Telemetry poll job started (running every two seconds)")
	return nil
}

// Stop stops the telemetry poll job.
func (j *TelemetryPollJob) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
	j.logger.InfoContext(context.Background(), "Telemetry poll job stopped")
}
