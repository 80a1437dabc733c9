// Package jobs provides scheduled background tasks for the cold-chain engine.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to drive the three periodic cycles of the delivery run.
//
// # Available Jobs
//
// 1. VehicleTickJob - Runs every second to advance the vehicle, detect arrivals and rebuild the route
// 2. TelemetryPollJob - Runs every two seconds to read temperatures and reconcile with the stability server
// 3. StabilityTickJob - Runs every second to charge in-excursion sessions and spoil expired stops
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with required handlers
//	jobManager := jobs.NewJobManager(advanceVehicleHandler, ingestTelemetryHandler, tickStabilityHandler, logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Scheduling
//
// Each job carries an atomic busy-guard: an invocation that fires while the
// previous one for the same job is still running is skipped, not queued.
// Sessions charge actual wall-clock deltas, so a skipped stability tick
// never under-counts excursion time.
//
// # Error Handling
//
// - Job callbacks log command errors and return; no tick error escapes a callback
// - Failed job starts will stop any already running jobs
// - Stop waits for the in-flight invocation to finish before returning
package jobs
