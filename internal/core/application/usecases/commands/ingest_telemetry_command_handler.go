package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/stability"
	"coldchain/internal/core/domain/services"
	"coldchain/internal/core/ports"
)

// IngestTelemetryCommandHandler orchestrates one telemetry poll cycle.
// Reads each tracked shipment's temperature, classifies it against the
// session's safe band, persists excursion boundary crossings immediately,
// and reports the sample to the stability server. Server alerts are
// authoritative: an alerted session goes terminal and its stop is spoiled,
// which triggers a route rebuild.
//
// In live tracking mode the handler also ingests the authoritative vehicle
// position before classification. Server unavailability is non-fatal; the
// local countdown carries on until the next successful report.
//
// Example:
//
//	handler := NewIngestTelemetryCommandHandler(uowFactory, tempFeed, nil, client, registry, planner, board, logger)
//	cmd := NewIngestTelemetryCommand()
//
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("telemetry poll failed: %w", err)
//	}
type IngestTelemetryCommandHandler struct {
	uowFactory      UoWFactory
	temperatureFeed ports.TemperatureFeed
	positionFeed    ports.PositionFeed
	stabilityClient ports.StabilityClient
	registry        *services.SessionRegistry
	planner         *services.RoutePlanner
	board           *services.RouteBoard
	logger          *slog.Logger
}

// NewIngestTelemetryCommandHandler creates a handler for telemetry poll operations.
// positionFeed may be nil when vehicle movement is simulated instead of tracked.
func NewIngestTelemetryCommandHandler(
	uowFactory UoWFactory,
	temperatureFeed ports.TemperatureFeed,
	positionFeed ports.PositionFeed,
	stabilityClient ports.StabilityClient,
	registry *services.SessionRegistry,
	planner *services.RoutePlanner,
	board *services.RouteBoard,
	logger *slog.Logger,
) IngestTelemetryCommandHandler {
	return IngestTelemetryCommandHandler{
		uowFactory:      uowFactory,
		temperatureFeed: temperatureFeed,
		positionFeed:    positionFeed,
		stabilityClient: stabilityClient,
		registry:        registry,
		planner:         planner,
		board:           board,
		logger:          logger.With("component", "telemetry_ingest"),
	}
}

// Handle processes the telemetry poll command.
// Ingests the live position when a feed is configured, then classifies the
// current temperature for every active session and reports it to the server.
// Boundary crossings and alert transitions are persisted within a single
// transaction; an alerted order's stop is spoiled and the route rebuilt.
func (h *IngestTelemetryCommandHandler) Handle(ctx context.Context, cmd IngestTelemetryCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	h.ingestPosition(ctx)

	position, hasPosition := h.vehiclePosition()
	now := time.Now()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	stopRepo := uow.StopRepository()
	sessionStore := uow.SessionStore()

	rebuild := false

	err := h.registry.ForEach(func(orderID kernel.UUID, s *stability.Session) error {
		if s.IsTerminal() {
			return nil
		}

		tempC, feedErr := h.temperatureFeed.ReadTemperature(ctx, orderID)
		if feedErr != nil {
			return feedErr
		}

		crossed, classifyErr := s.Classify(tempC, now)
		if classifyErr != nil {
			return classifyErr
		}

		if crossed {
			if err := sessionStore.Set(ctx, orderID, sessionRecord(s, now)); err != nil {
				return err
			}
		}

		spoiled, reportErr := h.report(ctx, stopRepo, sessionStore, orderID, s, tempC, position, hasPosition, now)
		if reportErr != nil {
			return reportErr
		}

		rebuild = rebuild || spoiled

		return nil
	})
	if err != nil {
		return err
	}

	if rebuild {
		all, allErr := stopRepo.GetAll(ctx)
		if allErr != nil {
			return allErr
		}

		if err = replanRoute(ctx, h.planner, h.board, all); err != nil {
			return err
		}
	}

	return uow.Commit(ctx)
}

// report sends the sample to the stability server and applies its verdict.
// Returns whether the order's stop was spoiled by an authoritative alert.
// Server call failures are swallowed; the next poll retries.
func (h *IngestTelemetryCommandHandler) report(
	ctx context.Context,
	stopRepo ports.StopRepository,
	sessionStore ports.SessionStore,
	orderID kernel.UUID,
	s *stability.Session,
	tempC float64,
	position kernel.GeoPoint,
	hasPosition bool,
	now time.Time,
) (bool, error) {
	if !hasPosition {
		return false, nil
	}

	update, err := h.stabilityClient.Update(ctx, orderID, tempC, position)
	if err != nil {
		return false, nil
	}

	changed, err := s.ApplyAlert(update.Alert)
	if err != nil {
		return false, err
	}

	if !changed {
		return false, nil
	}

	if err = sessionStore.Set(ctx, orderID, sessionRecord(s, now)); err != nil {
		return false, err
	}

	return spoilOrder(ctx, stopRepo, orderID)
}

// ingestPosition feeds the authoritative live position into the board.
// Feed or board failures skip this cycle; the next poll retries. Before the
// first route is published there is no vehicle to place, which is not worth
// a log line.
func (h *IngestTelemetryCommandHandler) ingestPosition(ctx context.Context) {
	if h.positionFeed == nil {
		return
	}

	position, err := h.positionFeed.ReadPosition(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "Position feed read failed", "error", err)
		return
	}

	if err = h.board.SetVehiclePosition(position); err != nil && !errors.Is(err, services.ErrNoRoutePublished) {
		h.logger.WarnContext(ctx, "Vehicle position rejected", "error", err)
	}
}

// vehiclePosition snapshots the current vehicle position for server reports.
func (h *IngestTelemetryCommandHandler) vehiclePosition() (kernel.GeoPoint, bool) {
	_, view, err := h.board.Snapshot()
	if err != nil {
		return kernel.GeoPoint{}, false
	}

	return view.Position, true
}
