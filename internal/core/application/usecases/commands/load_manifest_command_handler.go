package commands

import (
	"context"
	"errors"
	"time"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/stability"
	"coldchain/internal/core/domain/model/stop"
	"coldchain/internal/core/domain/services"
	"coldchain/internal/core/ports"
	"coldchain/internal/pkg/errs"
)

// LoadManifestCommandHandler performs the startup sequence of a delivery run.
// Seeds the stops from the manifest on the first start, reuses the persisted
// stops on a restart, starts or restores a stability session per pending
// order, and publishes the initial route.
//
// Orders without a stability configuration on the server stay untracked but
// keep routing normally. Orders with a previously persisted session record
// are restored with the downtime bridged into their excursion clock.
//
// Example:
//
//	handler := NewLoadManifestCommandHandler(uowFactory, source, client, registry, planner, board)
//	cmd := NewLoadManifestCommand()
//
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("startup failed: %w", err)
//	}
type LoadManifestCommandHandler struct {
	uowFactory      UoWFactory
	source          ports.StopSequenceSource
	stabilityClient ports.StabilityClient
	registry        *services.SessionRegistry
	planner         *services.RoutePlanner
	board           *services.RouteBoard
}

// NewLoadManifestCommandHandler creates a handler for the manifest load operation.
func NewLoadManifestCommandHandler(
	uowFactory UoWFactory,
	source ports.StopSequenceSource,
	stabilityClient ports.StabilityClient,
	registry *services.SessionRegistry,
	planner *services.RoutePlanner,
	board *services.RouteBoard,
) LoadManifestCommandHandler {
	return LoadManifestCommandHandler{
		uowFactory:      uowFactory,
		source:          source,
		stabilityClient: stabilityClient,
		registry:        registry,
		planner:         planner,
		board:           board,
	}
}

// Handle processes the manifest load command.
// On the first start the manifest entries are persisted as the run's stops;
// on a restart the previously persisted stops are reused as-is, so settled
// deliveries keep their status and the manifest is not applied twice. Every
// still-pending order gets its stability tracking started or restored, then
// the route is planned from the pending stops and published. All persistence
// happens within a single transaction.
func (h *LoadManifestCommandHandler) Handle(ctx context.Context, cmd LoadManifestCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	stopRepo := uow.StopRepository()
	sessionStore := uow.SessionStore()

	stops, err := stopRepo.GetAll(ctx)
	if err != nil {
		return err
	}

	if len(stops) == 0 {
		if stops, err = h.seedStops(ctx, stopRepo); err != nil {
			return err
		}
	}

	now := time.Now()

	for _, s := range stops {
		if s.Kind() != stop.KindPatient || !s.IsPending() {
			continue
		}

		if err = h.trackOrder(ctx, sessionStore, *s.OrderID(), now); err != nil {
			return err
		}
	}

	if err = replanRoute(ctx, h.planner, h.board, stops); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

// seedStops persists the manifest entries as the run's stops.
func (h *LoadManifestCommandHandler) seedStops(
	ctx context.Context,
	stopRepo ports.StopRepository,
) ([]*stop.Stop, error) {
	entries, err := h.source.Load(ctx)
	if err != nil {
		return nil, err
	}

	stops := make([]*stop.Stop, 0, len(entries))

	for i, entry := range entries {
		s, stopErr := stop.NewStop(kernel.NewUUID(), entry.NodeID, entry.Position, entry.Kind, entry.OrderID, i)
		if stopErr != nil {
			return nil, stopErr
		}

		if err = stopRepo.Add(ctx, s); err != nil {
			return nil, err
		}

		stops = append(stops, s)
	}

	return stops, nil
}

// trackOrder starts or restores the stability session for a single order.
// A missing server configuration leaves the order untracked.
func (h *LoadManifestCommandHandler) trackOrder(
	ctx context.Context,
	sessionStore ports.SessionStore,
	orderID kernel.UUID,
	now time.Time,
) error {
	config, err := h.stabilityClient.GetConfig(ctx, orderID)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return nil
		}

		return err
	}

	record, found, err := sessionStore.Get(ctx, orderID)
	if err != nil {
		return err
	}

	var session *stability.Session

	if found {
		session, err = stability.RestoreSession(
			orderID,
			config,
			time.Duration(record.ElapsedSeconds)*time.Second,
			record.InExcursion,
			time.UnixMilli(record.SavedAtEpochMillis),
			stability.Active,
			now,
		)
	} else {
		if err = h.stabilityClient.Start(ctx, orderID); err != nil {
			return err
		}

		session, err = stability.NewSession(orderID, config, now)
	}

	if err != nil {
		return err
	}

	if err = sessionStore.Set(ctx, orderID, sessionRecord(session, now)); err != nil {
		return err
	}

	return h.registry.Put(session)
}
