package services

import (
	"context"
	"log/slog"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/route"
	"coldchain/internal/core/domain/model/stop"
)

// LegProvider supplies road geometry and travel metrics for a single leg
// between two geographic points. Implementations typically wrap an external
// routing engine, possibly behind a cache.
type LegProvider interface {
	Route(ctx context.Context, origin kernel.GeoPoint, destination kernel.GeoPoint) (route.Leg, error)
}

// RoutePlanner is a domain service responsible for rebuilding the delivery
// route from the remaining stop sequence.
//
// Key responsibilities:
//   - Assembling the waypoint list: anchor, then every remaining stop in the
//     order given, then the depot
//   - Requesting road geometry for each consecutive waypoint pair from the
//     leg provider
//   - Degrading gracefully to straight-line legs when the provider fails
//
// Business rules:
//   - Stop order is never changed; the planner connects waypoints, it does
//     not optimize their sequence
//   - A provider failure on one leg never fails the whole plan; the affected
//     leg becomes a two-point straight segment without travel metrics
//   - Legs are stitched with seam deduplication so shared endpoints appear
//     once in the resulting polyline
//
// Example usage:
//
//	planner := services.NewRoutePlanner(provider, logger)
//	r, err := planner.Plan(ctx, vehiclePos, pendingStops, depotPos)
//	if err != nil {
//	    // Fewer than two waypoints remained
//	    return
//	}
//	// r is a complete route from vehiclePos through every stop to the depot
type RoutePlanner struct {
	provider LegProvider
	logger   *slog.Logger
}

// NewRoutePlanner creates a new RoutePlanner instance.
//
// Parameters:
//   - provider: Source of road geometry for individual legs
//   - logger: Structured logger for degradation warnings
//
// Returns:
//   - *RoutePlanner: A new instance ready for route planning
func NewRoutePlanner(provider LegProvider, logger *slog.Logger) *RoutePlanner {
	return &RoutePlanner{
		provider: provider,
		logger:   logger.With("component", "route_planner"),
	}
}

// Plan builds a complete route from the anchor through every given stop to
// the depot.
//
// Parameters:
//   - ctx: Context for provider calls
//   - anchor: Starting point of the route, usually the current vehicle position
//   - stops: Remaining stops in delivery order; their sequence is preserved
//   - depot: Final return point of the route
//
// Returns:
//   - *route.Route: The assembled route, never nil on success
//   - error: route.ErrRouteIsEmpty when fewer than two distinct waypoints remain
//
// Provider failures are logged and replaced with straight fallback legs, so
// the returned route always spans the full waypoint sequence.
func (p *RoutePlanner) Plan(
	ctx context.Context,
	anchor kernel.GeoPoint,
	stops []*stop.Stop,
	depot kernel.GeoPoint,
) (*route.Route, error) {
	waypoints := make([]kernel.GeoPoint, 0, len(stops)+2)
	waypoints = append(waypoints, anchor)

	for _, s := range stops {
		waypoints = append(waypoints, s.Position())
	}

	waypoints = append(waypoints, depot)

	builder := route.NewBuilder()

	for i := 0; i < len(waypoints)-1; i++ {
		l, err := p.leg(ctx, waypoints[i], waypoints[i+1])
		if err != nil {
			return nil, err
		}

		if err = builder.Append(l); err != nil {
			return nil, err
		}
	}

	return builder.Build()
}

// leg fetches a single leg from the provider, falling back to a straight
// two-point segment when the provider fails.
func (p *RoutePlanner) leg(ctx context.Context, origin, destination kernel.GeoPoint) (route.Leg, error) {
	l, err := p.provider.Route(ctx, origin, destination)
	if err != nil {
		p.logger.Warn("leg provider failed, using straight fallback",
			"origin", origin.String(),
			"destination", destination.String(),
			"error", err)

		return route.NewFallbackLeg(origin, destination)
	}

	return l, nil
}
