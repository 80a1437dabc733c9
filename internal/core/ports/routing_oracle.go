// Package ports defines the contracts between the cold-chain core and its
// infrastructure: the routing oracle, the stability server, telemetry feeds,
// persistence, and caching. These interfaces enable dependency inversion and
// testability.
package ports

import (
	"context"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/route"
)

// RoutingOracle returns a driving path between two points, optionally with
// provider-reported distance and duration. The oracle is pure
// request/response and holds no state.
//
// Implementations must bound every call with a finite timeout. Callers treat
// any error as non-fatal and degrade to a straight-line fallback leg.
type RoutingOracle interface {
	// Route returns the leg geometry from origin to destination.
	Route(ctx context.Context, origin kernel.GeoPoint, destination kernel.GeoPoint) (route.Leg, error)
}

// LegCache is an explicitly injected cache in front of the routing oracle.
// Entries expire after the TTL configured at construction; a rebuild that
// revisits an unchanged leg within the TTL is served from cache.
type LegCache interface {
	// Get returns the cached leg for an origin/destination pair.
	// The bool reports whether a live entry was found; cache errors are
	// returned for logging but callers treat them as a miss.
	Get(ctx context.Context, origin kernel.GeoPoint, destination kernel.GeoPoint) (route.Leg, bool, error)

	// Set stores a leg for an origin/destination pair with the cache TTL.
	Set(ctx context.Context, origin kernel.GeoPoint, destination kernel.GeoPoint, leg route.Leg) error
}
