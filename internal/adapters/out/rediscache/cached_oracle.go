package rediscache

import (
	"context"
	"log/slog"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/route"
	"coldchain/internal/core/ports"
	"coldchain/internal/pkg/errs"
)

// CachedOracle decorates a routing oracle with the leg cache. A live cache
// entry short-circuits the oracle call; cache failures count as a miss and
// never fail the lookup, since the caller already degrades oracle errors to
// a straight-line fallback leg.
type CachedOracle struct {
	oracle ports.RoutingOracle
	cache  ports.LegCache
	logger *slog.Logger
}

// NewCachedOracle wraps an oracle with a leg cache.
func NewCachedOracle(oracle ports.RoutingOracle, cache ports.LegCache, logger *slog.Logger) (*CachedOracle, error) {
	if oracle == nil {
		return nil, errs.NewValueIsRequiredError("oracle")
	}
	if cache == nil {
		return nil, errs.NewValueIsRequiredError("cache")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CachedOracle{
		oracle: oracle,
		cache:  cache,
		logger: logger.With("component", "cached_oracle"),
	}, nil
}

// Route returns the leg from origin to destination, serving from cache when
// a live entry exists. Oracle results are written back to the cache; a
// failed write is logged and the fresh leg is still returned.
func (o *CachedOracle) Route(
	ctx context.Context, origin kernel.GeoPoint, destination kernel.GeoPoint,
) (route.Leg, error) {
	leg, found, err := o.cache.Get(ctx, origin, destination)
	if err != nil {
		o.logger.Warn("leg cache read failed",
			"origin", origin.String(),
			"destination", destination.String(),
			"error", err)
	}
	if found {
		return leg, nil
	}

	leg, err = o.oracle.Route(ctx, origin, destination)
	if err != nil {
		return route.Leg{}, err
	}

	if err := o.cache.Set(ctx, origin, destination, leg); err != nil {
		o.logger.Warn("leg cache write failed",
			"origin", origin.String(),
			"destination", destination.String(),
			"error", err)
	}

	return leg, nil
}
