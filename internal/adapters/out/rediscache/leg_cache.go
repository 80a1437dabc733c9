// Package rediscache provides the Redis-backed cache in front of the routing
// oracle. Leg geometry for an origin/destination pair is stored under a
// coordinate-derived key with a TTL, so route rebuilds that revisit an
// unchanged leg skip the oracle round trip.
package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/route"
	"coldchain/internal/pkg/errs"

	"github.com/redis/go-redis/v9"
)

// ErrTTLIsRequired is returned when constructing a cache with a non-positive TTL.
var ErrTTLIsRequired = errs.NewValueIsRequiredError("ttl must be positive")

// legDTO is the JSON wire form of a cached leg.
type legDTO struct {
	Points          []pointDTO `json:"points"`
	DistanceMeters  float64    `json:"distance_meters"`
	DurationSeconds float64    `json:"duration_seconds"`
	HasMetrics      bool       `json:"has_metrics"`
}

type pointDTO struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// RedisLegCache implements LegCache on top of a Redis client.
// Entries expire after the configured TTL; Redis errors surface to the
// caller, which treats them as a cache miss.
type RedisLegCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLegCache creates a leg cache with the given client and entry TTL.
func NewRedisLegCache(client *redis.Client, ttl time.Duration) (*RedisLegCache, error) {
	if client == nil {
		return nil, errs.NewValueIsRequiredError("client")
	}
	if ttl <= 0 {
		return nil, ErrTTLIsRequired
	}

	return &RedisLegCache{client: client, ttl: ttl}, nil
}

// Get returns the cached leg for an origin/destination pair.
func (c *RedisLegCache) Get(
	ctx context.Context, origin kernel.GeoPoint, destination kernel.GeoPoint,
) (route.Leg, bool, error) {
	key, err := legKey(origin, destination)
	if err != nil {
		return route.Leg{}, false, err
	}

	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return route.Leg{}, false, nil
		}
		return route.Leg{}, false, fmt.Errorf("leg cache get: %w", err)
	}

	var dto legDTO
	if err := json.Unmarshal(payload, &dto); err != nil {
		return route.Leg{}, false, fmt.Errorf("leg cache decode: %w", err)
	}

	leg, err := dto.toDomain(origin, destination)
	if err != nil {
		return route.Leg{}, false, err
	}

	return leg, true, nil
}

// Set stores a leg for an origin/destination pair with the cache TTL.
func (c *RedisLegCache) Set(
	ctx context.Context, origin kernel.GeoPoint, destination kernel.GeoPoint, leg route.Leg,
) error {
	key, err := legKey(origin, destination)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(fromDomain(leg))
	if err != nil {
		return fmt.Errorf("leg cache encode: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("leg cache set: %w", err)
	}

	return nil
}

// legKey derives the cache key from the pair coordinates. Six decimal places
// match GeoPoint's string precision, so equal points map to equal keys.
func legKey(origin kernel.GeoPoint, destination kernel.GeoPoint) (string, error) {
	if err := origin.Validate(); err != nil {
		return "", err
	}
	if err := destination.Validate(); err != nil {
		return "", err
	}

	return fmt.Sprintf("leg:%.6f,%.6f:%.6f,%.6f",
		origin.Lat(), origin.Lon(), destination.Lat(), destination.Lon()), nil
}

func fromDomain(leg route.Leg) legDTO {
	points := leg.Points()
	dto := legDTO{
		Points:          make([]pointDTO, 0, len(points)),
		DistanceMeters:  leg.DistanceMeters(),
		DurationSeconds: leg.DurationSeconds(),
		HasMetrics:      leg.HasMetrics(),
	}
	for _, p := range points {
		dto.Points = append(dto.Points, pointDTO{Lat: p.Lat(), Lon: p.Lon()})
	}
	return dto
}

func (d legDTO) toDomain(origin kernel.GeoPoint, destination kernel.GeoPoint) (route.Leg, error) {
	points := make([]kernel.GeoPoint, 0, len(d.Points))
	for _, p := range d.Points {
		point, err := kernel.NewGeoPoint(p.Lat, p.Lon)
		if err != nil {
			return route.Leg{}, err
		}
		points = append(points, point)
	}

	if d.HasMetrics {
		return route.NewLeg(points, d.DistanceMeters, d.DurationSeconds)
	}

	// Fallback legs carry exactly the pair endpoints and no metrics.
	if len(points) == 2 {
		return route.NewFallbackLeg(points[0], points[1])
	}
	return route.NewFallbackLeg(origin, destination)
}
