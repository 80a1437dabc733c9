package services

import (
	"errors"
	"sync"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/route"
)

// ErrNoRoutePublished is returned when a vehicle operation or snapshot is
// requested before any route has been published to the board.
var ErrNoRoutePublished = errors.New("no route published")

// VehicleView is an immutable snapshot of the vehicle state taken under the
// board lock, safe to use after the lock is released.
type VehicleView struct {
	Position  kernel.GeoPoint
	Bearing   float64
	PathIndex int
}

// RouteBoard is the single holder of the current route and the vehicle that
// travels it. Every read and mutation goes through one mutex, so route
// replacement, vehicle movement and status snapshots never observe a
// half-updated pair.
//
// Key responsibilities:
//   - Publishing a freshly planned route and snapping the vehicle to its start
//   - Advancing or repositioning the vehicle along the current route
//   - Producing consistent route-plus-vehicle snapshots for queries
//
// Business rules:
//   - A published route fully replaces the previous one; the vehicle is
//     snapped to the new route's start exactly once per publication
//   - The vehicle never exists without a route; before the first publication
//     every vehicle operation returns ErrNoRoutePublished
type RouteBoard struct {
	mu      sync.Mutex
	route   *route.Route
	vehicle *route.Vehicle
}

// NewRouteBoard creates an empty RouteBoard with no published route.
func NewRouteBoard() *RouteBoard {
	return &RouteBoard{}
}

// Publish replaces the current route with r and snaps the vehicle to the new
// route's starting point. The first publication also creates the vehicle.
//
// Parameters:
//   - r: The freshly planned route (must be valid and non-nil)
//
// Returns:
//   - error: Validation error when r is nil or not constructed
func (b *RouteBoard) Publish(r *route.Route) error {
	if r == nil {
		return route.ErrRouteIsNotConstructed
	}

	if err := r.Validate(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.route = r

	if b.vehicle == nil {
		v, err := route.NewVehicle(r.First())
		if err != nil {
			return err
		}

		b.vehicle = v
	}

	return b.vehicle.SnapTo(r)
}

// Advance moves the vehicle one path index forward along the current route.
//
// Returns:
//   - error: ErrNoRoutePublished when the board is empty
func (b *RouteBoard) Advance() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.route == nil {
		return ErrNoRoutePublished
	}

	return b.vehicle.Advance(b.route)
}

// SetVehiclePosition places the vehicle at an externally reported position
// and realigns its path index with the current route.
//
// Parameters:
//   - position: The reported vehicle position
//
// Returns:
//   - error: ErrNoRoutePublished when the board is empty
func (b *RouteBoard) SetVehiclePosition(position kernel.GeoPoint) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.route == nil {
		return ErrNoRoutePublished
	}

	return b.vehicle.SetPosition(b.route, position)
}

// Snapshot returns the current route together with a consistent view of the
// vehicle. The route is immutable after construction, so sharing the pointer
// outside the lock is safe.
//
// Returns:
//   - *route.Route: The currently published route
//   - VehicleView: Vehicle position, bearing and path index at snapshot time
//   - error: ErrNoRoutePublished when the board is empty
func (b *RouteBoard) Snapshot() (*route.Route, VehicleView, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.route == nil {
		return nil, VehicleView{}, ErrNoRoutePublished
	}

	view := VehicleView{
		Position:  b.vehicle.Position(),
		Bearing:   b.vehicle.Bearing(),
		PathIndex: b.vehicle.PathIndex(),
	}

	return b.route, view, nil
}
